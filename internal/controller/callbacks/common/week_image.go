package common

import (
	"bytes"
	"fmt"
	"image/color"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/UrikezZ/52HZSchoolBot/internal/model"
	"github.com/UrikezZ/52HZSchoolBot/internal/schedule"
	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// FontStyle определяет стиль шрифта
type FontStyle string

const (
	FontStyleDefault FontStyle = "" // Regular
	FontStyleBold    FontStyle = "bold"
)

// CellStatus состояние клетки сетки
type CellStatus int

const (
	CellFree CellStatus = iota
	CellRequested
	CellTaken
)

// WeekCell одна клетка сетки: слот окна
type WeekCell struct {
	Status  CellStatus
	Caption string // имя ученика или число заявок
}

// WeekGrid данные для картинки недели
type WeekGrid struct {
	Days  []schedule.Day
	Cells map[string]WeekCell // slotID -> клетка
}

// Константы размеров и отступов
const (
	imageWidth       = 1280
	imageHeight      = 860
	headerHeight     = 110
	leftLabelsWidth  = 80
	legendWidth      = 170
	dayPaddingX      = 8
	slotBorderRadius = 6.0
	shadowOffset     = 3.0
	maxCaptionRunes  = 16
)

// Константы шрифтов
const (
	titleFontSize      = 25.0
	dayFontSize        = 24.0
	hourLabelFontSize  = 18.0
	slotTimeFontSize   = 17.0
	legendItemFontSize = 13.0
)

// Цветовая схема
var (
	bgColor          = color.RGBA{245, 246, 248, 255}
	textColor        = color.RGBA{80, 85, 90, 220}
	hourLabelColor   = color.RGBA{110, 115, 120, 200}
	hourLineColor    = color.NRGBA{150, 150, 150, 255}
	todayBgColor     = color.NRGBA{255, 99, 71, 125}
	evenDayColor     = color.NRGBA{240, 240, 240, 255}
	oddDayColor      = color.NRGBA{220, 220, 220, 255}
	currentTimeColor = color.NRGBA{255, 80, 80, 200}

	slotFreeColor       = color.RGBA{133, 193, 85, 220}
	slotTakenColor      = color.RGBA{255, 182, 193, 255} // светло-розовый для занятых
	slotRequestedColor  = color.RGBA{255, 214, 102, 230}
	slotTextColor       = color.RGBA{20, 24, 28, 230}
	slotTakenTextColor  = color.RGBA{120, 40, 50, 255}
	slotShadowColor     = color.RGBA{0, 0, 0, 20}
	legendItemTextColor = color.RGBA{70, 74, 78, 220}
)

var (
	fontsMu     sync.Mutex
	cachedFonts = make(map[FontStyle]*opentype.Font)
)

// loadFont загружает шрифт Go указанного стиля или использует basicfont как fallback.
// Шрифты Go содержат кириллицу.
func loadFont(dc *gg.Context, size float64, style ...FontStyle) {
	fontStyle := FontStyleDefault
	if len(style) > 0 {
		fontStyle = style[0]
	}

	fontData := goregular.TTF
	if fontStyle == FontStyleBold {
		fontData = gobold.TTF
	}

	fontsMu.Lock()
	parsed, ok := cachedFonts[fontStyle]
	if !ok {
		var err error
		parsed, err = opentype.Parse(fontData)
		if err == nil {
			cachedFonts[fontStyle] = parsed
		}
	}
	fontsMu.Unlock()

	if parsed != nil {
		face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
			Size:    size,
			DPI:     72,
			Hinting: font.HintingFull,
		})
		if err == nil {
			dc.SetFontFace(face)
			return
		}
	}
	dc.SetFontFace(basicfont.Face7x13)
}

// BuildWeekGrid собирает клетки окна: занятые слоты с именем ученика,
// запрошенные с числом заявок, остальные свободны
func BuildWeekGrid(now time.Time, taken map[string]int64, names map[int64]string, requests []*model.AvailabilityRequest) WeekGrid {
	grid := WeekGrid{
		Days:  schedule.WeekWindow(now),
		Cells: make(map[string]WeekCell),
	}

	requested := make(map[string]int)
	for _, r := range requests {
		for _, slotID := range r.SelectedSlots {
			requested[slotID]++
		}
	}

	for _, slot := range schedule.AllSlots(now) {
		switch {
		case taken[slot.ID] != 0:
			name := names[taken[slot.ID]]
			if name == "" {
				name = fmt.Sprintf("ID %d", taken[slot.ID])
			}
			grid.Cells[slot.ID] = WeekCell{Status: CellTaken, Caption: name}
		case requested[slot.ID] > 0:
			grid.Cells[slot.ID] = WeekCell{Status: CellRequested, Caption: fmt.Sprintf("заявок: %d", requested[slot.ID])}
		default:
			grid.Cells[slot.ID] = WeekCell{Status: CellFree}
		}
	}
	return grid
}

// GenerateWeekImage рисует PNG сетки окна записи: дни по столбцам, часы по строкам
func GenerateWeekImage(grid WeekGrid, now time.Time) ([]byte, error) {
	if len(grid.Days) == 0 {
		return nil, fmt.Errorf("week grid has no days")
	}

	totalDays := len(grid.Days)
	totalHours := schedule.LastHour - schedule.FirstHour + 1

	dc := createCanvas()
	dayWidth := (imageWidth - leftLabelsWidth - legendWidth) / totalDays
	dayHeight := imageHeight - headerHeight
	cellHeight := float64(dayHeight) / float64(totalHours)

	drawHeader(dc, grid.Days)
	drawHourLabels(dc, totalHours, cellHeight)

	today := normalizeToDay(now)
	for i, day := range grid.Days {
		x := float64(leftLabelsWidth + i*dayWidth)
		y := float64(headerHeight)

		drawDayBackground(dc, x, y, dayWidth, dayHeight, i, isSameDay(day.Date, today))
		drawDayHeader(dc, day, x, y, dayWidth)
		drawHourLines(dc, x, y, dayWidth, totalHours, cellHeight)

		for hIdx, ts := range schedule.SlotsForDay(day.Offset) {
			cell := grid.Cells[ts.ID]
			drawSlot(dc, ts.Time, cell, x, y+float64(hIdx)*cellHeight, dayWidth, cellHeight)
		}
	}

	drawCurrentTimeLine(dc, grid.Days, now, cellHeight, dayWidth)
	drawLegend(dc, totalDays*dayWidth)

	return encodeImage(dc)
}

// normalizeToDay нормализует время к началу дня
func normalizeToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// isSameDay проверяет, являются ли две даты одним днем
func isSameDay(date1, date2 time.Time) bool {
	return date1.Year() == date2.Year() &&
		date1.Month() == date2.Month() &&
		date1.Day() == date2.Day()
}

// createCanvas создает новый контекст рисования с фоном
func createCanvas() *gg.Context {
	dc := gg.NewContext(imageWidth, imageHeight)
	dc.SetColor(bgColor)
	dc.Clear()
	return dc
}

// drawHeader рисует заголовок с датами окна
func drawHeader(dc *gg.Context, days []schedule.Day) {
	first, last := days[0].Date, days[len(days)-1].Date
	title := fmt.Sprintf("Запись %s - %s", first.Format("02.01"), last.Format("02.01.2006"))

	loadFont(dc, titleFontSize, FontStyleBold)
	dc.SetColor(textColor)
	_, h := dc.MeasureString(title)
	dc.DrawStringAnchored(title, float64(leftLabelsWidth), float64(headerHeight)/8+h/2, 0, 0)
}

// drawHourLabels рисует колонку с часами слева
func drawHourLabels(dc *gg.Context, totalHours int, cellHeight float64) {
	loadFont(dc, hourLabelFontSize)
	dc.SetColor(hourLabelColor)

	for hIdx := 0; hIdx < totalHours; hIdx++ {
		y := float64(headerHeight) + float64(hIdx)*cellHeight + cellHeight/2
		dc.DrawStringAnchored(fmt.Sprintf("%02d:00", schedule.FirstHour+hIdx), float64(leftLabelsWidth)-10, y, 1, 0.5)
	}
}

// drawDayBackground рисует фон дня
func drawDayBackground(dc *gg.Context, x, y float64, dayWidth, dayHeight, dayIndex int, isToday bool) {
	switch {
	case isToday:
		dc.SetColor(todayBgColor)
	case dayIndex%2 == 0:
		dc.SetColor(evenDayColor)
	default:
		dc.SetColor(oddDayColor)
	}
	dc.DrawRectangle(x, y, float64(dayWidth), float64(dayHeight))
	dc.Fill()
}

// drawDayHeader рисует название дня недели и дату
func drawDayHeader(dc *gg.Context, day schedule.Day, x, y float64, dayWidth int) {
	loadFont(dc, dayFontSize, FontStyleBold)
	dc.SetColor(textColor)
	dc.DrawStringAnchored(day.Date.Format("02.01"), x+float64(dayWidth)/2, y, 0.5, -1)
	dc.DrawStringAnchored(day.Name, x+float64(dayWidth)/2, y, 0.5, -0.2)
}

// drawHourLines рисует горизонтальные линии часов
func drawHourLines(dc *gg.Context, x, y float64, dayWidth, totalHours int, cellHeight float64) {
	dc.SetLineWidth(0.3)
	dc.SetColor(hourLineColor)

	for hIdx := 0; hIdx <= totalHours; hIdx++ {
		hy := y + float64(hIdx)*cellHeight
		dc.DrawLine(x, hy, x+float64(dayWidth), hy)
		dc.Stroke()
	}
}

// drawSlot рисует одну клетку
func drawSlot(dc *gg.Context, timeText string, cell WeekCell, x, slotY float64, dayWidth int, cellHeight float64) {
	fillColor := getSlotColor(cell.Status)
	slotWidth := float64(dayWidth) - float64(dayPaddingX*2)
	slotHeight := cellHeight - 4

	// Тень
	dc.SetColor(slotShadowColor)
	dc.DrawRoundedRectangle(x+dayPaddingX+shadowOffset, slotY+2+shadowOffset, slotWidth, slotHeight, slotBorderRadius)
	dc.Fill()

	dc.SetColor(fillColor)
	dc.DrawRoundedRectangle(x+float64(dayPaddingX), slotY+2, slotWidth, slotHeight, slotBorderRadius)
	dc.Fill()

	dc.SetColor(darkenColor(fillColor, 0.8))
	dc.SetLineWidth(1)
	dc.DrawRoundedRectangle(x+float64(dayPaddingX), slotY+2, slotWidth, slotHeight, slotBorderRadius)
	dc.Stroke()

	txtColor := slotTextColor
	if cell.Status == CellTaken {
		txtColor = slotTakenTextColor
	}

	loadFont(dc, slotTimeFontSize, FontStyleBold)
	dc.SetColor(txtColor)
	txtX := x + float64(dayPaddingX) + 8
	txtY := slotY + 8 + 12
	dc.DrawStringAnchored(timeText, txtX, txtY, 0, 0)

	if cell.Caption != "" && slotHeight > 40 {
		loadFont(dc, slotTimeFontSize-2)
		dc.SetColor(txtColor)
		dc.DrawStringAnchored(truncate(cell.Caption, maxCaptionRunes), txtX, txtY+20, 0, 0)
	}
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit-1]) + "…"
}

// getSlotColor возвращает цвет клетки по её состоянию
func getSlotColor(status CellStatus) color.RGBA {
	switch status {
	case CellTaken:
		return slotTakenColor
	case CellRequested:
		return slotRequestedColor
	default:
		return slotFreeColor
	}
}

// darkenColor затемняет цвет на указанный множитель
func darkenColor(c color.RGBA, factor float64) color.RGBA {
	return color.RGBA{
		R: uint8(float64(c.R) * factor),
		G: uint8(float64(c.G) * factor),
		B: uint8(float64(c.B) * factor),
		A: c.A,
	}
}

// drawCurrentTimeLine рисует красную линию текущего времени, если сегодня попадает в окно
func drawCurrentTimeLine(dc *gg.Context, days []schedule.Day, now time.Time, cellHeight float64, dayWidth int) {
	for i, day := range days {
		if !isSameDay(day.Date, now) {
			continue
		}
		currentHour := float64(now.Hour()) + float64(now.Minute())/60.0
		if currentHour < schedule.FirstHour || currentHour > schedule.LastHour+1 {
			return
		}
		y := float64(headerHeight) + (currentHour-schedule.FirstHour)*cellHeight
		x := float64(leftLabelsWidth + i*dayWidth)
		dc.SetColor(currentTimeColor)
		dc.SetLineWidth(2.0)
		dc.DrawLine(x, y, x+float64(dayWidth), y)
		dc.Stroke()
		return
	}
}

// drawLegend рисует легенду справа
func drawLegend(dc *gg.Context, daysWidth int) {
	legendItems := []struct {
		Label string
		Clr   color.Color
	}{
		{"Свободно", slotFreeColor},
		{"Есть заявки", slotRequestedColor},
		{"Занято", slotTakenColor},
	}

	boxW := 20.0
	boxH := 14.0
	liX := float64(leftLabelsWidth+daysWidth) + 12
	liY := float64(imageHeight) - 110.0

	for _, item := range legendItems {
		dc.SetColor(item.Clr)
		dc.DrawRoundedRectangle(liX, liY, boxW, boxH, 3)
		dc.Fill()

		loadFont(dc, legendItemFontSize)
		dc.SetColor(legendItemTextColor)
		dc.DrawStringAnchored(item.Label, liX+boxW+8, liY+boxH/2+1, 0, 0.2)
		liY += boxH + 14
	}
}

// encodeImage кодирует изображение в PNG
func encodeImage(dc *gg.Context) ([]byte, error) {
	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
