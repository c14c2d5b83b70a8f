package keyboard

import (
	"fmt"

	"github.com/UrikezZ/52HZSchoolBot/internal/model"
	"github.com/UrikezZ/52HZSchoolBot/internal/schedule"
	"github.com/go-telegram/bot/models"
)

const hoursPerRow = 3

// BookingDays выбор дня окна записи. selected число уже выбранных слотов.
func BookingDays(days []schedule.Day, selected int) *models.InlineKeyboardMarkup {
	buttons := make([]models.InlineKeyboardButton, 0, len(days))
	for _, d := range days {
		buttons = append(buttons, Button(fmt.Sprintf("%s %s", d.Name, d.Date.Format("02.01")), Data(BookDay, d.Offset)))
	}

	b := NewBuilder().Grid(buttons, 3)
	if selected > 0 {
		b.Row(
			Button(fmt.Sprintf("📋 Выбрано: %d", selected), BookShow),
			Button("📨 Отправить", BookSubmit),
		)
	}
	return b.Row(Button("⬅️ В меню", MainMenu)).Build()
}

// BookingHours часы одного дня. Занятые слоты не показываются,
// выбранные отмечены галочкой.
func BookingHours(day schedule.Day, taken map[string]int64, req *model.AvailabilityRequest) *models.InlineKeyboardMarkup {
	buttons := make([]models.InlineKeyboardButton, 0, schedule.LastHour-schedule.FirstHour+1)
	for _, ts := range schedule.SlotsForDay(day.Offset) {
		if _, busy := taken[ts.ID]; busy {
			continue
		}
		mark := "◻️"
		if req.Has(ts.ID) {
			mark = "✅"
		}
		buttons = append(buttons, Button(mark+" "+ts.Time, Data(BookToggle, ts.ID)))
	}

	b := NewBuilder()
	if len(buttons) == 0 {
		b.Row(Button("Свободных слотов нет", Noop))
	}
	b.Grid(buttons, hoursPerRow)

	nav := make([]models.InlineKeyboardButton, 0, 2)
	if day.Offset > 0 {
		nav = append(nav, Button("◀️", Data(BookDay, day.Offset-1)))
	}
	if day.Offset < schedule.DaysInWindow-1 {
		nav = append(nav, Button("▶️", Data(BookDay, day.Offset+1)))
	}
	b.Row(nav...)

	return b.
		Row(Button("📋 Выбранные", BookShow), Button("📨 Отправить", BookSubmit)).
		Row(Button("⬅️ К дням", BookDays)).
		Build()
}

// BookingSelected действия над выбранными слотами
func BookingSelected() *models.InlineKeyboardMarkup {
	return NewBuilder().
		Row(Button("📨 Отправить", BookSubmit), Button("🗑 Очистить", BookClear)).
		Row(Button("⬅️ К дням", BookDays)).
		Build()
}
