// Package schedule описывает сетку слотов для записи: пять дней (Ср–Вс)
// следующей недели, часы с 13:00 до 21:00. Сетка не хранится в базе и
// каждый раз вычисляется из текущего времени.
package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	FirstHour    = 13
	LastHour     = 21
	DaysInWindow = 5

	dateLayout = "02.01.2006"
)

var dayNames = [DaysInWindow]string{"Ср", "Чт", "Пт", "Сб", "Вс"}

// Day день окна записи
type Day struct {
	Offset int       // 0..4, Ср..Вс
	Date   time.Time // полночь в локации now
	Name   string    // сокращение дня недели
}

// DateText дата в формате ДД.ММ.ГГГГ
func (d Day) DateText() string {
	return d.Date.Format(dateLayout)
}

// TimeSlot слот внутри одного дня
type TimeSlot struct {
	ID   string
	Time string // "HH:00"
}

// Slot слот окна с полной подписью
type Slot struct {
	ID    string
	Day   Day
	Hour  int
	Label string // "Ср 21.10.2026 13:00"
}

// StartsAt время начала слота
func (s Slot) StartsAt() time.Time {
	return s.Day.Date.Add(time.Duration(s.Hour) * time.Hour)
}

// WindowStart возвращает первую среду окна. Если now сама среда,
// окно начинается через неделю.
func WindowStart(now time.Time) time.Time {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	daysUntilWednesday := (int(time.Wednesday) - int(today.Weekday()) + 7) % 7
	if daysUntilWednesday == 0 {
		daysUntilWednesday = 7
	}
	return today.AddDate(0, 0, daysUntilWednesday)
}

// WeekWindow возвращает пять дней окна записи по порядку
func WeekWindow(now time.Time) []Day {
	start := WindowStart(now)
	days := make([]Day, 0, DaysInWindow)
	for i := 0; i < DaysInWindow; i++ {
		days = append(days, Day{
			Offset: i,
			Date:   start.AddDate(0, 0, i),
			Name:   dayNames[i],
		})
	}
	return days
}

// SlotID формирует идентификатор слота: day{offset}_{HH}00
func SlotID(dayOffset, hour int) string {
	return fmt.Sprintf("day%d_%02d00", dayOffset, hour)
}

// ParseSlotID разбирает идентификатор слота сетки
func ParseSlotID(slotID string) (dayOffset, hour int, err error) {
	rest, ok := strings.CutPrefix(slotID, "day")
	if !ok {
		return 0, 0, fmt.Errorf("invalid slot id %q", slotID)
	}
	dayPart, timePart, ok := strings.Cut(rest, "_")
	if !ok || len(timePart) != 4 || !strings.HasSuffix(timePart, "00") {
		return 0, 0, fmt.Errorf("invalid slot id %q", slotID)
	}

	dayOffset, err = strconv.Atoi(dayPart)
	if err != nil || dayOffset < 0 || dayOffset >= DaysInWindow {
		return 0, 0, fmt.Errorf("invalid slot day in %q", slotID)
	}
	hour, err = strconv.Atoi(timePart[:2])
	if err != nil || hour < FirstHour || hour > LastHour {
		return 0, 0, fmt.Errorf("invalid slot hour in %q", slotID)
	}
	return dayOffset, hour, nil
}

// SlotsForDay возвращает слоты дня по порядку: id -> "HH:00"
func SlotsForDay(dayOffset int) []TimeSlot {
	slots := make([]TimeSlot, 0, LastHour-FirstHour+1)
	for hour := FirstHour; hour <= LastHour; hour++ {
		slots = append(slots, TimeSlot{
			ID:   SlotID(dayOffset, hour),
			Time: fmt.Sprintf("%02d:00", hour),
		})
	}
	return slots
}

// AllSlots возвращает все 45 слотов окна по порядку
func AllSlots(now time.Time) []Slot {
	days := WeekWindow(now)
	result := make([]Slot, 0, DaysInWindow*(LastHour-FirstHour+1))
	for _, day := range days {
		for _, ts := range SlotsForDay(day.Offset) {
			_, hour, _ := ParseSlotID(ts.ID)
			result = append(result, Slot{
				ID:    ts.ID,
				Day:   day,
				Hour:  hour,
				Label: fmt.Sprintf("%s %s %s", day.Name, day.DateText(), ts.Time),
			})
		}
	}
	return result
}

// AllSlotLabels возвращает подписи всех слотов окна: id -> "Ср 21.10.2026 13:00"
func AllSlotLabels(now time.Time) map[string]string {
	slots := AllSlots(now)
	labels := make(map[string]string, len(slots))
	for _, s := range slots {
		labels[s.ID] = s.Label
	}
	return labels
}

// Lookup находит слот текущего окна по id
func Lookup(now time.Time, slotID string) (Slot, bool) {
	dayOffset, hour, err := ParseSlotID(slotID)
	if err != nil {
		return Slot{}, false
	}
	day := WeekWindow(now)[dayOffset]
	return Slot{
		ID:    slotID,
		Day:   day,
		Hour:  hour,
		Label: fmt.Sprintf("%s %s %02d:00", day.Name, day.DateText(), hour),
	}, true
}

// SlotAt находит слот текущего окна, который начинается в t
func SlotAt(now, t time.Time) (Slot, bool) {
	if t.Minute() != 0 || t.Second() != 0 {
		return Slot{}, false
	}
	t = t.In(now.Location())
	for _, day := range WeekWindow(now) {
		y, m, d := day.Date.Date()
		ty, tm, td := t.Date()
		if y == ty && m == tm && d == td {
			if t.Hour() < FirstHour || t.Hour() > LastHour {
				return Slot{}, false
			}
			return Lookup(now, SlotID(day.Offset, t.Hour()))
		}
	}
	return Slot{}, false
}

// ParseLabelTime извлекает дату и время из подписи занятия,
// например "Ср 21.10.2026 13:00"
func ParseLabelTime(label string, loc *time.Location) (time.Time, bool) {
	var datePart, timePart string
	for _, part := range strings.Fields(label) {
		switch {
		case strings.Count(part, ".") == 2:
			datePart = part
		case strings.Count(part, ":") == 1:
			timePart = part
		}
	}
	if datePart == "" || timePart == "" {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(dateLayout+" 15:04", datePart+" "+timePart, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// ManualLabel подпись для занятия, добавленного учителем вручную
func ManualLabel(t time.Time) string {
	return fmt.Sprintf("%s %s %s", WeekdayShort(t.Weekday()), t.Format(dateLayout), t.Format("15:04"))
}

// WeekdayShort короткое название дня недели
func WeekdayShort(weekday time.Weekday) string {
	return [...]string{"Вс", "Пн", "Вт", "Ср", "Чт", "Пт", "Сб"}[weekday]
}
