package formatting

import (
	"fmt"
	"time"

	"github.com/UrikezZ/52HZSchoolBot/internal/schedule"
)

// FormatDate форматирует только дату
func FormatDate(t time.Time) string {
	return t.Format("02.01.2006")
}

// FormatDateTime форматирует дату и время
func FormatDateTime(t time.Time) string {
	return t.Format("02.01.2006 15:04")
}

// WeekRange "21.10.2026 - 25.10.2026" для окна записи
func WeekRange(days []schedule.Day) string {
	if len(days) == 0 {
		return ""
	}
	return fmt.Sprintf("%s - %s", days[0].DateText(), days[len(days)-1].DateText())
}

// CancellationDeadline срок бесплатной отмены: 10:00 предыдущего дня
func CancellationDeadline(lessonStart time.Time) string {
	return "10:00 " + lessonStart.AddDate(0, 0, -1).Format("02.01")
}

// CancellationDeadlineForLabel то же по подписи занятия "Ср 21.10.2026 13:00"
func CancellationDeadlineForLabel(label string) (string, bool) {
	start, ok := schedule.ParseLabelTime(label, time.UTC)
	if !ok {
		return "", false
	}
	return CancellationDeadline(start), true
}
