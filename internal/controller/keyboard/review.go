package keyboard

import (
	"github.com/UrikezZ/52HZSchoolBot/internal/service"
	"github.com/go-telegram/bot/models"
)

// Review клавиатура разбора заявки: отметка слотов, подтверждение, отказ
func Review(studentID int64, candidates []service.Candidate, isMarked func(slotID string) bool) *models.InlineKeyboardMarkup {
	b := NewBuilder()
	for _, c := range candidates {
		mark := "◻️"
		if isMarked != nil && isMarked(c.SlotID) {
			mark = "✅"
		}
		b.Row(Button(mark+" "+c.Label, Data(ReviewToggle, studentID, c.SlotID)))
	}
	return b.
		Row(
			Button("✅ Подтвердить отмеченные", Data(ReviewConfirm, studentID)),
			Button("❌ Отклонить", Data(ReviewReject, studentID)),
		).
		Build()
}
