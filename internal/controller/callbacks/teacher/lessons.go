package teacher

import (
	"context"

	"github.com/UrikezZ/52HZSchoolBot/internal/controller/callbacks/callbacktypes"
	"github.com/UrikezZ/52HZSchoolBot/internal/controller/callbacks/common"
	"github.com/UrikezZ/52HZSchoolBot/internal/controller/keyboard"
	"github.com/UrikezZ/52HZSchoolBot/internal/formatting"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// HandleStudentLessons занятия ученика с кнопками отмены
func HandleStudentLessons(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithStudentID(ctx, b, callback, h, parser(keyboard.StudentLessons), func(hc *common.HandlerContext, studentID int64) {
		lessons, err := h.LessonService.ListForStudent(ctx, studentID)
		if err != nil {
			hc.Fail("Failed to list lessons", err)
			return
		}
		hc.Answer("")

		labels := make([]string, 0, len(lessons))
		for _, l := range lessons {
			labels = append(labels, l.SlotLabel)
		}
		text := formatting.LessonList("📚 <b>Занятия ученика</b>", labels)
		if len(lessons) > 0 {
			text += "\nНажмите на занятие, чтобы отменить его."
		}
		hc.Show(text, keyboard.LessonsToCancel(studentID, lessons))
	})
}

// HandleCancelLesson отменяет занятие. Баланс не возвращается.
func HandleCancelLesson(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithTeacher(ctx, b, callback, h, func(hc *common.HandlerContext) {
		studentID, slotID, err := keyboard.ParseIDAndSlot(callback.Data, keyboard.CancelLesson)
		if err != nil {
			hc.Fail("Failed to parse cancel callback", common.ErrInvalidFormat)
			return
		}

		lesson, err := h.ConfirmationService.Cancel(ctx, hc.TelegramID, studentID, slotID)
		if err != nil {
			hc.Fail("Failed to cancel lesson", err)
			return
		}
		profile, err := h.UserService.Profile(ctx, studentID)
		if err != nil {
			hc.Fail("Failed to load profile", err)
			return
		}

		hc.Answer("Занятие отменено")
		hc.Show(formatting.LessonCancelledForTeacher(profile.DisplayName(), lesson.SlotLabel), keyboard.BackToStudent(studentID))
	})
}
