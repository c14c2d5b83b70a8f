package teacher

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/UrikezZ/52HZSchoolBot/internal/controller/callbacks/callbacktypes"
	"github.com/UrikezZ/52HZSchoolBot/internal/controller/callbacks/common"
	"github.com/UrikezZ/52HZSchoolBot/internal/controller/keyboard"
	"github.com/UrikezZ/52HZSchoolBot/internal/formatting"
	"github.com/UrikezZ/52HZSchoolBot/internal/schedule"
	"github.com/UrikezZ/52HZSchoolBot/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// loadReview возвращает открытую сессию разбора или начинает новую по текущей заявке
func loadReview(hc *common.HandlerContext, studentID int64) (*service.ReviewSession, error) {
	sm := hc.Handler.StateManager
	if session := sm.Review(hc.TelegramID, studentID, nil); session != nil {
		return session, nil
	}

	req, err := hc.Handler.RequestService.Get(hc.Ctx, studentID)
	if err != nil {
		return nil, err
	}
	if req == nil || len(req.SelectedSlots) == 0 {
		return nil, service.ErrNotFound
	}
	candidates := hc.Handler.RequestService.Candidates(req)
	return sm.Review(hc.TelegramID, studentID, func() *service.ReviewSession {
		return service.NewReviewSession(studentID, candidates)
	}), nil
}

// HandleReviewToggle отмечает слот заявки или снимает отметку
func HandleReviewToggle(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithTeacher(ctx, b, callback, h, func(hc *common.HandlerContext) {
		studentID, slotID, err := keyboard.ParseIDAndSlot(callback.Data, keyboard.ReviewToggle)
		if err != nil {
			hc.Fail("Failed to parse review toggle", common.ErrInvalidFormat)
			return
		}

		session, err := loadReview(hc, studentID)
		if err != nil {
			hc.Fail("Failed to load review", err)
			return
		}

		marked, err := session.Toggle(slotID)
		if err != nil {
			hc.Fail("Failed to toggle review slot", err)
			return
		}
		if marked {
			hc.Answer("✅ Отмечено")
		} else {
			hc.Answer("Отметка снята")
		}

		if err := hc.EditKeyboard(keyboard.Review(studentID, session.Candidates, session.IsMarked)); err != nil {
			h.Logger.Error("Failed to update review keyboard", zap.Error(err))
		}
	})
}

// HandleReviewConfirm подтверждает отмеченные слоты одним пакетом
func HandleReviewConfirm(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithStudentID(ctx, b, callback, h, parser(keyboard.ReviewConfirm), func(hc *common.HandlerContext, studentID int64) {
		session := h.StateManager.Review(hc.TelegramID, studentID, nil)
		if session == nil || len(session.Marked()) == 0 {
			hc.AnswerAlert("Отметьте хотя бы один слот")
			return
		}

		result, err := h.ConfirmationService.ConfirmSession(ctx, hc.TelegramID, session)
		h.StateManager.DropReview(hc.TelegramID, studentID)

		if errors.Is(err, service.ErrNothingConfirmed) {
			hc.Answer("Ничего не подтверждено")
			hc.Show(nothingConfirmedText(result), reopenKeyboard(hc, studentID))
			return
		}
		if err != nil {
			hc.Fail("Failed to confirm review", err)
			return
		}

		student, err := h.UserService.Profile(ctx, studentID)
		if err != nil {
			hc.Fail("Failed to load profile", err)
			return
		}
		hc.Answer("Занятия подтверждены")
		notice := result.Notice(student, "")
		hc.Show(formatting.LessonsConfirmedForTeacher(notice, result.SkippedLabels()), reopenKeyboard(hc, studentID))
	})
}

func nothingConfirmedText(result *service.BatchResult) string {
	var sb strings.Builder
	sb.WriteString("❌ <b>Ни один слот не подтверждён</b>\n\n")
	if result != nil {
		for _, s := range result.Skipped {
			reason := "ошибка"
			if errors.Is(s.Err, service.ErrSlotTaken) {
				reason = "уже занят"
			} else if errors.Is(s.Err, service.ErrValidation) {
				reason = "слот не из текущей недели"
			}
			sb.WriteString(fmt.Sprintf("• %s: %s\n", html.EscapeString(s.Label), reason))
		}
	}
	return sb.String()
}

// reopenKeyboard кнопка к оставшимся слотам, если в заявке что-то осталось
func reopenKeyboard(hc *common.HandlerContext, studentID int64) *models.InlineKeyboardMarkup {
	req, err := hc.Handler.RequestService.Get(hc.Ctx, studentID)
	if err != nil || req == nil || len(req.SelectedSlots) == 0 {
		return keyboard.BackToMenu()
	}
	return keyboard.NewBuilder().
		Row(keyboard.Button(fmt.Sprintf("📨 Оставшиеся слоты (%d)", len(req.SelectedSlots)), keyboard.Data(keyboard.OpenRequest, studentID))).
		Row(keyboard.Button("⬅️ В меню", keyboard.MainMenu)).
		Build()
}

// HandleReviewReject отклоняет заявку целиком
func HandleReviewReject(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithStudentID(ctx, b, callback, h, parser(keyboard.ReviewReject), func(hc *common.HandlerContext, studentID int64) {
		if err := h.ConfirmationService.Reject(ctx, hc.TelegramID, studentID); err != nil {
			hc.Fail("Failed to reject request", err)
			return
		}
		h.StateManager.DropStudentReviews(studentID)

		hc.Answer("Заявка отклонена")
		hc.Show("❌ <b>Заявка отклонена</b>\n\nСтудент уведомлен.", keyboard.BackToMenu())
	})
}

// HandleOpenRequest показывает заявку ученика с клавиатурой разбора
func HandleOpenRequest(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithStudentID(ctx, b, callback, h, parser(keyboard.OpenRequest), func(hc *common.HandlerContext, studentID int64) {
		req, err := h.RequestService.Get(ctx, studentID)
		if err != nil {
			hc.Fail("Failed to load request", err)
			return
		}
		if req == nil || len(req.SelectedSlots) == 0 {
			hc.AnswerAlert("Заявка уже разобрана или удалена")
			return
		}
		student, err := h.UserService.Profile(ctx, studentID)
		if err != nil {
			hc.Fail("Failed to load profile", err)
			return
		}

		// заявка могла измениться, разбор начинается заново
		h.StateManager.DropReview(hc.TelegramID, studentID)

		candidates := h.RequestService.Candidates(req)
		labels := make([]string, 0, len(candidates))
		for _, c := range candidates {
			labels = append(labels, c.Label)
		}
		weekRange := formatting.WeekRange(schedule.WeekWindow(h.Now()))

		hc.Answer("")
		hc.Show(formatting.RequestForTeacher(student, weekRange, labels), keyboard.Review(studentID, candidates, nil))
	})
}

func parser(prefix string) func(string) (int64, error) {
	return func(data string) (int64, error) {
		return keyboard.ParseID(data, prefix)
	}
}
