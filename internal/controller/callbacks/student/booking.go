package student

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/UrikezZ/52HZSchoolBot/internal/controller/callbacks/callbacktypes"
	"github.com/UrikezZ/52HZSchoolBot/internal/controller/callbacks/common"
	"github.com/UrikezZ/52HZSchoolBot/internal/controller/keyboard"
	"github.com/UrikezZ/52HZSchoolBot/internal/controller/state"
	"github.com/UrikezZ/52HZSchoolBot/internal/formatting"
	"github.com/UrikezZ/52HZSchoolBot/internal/schedule"
	"github.com/UrikezZ/52HZSchoolBot/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// HandleBookDays показывает дни окна записи
func HandleBookDays(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithContext(ctx, b, callback, h, func(hc *common.HandlerContext) {
		hc.Answer("")
		showDays(hc, "")
	})
}

func showDays(hc *common.HandlerContext, prefix string) {
	req, err := hc.Handler.RequestService.Get(hc.Ctx, hc.TelegramID)
	if err != nil {
		hc.Fail("Failed to load request", err)
		return
	}

	selected := 0
	if req != nil {
		selected = len(req.SelectedSlots)
	}
	days := schedule.WeekWindow(hc.Handler.Now())

	text := prefix + fmt.Sprintf(
		"📅 <b>Расписание на неделю %s</b>\n\n"+
			"Выберите день, отметьте удобные часы и отправьте заявку преподавателю. "+
			"Занятые слоты не показываются.",
		formatting.WeekRange(days),
	)
	hc.Show(text, keyboard.BookingDays(days, selected))
}

// HandleBookDay показывает часы выбранного дня
func HandleBookDay(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithContext(ctx, b, callback, h, func(hc *common.HandlerContext) {
		offset, err := strconv.Atoi(strings.TrimPrefix(callback.Data, keyboard.BookDay))
		if err != nil || offset < 0 || offset >= schedule.DaysInWindow {
			hc.Fail("Invalid day offset", common.ErrInvalidFormat)
			return
		}
		hc.Answer("")
		showDay(hc, offset)
	})
}

func showDay(hc *common.HandlerContext, offset int) {
	req, err := hc.Handler.RequestService.Get(hc.Ctx, hc.TelegramID)
	if err != nil {
		hc.Fail("Failed to load request", err)
		return
	}
	taken, err := hc.Handler.LessonService.TakenSlots(hc.Ctx)
	if err != nil {
		hc.Fail("Failed to load taken slots", err)
		return
	}

	day := schedule.WeekWindow(hc.Handler.Now())[offset]
	hc.SetData(state.KeyDay, offset)

	text := fmt.Sprintf("📅 <b>%s %s</b>\n\n◻️ свободно, ✅ выбрано вами", day.Name, day.DateText())
	hc.Show(text, keyboard.BookingHours(day, taken, req))
}

// HandleBookToggle добавляет слот в заявку или убирает его
func HandleBookToggle(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithContext(ctx, b, callback, h, func(hc *common.HandlerContext) {
		slotID := strings.TrimPrefix(callback.Data, keyboard.BookToggle)
		offset, _, err := schedule.ParseSlotID(slotID)
		if err != nil {
			hc.Fail("Invalid slot id", common.ErrInvalidFormat)
			return
		}

		_, added, err := h.RequestService.ToggleSlot(ctx, hc.TelegramID, slotID)
		if errors.Is(err, service.ErrSlotTaken) {
			hc.AnswerAlert("❌ Этот слот уже занят другим учеником")
			showDay(hc, offset)
			return
		}
		if err != nil {
			hc.Fail("Failed to toggle slot", err)
			return
		}

		if added {
			hc.Answer("✅ Слот добавлен")
		} else {
			hc.Answer("Слот убран")
		}
		showDay(hc, offset)
	})
}

// HandleBookShow показывает выбранные слоты
func HandleBookShow(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithContext(ctx, b, callback, h, func(hc *common.HandlerContext) {
		req, err := h.RequestService.Get(ctx, hc.TelegramID)
		if err != nil {
			hc.Fail("Failed to load request", err)
			return
		}
		if req == nil || len(req.SelectedSlots) == 0 {
			hc.AnswerAlert("Вы ещё не выбрали ни одного слота")
			return
		}
		hc.Answer("")

		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("📋 <b>Выбрано %d %s:</b>\n\n", len(req.SelectedSlots), formatting.PluralizeSlots(len(req.SelectedSlots))))
		for _, c := range h.RequestService.Candidates(req) {
			sb.WriteString("• " + html.EscapeString(c.Label) + "\n")
		}
		hc.Show(sb.String(), keyboard.BookingSelected())
	})
}

// HandleBookSubmit отправляет заявку преподавателям
func HandleBookSubmit(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithContext(ctx, b, callback, h, func(hc *common.HandlerContext) {
		req, err := h.RequestService.Submit(ctx, hc.TelegramID)
		if errors.Is(err, service.ErrValidation) {
			hc.AnswerAlert("Сначала выберите хотя бы один слот")
			return
		}
		if err != nil {
			hc.Fail("Failed to submit request", err)
			return
		}

		// новая отправка начинает разбор заново
		h.StateManager.DropStudentReviews(hc.TelegramID)

		hc.Answer("Заявка отправлена")
		weekRange := formatting.WeekRange(schedule.WeekWindow(h.Now()))
		hc.Show(formatting.RequestSubmitted(weekRange, len(req.SelectedSlots)), keyboard.BackToMenu())
	})
}

// HandleBookClear удаляет заявку ученика
func HandleBookClear(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithContext(ctx, b, callback, h, func(hc *common.HandlerContext) {
		err := h.RequestService.Delete(ctx, hc.TelegramID, hc.TelegramID)
		if err != nil && !errors.Is(err, service.ErrNotFound) {
			hc.Fail("Failed to clear request", err)
			return
		}
		h.StateManager.DropStudentReviews(hc.TelegramID)
		h.Logger.Info("Student cleared request", zap.Int64("student_id", hc.TelegramID))

		hc.Answer("Выбор очищен")
		showDays(hc, "🗑 Выбор очищен.\n\n")
	})
}
