package teacher

import (
	"context"
	"fmt"

	"github.com/UrikezZ/52HZSchoolBot/internal/controller/callbacks/callbacktypes"
	"github.com/UrikezZ/52HZSchoolBot/internal/controller/callbacks/common"
	"github.com/UrikezZ/52HZSchoolBot/internal/controller/keyboard"
	"github.com/UrikezZ/52HZSchoolBot/internal/formatting"
	"github.com/UrikezZ/52HZSchoolBot/internal/schedule"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// displayNames имена учеников по id. Ошибки профиля не мешают показу.
func displayNames(hc *common.HandlerContext, ids []int64) map[int64]string {
	names := make(map[int64]string, len(ids))
	for _, id := range ids {
		if _, ok := names[id]; ok {
			continue
		}
		profile, err := hc.Handler.UserService.Profile(hc.Ctx, id)
		if err != nil {
			hc.Handler.Logger.Warn("Profile unavailable", zap.Int64("student_id", id), zap.Error(err))
			continue
		}
		names[id] = profile.DisplayName()
	}
	return names
}

// HandleRequests список текущих заявок
func HandleRequests(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithTeacher(ctx, b, callback, h, func(hc *common.HandlerContext) {
		requests, err := h.RequestService.ListAll(ctx)
		if err != nil {
			hc.Fail("Failed to list requests", err)
			return
		}
		hc.Answer("")

		if len(requests) == 0 {
			hc.Show("📨 Заявок нет.", keyboard.BackToMenu())
			return
		}

		ids := make([]int64, 0, len(requests))
		for _, r := range requests {
			ids = append(ids, r.StudentID)
		}
		text := fmt.Sprintf("📨 <b>%d %s</b>\n\nВыберите заявку для разбора:", len(requests), formatting.PluralizeRequests(len(requests)))
		hc.Show(text, keyboard.RequestList(requests, displayNames(hc, ids)))
	})
}

// HandleClearRequests спрашивает подтверждение очистки
func HandleClearRequests(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithTeacher(ctx, b, callback, h, func(hc *common.HandlerContext) {
		hc.Answer("")
		hc.Show("🧹 <b>Удалить все заявки учеников?</b>\n\nПодтверждённые занятия не затрагиваются.", keyboard.ConfirmClearRequests())
	})
}

// HandleClearRequestsConfirm удаляет все заявки
func HandleClearRequestsConfirm(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithTeacher(ctx, b, callback, h, func(hc *common.HandlerContext) {
		ClearAllRequests(hc)
	})
}

// ClearAllRequests удаляет все заявки и открытые разборы по ним
func ClearAllRequests(hc *common.HandlerContext) {
	h := hc.Handler
	requests, err := h.RequestService.ListAll(hc.Ctx)
	if err != nil {
		hc.Fail("Failed to list requests", err)
		return
	}
	n, err := h.RequestService.DeleteAll(hc.Ctx, hc.TelegramID)
	if err != nil {
		hc.Fail("Failed to clear requests", err)
		return
	}
	for _, r := range requests {
		h.StateManager.DropStudentReviews(r.StudentID)
	}

	hc.Answer("Готово")
	hc.Show(fmt.Sprintf("🧹 Удалено %d %s.", n, formatting.PluralizeRequests(n)), keyboard.BackToMenu())
}

// HandleWeekImage отправляет картинку сетки недели
func HandleWeekImage(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithTeacher(ctx, b, callback, h, func(hc *common.HandlerContext) {
		taken, err := h.LessonService.TakenSlots(ctx)
		if err != nil {
			hc.Fail("Failed to load taken slots", err)
			return
		}
		requests, err := h.RequestService.ListAll(ctx)
		if err != nil {
			hc.Fail("Failed to list requests", err)
			return
		}

		ids := make([]int64, 0, len(taken))
		for _, studentID := range taken {
			ids = append(ids, studentID)
		}
		now := h.Now()
		grid := common.BuildWeekGrid(now, taken, displayNames(hc, ids), requests)

		data, err := common.GenerateWeekImage(grid, now)
		if err != nil {
			hc.Fail("Failed to render week image", err)
			return
		}
		hc.Answer("")

		caption := fmt.Sprintf("🖼 Неделя %s\nЗанято: %d, заявок: %d",
			formatting.WeekRange(schedule.WeekWindow(now)), len(taken), len(requests))
		if err := hc.SendPhoto("week.png", data, caption); err != nil {
			h.Logger.Error("Failed to send week image", zap.Error(err))
		}
	})
}
