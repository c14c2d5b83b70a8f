package student

import (
	"context"

	"github.com/UrikezZ/52HZSchoolBot/internal/controller/callbacks/callbacktypes"
	"github.com/UrikezZ/52HZSchoolBot/internal/controller/callbacks/common"
	"github.com/UrikezZ/52HZSchoolBot/internal/controller/keyboard"
	"github.com/UrikezZ/52HZSchoolBot/internal/controller/state"
	"github.com/UrikezZ/52HZSchoolBot/internal/formatting"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// HandleMyLessons показывает подтверждённые занятия ученика по времени
func HandleMyLessons(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithContext(ctx, b, callback, h, func(hc *common.HandlerContext) {
		lessons, err := h.LessonService.ListForStudent(ctx, hc.TelegramID)
		if err != nil {
			hc.Fail("Failed to list lessons", err)
			return
		}
		hc.Answer("")

		labels := make([]string, 0, len(lessons))
		for _, l := range lessons {
			labels = append(labels, l.SlotLabel)
		}
		hc.Show(formatting.LessonList("📚 <b>Ваши занятия</b>", labels), keyboard.BackToMenu())
	})
}

// HandleMyBalance показывает счёт ученика
func HandleMyBalance(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithContext(ctx, b, callback, h, func(hc *common.HandlerContext) {
		acc, err := h.BalanceService.Get(ctx, hc.TelegramID)
		if err != nil {
			hc.Fail("Failed to load balance", err)
			return
		}
		profile, err := h.UserService.Profile(ctx, hc.TelegramID)
		if err != nil {
			hc.Fail("Failed to load profile", err)
			return
		}
		hc.Answer("")
		hc.Show(formatting.BalanceCard(profile.DisplayName(), acc), keyboard.BackToMenu())
	})
}

// HandleEditProfile начинает диалог анкеты
func HandleEditProfile(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithContext(ctx, b, callback, h, func(hc *common.HandlerContext) {
		hc.Answer("")
		hc.ClearState()
		hc.SetState(state.StateProfileName)
		hc.Show("✏️ <b>Анкета</b>\n\nВведите ваше ФИО:\n\n/cancel - отмена", nil)
	})
}
