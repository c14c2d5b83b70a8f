package teacher

import (
	"context"
	"fmt"
	"html"

	"github.com/UrikezZ/52HZSchoolBot/internal/controller/callbacks/callbacktypes"
	"github.com/UrikezZ/52HZSchoolBot/internal/controller/callbacks/common"
	"github.com/UrikezZ/52HZSchoolBot/internal/controller/keyboard"
	"github.com/UrikezZ/52HZSchoolBot/internal/controller/state"
	"github.com/UrikezZ/52HZSchoolBot/internal/formatting"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// prompt переводит преподавателя в режим ввода значения для ученика
func prompt(prefix string, st state.UserState, text string) func(context.Context, *bot.Bot, *models.CallbackQuery, *callbacktypes.Handler) {
	return func(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
		common.WithStudentID(ctx, b, callback, h, parser(prefix), func(hc *common.HandlerContext, studentID int64) {
			hc.ClearState()
			hc.SetState(st)
			hc.SetData(state.KeyStudentID, studentID)
			hc.Answer("")
			hc.Show(text+"\n\n/cancel - отмена", keyboard.BackToStudent(studentID))
		})
	}
}

var (
	// HandleAddLessons запрашивает число оплаченных уроков
	HandleAddLessons = prompt(keyboard.AddLessons, state.StateBalanceLessons,
		"➕ <b>Добавить уроки</b>\n\nВведите количество оплаченных уроков:")
	// HandleAddDeposit запрашивает сумму пополнения
	HandleAddDeposit = prompt(keyboard.AddDeposit, state.StateBalanceDeposit,
		"➕ <b>Пополнить депозит</b>\n\nВведите сумму в рублях:")
	// HandleSetPrice запрашивает новую цену урока
	HandleSetPrice = prompt(keyboard.SetPrice, state.StateBalancePrice,
		"💵 <b>Цена урока</b>\n\nВведите новую цену в рублях:")
	// HandleSetNotes запрашивает текст примечания
	HandleSetNotes = prompt(keyboard.SetNotes, state.StateBalanceNotes,
		"📝 <b>Примечание</b>\n\nВведите текст примечания. Отправьте «-», чтобы очистить:")
	// HandleManualLesson запрашивает дату и время ручного занятия
	HandleManualLesson = prompt(keyboard.ManualLesson, state.StateManualLesson,
		"📌 <b>Добавить занятие</b>\n\nВведите дату и время в формате <code>ДД.ММ.ГГГГ ЧЧ:00</code>, например <code>21.10.2026 15:00</code>.\n"+
			"Баланс при этом не списывается.")
)

// HandleChargeLesson списывает одно занятие вручную
func HandleChargeLesson(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithStudentID(ctx, b, callback, h, parser(keyboard.ChargeLesson), func(hc *common.HandlerContext, studentID int64) {
		_, payment, err := h.BalanceService.ChargeLesson(ctx, hc.TelegramID, studentID)
		if err != nil {
			hc.Fail("Failed to charge lesson", err)
			return
		}
		hc.Answer("Занятие списано")
		ShowStudentCard(hc, studentID, fmt.Sprintf("➖ Списано: %s\n\n", html.EscapeString(payment)))
	})
}

// HandleStats статистика ученика
func HandleStats(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithStudentID(ctx, b, callback, h, parser(keyboard.Stats), func(hc *common.HandlerContext, studentID int64) {
		stats, err := h.BalanceService.Statistics(ctx, hc.TelegramID, studentID)
		if err != nil {
			hc.Fail("Failed to load statistics", err)
			return
		}
		profile, err := h.UserService.Profile(ctx, studentID)
		if err != nil {
			hc.Fail("Failed to load profile", err)
			return
		}
		hc.Answer("")

		text := fmt.Sprintf(
			"📊 <b>Статистика: %s</b>\n\n"+
				"Всего занятий: %d\nПроведено: %d\nПредстоит: %d\nДобавлено вручную: %d\n\n"+
				"Оплачено уроков за всё время: %d\nУроков осталось: %d шт.\nБаланс: %s",
			html.EscapeString(profile.DisplayName()),
			stats.TotalLessons, stats.Completed, stats.Upcoming, stats.ManualLessons,
			stats.TotalPaidCount, stats.Account.LessonsLeft, formatting.FormatBalance(stats.Account.Balance),
		)
		hc.Show(text, keyboard.BackToStudent(studentID))
	})
}
