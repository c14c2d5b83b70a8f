package handlers

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/UrikezZ/52HZSchoolBot/internal/controller/callbacks/common"
	"github.com/UrikezZ/52HZSchoolBot/internal/controller/keyboard"
	"github.com/UrikezZ/52HZSchoolBot/internal/controller/state"
	"github.com/UrikezZ/52HZSchoolBot/internal/formatting"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// HandleStart регистрирует пользователя и показывает меню.
// Ученик без анкеты сразу попадает в диалог анкеты.
func (h *Handlers) HandleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	from := update.Message.From
	chatID := update.Message.Chat.ID
	h.stateManager.ClearState(from.ID)

	user, _, err := h.userService.Register(ctx, from.ID)
	if err != nil {
		h.logger.Error("Failed to register user", zap.Int64("telegram_id", from.ID), zap.Error(err))
		h.sendError(ctx, b, chatID, "❌ Произошла ошибка при регистрации. Попробуйте позже.")
		return
	}

	firstName := html.EscapeString(from.FirstName)
	isTeacher := h.userService.IsTeacher(from.ID)

	switch {
	case isTeacher:
		h.sendMessage(ctx, b, chatID, fmt.Sprintf("👨‍🏫 Добро пожаловать, %s!\nРады видеть вас в панели преподавателя!", firstName), nil)
	case strings.TrimSpace(user.FullName) == "":
		h.stateManager.SetState(from.ID, state.StateProfileName)
		h.sendMessage(ctx, b, chatID, fmt.Sprintf(
			"🎵 Привет, %s!\nДобро пожаловать в музыкальную школу!\n\n"+
				"📝 <b>Для начала заполните анкету.</b>\n\nВведите ваше ФИО:", firstName), nil)
		return
	default:
		h.sendMessage(ctx, b, chatID, fmt.Sprintf("🎵 С возвращением, %s!\nРады видеть вас снова в музыкальной школе!", firstName), nil)
	}

	text, kb := common.MainMenu(isTeacher)
	h.sendMessage(ctx, b, chatID, text, kb)
}

// HandleMenu показывает главное меню
func (h *Handlers) HandleMenu(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	h.stateManager.ClearState(update.Message.From.ID)
	text, kb := common.MainMenu(h.userService.IsTeacher(update.Message.From.ID))
	h.sendMessage(ctx, b, update.Message.Chat.ID, text, kb)
}

// HandleHelp обрабатывает команду /help
func (h *Handlers) HandleHelp(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	var helpText string
	if h.userService.IsTeacher(update.Message.From.ID) {
		helpText = "👨‍🏫 <b>Панель преподавателя</b>\n\n" +
			"/menu - главное меню\n" +
			"/requests - заявки учеников\n" +
			"/students - ученики, баланс и занятия\n" +
			"/clearrequests - очистить все заявки\n" +
			"/cancel - отменить ввод\n\n" +
			"Заявки приходят сообщением с кнопками: отметьте подходящие слоты и нажмите «Подтвердить отмеченные». " +
			"Занятия списываются с баланса ученика автоматически."
	} else {
		helpText = "🎹 <b>Панель студента</b>\n\n" +
			"/menu - главное меню\n" +
			"/mylessons - мои занятия\n" +
			"/balance - мой баланс\n" +
			"/cancel - отменить ввод\n\n" +
			"Чтобы записаться, откройте «📅 Выбрать расписание», отметьте удобные часы на следующей неделе " +
			"и отправьте заявку. Преподаватель подтвердит подходящие слоты.\n\n" +
			"ℹ️ Бесплатная отмена урока доступна не позже 10:00 предыдущего дня."
	}

	h.sendMessage(ctx, b, update.Message.Chat.ID, helpText, nil)
}

// HandleCancel обрабатывает команду /cancel - отмена текущего диалога
func (h *Handlers) HandleCancel(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	telegramID := update.Message.From.ID
	if h.stateManager.GetState(telegramID) == state.StateNone {
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ Нет активных операций для отмены.")
		return
	}

	h.stateManager.ClearState(telegramID)
	text, kb := common.MainMenu(h.userService.IsTeacher(telegramID))
	h.sendMessage(ctx, b, update.Message.Chat.ID, "✅ Операция отменена.\n\n"+text, kb)
}

// HandleMyLessons занятия ученика
func (h *Handlers) HandleMyLessons(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	lessons, err := h.lessonService.ListForStudent(ctx, update.Message.From.ID)
	if err != nil {
		h.logger.Error("Failed to list lessons", zap.Int64("student_id", update.Message.From.ID), zap.Error(err))
		h.sendError(ctx, b, update.Message.Chat.ID, common.ErrorMessage(err))
		return
	}

	labels := make([]string, 0, len(lessons))
	for _, l := range lessons {
		labels = append(labels, l.SlotLabel)
	}
	h.sendMessage(ctx, b, update.Message.Chat.ID, formatting.LessonList("📚 <b>Ваши занятия</b>", labels), keyboard.BackToMenu())
}

// HandleBalance баланс ученика
func (h *Handlers) HandleBalance(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	studentID := update.Message.From.ID
	acc, err := h.balanceService.Get(ctx, studentID)
	if err != nil {
		h.logger.Error("Failed to load balance", zap.Int64("student_id", studentID), zap.Error(err))
		h.sendError(ctx, b, update.Message.Chat.ID, common.ErrorMessage(err))
		return
	}
	profile, err := h.userService.Profile(ctx, studentID)
	if err != nil {
		h.logger.Error("Failed to load profile", zap.Int64("student_id", studentID), zap.Error(err))
		h.sendError(ctx, b, update.Message.Chat.ID, common.ErrorMessage(err))
		return
	}
	h.sendMessage(ctx, b, update.Message.Chat.ID, formatting.BalanceCard(profile.DisplayName(), acc), keyboard.BackToMenu())
}

// HandleRequests список заявок для преподавателя
func (h *Handlers) HandleRequests(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || !h.requireTeacher(ctx, b, update) {
		return
	}

	requests, err := h.requestService.ListAll(ctx)
	if err != nil {
		h.logger.Error("Failed to list requests", zap.Error(err))
		h.sendError(ctx, b, update.Message.Chat.ID, common.ErrorMessage(err))
		return
	}
	if len(requests) == 0 {
		h.sendMessage(ctx, b, update.Message.Chat.ID, "📨 Заявок нет.", keyboard.BackToMenu())
		return
	}

	names := make(map[int64]string, len(requests))
	for _, r := range requests {
		if profile, err := h.userService.Profile(ctx, r.StudentID); err == nil {
			names[r.StudentID] = profile.DisplayName()
		}
	}
	text := fmt.Sprintf("📨 <b>%d %s</b>\n\nВыберите заявку для разбора:", len(requests), formatting.PluralizeRequests(len(requests)))
	h.sendMessage(ctx, b, update.Message.Chat.ID, text, keyboard.RequestList(requests, names))
}

// HandleStudents список учеников для преподавателя
func (h *Handlers) HandleStudents(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || !h.requireTeacher(ctx, b, update) {
		return
	}

	students, err := h.userService.Students(ctx)
	if err != nil {
		h.logger.Error("Failed to list students", zap.Error(err))
		h.sendError(ctx, b, update.Message.Chat.ID, common.ErrorMessage(err))
		return
	}
	if len(students) == 0 {
		h.sendMessage(ctx, b, update.Message.Chat.ID, "👥 Учеников пока нет.", keyboard.BackToMenu())
		return
	}
	h.sendMessage(ctx, b, update.Message.Chat.ID,
		fmt.Sprintf("👥 <b>Ученики (%d)</b>\n\nВыберите ученика:", len(students)), keyboard.StudentList(students))
}

// HandleClearRequests спрашивает подтверждение очистки всех заявок
func (h *Handlers) HandleClearRequests(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || !h.requireTeacher(ctx, b, update) {
		return
	}
	h.sendMessage(ctx, b, update.Message.Chat.ID,
		"🧹 <b>Удалить все заявки учеников?</b>\n\nПодтверждённые занятия не затрагиваются.", keyboard.ConfirmClearRequests())
}
