package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/UrikezZ/52HZSchoolBot/internal/controller/callbacks/common"
	"github.com/UrikezZ/52HZSchoolBot/internal/controller/keyboard"
	"github.com/UrikezZ/52HZSchoolBot/internal/controller/state"
	"github.com/UrikezZ/52HZSchoolBot/internal/formatting"
	"github.com/UrikezZ/52HZSchoolBot/internal/model"
	"github.com/UrikezZ/52HZSchoolBot/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// HandleTextMessage обрабатывает текстовые сообщения в зависимости от состояния пользователя
func (h *Handlers) HandleTextMessage(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.Text == "" {
		return
	}

	// Игнорируем команды (они обрабатываются другими handlers)
	if strings.HasPrefix(update.Message.Text, "/") {
		return
	}

	telegramID := update.Message.From.ID
	currentState := h.stateManager.GetState(telegramID)

	h.logger.Debug("HandleTextMessage called",
		zap.Int64("telegram_id", telegramID),
		zap.String("state", string(currentState)))

	switch currentState {
	case state.StateNone:
		h.sendError(ctx, b, update.Message.Chat.ID, "Не понимаю сообщение. Откройте меню: /menu")
	case state.StateProfileName:
		h.handleProfileName(ctx, b, update)
	case state.StateProfileBirthdate:
		h.handleProfileBirthdate(ctx, b, update)
	case state.StateProfileInstruments:
		h.handleProfileInstruments(ctx, b, update)
	case state.StateProfileGoals:
		h.handleProfileGoals(ctx, b, update)
	case state.StateBalanceLessons, state.StateBalanceDeposit, state.StateBalancePrice, state.StateBalanceNotes:
		h.handleBalanceInput(ctx, b, update, currentState)
	case state.StateManualLesson:
		h.handleManualLesson(ctx, b, update)
	default:
		h.logger.Warn("Unknown state", zap.String("state", string(currentState)))
		h.stateManager.ClearState(telegramID)
	}
}

func (h *Handlers) handleProfileName(ctx context.Context, b *bot.Bot, update *models.Update) {
	telegramID := update.Message.From.ID
	name := strings.Join(strings.Fields(update.Message.Text), " ")

	if n := utf8.RuneCountInString(name); n < FullNameMinLength || n > FullNameMaxLength {
		h.sendError(ctx, b, update.Message.Chat.ID,
			fmt.Sprintf("❌ ФИО должно быть от %d до %d символов.\n\nПопробуйте ещё раз:", FullNameMinLength, FullNameMaxLength))
		return
	}

	h.stateManager.SetData(telegramID, state.KeyFullName, name)
	h.stateManager.SetState(telegramID, state.StateProfileBirthdate)
	h.sendMessage(ctx, b, update.Message.Chat.ID,
		"📅 Введите дату рождения в формате ДД.ММ.ГГГГ (например: 15.06.2004)\n\nИли отправьте «-», чтобы не указывать", nil)
}

func (h *Handlers) handleProfileBirthdate(ctx context.Context, b *bot.Bot, update *models.Update) {
	telegramID := update.Message.From.ID

	birthdate, err := parseBirthdate(update.Message.Text, time.Now().In(h.location))
	if err != nil {
		h.sendError(ctx, b, update.Message.Chat.ID,
			"❌ Неверный формат даты!\nВведите дату в формате ДД.ММ.ГГГГ (например: 15.06.2004) или «-»:")
		return
	}

	h.stateManager.SetData(telegramID, state.KeyBirthdate, birthdate)
	h.stateManager.SetState(telegramID, state.StateProfileInstruments)
	h.sendMessage(ctx, b, update.Message.Chat.ID,
		"🎸 На каких инструментах вы хотите заниматься?\n\nПеречислите через запятую, например: <i>гитара, вокал</i>", nil)
}

func (h *Handlers) handleProfileInstruments(ctx context.Context, b *bot.Bot, update *models.Update) {
	telegramID := update.Message.From.ID
	instruments := splitInstruments(update.Message.Text)
	if len(instruments) == 0 {
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ Укажите хотя бы один инструмент:")
		return
	}

	h.stateManager.SetData(telegramID, state.KeyInstruments, instruments)
	h.stateManager.SetState(telegramID, state.StateProfileGoals)
	h.sendMessage(ctx, b, update.Message.Chat.ID,
		"🎯 Расскажите о целях обучения (например: <i>научиться играть любимые песни</i>)\n\nИли отправьте «-», чтобы не указывать", nil)
}

func (h *Handlers) handleProfileGoals(ctx context.Context, b *bot.Bot, update *models.Update) {
	telegramID := update.Message.From.ID

	goals := strings.TrimSpace(update.Message.Text)
	if isSkip(goals) {
		goals = ""
	}
	if utf8.RuneCountInString(goals) > GoalsMaxLength {
		h.sendError(ctx, b, update.Message.Chat.ID,
			fmt.Sprintf("❌ Не больше %d символов. Попробуйте ещё раз:", GoalsMaxLength))
		return
	}

	input := service.ProfileInput{
		FullName:  h.stringData(telegramID, state.KeyFullName),
		Birthdate: h.stringData(telegramID, state.KeyBirthdate),
		Goals:     goals,
	}
	if value, ok := h.stateManager.GetData(telegramID, state.KeyInstruments); ok {
		input.Instruments, _ = value.([]string)
	}

	user, err := h.userService.SaveProfile(ctx, telegramID, input)
	if errors.Is(err, service.ErrValidation) {
		h.stateManager.SetState(telegramID, state.StateProfileName)
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ ФИО не указано. Введите ваше ФИО:")
		return
	}
	if err != nil {
		h.logger.Error("Failed to save profile", zap.Int64("telegram_id", telegramID), zap.Error(err))
		h.sendError(ctx, b, update.Message.Chat.ID, common.ErrorMessage(err))
		return
	}

	h.stateManager.ClearState(telegramID)
	text, kb := common.MainMenu(false)
	h.sendMessage(ctx, b, update.Message.Chat.ID,
		"✅ <b>Анкета сохранена</b>\n\n"+formatting.ProfileCard(user)+"\n"+text, kb)
}

func (h *Handlers) stringData(telegramID int64, key string) string {
	value, _ := h.stateManager.GetData(telegramID, key)
	s, _ := value.(string)
	return s
}

// handleBalanceInput ввод значения для счёта ученика. При ошибке ввода состояние
// сохраняется, и преподаватель может попробовать ещё раз.
func (h *Handlers) handleBalanceInput(ctx context.Context, b *bot.Bot, update *models.Update, st state.UserState) {
	teacherID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	studentID, ok := h.stateManager.GetInt64(teacherID, state.KeyStudentID)
	if !ok {
		h.stateManager.ClearState(teacherID)
		h.sendError(ctx, b, chatID, "❌ Ученик не выбран. Откройте /students")
		return
	}

	var (
		acc  *model.BalanceAccount
		done string
		err  error
	)
	text := strings.TrimSpace(update.Message.Text)

	switch st {
	case state.StateBalanceLessons:
		var n int64
		if n, err = parsePositive(text, MaxLessonsCredit); err == nil {
			acc, err = h.balanceService.CreditLessons(ctx, teacherID, studentID, int(n))
			done = fmt.Sprintf("✅ Добавлено уроков: %d", n)
		}
	case state.StateBalanceDeposit:
		var amount int64
		if amount, err = parsePositive(text, MaxAmount); err == nil {
			acc, err = h.balanceService.CreditDeposit(ctx, teacherID, studentID, amount)
			done = "✅ Депозит пополнен на " + formatting.FormatMoney(amount)
		}
	case state.StateBalancePrice:
		var price int64
		if price, err = parsePositive(text, MaxAmount); err == nil {
			acc, err = h.balanceService.SetPrice(ctx, teacherID, studentID, price)
			done = "✅ Новая цена урока: " + formatting.FormatMoney(price)
		}
	case state.StateBalanceNotes:
		if text == "-" {
			text = ""
		}
		if utf8.RuneCountInString(text) > NotesMaxLength {
			err = fmt.Errorf("%w: notes too long", service.ErrValidation)
			break
		}
		acc, err = h.balanceService.SetNotes(ctx, teacherID, studentID, text)
		done = "✅ Примечание сохранено"
	}

	if err != nil {
		h.logger.Warn("Balance input rejected",
			zap.Int64("teacher_id", teacherID),
			zap.Int64("student_id", studentID),
			zap.String("state", string(st)),
			zap.Error(err))
		if errors.Is(err, service.ErrAccessDenied) {
			h.stateManager.ClearState(teacherID)
			h.sendError(ctx, b, chatID, common.ErrorMessage(err))
			return
		}
		h.sendError(ctx, b, chatID, "❌ Некорректное значение. Введите положительное число или /cancel")
		return
	}

	h.stateManager.ClearState(teacherID)
	profile, perr := h.userService.Profile(ctx, studentID)
	if perr != nil {
		profile = &model.User{ID: studentID}
	}
	h.sendMessage(ctx, b, chatID, done+"\n\n"+formatting.BalanceCard(profile.DisplayName(), acc), keyboard.StudentActions(studentID))
}

func (h *Handlers) handleManualLesson(ctx context.Context, b *bot.Bot, update *models.Update) {
	teacherID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	studentID, ok := h.stateManager.GetInt64(teacherID, state.KeyStudentID)
	if !ok {
		h.stateManager.ClearState(teacherID)
		h.sendError(ctx, b, chatID, "❌ Ученик не выбран. Откройте /students")
		return
	}

	startsAt, err := parseLessonTime(update.Message.Text, h.location)
	if err != nil {
		h.sendError(ctx, b, chatID, "❌ Неверный формат. Введите дату и время как 21.10.2026 15:00 или /cancel")
		return
	}

	lesson, err := h.confirmationService.ManualAdd(ctx, teacherID, studentID, startsAt)
	switch {
	case errors.Is(err, service.ErrSlotTaken):
		h.sendError(ctx, b, chatID, "❌ Это время уже занято. Введите другое время или /cancel")
		return
	case errors.Is(err, service.ErrValidation):
		h.sendError(ctx, b, chatID, "❌ Занятие должно начинаться ровно в начале часа и быть в будущем. Попробуйте ещё раз или /cancel")
		return
	case err != nil:
		h.stateManager.ClearState(teacherID)
		h.logger.Error("Failed to add manual lesson", zap.Int64("student_id", studentID), zap.Error(err))
		h.sendError(ctx, b, chatID, common.ErrorMessage(err))
		return
	}

	h.stateManager.ClearState(teacherID)
	profile, err := h.userService.Profile(ctx, studentID)
	if err != nil {
		profile = &model.User{ID: studentID}
	}
	h.sendMessage(ctx, b, chatID, formatting.ManualLessonForTeacher(profile.DisplayName(), lesson.SlotLabel), keyboard.BackToStudent(studentID))
}
