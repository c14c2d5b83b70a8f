package common

import (
	"bytes"
	"context"

	"github.com/UrikezZ/52HZSchoolBot/internal/controller/callbacks/callbacktypes"
	"github.com/UrikezZ/52HZSchoolBot/internal/controller/state"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// HandlerContext содержит общие данные для обработки callback
// Это избавляет от дублирования кода получения пользователя, сообщения и т.д.
type HandlerContext struct {
	Ctx        context.Context
	Bot        *bot.Bot
	Callback   *models.CallbackQuery
	Handler    *callbacktypes.Handler
	Message    *models.Message
	TelegramID int64
	ChatID     int64
}

// NewHandlerContext создаёт новый контекст обработчика
func NewHandlerContext(
	ctx context.Context,
	b *bot.Bot,
	callback *models.CallbackQuery,
	h *callbacktypes.Handler,
) *HandlerContext {
	msg := GetMessageFromCallback(callback)
	chatID := callback.From.ID
	if msg != nil {
		chatID = msg.Chat.ID
	}

	return &HandlerContext{
		Ctx:        ctx,
		Bot:        b,
		Callback:   callback,
		Handler:    h,
		Message:    msg,
		TelegramID: callback.From.ID,
		ChatID:     chatID,
	}
}

// RequireTeacher проверяет что пользователь в списке преподавателей
func (hc *HandlerContext) RequireTeacher() error {
	if !hc.Handler.UserService.IsTeacher(hc.TelegramID) {
		return ErrNotATeacher
	}
	return nil
}

// Answer отвечает на callback query
func (hc *HandlerContext) Answer(text string) {
	AnswerCallback(hc.Ctx, hc.Bot, hc.Callback.ID, text)
}

// AnswerAlert отвечает на callback query с alert
func (hc *HandlerContext) AnswerAlert(text string) {
	AnswerCallbackAlert(hc.Ctx, hc.Bot, hc.Callback.ID, text)
}

// Fail логирует ошибку и показывает пользователю понятное сообщение
func (hc *HandlerContext) Fail(msg string, err error) {
	hc.Handler.Logger.Error(msg,
		zap.Int64("telegram_id", hc.TelegramID),
		zap.String("data", hc.Callback.Data),
		zap.Error(err))
	hc.AnswerAlert(ErrorMessage(err))
}

// EditMessage редактирует сообщение
func (hc *HandlerContext) EditMessage(text string, keyboard *models.InlineKeyboardMarkup) error {
	if hc.Message == nil {
		return ErrNoMessage
	}

	params := &bot.EditMessageTextParams{
		ChatID:    hc.ChatID,
		MessageID: hc.Message.ID,
		Text:      text,
		ParseMode: models.ParseModeHTML,
	}
	if keyboard != nil {
		params.ReplyMarkup = keyboard
	}
	_, err := hc.Bot.EditMessageText(hc.Ctx, params)

	// Игнорируем ошибку "message is not modified" - это не настоящая ошибка
	if IsMessageNotModifiedError(err) {
		return nil
	}

	return err
}

// EditKeyboard меняет только клавиатуру сообщения
func (hc *HandlerContext) EditKeyboard(keyboard *models.InlineKeyboardMarkup) error {
	if hc.Message == nil {
		return ErrNoMessage
	}

	_, err := hc.Bot.EditMessageReplyMarkup(hc.Ctx, &bot.EditMessageReplyMarkupParams{
		ChatID:      hc.ChatID,
		MessageID:   hc.Message.ID,
		ReplyMarkup: keyboard,
	})
	if IsMessageNotModifiedError(err) {
		return nil
	}
	return err
}

// Show редактирует сообщение, а если не вышло, отправляет новое
func (hc *HandlerContext) Show(text string, keyboard *models.InlineKeyboardMarkup) {
	if err := hc.EditMessage(text, keyboard); err != nil {
		hc.Handler.Logger.Debug("Edit failed, sending new message", zap.Error(err))
		if err := hc.SendMessage(text, keyboard); err != nil {
			hc.Handler.Logger.Error("Failed to send message",
				zap.Int64("chat_id", hc.ChatID),
				zap.Error(err))
		}
	}
}

// SendMessage отправляет новое сообщение
func (hc *HandlerContext) SendMessage(text string, keyboard *models.InlineKeyboardMarkup) error {
	params := &bot.SendMessageParams{
		ChatID:    hc.ChatID,
		Text:      text,
		ParseMode: models.ParseModeHTML,
	}
	if keyboard != nil {
		params.ReplyMarkup = keyboard
	}
	_, err := hc.Bot.SendMessage(hc.Ctx, params)

	return err
}

// SendPhoto отправляет PNG с подписью
func (hc *HandlerContext) SendPhoto(filename string, data []byte, caption string) error {
	_, err := hc.Bot.SendPhoto(hc.Ctx, &bot.SendPhotoParams{
		ChatID: hc.ChatID,
		Photo: &models.InputFileUpload{
			Filename: filename,
			Data:     bytes.NewReader(data),
		},
		Caption:   caption,
		ParseMode: models.ParseModeHTML,
	})
	return err
}

// ClearState очищает состояние пользователя
func (hc *HandlerContext) ClearState() {
	hc.Handler.StateManager.ClearState(hc.TelegramID)
}

// SetState устанавливает состояние пользователя
func (hc *HandlerContext) SetState(s state.UserState) {
	hc.Handler.StateManager.SetState(hc.TelegramID, s)
}

// SetData устанавливает данные в state
func (hc *HandlerContext) SetData(key string, value interface{}) {
	hc.Handler.StateManager.SetData(hc.TelegramID, key, value)
}

// GetData получает данные из state
func (hc *HandlerContext) GetData(key string) (interface{}, bool) {
	return hc.Handler.StateManager.GetData(hc.TelegramID, key)
}
