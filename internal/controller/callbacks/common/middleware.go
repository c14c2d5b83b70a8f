package common

import (
	"context"

	"github.com/UrikezZ/52HZSchoolBot/internal/controller/callbacks/callbacktypes"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// WithContext создаёт HandlerContext и передаёт его в handler
func WithContext(
	ctx context.Context,
	b *bot.Bot,
	callback *models.CallbackQuery,
	h *callbacktypes.Handler,
	handler func(*HandlerContext),
) {
	handler(NewHandlerContext(ctx, b, callback, h))
}

// WithTeacher создаёт HandlerContext и проверяет что пользователь - преподаватель
// При ошибке автоматически отвечает пользователю
func WithTeacher(
	ctx context.Context,
	b *bot.Bot,
	callback *models.CallbackQuery,
	h *callbacktypes.Handler,
	handler func(*HandlerContext),
) {
	hc := NewHandlerContext(ctx, b, callback, h)

	if err := hc.RequireTeacher(); err != nil {
		h.Logger.Warn("Teacher check failed",
			zap.Int64("telegram_id", hc.TelegramID),
			zap.String("data", callback.Data),
			zap.Error(err))
		hc.AnswerAlert(ErrorMessage(err))
		return
	}

	handler(hc)
}

// WithStudentID как WithTeacher, но ещё разбирает id ученика из callback data
func WithStudentID(
	ctx context.Context,
	b *bot.Bot,
	callback *models.CallbackQuery,
	h *callbacktypes.Handler,
	parse func(data string) (int64, error),
	handler func(*HandlerContext, int64),
) {
	WithTeacher(ctx, b, callback, h, func(hc *HandlerContext) {
		studentID, err := parse(callback.Data)
		if err != nil {
			hc.Fail("Failed to parse student id", ErrInvalidFormat)
			return
		}
		handler(hc, studentID)
	})
}
