package common

import (
	"errors"
	"strings"

	"github.com/UrikezZ/52HZSchoolBot/internal/service"
)

// Общие ошибки для обработчиков
var (
	ErrNotATeacher   = errors.New("user is not a teacher")
	ErrNoMessage     = errors.New("no message in callback")
	ErrInvalidFormat = errors.New("invalid callback format")
)

// ErrorMessage возвращает пользовательское сообщение для ошибки
func ErrorMessage(err error) string {
	switch {
	case errors.Is(err, ErrNotATeacher), errors.Is(err, service.ErrAccessDenied):
		return "❌ Эта функция доступна только преподавателю"
	case errors.Is(err, service.ErrSlotTaken):
		return "❌ Этот слот уже занят"
	case errors.Is(err, service.ErrNothingConfirmed):
		return "❌ Ни один слот не подтверждён"
	case errors.Is(err, service.ErrNotFound):
		return "❌ Не найдено. Возможно, данные уже изменились"
	case errors.Is(err, service.ErrValidation):
		return "❌ Некорректные данные"
	case errors.Is(err, ErrNoMessage):
		return "❌ Ошибка обработки сообщения"
	case errors.Is(err, ErrInvalidFormat):
		return "❌ Неверный формат данных"
	default:
		return "❌ Произошла ошибка"
	}
}

// IsMessageNotModifiedError Telegram отвечает так, если текст и клавиатура не изменились
func IsMessageNotModifiedError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "message is not modified")
}
