package service

import (
	"errors"
	"fmt"

	"github.com/UrikezZ/52HZSchoolBot/internal/repository"
)

var (
	// ErrValidation некорректный ввод: число, дата, неизвестный слот
	ErrValidation = errors.New("validation failed")
	// ErrSlotTaken слот уже занят подтверждённым занятием
	ErrSlotTaken = repository.ErrSlotTaken
	// ErrNotFound нет занятия, заявки или ученика
	ErrNotFound = repository.ErrNotFound
	// ErrAccessDenied операция только для преподавателя
	ErrAccessDenied = errors.New("access denied")
	// ErrNothingConfirmed в пакете не подтвердился ни один слот
	ErrNothingConfirmed = errors.New("no slots were confirmed")
)

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
