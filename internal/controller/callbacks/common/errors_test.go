package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/UrikezZ/52HZSchoolBot/internal/service"
	"github.com/stretchr/testify/assert"
)

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"access denied", service.ErrAccessDenied, "❌ Эта функция доступна только преподавателю"},
		{"not a teacher", ErrNotATeacher, "❌ Эта функция доступна только преподавателю"},
		{"slot taken wrapped", fmt.Errorf("manual add: %w", service.ErrSlotTaken), "❌ Этот слот уже занят"},
		{"nothing confirmed", service.ErrNothingConfirmed, "❌ Ни один слот не подтверждён"},
		{"not found", service.ErrNotFound, "❌ Не найдено. Возможно, данные уже изменились"},
		{"validation", fmt.Errorf("%w: bad", service.ErrValidation), "❌ Некорректные данные"},
		{"unknown", errors.New("db down"), "❌ Произошла ошибка"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ErrorMessage(tt.err))
		})
	}
}

func TestIsMessageNotModifiedError(t *testing.T) {
	assert.False(t, IsMessageNotModifiedError(nil))
	assert.True(t, IsMessageNotModifiedError(errors.New("bad request, Bad Request: message is not modified: specified new message content")))
	assert.False(t, IsMessageNotModifiedError(errors.New("chat not found")))
}
