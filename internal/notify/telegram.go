// Package notify доставляет сообщения ученикам и преподавателям через Telegram.
package notify

import (
	"context"
	"fmt"

	"github.com/UrikezZ/52HZSchoolBot/internal/controller/keyboard"
	"github.com/UrikezZ/52HZSchoolBot/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// Sender часть API бота, нужная для отправки сообщений
type Sender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
}

// Telegram отправляет уведомления в личные чаты. Chat ID совпадает с Telegram ID.
type Telegram struct {
	sender Sender
}

func NewTelegram(sender Sender) *Telegram {
	return &Telegram{sender: sender}
}

// Notify отправляет HTML-сообщение
func (t *Telegram) Notify(ctx context.Context, chatID int64, text string) error {
	_, err := t.sender.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      text,
		ParseMode: models.ParseModeHTML,
	})
	if err != nil {
		return fmt.Errorf("send message to %d: %w", chatID, err)
	}
	return nil
}

// NotifyReview отправляет преподавателю заявку с клавиатурой разбора
func (t *Telegram) NotifyReview(ctx context.Context, teacherID, studentID int64, text string, candidates []service.Candidate) error {
	_, err := t.sender.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      teacherID,
		Text:        text,
		ParseMode:   models.ParseModeHTML,
		ReplyMarkup: keyboard.Review(studentID, candidates, nil),
	})
	if err != nil {
		return fmt.Errorf("send review to %d: %w", teacherID, err)
	}
	return nil
}

var _ service.Notifier = (*Telegram)(nil)
