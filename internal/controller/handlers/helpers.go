package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// Ограничения ввода
const (
	FullNameMinLength = 2
	FullNameMaxLength = 100
	NotesMaxLength    = 1000
	GoalsMaxLength    = 500
	MaxLessonsCredit  = 100
	MaxAmount         = 1_000_000
)

// requireTeacher проверяет что пользователь в списке преподавателей
func (h *Handlers) requireTeacher(ctx context.Context, b *bot.Bot, update *models.Update) bool {
	if h.userService.IsTeacher(update.Message.From.ID) {
		return true
	}
	h.sendError(ctx, b, update.Message.Chat.ID, "❌ Эта команда доступна только преподавателю.")
	return false
}

// sendError отправляет сообщение об ошибке и логирует если не удалось
func (h *Handlers) sendError(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	if err != nil {
		h.logger.Error("Failed to send error message",
			zap.Int64("chat_id", chatID),
			zap.String("text", text),
			zap.Error(err),
		)
	}
}

// sendMessage отправляет HTML-сообщение и логирует если не удалось
func (h *Handlers) sendMessage(ctx context.Context, b *bot.Bot, chatID int64, text string, keyboard *models.InlineKeyboardMarkup) {
	params := &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      text,
		ParseMode: models.ParseModeHTML,
	}
	if keyboard != nil {
		params.ReplyMarkup = keyboard
	}
	if _, err := b.SendMessage(ctx, params); err != nil {
		h.logger.Error("Failed to send message",
			zap.Int64("chat_id", chatID),
			zap.Error(err),
		)
	}
}

// parsePositive разбирает положительное целое: "2 000 ₽" -> 2000
func parsePositive(text string, max int64) (int64, error) {
	cleaned := strings.NewReplacer(" ", "", "\u00a0", "", "₽", "", "руб.", "", "руб", "", "р.", "").Replace(strings.ToLower(text))
	n, err := strconv.ParseInt(cleaned, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", text)
	}
	if n <= 0 || n > max {
		return 0, fmt.Errorf("value %d out of range 1..%d", n, max)
	}
	return n, nil
}

// parseLessonTime разбирает "ДД.ММ.ГГГГ ЧЧ:ММ" в часовом поясе школы
func parseLessonTime(text string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation("02.01.2006 15:04", strings.Join(strings.Fields(text), " "), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid lesson time %q: %w", text, err)
	}
	return t, nil
}

// splitInstruments "гитара, вокал" -> [гитара вокал]
func splitInstruments(text string) []string {
	var result []string
	for _, part := range strings.FieldsFunc(text, func(r rune) bool { return r == ',' || r == ';' || r == '\n' }) {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}

// isSkip ответ "не указывать" в необязательных шагах анкеты
func isSkip(text string) bool {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "-", "—", "не указывать", "нет":
		return true
	}
	return false
}

// parseBirthdate проверяет дату рождения ДД.ММ.ГГГГ. Пропуск даёт пустую строку.
func parseBirthdate(text string, now time.Time) (string, error) {
	text = strings.TrimSpace(text)
	if isSkip(text) {
		return "", nil
	}
	t, err := time.Parse("02.01.2006", text)
	if err != nil {
		return "", fmt.Errorf("invalid birthdate %q: %w", text, err)
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if t.Year() < 1900 || t.After(today) {
		return "", fmt.Errorf("birthdate %q out of range", text)
	}
	return t.Format("02.01.2006"), nil
}
