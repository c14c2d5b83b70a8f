package service

import (
	"context"
	"slices"
	"time"

	"go.uber.org/zap"
)

// Clock источник текущего времени, в тестах подменяется
type Clock func() time.Time

// Settings параметры школы, общие для сервисов
type Settings struct {
	DefaultLessonPrice int64
	SchoolAddress      string
	Location           *time.Location
	// RetentionWeeks аргумент sweepOlderThan для еженедельной очистки
	RetentionWeeks int
}

func (s Settings) location() *time.Location {
	if s.Location == nil {
		return time.UTC
	}
	return s.Location
}

// Authorizer проверка преподавателя
type Authorizer interface {
	IsTeacher(userID int64) bool
	TeacherIDs() []int64
}

// TeacherAllowList фиксированный список преподавателей
type TeacherAllowList struct {
	ids []int64
}

func NewTeacherAllowList(ids []int64) *TeacherAllowList {
	return &TeacherAllowList{ids: slices.Clone(ids)}
}

func (a *TeacherAllowList) IsTeacher(userID int64) bool {
	return slices.Contains(a.ids, userID)
}

func (a *TeacherAllowList) TeacherIDs() []int64 {
	return slices.Clone(a.ids)
}

func requireTeacher(auth Authorizer, userID int64) error {
	if !auth.IsTeacher(userID) {
		return ErrAccessDenied
	}
	return nil
}

// Candidate слот заявки с подписью для показа преподавателю
type Candidate struct {
	SlotID string
	Label  string
}

// Notifier доставка сообщений в чат. Ошибки доставки не откатывают изменений.
type Notifier interface {
	Notify(ctx context.Context, chatID int64, text string) error
	// NotifyReview отправляет преподавателю заявку с клавиатурой отметки слотов
	NotifyReview(ctx context.Context, teacherID, studentID int64, text string, candidates []Candidate) error
}

func deliver(ctx context.Context, notifier Notifier, logger *zap.Logger, chatID int64, text string) bool {
	if notifier == nil {
		return false
	}
	if err := notifier.Notify(ctx, chatID, text); err != nil {
		logger.Warn("Notification delivery failed",
			zap.Int64("chat_id", chatID),
			zap.Error(err),
		)
		return false
	}
	return true
}

func notifyTeachers(ctx context.Context, auth Authorizer, notifier Notifier, logger *zap.Logger, text string) {
	for _, teacherID := range auth.TeacherIDs() {
		deliver(ctx, notifier, logger, teacherID, text)
	}
}
