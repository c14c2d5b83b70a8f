package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/UrikezZ/52HZSchoolBot/internal/formatting"
	"github.com/UrikezZ/52HZSchoolBot/internal/repository"
	"github.com/UrikezZ/52HZSchoolBot/internal/schedule"
	"go.uber.org/zap"
)

// ReminderService напоминания о завтрашних занятиях
type ReminderService struct {
	store    repository.Store
	auth     Authorizer
	notifier Notifier
	settings Settings
	clock    Clock
	logger   *zap.Logger
}

func NewReminderService(
	store repository.Store,
	auth Authorizer,
	notifier Notifier,
	settings Settings,
	clock Clock,
	logger *zap.Logger,
) *ReminderService {
	return &ReminderService{
		store:    store,
		auth:     auth,
		notifier: notifier,
		settings: settings,
		clock:    clock,
		logger:   logger,
	}
}

// SendDueReminders отправляет напоминания по занятиям на завтра и отмечает их.
// Недоставленное напоминание не отмечается и уйдёт при следующем запуске.
func (s *ReminderService) SendDueReminders(ctx context.Context) (int, error) {
	now := s.clock().In(s.settings.location())
	ty, tm, td := now.AddDate(0, 0, 1).Date()

	lessons, err := s.store.Lessons().ListAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("list lessons: %w", err)
	}

	sent := 0
	for _, lesson := range lessons {
		if lesson.ReminderSent {
			continue
		}

		start, ok := schedule.ParseLabelTime(lesson.SlotLabel, now.Location())
		if !ok {
			s.logger.Warn("Unparsable lesson label", zap.Int64("lesson_id", lesson.ID), zap.String("label", lesson.SlotLabel))
			continue
		}
		if y, m, d := start.Date(); y != ty || m != tm || d != td {
			continue
		}

		if !deliver(ctx, s.notifier, s.logger, lesson.StudentID, formatting.Reminder(lesson.SlotLabel, s.settings.SchoolAddress)) {
			continue
		}

		if err := s.store.Lessons().MarkReminderSent(ctx, lesson.ID); err != nil {
			// занятие могли отменить между чтением и отметкой
			if errors.Is(err, repository.ErrNotFound) {
				continue
			}
			return sent, fmt.Errorf("mark reminder sent: %w", err)
		}
		sent++
	}

	s.logger.Info("Reminders processed", zap.Int("sent", sent))
	if sent > 0 {
		notifyTeachers(ctx, s.auth, s.notifier, s.logger, formatting.RemindersSent(sent))
	}
	return sent, nil
}
