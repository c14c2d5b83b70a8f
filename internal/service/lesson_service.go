package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/UrikezZ/52HZSchoolBot/internal/model"
	"github.com/UrikezZ/52HZSchoolBot/internal/repository"
	"github.com/UrikezZ/52HZSchoolBot/internal/schedule"
	"go.uber.org/zap"
)

// LessonService чтение журнала занятий
type LessonService struct {
	store    repository.Store
	settings Settings
	clock    Clock
	logger   *zap.Logger
}

func NewLessonService(store repository.Store, settings Settings, clock Clock, logger *zap.Logger) *LessonService {
	return &LessonService{
		store:    store,
		settings: settings,
		clock:    clock,
		logger:   logger,
	}
}

func (s *LessonService) now() time.Time {
	return s.clock().In(s.settings.location())
}

// ListAll все занятия
func (s *LessonService) ListAll(ctx context.Context) ([]*model.ConfirmedLesson, error) {
	lessons, err := s.store.Lessons().ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list lessons: %w", err)
	}
	return lessons, nil
}

// ListForStudent занятия ученика по дате и времени из подписи
func (s *LessonService) ListForStudent(ctx context.Context, studentID int64) ([]*model.ConfirmedLesson, error) {
	lessons, err := s.store.Lessons().ListForStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("list student lessons: %w", err)
	}
	SortByStart(lessons, s.settings.location())
	return lessons, nil
}

// Upcoming занятия ученика, которые ещё не начались
func (s *LessonService) Upcoming(ctx context.Context, studentID int64) ([]*model.ConfirmedLesson, error) {
	lessons, err := s.ListForStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	upcoming := lessons[:0]
	for _, l := range lessons {
		if !isPast(l, now) {
			upcoming = append(upcoming, l)
		}
	}
	return upcoming, nil
}

// IsSlotTaken занят ли слот текущего окна
func (s *LessonService) IsSlotTaken(ctx context.Context, slotID string) (bool, error) {
	taken, err := s.store.Lessons().IsSlotTaken(ctx, slotID, schedule.WindowStart(s.now()))
	if err != nil {
		return false, fmt.Errorf("check slot: %w", err)
	}
	return taken, nil
}

// TakenSlots слоты текущего окна, занятые подтверждёнными занятиями.
// Полный просмотр журнала: при объёмах одной школы этого достаточно.
func (s *LessonService) TakenSlots(ctx context.Context) (map[string]int64, error) {
	lessons, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	weekOf := repository.NormalizeWeekOf(schedule.WindowStart(s.now()))
	taken := make(map[string]int64)
	for _, l := range lessons {
		if l.WeekOf.Equal(weekOf) {
			taken[l.SlotID] = l.StudentID
		}
	}
	return taken, nil
}

// SortByStart сортирует занятия по времени из подписи, нераспознанные в конце
func SortByStart(lessons []*model.ConfirmedLesson, loc *time.Location) {
	sort.SliceStable(lessons, func(i, j int) bool {
		ti, okI := schedule.ParseLabelTime(lessons[i].SlotLabel, loc)
		tj, okJ := schedule.ParseLabelTime(lessons[j].SlotLabel, loc)
		switch {
		case okI && okJ:
			return ti.Before(tj)
		case okI != okJ:
			return okI
		default:
			return lessons[i].ID < lessons[j].ID
		}
	})
}
