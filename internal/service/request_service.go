package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/UrikezZ/52HZSchoolBot/internal/formatting"
	"github.com/UrikezZ/52HZSchoolBot/internal/model"
	"github.com/UrikezZ/52HZSchoolBot/internal/repository"
	"github.com/UrikezZ/52HZSchoolBot/internal/schedule"
	"go.uber.org/zap"
)

// RequestService заявки учеников на слоты окна записи.
//
// Набор слотов заменяется целиком (Upsert). Два одновременных переключения
// одного ученика с разных устройств могут потерять одно из изменений:
// выигрывает последняя запись.
type RequestService struct {
	store    repository.Store
	users    *UserService
	auth     Authorizer
	notifier Notifier
	settings Settings
	clock    Clock
	logger   *zap.Logger
}

func NewRequestService(
	store repository.Store,
	users *UserService,
	auth Authorizer,
	notifier Notifier,
	settings Settings,
	clock Clock,
	logger *zap.Logger,
) *RequestService {
	return &RequestService{
		store:    store,
		users:    users,
		auth:     auth,
		notifier: notifier,
		settings: settings,
		clock:    clock,
		logger:   logger,
	}
}

func (s *RequestService) now() time.Time {
	return s.clock().In(s.settings.location())
}

// WeekTag метка ISO-недели заявки в виде год*100+неделя, например 202642
func WeekTag(t time.Time) int {
	year, week := t.ISOWeek()
	return year*100 + week
}

// isoWeekMonday понедельник ISO-недели. 4 января всегда в первой неделе года.
func isoWeekMonday(year, week int) time.Time {
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	offset := (int(jan4.Weekday()) + 6) % 7
	return jan4.AddDate(0, 0, (week-1)*7-offset)
}

// splitTag разбирает метку. Метки без года (старые записи) относятся к году
// current, а если неделя ещё не наступила, то к предыдущему.
func splitTag(tag, current int) (year, week int) {
	if tag >= 100 {
		return tag / 100, tag % 100
	}
	year, week = current/100, tag
	if week > current%100 {
		year--
	}
	return year, week
}

// weeksBehind на сколько недель tag отстаёт от current, считая по датам понедельников
func weeksBehind(current, tag int) int {
	curYear, curWeek := splitTag(current, current)
	tagYear, tagWeek := splitTag(tag, current)
	days := isoWeekMonday(curYear, curWeek).Sub(isoWeekMonday(tagYear, tagWeek)).Hours() / 24
	return int(math.Round(days / 7))
}

// Get заявка ученика или nil
func (s *RequestService) Get(ctx context.Context, studentID int64) (*model.AvailabilityRequest, error) {
	req, err := s.store.Requests().Get(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("get request: %w", err)
	}
	return req, nil
}

// ListAll все заявки
func (s *RequestService) ListAll(ctx context.Context) ([]*model.AvailabilityRequest, error) {
	requests, err := s.store.Requests().ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	return requests, nil
}

// Upsert заменяет набор слотов ученика и ставит метку текущей недели
func (s *RequestService) Upsert(ctx context.Context, studentID int64, slotIDs []string) (*model.AvailabilityRequest, error) {
	req, err := s.store.Requests().Upsert(ctx, studentID, slotIDs, WeekTag(s.now()))
	if err != nil {
		return nil, fmt.Errorf("upsert request: %w", err)
	}
	return req, nil
}

// ToggleSlot добавляет слот в заявку или убирает его оттуда.
// Занятый на этой неделе слот добавить нельзя.
func (s *RequestService) ToggleSlot(ctx context.Context, studentID int64, slotID string) (*model.AvailabilityRequest, bool, error) {
	now := s.now()
	if _, ok := schedule.Lookup(now, slotID); !ok {
		return nil, false, validationError("unknown slot %q", slotID)
	}

	current, err := s.Get(ctx, studentID)
	if err != nil {
		return nil, false, err
	}
	var selected []string
	if current != nil {
		selected = current.SelectedSlots
	}

	next, added := model.Toggled(selected, slotID)
	if added {
		taken, err := s.store.Lessons().IsSlotTaken(ctx, slotID, schedule.WindowStart(now))
		if err != nil {
			return nil, false, fmt.Errorf("check slot: %w", err)
		}
		if taken {
			return nil, false, ErrSlotTaken
		}
	}

	req, err := s.Upsert(ctx, studentID, next)
	if err != nil {
		return nil, false, err
	}
	return req, added, nil
}

// Candidates слоты заявки с подписями текущего окна.
// Устаревшие id остаются с подписью "Слот <id>", подтвердить их нельзя.
func (s *RequestService) Candidates(req *model.AvailabilityRequest) []Candidate {
	if req == nil {
		return nil
	}
	labels := schedule.AllSlotLabels(s.now())
	candidates := make([]Candidate, 0, len(req.SelectedSlots))
	for _, id := range req.SelectedSlots {
		label, ok := labels[id]
		if !ok {
			label = "Слот " + id
		}
		candidates = append(candidates, Candidate{SlotID: id, Label: label})
	}
	return candidates
}

// Submit отправляет заявку всем преподавателям с клавиатурой отметки слотов
func (s *RequestService) Submit(ctx context.Context, studentID int64) (*model.AvailabilityRequest, error) {
	req, err := s.Get(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if req == nil || len(req.SelectedSlots) == 0 {
		return nil, validationError("request is empty")
	}

	student, err := s.users.Profile(ctx, studentID)
	if err != nil {
		return nil, err
	}

	candidates := s.Candidates(req)
	labels := make([]string, 0, len(candidates))
	for _, c := range candidates {
		labels = append(labels, c.Label)
	}
	text := formatting.RequestForTeacher(student, formatting.WeekRange(schedule.WeekWindow(s.now())), labels)

	for _, teacherID := range s.auth.TeacherIDs() {
		if s.notifier == nil {
			break
		}
		if err := s.notifier.NotifyReview(ctx, teacherID, studentID, text, candidates); err != nil {
			s.logger.Warn("Review delivery failed",
				zap.Int64("teacher_id", teacherID),
				zap.Int64("student_id", studentID),
				zap.Error(err),
			)
		}
	}

	s.logger.Info("Request submitted",
		zap.Int64("student_id", studentID),
		zap.Int("slots", len(req.SelectedSlots)),
	)
	return req, nil
}

// RemoveSlotFromAll убирает слот из всех заявок
func (s *RequestService) RemoveSlotFromAll(ctx context.Context, slotID string) (int, error) {
	n, err := s.store.Requests().RemoveSlotFromAll(ctx, slotID)
	if err != nil {
		return 0, fmt.Errorf("remove slot from requests: %w", err)
	}
	return n, nil
}

// Delete удаляет заявку ученика. Ученик может удалить свою, преподаватель любую.
func (s *RequestService) Delete(ctx context.Context, actorID, studentID int64) error {
	if actorID != studentID {
		if err := requireTeacher(s.auth, actorID); err != nil {
			return err
		}
	}
	if err := s.store.Requests().Delete(ctx, studentID); err != nil {
		return fmt.Errorf("delete request: %w", err)
	}
	return nil
}

// DeleteAll очищает все заявки (команда преподавателя)
func (s *RequestService) DeleteAll(ctx context.Context, teacherID int64) (int, error) {
	if err := requireTeacher(s.auth, teacherID); err != nil {
		return 0, err
	}
	n, err := s.store.Requests().DeleteAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("delete all requests: %w", err)
	}
	s.logger.Info("All requests cleared", zap.Int64("teacher_id", teacherID), zap.Int("deleted", n))
	return n, nil
}

// deleteWhere удаляет в одной транзакции заявки, для которых match вернул true
func (s *RequestService) deleteWhere(ctx context.Context, match func(tx repository.Store, req *model.AvailabilityRequest) (bool, error)) (int, error) {
	deleted := 0
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		deleted = 0
		requests, err := tx.Requests().ListAll(ctx)
		if err != nil {
			return err
		}
		for _, req := range requests {
			ok, err := match(tx, req)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			if err := tx.Requests().Delete(ctx, req.StudentID); err != nil {
				return err
			}
			deleted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

// SweepOlderThan удаляет заявки, отставшие от текущей недели больше чем на weeksAgo
func (s *RequestService) SweepOlderThan(ctx context.Context, weeksAgo int) (int, error) {
	current := WeekTag(s.now())
	n, err := s.deleteWhere(ctx, func(_ repository.Store, req *model.AvailabilityRequest) (bool, error) {
		return weeksBehind(current, req.WeekTag) > weeksAgo, nil
	})
	if err != nil {
		return 0, fmt.Errorf("sweep old requests: %w", err)
	}
	return n, nil
}

// DeleteForStudentsWithoutLessons удаляет заявки учеников без единого занятия
func (s *RequestService) DeleteForStudentsWithoutLessons(ctx context.Context) (int, error) {
	n, err := s.deleteWhere(ctx, func(tx repository.Store, req *model.AvailabilityRequest) (bool, error) {
		lessons, err := tx.Lessons().ListForStudent(ctx, req.StudentID)
		if err != nil {
			return false, err
		}
		return len(lessons) == 0, nil
	})
	if err != nil {
		return 0, fmt.Errorf("delete requests without lessons: %w", err)
	}
	return n, nil
}

// SweepResult итог еженедельной очистки
type SweepResult struct {
	Stale          int
	WithoutLessons int
}

// WeeklySweep обе очистки подряд и отчёт преподавателям
func (s *RequestService) WeeklySweep(ctx context.Context) (SweepResult, error) {
	var result SweepResult

	stale, err := s.SweepOlderThan(ctx, s.settings.RetentionWeeks)
	if err != nil {
		return result, err
	}
	result.Stale = stale

	withoutLessons, err := s.DeleteForStudentsWithoutLessons(ctx)
	if err != nil {
		return result, err
	}
	result.WithoutLessons = withoutLessons

	s.logger.Info("Weekly request sweep finished",
		zap.Int("stale", result.Stale),
		zap.Int("without_lessons", result.WithoutLessons),
	)
	if result.Stale+result.WithoutLessons > 0 {
		notifyTeachers(ctx, s.auth, s.notifier, s.logger, formatting.SweepReport(result.Stale, result.WithoutLessons))
	}
	return result, nil
}
