package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/UrikezZ/52HZSchoolBot/internal/formatting"
	"github.com/UrikezZ/52HZSchoolBot/internal/model"
	"github.com/UrikezZ/52HZSchoolBot/internal/repository"
	"github.com/UrikezZ/52HZSchoolBot/internal/schedule"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ConfirmationService превращает отмеченные слоты заявки в занятия и списывает оплату
type ConfirmationService struct {
	store    repository.Store
	users    *UserService
	auth     Authorizer
	notifier Notifier
	settings Settings
	clock    Clock
	logger   *zap.Logger
}

func NewConfirmationService(
	store repository.Store,
	users *UserService,
	auth Authorizer,
	notifier Notifier,
	settings Settings,
	clock Clock,
	logger *zap.Logger,
) *ConfirmationService {
	return &ConfirmationService{
		store:    store,
		users:    users,
		auth:     auth,
		notifier: notifier,
		settings: settings,
		clock:    clock,
		logger:   logger,
	}
}

func (s *ConfirmationService) now() time.Time {
	return s.clock().In(s.settings.location())
}

// SkippedSlot слот пакета, который не подтвердился
type SkippedSlot struct {
	SlotID string
	Label  string
	Err    error
}

// BatchResult итог пакетного подтверждения
type BatchResult struct {
	StudentID int64
	Confirmed []*model.ConfirmedLesson
	Skipped   []SkippedSlot

	Before *model.BalanceAccount
	After  *model.BalanceAccount

	LessonsSpent int
	DepositSpent int64
	DebtAdded    int64
}

// Labels подписи подтверждённых занятий
func (r *BatchResult) Labels() []string {
	labels := make([]string, 0, len(r.Confirmed))
	for _, l := range r.Confirmed {
		labels = append(labels, l.SlotLabel)
	}
	return labels
}

// SkippedLabels подписи неподтверждённых слотов
func (r *BatchResult) SkippedLabels() []string {
	labels := make([]string, 0, len(r.Skipped))
	for _, s := range r.Skipped {
		labels = append(labels, s.Label)
	}
	return labels
}

// Notice данные для итоговых сообщений
func (r *BatchResult) Notice(student *model.User, address string) formatting.ConfirmationNotice {
	n := formatting.ConfirmationNotice{
		StudentName:  student.DisplayName(),
		Instruments:  student.InstrumentsText(),
		Labels:       r.Labels(),
		LessonsSpent: r.LessonsSpent,
		DepositSpent: r.DepositSpent,
		DebtAdded:    r.DebtAdded,
		Address:      address,
	}
	if r.After != nil {
		n.LessonsLeft = r.After.LessonsLeft
		n.Balance = r.After.Balance
		n.Notes = r.After.Notes
	}
	return n
}

func positive(v int64) int64 {
	if v > 0 {
		return v
	}
	return 0
}

func (r *BatchResult) aggregate() {
	if r.Before == nil || r.After == nil {
		return
	}
	r.LessonsSpent = r.Before.LessonsLeft - r.After.LessonsLeft
	r.DepositSpent = positive(r.Before.Balance) - positive(r.After.Balance)
	r.DebtAdded = positive(-r.After.Balance) - positive(-r.Before.Balance)
}

// BatchConfirm подтверждает слоты по порядку. Каждый слот в своей транзакции:
// проверка занятости, списание, запись занятия, удаление слота из всех заявок.
// Ошибка одного слота не прерывает пакет.
func (s *ConfirmationService) BatchConfirm(ctx context.Context, teacherID, studentID int64, slotIDs []string) (*BatchResult, error) {
	if err := requireTeacher(s.auth, teacherID); err != nil {
		return nil, err
	}

	now := s.now()
	result := &BatchResult{StudentID: studentID}

	for _, slotID := range slotIDs {
		lesson, before, after, err := s.confirmSlot(ctx, teacherID, studentID, slotID, now)
		if err != nil {
			label := slotID
			if slot, ok := schedule.Lookup(now, slotID); ok {
				label = slot.Label
			}
			result.Skipped = append(result.Skipped, SkippedSlot{SlotID: slotID, Label: label, Err: err})

			if errors.Is(err, ErrSlotTaken) || errors.Is(err, ErrValidation) {
				s.logger.Info("Slot skipped",
					zap.Int64("student_id", studentID),
					zap.String("slot_id", slotID),
					zap.Error(err),
				)
			} else {
				s.logger.Error("Failed to confirm slot",
					zap.Int64("student_id", studentID),
					zap.String("slot_id", slotID),
					zap.Error(err),
				)
			}
			continue
		}

		if result.Before == nil {
			result.Before = before
		}
		result.After = after
		result.Confirmed = append(result.Confirmed, lesson)
	}

	if len(result.Confirmed) == 0 {
		return result, ErrNothingConfirmed
	}
	result.aggregate()

	s.logger.Info("Lessons confirmed",
		zap.Int64("teacher_id", teacherID),
		zap.Int64("student_id", studentID),
		zap.Int("confirmed", len(result.Confirmed)),
		zap.Int("skipped", len(result.Skipped)),
	)

	student, err := s.users.Profile(ctx, studentID)
	if err != nil {
		s.logger.Warn("Profile unavailable for notification", zap.Int64("student_id", studentID), zap.Error(err))
		student = &model.User{ID: studentID}
	}
	deliver(ctx, s.notifier, s.logger, studentID,
		formatting.LessonsConfirmedForStudent(result.Notice(student, s.settings.SchoolAddress)))

	return result, nil
}

func (s *ConfirmationService) confirmSlot(ctx context.Context, teacherID, studentID int64, slotID string, now time.Time) (*model.ConfirmedLesson, *model.BalanceAccount, *model.BalanceAccount, error) {
	slot, ok := schedule.Lookup(now, slotID)
	if !ok {
		return nil, nil, nil, validationError("unknown slot %q", slotID)
	}
	weekOf := repository.NormalizeWeekOf(schedule.WindowStart(now))

	var (
		lesson        *model.ConfirmedLesson
		before, after *model.BalanceAccount
	)
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		taken, err := tx.Lessons().IsSlotTaken(ctx, slotID, weekOf)
		if err != nil {
			return err
		}
		if taken {
			return ErrSlotTaken
		}

		acc, err := tx.Balances().GetForUpdate(ctx, studentID, s.settings.DefaultLessonPrice)
		if err != nil {
			return err
		}
		snapshot := *acc
		price := acc.LessonPrice
		kind := acc.DebitOneLesson()
		if err := tx.Balances().Save(ctx, acc); err != nil {
			return err
		}

		lesson = &model.ConfirmedLesson{
			StudentID:   studentID,
			SlotID:      slotID,
			SlotLabel:   slot.Label,
			WeekOf:      weekOf,
			ConfirmedBy: teacherID,
			PaymentType: formatting.PaymentDescription(kind, price),
		}
		if err := tx.Lessons().Create(ctx, lesson); err != nil {
			return err
		}

		if _, err := tx.Requests().RemoveSlotFromAll(ctx, slotID); err != nil {
			return err
		}

		before, after = &snapshot, acc
		return nil
	})
	if err != nil {
		return nil, nil, nil, err
	}
	return lesson, before, after, nil
}

// ConfirmRequested как BatchConfirm, но только для слотов из текущей заявки ученика.
// Остальные слоты пропускаются с ErrValidation и ничего не списывают.
func (s *ConfirmationService) ConfirmRequested(ctx context.Context, teacherID, studentID int64, slotIDs []string) (*BatchResult, error) {
	if err := requireTeacher(s.auth, teacherID); err != nil {
		return nil, err
	}

	req, err := s.store.Requests().Get(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("get request: %w", err)
	}
	requested := make(map[string]bool)
	if req != nil {
		for _, id := range req.SelectedSlots {
			requested[id] = true
		}
	}

	now := s.now()
	var allowed []string
	var rejected []SkippedSlot
	for _, id := range slotIDs {
		if requested[id] {
			allowed = append(allowed, id)
			continue
		}
		label := id
		if slot, ok := schedule.Lookup(now, id); ok {
			label = slot.Label
		}
		rejected = append(rejected, SkippedSlot{SlotID: id, Label: label, Err: validationError("slot %q is not in the request", id)})
	}

	if len(allowed) == 0 {
		return &BatchResult{StudentID: studentID, Skipped: rejected}, ErrNothingConfirmed
	}

	result, err := s.BatchConfirm(ctx, teacherID, studentID, allowed)
	if result != nil {
		result.Skipped = append(rejected, result.Skipped...)
	}
	return result, err
}

// ConfirmSession подтверждает отмеченные в сессии слоты
func (s *ConfirmationService) ConfirmSession(ctx context.Context, teacherID int64, session *ReviewSession) (*BatchResult, error) {
	if err := requireTeacher(s.auth, teacherID); err != nil {
		return nil, err
	}
	if err := session.beginConfirm(); err != nil {
		return nil, err
	}
	defer session.finish()

	return s.BatchConfirm(ctx, teacherID, session.StudentID, session.Marked())
}

// Reject отклоняет заявку целиком и сообщает ученику
func (s *ConfirmationService) Reject(ctx context.Context, teacherID, studentID int64) error {
	if err := requireTeacher(s.auth, teacherID); err != nil {
		return err
	}

	req, err := s.store.Requests().Get(ctx, studentID)
	if err != nil {
		return fmt.Errorf("get request: %w", err)
	}
	if req == nil {
		return ErrNotFound
	}
	if err := s.store.Requests().Delete(ctx, studentID); err != nil {
		return fmt.Errorf("delete request: %w", err)
	}

	s.logger.Info("Request rejected", zap.Int64("teacher_id", teacherID), zap.Int64("student_id", studentID))
	deliver(ctx, s.notifier, s.logger, studentID, formatting.RequestRejected())
	return nil
}

// ManualAdd записывает занятие без заявки. Баланс не списывается, заявки не трогаются.
func (s *ConfirmationService) ManualAdd(ctx context.Context, teacherID, studentID int64, startsAt time.Time) (*model.ConfirmedLesson, error) {
	if err := requireTeacher(s.auth, teacherID); err != nil {
		return nil, err
	}

	now := s.now()
	startsAt = startsAt.In(now.Location())
	if startsAt.Minute() != 0 || startsAt.Second() != 0 || startsAt.Nanosecond() != 0 {
		return nil, validationError("lesson must start on the hour, got %s", startsAt.Format("15:04"))
	}
	if !startsAt.After(now) {
		return nil, validationError("lesson time %s is in the past", formatting.FormatDateTime(startsAt))
	}

	lesson := &model.ConfirmedLesson{
		StudentID:   studentID,
		ConfirmedBy: teacherID,
		PaymentType: formatting.ManualPaymentNote,
		IsManual:    true,
	}
	if slot, ok := schedule.SlotAt(now, startsAt); ok {
		lesson.SlotID = slot.ID
		lesson.SlotLabel = slot.Label
		lesson.WeekOf = repository.NormalizeWeekOf(schedule.WindowStart(now))
	} else {
		lesson.SlotID = model.ManualSlotPrefix + uuid.NewString()
		lesson.SlotLabel = schedule.ManualLabel(startsAt)
		lesson.WeekOf = repository.NormalizeWeekOf(startsAt)
	}

	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		taken, err := tx.Lessons().IsSlotTaken(ctx, lesson.SlotID, lesson.WeekOf)
		if err != nil {
			return err
		}
		if taken {
			return ErrSlotTaken
		}

		// ручные занятия вне окна имеют уникальный id, поэтому время сверяется по подписям
		all, err := tx.Lessons().ListAll(ctx)
		if err != nil {
			return err
		}
		for _, existing := range all {
			if t, ok := schedule.ParseLabelTime(existing.SlotLabel, now.Location()); ok && t.Equal(startsAt) {
				return ErrSlotTaken
			}
		}

		return tx.Lessons().Create(ctx, lesson)
	})
	if err != nil {
		return nil, fmt.Errorf("manual add: %w", err)
	}

	s.logger.Info("Lesson added manually",
		zap.Int64("teacher_id", teacherID),
		zap.Int64("student_id", studentID),
		zap.String("slot_id", lesson.SlotID),
		zap.String("label", lesson.SlotLabel),
	)
	deliver(ctx, s.notifier, s.logger, studentID, formatting.ManualLessonForStudent(lesson.SlotLabel, s.settings.SchoolAddress))
	return lesson, nil
}

// Cancel удаляет занятие. Оплата не возвращается, это делает преподаватель вручную.
func (s *ConfirmationService) Cancel(ctx context.Context, teacherID, studentID int64, slotID string) (*model.ConfirmedLesson, error) {
	if err := requireTeacher(s.auth, teacherID); err != nil {
		return nil, err
	}

	lesson, err := s.store.Lessons().DeleteBySlot(ctx, studentID, slotID)
	if err != nil {
		return nil, fmt.Errorf("cancel lesson: %w", err)
	}
	if lesson == nil {
		return nil, ErrNotFound
	}

	s.logger.Info("Lesson cancelled",
		zap.Int64("teacher_id", teacherID),
		zap.Int64("student_id", studentID),
		zap.String("slot_id", slotID),
	)
	deliver(ctx, s.notifier, s.logger, studentID, formatting.LessonCancelledForStudent(lesson.SlotLabel))
	return lesson, nil
}
