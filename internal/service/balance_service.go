package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/UrikezZ/52HZSchoolBot/internal/formatting"
	"github.com/UrikezZ/52HZSchoolBot/internal/model"
	"github.com/UrikezZ/52HZSchoolBot/internal/repository"
	"github.com/UrikezZ/52HZSchoolBot/internal/schedule"
	"go.uber.org/zap"
)

// BalanceService счета учеников: предоплаченные уроки, деньги, цена урока
type BalanceService struct {
	store    repository.Store
	auth     Authorizer
	notifier Notifier
	settings Settings
	clock    Clock
	logger   *zap.Logger
}

func NewBalanceService(
	store repository.Store,
	auth Authorizer,
	notifier Notifier,
	settings Settings,
	clock Clock,
	logger *zap.Logger,
) *BalanceService {
	return &BalanceService{
		store:    store,
		auth:     auth,
		notifier: notifier,
		settings: settings,
		clock:    clock,
		logger:   logger,
	}
}

// Get счёт ученика, создаётся при первом обращении
func (s *BalanceService) Get(ctx context.Context, studentID int64) (*model.BalanceAccount, error) {
	acc, err := s.store.Balances().Get(ctx, studentID, s.settings.DefaultLessonPrice)
	if err != nil {
		return nil, fmt.Errorf("get balance: %w", err)
	}
	return acc, nil
}

// update читает счёт под блокировкой, применяет fn и сохраняет
func (s *BalanceService) update(ctx context.Context, teacherID, studentID int64, fn func(acc *model.BalanceAccount) error) (*model.BalanceAccount, error) {
	if err := requireTeacher(s.auth, teacherID); err != nil {
		return nil, err
	}

	var result *model.BalanceAccount
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		acc, err := tx.Balances().GetForUpdate(ctx, studentID, s.settings.DefaultLessonPrice)
		if err != nil {
			return err
		}
		if err := fn(acc); err != nil {
			return err
		}
		if err := tx.Balances().Save(ctx, acc); err != nil {
			return err
		}
		result = acc
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("update balance: %w", err)
	}
	return result, nil
}

// CreditLessons добавляет n оплаченных уроков
func (s *BalanceService) CreditLessons(ctx context.Context, teacherID, studentID int64, n int) (*model.BalanceAccount, error) {
	if n <= 0 {
		return nil, validationError("lessons count must be positive, got %d", n)
	}

	acc, err := s.update(ctx, teacherID, studentID, func(acc *model.BalanceAccount) error {
		acc.CreditLessons(n)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Lessons credited",
		zap.Int64("student_id", studentID),
		zap.Int("lessons", n),
		zap.Int("lessons_left", acc.LessonsLeft),
	)
	deliver(ctx, s.notifier, s.logger, studentID,
		formatting.BalanceCredited(fmt.Sprintf("Добавлено уроков: %d шт.", n), acc))
	return acc, nil
}

// CreditDeposit пополняет денежный баланс
func (s *BalanceService) CreditDeposit(ctx context.Context, teacherID, studentID int64, amount int64) (*model.BalanceAccount, error) {
	if amount <= 0 {
		return nil, validationError("deposit must be positive, got %d", amount)
	}

	acc, err := s.update(ctx, teacherID, studentID, func(acc *model.BalanceAccount) error {
		acc.CreditDeposit(amount)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Deposit credited",
		zap.Int64("student_id", studentID),
		zap.Int64("amount", amount),
		zap.Int64("balance", acc.Balance),
	)
	deliver(ctx, s.notifier, s.logger, studentID,
		formatting.BalanceCredited("Пополнение депозита: "+formatting.FormatMoney(amount), acc))
	return acc, nil
}

// SetPrice меняет цену урока для ученика
func (s *BalanceService) SetPrice(ctx context.Context, teacherID, studentID int64, price int64) (*model.BalanceAccount, error) {
	if price <= 0 {
		return nil, validationError("price must be positive, got %d", price)
	}

	return s.update(ctx, teacherID, studentID, func(acc *model.BalanceAccount) error {
		acc.LessonPrice = price
		return nil
	})
}

// SetNotes заменяет примечание к счёту
func (s *BalanceService) SetNotes(ctx context.Context, teacherID, studentID int64, notes string) (*model.BalanceAccount, error) {
	notes = strings.TrimSpace(notes)
	return s.update(ctx, teacherID, studentID, func(acc *model.BalanceAccount) error {
		acc.Notes = notes
		return nil
	})
}

// ChargeLesson ручное списание одного урока вне подтверждения заявки
func (s *BalanceService) ChargeLesson(ctx context.Context, teacherID, studentID int64) (*model.BalanceAccount, string, error) {
	var payment string
	acc, err := s.update(ctx, teacherID, studentID, func(acc *model.BalanceAccount) error {
		price := acc.LessonPrice
		payment = formatting.PaymentDescription(acc.DebitOneLesson(), price)
		return nil
	})
	if err != nil {
		return nil, "", err
	}

	s.logger.Info("Lesson charged manually",
		zap.Int64("student_id", studentID),
		zap.String("payment", payment),
	)
	deliver(ctx, s.notifier, s.logger, studentID, formatting.LessonCharged(payment, acc))
	return acc, payment, nil
}

// Statistics сводка по ученику
type Statistics struct {
	Account        *model.BalanceAccount
	TotalLessons   int
	Completed      int
	Upcoming       int
	ManualLessons  int
	TotalPaidCount int
}

// Statistics считает прошедшие занятия по подписям и сохраняет счётчик завершённых
func (s *BalanceService) Statistics(ctx context.Context, teacherID, studentID int64) (*Statistics, error) {
	if err := requireTeacher(s.auth, teacherID); err != nil {
		return nil, err
	}

	lessons, err := s.store.Lessons().ListForStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("list lessons: %w", err)
	}

	now := s.clock().In(s.settings.location())
	stats := &Statistics{TotalLessons: len(lessons)}
	for _, lesson := range lessons {
		if lesson.IsManual {
			stats.ManualLessons++
		}
		if isPast(lesson, now) {
			stats.Completed++
		} else {
			stats.Upcoming++
		}
	}

	acc, err := s.update(ctx, teacherID, studentID, func(acc *model.BalanceAccount) error {
		acc.TotalCompletedLessons = stats.Completed
		return nil
	})
	if err != nil {
		return nil, err
	}
	stats.Account = acc
	stats.TotalPaidCount = acc.TotalPaidLessons
	return stats, nil
}

func isPast(lesson *model.ConfirmedLesson, now time.Time) bool {
	start, ok := schedule.ParseLabelTime(lesson.SlotLabel, now.Location())
	if !ok {
		return false
	}
	return start.Before(now)
}
