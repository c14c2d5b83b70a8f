package sqlite

import (
	"context"
	"fmt"

	"github.com/UrikezZ/52HZSchoolBot/internal/model"
)

type balanceRepository struct {
	s *Store
}

const balanceColumns = `student_id, lessons_left, balance, lesson_price, notes,
	total_paid_lessons, total_completed_lessons, created_at, updated_at`

func (r *balanceRepository) Get(ctx context.Context, studentID, defaultPrice int64) (*model.BalanceAccount, error) {
	defaults := model.NewBalanceAccount(studentID, defaultPrice)
	now := r.s.timestamp()

	_, err := r.s.q.ExecContext(ctx, `
		INSERT OR IGNORE INTO balance_accounts (student_id, lesson_price, created_at, updated_at)
		VALUES (?, ?, ?, ?)
	`, studentID, defaults.LessonPrice, now, now)
	if err != nil {
		return nil, fmt.Errorf("init balance account: %w", err)
	}

	var acc model.BalanceAccount
	err = r.s.q.QueryRowContext(ctx, `SELECT `+balanceColumns+` FROM balance_accounts WHERE student_id = ?`, studentID).Scan(
		&acc.StudentID,
		&acc.LessonsLeft,
		&acc.Balance,
		&acc.LessonPrice,
		&acc.Notes,
		&acc.TotalPaidLessons,
		&acc.TotalCompletedLessons,
		&acc.CreatedAt,
		&acc.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("get balance account: %w", err)
	}
	return &acc, nil
}

// GetForUpdate в SQLite совпадает с Get: транзакции и так идут по одной
func (r *balanceRepository) GetForUpdate(ctx context.Context, studentID, defaultPrice int64) (*model.BalanceAccount, error) {
	return r.Get(ctx, studentID, defaultPrice)
}

func (r *balanceRepository) Save(ctx context.Context, acc *model.BalanceAccount) error {
	now := r.s.timestamp()
	_, err := r.s.q.ExecContext(ctx, `
		INSERT INTO balance_accounts (student_id, lessons_left, balance, lesson_price, notes,
			total_paid_lessons, total_completed_lessons, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (student_id) DO UPDATE
		SET lessons_left = excluded.lessons_left,
		    balance = excluded.balance,
		    lesson_price = excluded.lesson_price,
		    notes = excluded.notes,
		    total_paid_lessons = excluded.total_paid_lessons,
		    total_completed_lessons = excluded.total_completed_lessons,
		    updated_at = excluded.updated_at
	`, acc.StudentID, acc.LessonsLeft, acc.Balance, acc.LessonPrice, acc.Notes,
		acc.TotalPaidLessons, acc.TotalCompletedLessons, now, now)
	if err != nil {
		return fmt.Errorf("save balance account: %w", err)
	}
	acc.UpdatedAt = now
	return nil
}
