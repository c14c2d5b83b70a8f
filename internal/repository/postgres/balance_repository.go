package postgres

import (
	"context"
	"fmt"

	"github.com/UrikezZ/52HZSchoolBot/internal/model"
	"github.com/UrikezZ/52HZSchoolBot/internal/repository/base"
)

type BalanceRepository struct {
	*base.Repository
}

func NewBalanceRepository(db base.DBTX) *BalanceRepository {
	return &BalanceRepository{Repository: base.NewRepository(db)}
}

const balanceColumns = `student_id, lessons_left, balance, lesson_price, notes,
	total_paid_lessons, total_completed_lessons, created_at, updated_at`

// Get возвращает счёт ученика, при отсутствии создаёт счёт по умолчанию
func (r *BalanceRepository) Get(ctx context.Context, studentID, defaultPrice int64) (*model.BalanceAccount, error) {
	return r.get(ctx, studentID, defaultPrice, false)
}

// GetForUpdate как Get, но блокирует строку до конца транзакции
func (r *BalanceRepository) GetForUpdate(ctx context.Context, studentID, defaultPrice int64) (*model.BalanceAccount, error) {
	return r.get(ctx, studentID, defaultPrice, true)
}

func (r *BalanceRepository) get(ctx context.Context, studentID, defaultPrice int64, forUpdate bool) (*model.BalanceAccount, error) {
	defaults := model.NewBalanceAccount(studentID, defaultPrice)

	_, err := r.ExecAffected(ctx, `
		INSERT INTO balance_accounts (student_id, lesson_price)
		VALUES ($1, $2)
		ON CONFLICT (student_id) DO NOTHING
	`, studentID, defaults.LessonPrice)
	if err != nil {
		return nil, fmt.Errorf("init balance account: %w", err)
	}

	query := `SELECT ` + balanceColumns + ` FROM balance_accounts WHERE student_id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	var acc model.BalanceAccount
	err = r.QueryRow(ctx, query, studentID).Scan(
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

// Save сохраняет все поля счёта
func (r *BalanceRepository) Save(ctx context.Context, acc *model.BalanceAccount) error {
	query := `
		INSERT INTO balance_accounts (student_id, lessons_left, balance, lesson_price, notes,
			total_paid_lessons, total_completed_lessons)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (student_id) DO UPDATE
		SET lessons_left = EXCLUDED.lessons_left,
		    balance = EXCLUDED.balance,
		    lesson_price = EXCLUDED.lesson_price,
		    notes = EXCLUDED.notes,
		    total_paid_lessons = EXCLUDED.total_paid_lessons,
		    total_completed_lessons = EXCLUDED.total_completed_lessons,
		    updated_at = NOW()
		RETURNING updated_at
	`

	err := r.QueryRow(
		ctx, query,
		acc.StudentID,
		acc.LessonsLeft,
		acc.Balance,
		acc.LessonPrice,
		acc.Notes,
		acc.TotalPaidLessons,
		acc.TotalCompletedLessons,
	).Scan(&acc.UpdatedAt)

	if err != nil {
		return fmt.Errorf("save balance account: %w", err)
	}

	return nil
}
