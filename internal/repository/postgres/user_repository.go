package postgres

import (
	"context"
	"fmt"

	"github.com/UrikezZ/52HZSchoolBot/internal/model"
	"github.com/UrikezZ/52HZSchoolBot/internal/repository/base"
	"github.com/jackc/pgx/v5"
)

type UserRepository struct {
	*base.Repository
}

func NewUserRepository(db base.DBTX) *UserRepository {
	return &UserRepository{Repository: base.NewRepository(db)}
}

const userColumns = `id, full_name, birthdate, instruments, goals, study_format, created_at, updated_at`

func scanUser(row pgx.Row) (*model.User, error) {
	var user model.User
	err := row.Scan(
		&user.ID,
		&user.FullName,
		&user.Birthdate,
		&user.Instruments,
		&user.Goals,
		&user.StudyFormat,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Save создаёт или обновляет профиль
func (r *UserRepository) Save(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (id, full_name, birthdate, instruments, goals, study_format)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE
		SET full_name = EXCLUDED.full_name,
		    birthdate = EXCLUDED.birthdate,
		    instruments = EXCLUDED.instruments,
		    goals = EXCLUDED.goals,
		    study_format = EXCLUDED.study_format,
		    updated_at = NOW()
		RETURNING created_at, updated_at
	`

	instruments := user.Instruments
	if instruments == nil {
		instruments = []string{}
	}

	err := r.QueryRow(
		ctx, query,
		user.ID,
		user.FullName,
		user.Birthdate,
		instruments,
		user.Goals,
		user.StudyFormat,
	).Scan(&user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		return fmt.Errorf("save user: %w", err)
	}

	return nil
}

// GetByID получает пользователя по ID, nil если его нет
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}

	return user, nil
}

// List возвращает всех пользователей по алфавиту
func (r *UserRepository) List(ctx context.Context) ([]*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY full_name, id`

	rows, err := r.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, user)
	}

	return users, rows.Err()
}
