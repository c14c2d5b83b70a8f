package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/UrikezZ/52HZSchoolBot/internal/model"
)

type userRepository struct {
	s *Store
}

type rowScanner interface {
	Scan(dest ...any) error
}

const userColumns = `id, full_name, birthdate, instruments, goals, study_format, created_at, updated_at`

func scanUser(row rowScanner) (*model.User, error) {
	var (
		user        model.User
		instruments string
	)
	err := row.Scan(
		&user.ID,
		&user.FullName,
		&user.Birthdate,
		&instruments,
		&user.Goals,
		&user.StudyFormat,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if user.Instruments, err = decodeList(instruments); err != nil {
		return nil, fmt.Errorf("decode instruments: %w", err)
	}
	return &user, nil
}

func (r *userRepository) Save(ctx context.Context, user *model.User) error {
	instruments, err := encodeList(user.Instruments)
	if err != nil {
		return fmt.Errorf("encode instruments: %w", err)
	}

	now := r.s.timestamp()
	_, err = r.s.q.ExecContext(ctx, `
		INSERT INTO users (id, full_name, birthdate, instruments, goals, study_format, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE
		SET full_name = excluded.full_name,
		    birthdate = excluded.birthdate,
		    instruments = excluded.instruments,
		    goals = excluded.goals,
		    study_format = excluded.study_format,
		    updated_at = excluded.updated_at
	`, user.ID, user.FullName, user.Birthdate, instruments, user.Goals, user.StudyFormat, now, now)
	if err != nil {
		return fmt.Errorf("save user: %w", err)
	}

	saved, err := r.GetByID(ctx, user.ID)
	if err != nil {
		return err
	}
	user.CreatedAt = saved.CreatedAt
	user.UpdatedAt = saved.UpdatedAt
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	user, err := scanUser(r.s.q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return user, nil
}

func (r *userRepository) List(ctx context.Context) ([]*model.User, error) {
	rows, err := r.s.q.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY full_name, id`)
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
