// Package sqlite хранилище в одном файле SQLite (mattn/go-sqlite3).
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/UrikezZ/52HZSchoolBot/internal/repository"
	"github.com/mattn/go-sqlite3"
)

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store реализует repository.Store поверх *sql.DB
type Store struct {
	db   *sql.DB
	q    querier
	inTx bool
	now  func() time.Time
}

// Open открывает файл базы. SQLite пишет в один поток, поэтому соединение одно.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return db, nil
}

// New создаёт хранилище
func New(db *sql.DB) *Store {
	return &Store{db: db, q: db, now: time.Now}
}

func (s *Store) Users() repository.UserRepository { return &userRepository{s} }
func (s *Store) Balances() repository.BalanceRepository { return &balanceRepository{s} }
func (s *Store) Lessons() repository.LessonRepository { return &lessonRepository{s} }
func (s *Store) Requests() repository.RequestRepository { return &requestRepository{s} }

// WithTx выполняет fn в транзакции, вложенные вызовы её переиспользуют
func (s *Store) WithTx(ctx context.Context, fn func(tx repository.Store) error) error {
	if s.inTx {
		return fn(s)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&Store{db: s.db, q: tx, inTx: true, now: s.now}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (s *Store) timestamp() time.Time {
	return s.now().UTC()
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

func encodeList(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	raw, err := json.Marshal(values)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func decodeList(raw string) ([]string, error) {
	var values []string
	if raw == "" {
		return values, nil
	}
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil, err
	}
	return values, nil
}

const weekOfLayout = "2006-01-02"

func formatWeekOf(t time.Time) string {
	return repository.NormalizeWeekOf(t).Format(weekOfLayout)
}

func parseWeekOf(raw string) (time.Time, error) {
	return time.ParseInLocation(weekOfLayout, raw, time.UTC)
}
