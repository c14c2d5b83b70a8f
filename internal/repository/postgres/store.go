// Package postgres хранилище на PostgreSQL через pgx.
package postgres

import (
	"context"
	"fmt"

	"github.com/UrikezZ/52HZSchoolBot/internal/repository"
	"github.com/UrikezZ/52HZSchoolBot/internal/repository/base"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store реализует repository.Store поверх пула pgx
type Store struct {
	pool *pgxpool.Pool
	db   base.DBTX
	inTx bool
}

// New создаёт хранилище
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool, db: pool}
}

func (s *Store) Users() repository.UserRepository { return NewUserRepository(s.db) }
func (s *Store) Balances() repository.BalanceRepository { return NewBalanceRepository(s.db) }
func (s *Store) Lessons() repository.LessonRepository { return NewLessonRepository(s.db) }
func (s *Store) Requests() repository.RequestRepository { return NewRequestRepository(s.db) }

// WithTx открывает транзакцию и передаёт в fn хранилище, привязанное к ней.
// Вложенный вызов переиспользует текущую транзакцию.
func (s *Store) WithTx(ctx context.Context, fn func(tx repository.Store) error) error {
	if s.inTx {
		return fn(s)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&Store{pool: s.pool, db: tx, inTx: true}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
