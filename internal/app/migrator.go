package app

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/UrikezZ/52HZSchoolBot/migrations"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

// Migrator обёртка над goose
type Migrator struct {
	db      *sql.DB
	ownsDB  bool
	dialect string
	logger  *zap.Logger
}

// NewPostgresMigrator создаёт мигратор поверх пула pgx
func NewPostgresMigrator(pool *pgxpool.Pool, logger *zap.Logger) (*Migrator, error) {
	// Goose работает с *sql.DB, поэтому создаём его из конфига пула
	db := stdlib.OpenDBFromPool(pool)
	return newMigrator(db, true, "postgres", logger)
}

// NewSQLiteMigrator создаёт мигратор для файла SQLite
func NewSQLiteMigrator(db *sql.DB, logger *zap.Logger) (*Migrator, error) {
	return newMigrator(db, false, "sqlite3", logger)
}

func newMigrator(db *sql.DB, ownsDB bool, dialect string, logger *zap.Logger) (*Migrator, error) {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect(dialect); err != nil {
		return nil, fmt.Errorf("set goose dialect: %w", err)
	}

	return &Migrator{
		db:      db,
		ownsDB:  ownsDB,
		dialect: dialect,
		logger:  logger,
	}, nil
}

// Run применяет все pending миграции
func (mg *Migrator) Run(ctx context.Context) error {
	mg.logger.Info("Applying database migrations", zap.String("dialect", mg.dialect))

	err := goose.UpContext(ctx, mg.db, migrations.Dir(mg.dialect))
	if err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	version, err := mg.Version(ctx)
	if err != nil {
		return err
	}

	mg.logger.Info("Migrations applied successfully", zap.Int64("version", version))
	return nil
}

// Version показывает текущую версию миграций
func (mg *Migrator) Version(ctx context.Context) (int64, error) {
	version, err := goose.GetDBVersionContext(ctx, mg.db)
	if err != nil {
		return 0, fmt.Errorf("get version: %w", err)
	}
	return version, nil
}

// Close закрывает соединение мигратора
func (mg *Migrator) Close() error {
	// Пул и файл SQLite закрываются в main, здесь только обёртка над пулом
	if mg.ownsDB && mg.db != nil {
		return mg.db.Close()
	}
	return nil
}
