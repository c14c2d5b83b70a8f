// Package repository описывает хранилище бота: пользователи, счета,
// подтверждённые занятия и заявки. Реализации: postgres, sqlite, memory.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/UrikezZ/52HZSchoolBot/internal/model"
)

var (
	// ErrSlotTaken слот уже занят другим занятием (нарушение уникальности)
	ErrSlotTaken = errors.New("slot already taken")
	// ErrNotFound запись не найдена там, где она обязана быть
	ErrNotFound = errors.New("not found")
)

// UserRepository профили учеников
type UserRepository interface {
	Save(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	List(ctx context.Context) ([]*model.User, error)
}

// BalanceRepository счета учеников. Счёт создаётся при первом обращении.
type BalanceRepository interface {
	// Get возвращает счёт, создавая его со значениями по умолчанию
	Get(ctx context.Context, studentID, defaultPrice int64) (*model.BalanceAccount, error)
	// GetForUpdate то же, что Get, но блокирует строку до конца транзакции
	GetForUpdate(ctx context.Context, studentID, defaultPrice int64) (*model.BalanceAccount, error)
	Save(ctx context.Context, account *model.BalanceAccount) error
}

// LessonRepository подтверждённые занятия. Уникальность (slot_id, week_of)
// обеспечивается хранилищем: Create возвращает ErrSlotTaken.
type LessonRepository interface {
	ListAll(ctx context.Context) ([]*model.ConfirmedLesson, error)
	ListForStudent(ctx context.Context, studentID int64) ([]*model.ConfirmedLesson, error)
	IsSlotTaken(ctx context.Context, slotID string, weekOf time.Time) (bool, error)
	Create(ctx context.Context, lesson *model.ConfirmedLesson) error
	// DeleteBySlot удаляет занятие ученика и возвращает его, nil если не найдено
	DeleteBySlot(ctx context.Context, studentID int64, slotID string) (*model.ConfirmedLesson, error)
	MarkReminderSent(ctx context.Context, lessonID int64) error
}

// RequestRepository заявки учеников, одна на ученика
type RequestRepository interface {
	Get(ctx context.Context, studentID int64) (*model.AvailabilityRequest, error)
	ListAll(ctx context.Context) ([]*model.AvailabilityRequest, error)
	// Upsert заменяет набор слотов целиком
	Upsert(ctx context.Context, studentID int64, slotIDs []string, weekTag int) (*model.AvailabilityRequest, error)
	// RemoveSlotFromAll убирает слот из всех заявок, возвращает число изменённых заявок
	RemoveSlotFromAll(ctx context.Context, slotID string) (int, error)
	Delete(ctx context.Context, studentID int64) error
	DeleteAll(ctx context.Context) (int, error)
}

// Store даёт доступ ко всем репозиториям и транзакциям
type Store interface {
	Users() UserRepository
	Balances() BalanceRepository
	Lessons() LessonRepository
	Requests() RequestRepository

	// WithTx выполняет fn в одной транзакции. Ошибка из fn откатывает все изменения.
	WithTx(ctx context.Context, fn func(tx Store) error) error
}

// NormalizeWeekOf приводит week_of к полуночи UTC той же календарной даты
func NormalizeWeekOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
