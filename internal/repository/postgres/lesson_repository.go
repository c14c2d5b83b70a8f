package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/UrikezZ/52HZSchoolBot/internal/model"
	"github.com/UrikezZ/52HZSchoolBot/internal/repository"
	"github.com/UrikezZ/52HZSchoolBot/internal/repository/base"
	"github.com/jackc/pgx/v5"
)

type LessonRepository struct {
	*base.Repository
}

func NewLessonRepository(db base.DBTX) *LessonRepository {
	return &LessonRepository{Repository: base.NewRepository(db)}
}

const lessonColumns = `id, student_id, slot_id, slot_label, week_of, confirmed_by,
	payment_type, is_manual, reminder_sent, created_at`

func scanLesson(row pgx.Row) (*model.ConfirmedLesson, error) {
	var lesson model.ConfirmedLesson
	err := row.Scan(
		&lesson.ID,
		&lesson.StudentID,
		&lesson.SlotID,
		&lesson.SlotLabel,
		&lesson.WeekOf,
		&lesson.ConfirmedBy,
		&lesson.PaymentType,
		&lesson.IsManual,
		&lesson.ReminderSent,
		&lesson.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &lesson, nil
}

func (r *LessonRepository) list(ctx context.Context, query string, args ...any) ([]*model.ConfirmedLesson, error) {
	rows, err := r.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list lessons: %w", err)
	}
	defer rows.Close()

	var lessons []*model.ConfirmedLesson
	for rows.Next() {
		lesson, err := scanLesson(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lesson: %w", err)
		}
		lessons = append(lessons, lesson)
	}

	return lessons, rows.Err()
}

// ListAll возвращает все занятия
func (r *LessonRepository) ListAll(ctx context.Context) ([]*model.ConfirmedLesson, error) {
	return r.list(ctx, `SELECT `+lessonColumns+` FROM confirmed_lessons ORDER BY id`)
}

// ListForStudent возвращает занятия ученика
func (r *LessonRepository) ListForStudent(ctx context.Context, studentID int64) ([]*model.ConfirmedLesson, error) {
	return r.list(ctx, `SELECT `+lessonColumns+` FROM confirmed_lessons WHERE student_id = $1 ORDER BY id`, studentID)
}

// IsSlotTaken проверяет, есть ли занятие на слоте этой недели
func (r *LessonRepository) IsSlotTaken(ctx context.Context, slotID string, weekOf time.Time) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM confirmed_lessons WHERE slot_id = $1 AND week_of = $2)`

	var taken bool
	if err := r.QueryRow(ctx, query, slotID, repository.NormalizeWeekOf(weekOf)).Scan(&taken); err != nil {
		return false, fmt.Errorf("check slot taken: %w", err)
	}
	return taken, nil
}

// Create сохраняет занятие. Повторный слот той же недели даёт ErrSlotTaken.
func (r *LessonRepository) Create(ctx context.Context, lesson *model.ConfirmedLesson) error {
	query := `
		INSERT INTO confirmed_lessons (student_id, slot_id, slot_label, week_of, confirmed_by, payment_type, is_manual)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, week_of, created_at
	`

	err := r.QueryRow(
		ctx, query,
		lesson.StudentID,
		lesson.SlotID,
		lesson.SlotLabel,
		repository.NormalizeWeekOf(lesson.WeekOf),
		lesson.ConfirmedBy,
		lesson.PaymentType,
		lesson.IsManual,
	).Scan(&lesson.ID, &lesson.WeekOf, &lesson.CreatedAt)

	if err != nil {
		if base.IsUniqueViolation(err) {
			return repository.ErrSlotTaken
		}
		return fmt.Errorf("create lesson: %w", err)
	}

	return nil
}

// DeleteBySlot удаляет самое позднее занятие ученика с этим slot_id
func (r *LessonRepository) DeleteBySlot(ctx context.Context, studentID int64, slotID string) (*model.ConfirmedLesson, error) {
	query := `
		DELETE FROM confirmed_lessons
		WHERE id = (
			SELECT id FROM confirmed_lessons
			WHERE student_id = $1 AND slot_id = $2
			ORDER BY week_of DESC, id DESC
			LIMIT 1
		)
		RETURNING ` + lessonColumns

	lesson, err := scanLesson(r.QueryRow(ctx, query, studentID, slotID))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("delete lesson: %w", err)
	}

	return lesson, nil
}

// MarkReminderSent отмечает отправку напоминания
func (r *LessonRepository) MarkReminderSent(ctx context.Context, lessonID int64) error {
	affected, err := r.ExecAffected(ctx, `UPDATE confirmed_lessons SET reminder_sent = TRUE WHERE id = $1`, lessonID)
	if err != nil {
		return fmt.Errorf("mark reminder sent: %w", err)
	}
	if affected == 0 {
		return repository.ErrNotFound
	}
	return nil
}
