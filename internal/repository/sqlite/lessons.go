package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/UrikezZ/52HZSchoolBot/internal/model"
	"github.com/UrikezZ/52HZSchoolBot/internal/repository"
)

type lessonRepository struct {
	s *Store
}

const lessonColumns = `id, student_id, slot_id, slot_label, week_of, confirmed_by,
	payment_type, is_manual, reminder_sent, created_at`

func scanLesson(row rowScanner) (*model.ConfirmedLesson, error) {
	var (
		lesson model.ConfirmedLesson
		weekOf string
	)
	err := row.Scan(
		&lesson.ID,
		&lesson.StudentID,
		&lesson.SlotID,
		&lesson.SlotLabel,
		&weekOf,
		&lesson.ConfirmedBy,
		&lesson.PaymentType,
		&lesson.IsManual,
		&lesson.ReminderSent,
		&lesson.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if lesson.WeekOf, err = parseWeekOf(weekOf); err != nil {
		return nil, fmt.Errorf("parse week_of: %w", err)
	}
	return &lesson, nil
}

func (r *lessonRepository) list(ctx context.Context, query string, args ...any) ([]*model.ConfirmedLesson, error) {
	rows, err := r.s.q.QueryContext(ctx, query, args...)
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

func (r *lessonRepository) ListAll(ctx context.Context) ([]*model.ConfirmedLesson, error) {
	return r.list(ctx, `SELECT `+lessonColumns+` FROM confirmed_lessons ORDER BY id`)
}

func (r *lessonRepository) ListForStudent(ctx context.Context, studentID int64) ([]*model.ConfirmedLesson, error) {
	return r.list(ctx, `SELECT `+lessonColumns+` FROM confirmed_lessons WHERE student_id = ? ORDER BY id`, studentID)
}

func (r *lessonRepository) IsSlotTaken(ctx context.Context, slotID string, weekOf time.Time) (bool, error) {
	var taken bool
	err := r.s.q.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM confirmed_lessons WHERE slot_id = ? AND week_of = ?)`,
		slotID, formatWeekOf(weekOf),
	).Scan(&taken)
	if err != nil {
		return false, fmt.Errorf("check slot taken: %w", err)
	}
	return taken, nil
}

func (r *lessonRepository) Create(ctx context.Context, lesson *model.ConfirmedLesson) error {
	now := r.s.timestamp()
	res, err := r.s.q.ExecContext(ctx, `
		INSERT INTO confirmed_lessons (student_id, slot_id, slot_label, week_of, confirmed_by,
			payment_type, is_manual, reminder_sent, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, 0, ?)
	`, lesson.StudentID, lesson.SlotID, lesson.SlotLabel, formatWeekOf(lesson.WeekOf),
		lesson.ConfirmedBy, lesson.PaymentType, lesson.IsManual, now)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrSlotTaken
		}
		return fmt.Errorf("create lesson: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("lesson id: %w", err)
	}
	lesson.ID = id
	lesson.WeekOf = repository.NormalizeWeekOf(lesson.WeekOf)
	lesson.ReminderSent = false
	lesson.CreatedAt = now
	return nil
}

func (r *lessonRepository) DeleteBySlot(ctx context.Context, studentID int64, slotID string) (*model.ConfirmedLesson, error) {
	lesson, err := scanLesson(r.s.q.QueryRowContext(ctx, `
		SELECT `+lessonColumns+` FROM confirmed_lessons
		WHERE student_id = ? AND slot_id = ?
		ORDER BY week_of DESC, id DESC
		LIMIT 1
	`, studentID, slotID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find lesson: %w", err)
	}

	if _, err := r.s.q.ExecContext(ctx, `DELETE FROM confirmed_lessons WHERE id = ?`, lesson.ID); err != nil {
		return nil, fmt.Errorf("delete lesson: %w", err)
	}
	return lesson, nil
}

func (r *lessonRepository) MarkReminderSent(ctx context.Context, lessonID int64) error {
	res, err := r.s.q.ExecContext(ctx, `UPDATE confirmed_lessons SET reminder_sent = 1 WHERE id = ?`, lessonID)
	if err != nil {
		return fmt.Errorf("mark reminder sent: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark reminder sent: %w", err)
	}
	if affected == 0 {
		return repository.ErrNotFound
	}
	return nil
}
