package postgres

import (
	"context"
	"fmt"

	"github.com/UrikezZ/52HZSchoolBot/internal/model"
	"github.com/UrikezZ/52HZSchoolBot/internal/repository/base"
	"github.com/jackc/pgx/v5"
)

type RequestRepository struct {
	*base.Repository
}

func NewRequestRepository(db base.DBTX) *RequestRepository {
	return &RequestRepository{Repository: base.NewRepository(db)}
}

const requestColumns = `id, student_id, selected_slots, week_tag, created_at, updated_at`

func scanRequest(row pgx.Row) (*model.AvailabilityRequest, error) {
	var req model.AvailabilityRequest
	err := row.Scan(
		&req.ID,
		&req.StudentID,
		&req.SelectedSlots,
		&req.WeekTag,
		&req.CreatedAt,
		&req.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// Get получает заявку ученика, nil если её нет
func (r *RequestRepository) Get(ctx context.Context, studentID int64) (*model.AvailabilityRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM availability_requests WHERE student_id = $1`

	req, err := scanRequest(r.QueryRow(ctx, query, studentID))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get request: %w", err)
	}

	return req, nil
}

// ListAll возвращает все заявки
func (r *RequestRepository) ListAll(ctx context.Context) ([]*model.AvailabilityRequest, error) {
	rows, err := r.Query(ctx, `SELECT `+requestColumns+` FROM availability_requests ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	defer rows.Close()

	var requests []*model.AvailabilityRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan request: %w", err)
		}
		requests = append(requests, req)
	}

	return requests, rows.Err()
}

// Upsert заменяет набор слотов заявки целиком
func (r *RequestRepository) Upsert(ctx context.Context, studentID int64, slotIDs []string, weekTag int) (*model.AvailabilityRequest, error) {
	query := `
		INSERT INTO availability_requests (student_id, selected_slots, week_tag)
		VALUES ($1, $2, $3)
		ON CONFLICT (student_id) DO UPDATE
		SET selected_slots = EXCLUDED.selected_slots,
		    week_tag = EXCLUDED.week_tag,
		    updated_at = NOW()
		RETURNING ` + requestColumns

	req, err := scanRequest(r.QueryRow(ctx, query, studentID, model.NormalizeSlots(slotIDs), weekTag))
	if err != nil {
		return nil, fmt.Errorf("upsert request: %w", err)
	}

	return req, nil
}

// RemoveSlotFromAll убирает слот из всех заявок
func (r *RequestRepository) RemoveSlotFromAll(ctx context.Context, slotID string) (int, error) {
	affected, err := r.ExecAffected(ctx, `
		UPDATE availability_requests
		SET selected_slots = array_remove(selected_slots, $1), updated_at = NOW()
		WHERE $1 = ANY(selected_slots)
	`, slotID)
	if err != nil {
		return 0, fmt.Errorf("remove slot from requests: %w", err)
	}
	return int(affected), nil
}

// Delete удаляет заявку ученика
func (r *RequestRepository) Delete(ctx context.Context, studentID int64) error {
	if _, err := r.ExecAffected(ctx, `DELETE FROM availability_requests WHERE student_id = $1`, studentID); err != nil {
		return fmt.Errorf("delete request: %w", err)
	}
	return nil
}

// DeleteAll удаляет все заявки
func (r *RequestRepository) DeleteAll(ctx context.Context) (int, error) {
	affected, err := r.ExecAffected(ctx, `DELETE FROM availability_requests`)
	if err != nil {
		return 0, fmt.Errorf("delete all requests: %w", err)
	}
	return int(affected), nil
}
