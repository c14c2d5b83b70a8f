package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/UrikezZ/52HZSchoolBot/internal/model"
)

type requestRepository struct {
	s *Store
}

const requestColumns = `id, student_id, selected_slots, week_tag, created_at, updated_at`

func scanRequest(row rowScanner) (*model.AvailabilityRequest, error) {
	var (
		req   model.AvailabilityRequest
		slots string
	)
	err := row.Scan(&req.ID, &req.StudentID, &slots, &req.WeekTag, &req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if req.SelectedSlots, err = decodeList(slots); err != nil {
		return nil, fmt.Errorf("decode selected slots: %w", err)
	}
	return &req, nil
}

func (r *requestRepository) Get(ctx context.Context, studentID int64) (*model.AvailabilityRequest, error) {
	req, err := scanRequest(r.s.q.QueryRowContext(ctx,
		`SELECT `+requestColumns+` FROM availability_requests WHERE student_id = ?`, studentID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get request: %w", err)
	}
	return req, nil
}

func (r *requestRepository) ListAll(ctx context.Context) ([]*model.AvailabilityRequest, error) {
	rows, err := r.s.q.QueryContext(ctx, `SELECT `+requestColumns+` FROM availability_requests ORDER BY id`)
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

func (r *requestRepository) Upsert(ctx context.Context, studentID int64, slotIDs []string, weekTag int) (*model.AvailabilityRequest, error) {
	slots, err := encodeList(model.NormalizeSlots(slotIDs))
	if err != nil {
		return nil, fmt.Errorf("encode selected slots: %w", err)
	}

	now := r.s.timestamp()
	_, err = r.s.q.ExecContext(ctx, `
		INSERT INTO availability_requests (student_id, selected_slots, week_tag, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (student_id) DO UPDATE
		SET selected_slots = excluded.selected_slots,
		    week_tag = excluded.week_tag,
		    updated_at = excluded.updated_at
	`, studentID, slots, weekTag, now, now)
	if err != nil {
		return nil, fmt.Errorf("upsert request: %w", err)
	}

	return r.Get(ctx, studentID)
}

// RemoveSlotFromAll читает и переписывает затронутые заявки, JSON-массив в SQL не правится
func (r *requestRepository) RemoveSlotFromAll(ctx context.Context, slotID string) (int, error) {
	requests, err := r.ListAll(ctx)
	if err != nil {
		return 0, err
	}

	now := r.s.timestamp()
	changed := 0
	for _, req := range requests {
		if !req.Has(slotID) {
			continue
		}

		kept := make([]string, 0, len(req.SelectedSlots))
		for _, id := range req.SelectedSlots {
			if id != slotID {
				kept = append(kept, id)
			}
		}
		slots, err := encodeList(kept)
		if err != nil {
			return changed, fmt.Errorf("encode selected slots: %w", err)
		}

		if _, err := r.s.q.ExecContext(ctx,
			`UPDATE availability_requests SET selected_slots = ?, updated_at = ? WHERE id = ?`,
			slots, now, req.ID,
		); err != nil {
			return changed, fmt.Errorf("remove slot from request: %w", err)
		}
		changed++
	}
	return changed, nil
}

func (r *requestRepository) Delete(ctx context.Context, studentID int64) error {
	if _, err := r.s.q.ExecContext(ctx, `DELETE FROM availability_requests WHERE student_id = ?`, studentID); err != nil {
		return fmt.Errorf("delete request: %w", err)
	}
	return nil
}

func (r *requestRepository) DeleteAll(ctx context.Context) (int, error) {
	res, err := r.s.q.ExecContext(ctx, `DELETE FROM availability_requests`)
	if err != nil {
		return 0, fmt.Errorf("delete all requests: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete all requests: %w", err)
	}
	return int(affected), nil
}
