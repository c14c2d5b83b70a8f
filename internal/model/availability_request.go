package model

import (
	"slices"
	"time"
)

// AvailabilityRequest заявка ученика: слоты, на которые он хотел бы записаться.
// Порядок сохраняется для отображения, дубликатов нет.
type AvailabilityRequest struct {
	ID            int64     `json:"id"`
	StudentID     int64     `json:"student_id"`
	SelectedSlots []string  `json:"selected_slots"`
	WeekTag       int       `json:"week_tag"` // ISO-неделя создания: год*100+неделя
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Has проверяет, выбран ли слот
func (r *AvailabilityRequest) Has(slotID string) bool {
	return r != nil && slices.Contains(r.SelectedSlots, slotID)
}

// NormalizeSlots убирает дубликаты и пустые id, сохраняя порядок
func NormalizeSlots(slotIDs []string) []string {
	seen := make(map[string]struct{}, len(slotIDs))
	result := make([]string, 0, len(slotIDs))
	for _, id := range slotIDs {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	return result
}

// Toggled возвращает набор слотов с добавленным или убранным slotID
func Toggled(slotIDs []string, slotID string) (result []string, added bool) {
	if idx := slices.Index(slotIDs, slotID); idx >= 0 {
		result = make([]string, 0, len(slotIDs)-1)
		result = append(result, slotIDs[:idx]...)
		result = append(result, slotIDs[idx+1:]...)
		return result, false
	}
	result = append(slices.Clone(slotIDs), slotID)
	return result, true
}
