package service

import (
	"fmt"
	"slices"
	"sync"
)

// ReviewState этап разбора заявки преподавателем
type ReviewState string

const (
	ReviewReviewing  ReviewState = "reviewing"
	ReviewConfirming ReviewState = "confirming"
	ReviewDone       ReviewState = "done"
)

// ReviewSession отметки преподавателя по одной заявке. Живёт только в памяти
// диалога и в хранилище не пишется.
type ReviewSession struct {
	StudentID  int64
	Candidates []Candidate

	mu     sync.Mutex
	state  ReviewState
	marked []string
}

func NewReviewSession(studentID int64, candidates []Candidate) *ReviewSession {
	return &ReviewSession{
		StudentID:  studentID,
		Candidates: slices.Clone(candidates),
		state:      ReviewReviewing,
	}
}

func (r *ReviewSession) State() ReviewState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *ReviewSession) isCandidate(slotID string) bool {
	for _, c := range r.Candidates {
		if c.SlotID == slotID {
			return true
		}
	}
	return false
}

// Toggle отмечает слот или снимает отметку, возвращает новое состояние отметки
func (r *ReviewSession) Toggle(slotID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != ReviewReviewing {
		return false, validationError("review is %s", r.state)
	}
	if !r.isCandidate(slotID) {
		return false, validationError("slot %q is not in the request", slotID)
	}

	if idx := slices.Index(r.marked, slotID); idx >= 0 {
		r.marked = slices.Delete(r.marked, idx, idx+1)
		return false, nil
	}
	r.marked = append(r.marked, slotID)
	return true, nil
}

func (r *ReviewSession) IsMarked(slotID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Contains(r.marked, slotID)
}

// Marked отмеченные слоты в порядке отметки
func (r *ReviewSession) Marked() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.marked)
}

func (r *ReviewSession) beginConfirm() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != ReviewReviewing {
		return fmt.Errorf("%w: review is %s", ErrValidation, r.state)
	}
	if len(r.marked) == 0 {
		return validationError("no slots marked")
	}
	r.state = ReviewConfirming
	return nil
}

func (r *ReviewSession) finish() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = ReviewDone
}
