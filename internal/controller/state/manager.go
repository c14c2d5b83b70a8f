package state

import (
	"sync"

	"github.com/UrikezZ/52HZSchoolBot/internal/service"
)

type reviewKey struct {
	teacherID int64
	studentID int64
}

// Manager управляет состояниями пользователей и сессиями разбора заявок.
// Сессии разбора хранятся отдельно: /cancel сбрасывает диалог, но не отметки.
type Manager struct {
	mu      sync.RWMutex
	states  map[int64]*UserData // telegramID -> UserData
	reviews map[reviewKey]*service.ReviewSession
}

// NewManager создаёт новый менеджер состояний
func NewManager() *Manager {
	return &Manager{
		states:  make(map[int64]*UserData),
		reviews: make(map[reviewKey]*service.ReviewSession),
	}
}

// GetState получает текущее состояние пользователя
func (sm *Manager) GetState(telegramID int64) UserState {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if userData, exists := sm.states[telegramID]; exists {
		return userData.State
	}
	return StateNone
}

// SetState устанавливает состояние пользователя
func (sm *Manager) SetState(telegramID int64, state UserState) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if state == StateNone {
		delete(sm.states, telegramID)
		return
	}

	if _, exists := sm.states[telegramID]; !exists {
		sm.states[telegramID] = &UserData{
			State: state,
			Data:  make(map[string]interface{}),
		}
	} else {
		sm.states[telegramID].State = state
	}
}

// GetData получает временные данные пользователя
func (sm *Manager) GetData(telegramID int64, key string) (interface{}, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if userData, exists := sm.states[telegramID]; exists {
		value, ok := userData.Data[key]
		return value, ok
	}
	return nil, false
}

// GetInt64 получает числовые данные пользователя
func (sm *Manager) GetInt64(telegramID int64, key string) (int64, bool) {
	value, ok := sm.GetData(telegramID, key)
	if !ok {
		return 0, false
	}
	id, ok := value.(int64)
	return id, ok
}

// SetData устанавливает временные данные пользователя
func (sm *Manager) SetData(telegramID int64, key string, value interface{}) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if _, exists := sm.states[telegramID]; !exists {
		sm.states[telegramID] = &UserData{
			State: StateNone,
			Data:  make(map[string]interface{}),
		}
	}
	sm.states[telegramID].Data[key] = value
}

// ClearState очищает состояние и данные пользователя
func (sm *Manager) ClearState(telegramID int64) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	delete(sm.states, telegramID)
}

// Review возвращает сессию разбора заявки ученика или создаёт её через create
func (sm *Manager) Review(teacherID, studentID int64, create func() *service.ReviewSession) *service.ReviewSession {
	key := reviewKey{teacherID: teacherID, studentID: studentID}

	sm.mu.Lock()
	defer sm.mu.Unlock()

	if session, ok := sm.reviews[key]; ok && session.State() == service.ReviewReviewing {
		return session
	}
	if create == nil {
		return nil
	}
	session := create()
	sm.reviews[key] = session
	return session
}

// DropReview удаляет сессию разбора
func (sm *Manager) DropReview(teacherID, studentID int64) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	delete(sm.reviews, reviewKey{teacherID: teacherID, studentID: studentID})
}

// DropStudentReviews удаляет сессии всех преподавателей по заявке ученика
func (sm *Manager) DropStudentReviews(studentID int64) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	for key := range sm.reviews {
		if key.studentID == studentID {
			delete(sm.reviews, key)
		}
	}
}
