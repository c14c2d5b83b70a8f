package callbacktypes

import (
	"time"

	"github.com/UrikezZ/52HZSchoolBot/internal/controller/state"
	"github.com/UrikezZ/52HZSchoolBot/internal/service"
	"go.uber.org/zap"
)

// Handler содержит общие зависимости для всех callback handlers
type Handler struct {
	UserService         *service.UserService
	RequestService      *service.RequestService
	LessonService       *service.LessonService
	BalanceService      *service.BalanceService
	ConfirmationService *service.ConfirmationService
	StateManager        *state.Manager
	Clock               service.Clock
	Location            *time.Location
	Logger              *zap.Logger
}

// Now текущее время в часовом поясе школы
func (h *Handler) Now() time.Time {
	return h.Clock().In(h.Location)
}
