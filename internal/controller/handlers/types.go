package handlers

import (
	"time"

	"github.com/UrikezZ/52HZSchoolBot/internal/controller/state"
	"github.com/UrikezZ/52HZSchoolBot/internal/service"
	"go.uber.org/zap"
)

// Handlers содержит все зависимости для обработки команд и текстовых диалогов
type Handlers struct {
	userService         *service.UserService
	requestService      *service.RequestService
	lessonService       *service.LessonService
	balanceService      *service.BalanceService
	confirmationService *service.ConfirmationService
	stateManager        *state.Manager
	location            *time.Location
	logger              *zap.Logger
}

// NewHandlers создаёт новый обработчик команд
func NewHandlers(
	userService *service.UserService,
	requestService *service.RequestService,
	lessonService *service.LessonService,
	balanceService *service.BalanceService,
	confirmationService *service.ConfirmationService,
	stateManager *state.Manager,
	location *time.Location,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		userService:         userService,
		requestService:      requestService,
		lessonService:       lessonService,
		balanceService:      balanceService,
		confirmationService: confirmationService,
		stateManager:        stateManager,
		location:            location,
		logger:              logger,
	}
}
