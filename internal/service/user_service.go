package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/UrikezZ/52HZSchoolBot/internal/model"
	"github.com/UrikezZ/52HZSchoolBot/internal/repository"
	"go.uber.org/zap"
)

// UserService профили учеников, источник имён и инструментов для подписей
type UserService struct {
	store  repository.Store
	auth   Authorizer
	logger *zap.Logger
}

func NewUserService(store repository.Store, auth Authorizer, logger *zap.Logger) *UserService {
	return &UserService{
		store:  store,
		auth:   auth,
		logger: logger,
	}
}

// Register создаёт пустой профиль при первом /start. Возвращает профиль и признак новизны.
func (s *UserService) Register(ctx context.Context, telegramID int64) (*model.User, bool, error) {
	existing, err := s.store.Users().GetByID(ctx, telegramID)
	if err != nil {
		return nil, false, fmt.Errorf("check existing user: %w", err)
	}
	if existing != nil {
		return existing, false, nil
	}

	user := &model.User{ID: telegramID}
	if err := s.store.Users().Save(ctx, user); err != nil {
		return nil, false, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("New user registered", zap.Int64("telegram_id", telegramID))
	return user, true, nil
}

// DefaultStudyFormat формат обучения, если ученик его не указал
const DefaultStudyFormat = "очная"

// ProfileInput данные анкеты ученика
type ProfileInput struct {
	FullName    string
	Birthdate   string // ДД.ММ.ГГГГ или пусто
	Instruments []string
	Goals       string
	StudyFormat string
}

// SaveProfile заполняет анкету. Пустой формат обучения заменяется на очный.
func (s *UserService) SaveProfile(ctx context.Context, telegramID int64, in ProfileInput) (*model.User, error) {
	fullName := strings.TrimSpace(in.FullName)
	if fullName == "" {
		return nil, validationError("full name is empty")
	}

	var cleaned []string
	for _, instrument := range in.Instruments {
		if instrument = strings.TrimSpace(instrument); instrument != "" {
			cleaned = append(cleaned, instrument)
		}
	}

	studyFormat := strings.TrimSpace(in.StudyFormat)
	if studyFormat == "" {
		studyFormat = DefaultStudyFormat
	}

	user, err := s.store.Users().GetByID(ctx, telegramID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		user = &model.User{ID: telegramID}
	}
	user.FullName = fullName
	user.Birthdate = strings.TrimSpace(in.Birthdate)
	user.Instruments = cleaned
	user.Goals = strings.TrimSpace(in.Goals)
	user.StudyFormat = studyFormat

	if err := s.store.Users().Save(ctx, user); err != nil {
		return nil, fmt.Errorf("save profile: %w", err)
	}

	s.logger.Info("Profile updated",
		zap.Int64("telegram_id", telegramID),
		zap.Int("instruments", len(cleaned)),
	)
	return user, nil
}

// Get профиль или nil
func (s *UserService) Get(ctx context.Context, telegramID int64) (*model.User, error) {
	return s.store.Users().GetByID(ctx, telegramID)
}

// Profile как Get, но для неизвестного id отдаёт заглушку с "Неизвестно"
func (s *UserService) Profile(ctx context.Context, telegramID int64) (*model.User, error) {
	user, err := s.store.Users().GetByID(ctx, telegramID)
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	if user == nil {
		return &model.User{ID: telegramID}, nil
	}
	return user, nil
}

// Students все зарегистрированные, кроме преподавателей
func (s *UserService) Students(ctx context.Context) ([]*model.User, error) {
	users, err := s.store.Users().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	students := make([]*model.User, 0, len(users))
	for _, u := range users {
		if !s.auth.IsTeacher(u.ID) {
			students = append(students, u)
		}
	}
	return students, nil
}

func (s *UserService) IsTeacher(telegramID int64) bool {
	return s.auth.IsTeacher(telegramID)
}
