package controller

import (
	"context"
	"time"

	"github.com/UrikezZ/52HZSchoolBot/internal/controller/callbacks"
	"github.com/UrikezZ/52HZSchoolBot/internal/controller/callbacks/callbacktypes"
	"github.com/UrikezZ/52HZSchoolBot/internal/controller/handlers"
	"github.com/UrikezZ/52HZSchoolBot/internal/controller/state"
	"github.com/UrikezZ/52HZSchoolBot/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// Services сервисы, которые использует бот
type Services struct {
	Users         *service.UserService
	Requests      *service.RequestService
	Lessons       *service.LessonService
	Balances      *service.BalanceService
	Confirmations *service.ConfirmationService
}

type BotController struct {
	bot             *bot.Bot
	handlers        *handlers.Handlers
	callbackHandler *callbacks.Handler
	logger          *zap.Logger
}

func NewBotController(
	botInstance *bot.Bot,
	services Services,
	clock service.Clock,
	location *time.Location,
	logger *zap.Logger,
) *BotController {
	// Создаём менеджер состояний
	stateManager := state.NewManager()

	// Создаём обработчики команд
	cmdHandlers := handlers.NewHandlers(
		services.Users,
		services.Requests,
		services.Lessons,
		services.Balances,
		services.Confirmations,
		stateManager,
		location,
		logger,
	)

	// Создаём callback handler с зависимостями
	callbackHandler := callbacks.NewHandler(&callbacktypes.Handler{
		UserService:         services.Users,
		RequestService:      services.Requests,
		LessonService:       services.Lessons,
		BalanceService:      services.Balances,
		ConfirmationService: services.Confirmations,
		StateManager:        stateManager,
		Clock:               clock,
		Location:            location,
		Logger:              logger,
	})

	return &BotController{
		bot:             botInstance,
		handlers:        cmdHandlers,
		callbackHandler: callbackHandler,
		logger:          logger,
	}
}

// RegisterHandlers регистрирует все обработчики команд
func (c *BotController) RegisterHandlers(ctx context.Context) error {
	// Регистрируем команды
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypeExact, c.handlers.HandleStart)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/help", bot.MatchTypeExact, c.handlers.HandleHelp)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/menu", bot.MatchTypeExact, c.handlers.HandleMenu)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/cancel", bot.MatchTypeExact, c.handlers.HandleCancel)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/mylessons", bot.MatchTypeExact, c.handlers.HandleMyLessons)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/balance", bot.MatchTypeExact, c.handlers.HandleBalance)

	// Команды для преподавателей
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/requests", bot.MatchTypeExact, c.handlers.HandleRequests)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/students", bot.MatchTypeExact, c.handlers.HandleStudents)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/clearrequests", bot.MatchTypeExact, c.handlers.HandleClearRequests)

	// Обработчик текстовых сообщений (для диалогов с состояниями)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "", bot.MatchTypePrefix, c.handlers.HandleTextMessage)

	// Обработчик нажатий на inline кнопки
	c.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "", bot.MatchTypePrefix, c.callbackHandler.HandleCallbackQuery)

	// Устанавливаем меню команд
	return c.setCommands(ctx)
}

// setCommands устанавливает список команд в меню бота
func (c *BotController) setCommands(ctx context.Context) error {
	commands := []models.BotCommand{
		{Command: "start", Description: "🚀 Начать работу с ботом"},
		{Command: "menu", Description: "🏠 Главное меню"},
		{Command: "mylessons", Description: "📚 Мои занятия"},
		{Command: "balance", Description: "💰 Мой баланс"},
		{Command: "requests", Description: "📨 Заявки (преподаватель)"},
		{Command: "students", Description: "👥 Ученики (преподаватель)"},
		{Command: "clearrequests", Description: "🧹 Очистить заявки (преподаватель)"},
		{Command: "cancel", Description: "❌ Отменить ввод"},
		{Command: "help", Description: "❓ Справка"},
	}

	_, err := c.bot.SetMyCommands(ctx, &bot.SetMyCommandsParams{
		Commands: commands,
	})

	if err != nil {
		c.logger.Error("Failed to set bot commands", zap.Error(err))
		return err
	}

	c.logger.Info("✅ Bot commands menu set")
	return nil
}

// Start запускает бота и блокируется до отмены ctx
func (c *BotController) Start(ctx context.Context) error {
	c.logger.Info("Starting bot...")
	c.bot.Start(ctx)
	return nil
}
