package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/UrikezZ/52HZSchoolBot/internal/api"
	"github.com/UrikezZ/52HZSchoolBot/internal/app"
	"github.com/UrikezZ/52HZSchoolBot/internal/config"
	"github.com/UrikezZ/52HZSchoolBot/internal/controller"
	"github.com/UrikezZ/52HZSchoolBot/internal/notify"
	"github.com/UrikezZ/52HZSchoolBot/internal/repository"
	"github.com/UrikezZ/52HZSchoolBot/internal/repository/memory"
	"github.com/UrikezZ/52HZSchoolBot/internal/repository/postgres"
	"github.com/UrikezZ/52HZSchoolBot/internal/repository/sqlite"
	"github.com/UrikezZ/52HZSchoolBot/internal/service"
	"github.com/go-telegram/bot"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment)
	defer logger.Sync()

	logger.Sugar().Infow("Starting school bot",
		"environment", cfg.Environment,
		"db_driver", cfg.DBDriver,
		"teachers", len(cfg.TeacherIDs),
		"token_length", len(cfg.TelegramToken))

	if cfg.TelegramToken == "" {
		logger.Fatal("TELEGRAM_TOKEN is required but not set")
	}

	location, err := cfg.Location()
	if err != nil {
		logger.Fatal("Invalid timezone", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to open storage", zap.Error(err))
	}
	defer closeStore()

	// Бот нужен раньше сервисов: через него идут уведомления
	b, err := bot.New(cfg.TelegramToken, bot.WithErrorsHandler(func(err error) {
		logger.Warn("Telegram polling error", zap.Error(err))
	}))
	if err != nil {
		logger.Fatal("Failed to create bot", zap.Error(err))
	}
	notifier := notify.NewTelegram(b)

	clock := service.Clock(time.Now)
	auth := service.NewTeacherAllowList(cfg.TeacherIDs)
	settings := service.Settings{
		DefaultLessonPrice: cfg.DefaultLessonPrice,
		SchoolAddress:      cfg.SchoolAddress,
		Location:           location,
		RetentionWeeks:     cfg.RequestRetentionWeeks,
	}

	users := service.NewUserService(store, auth, logger)
	services := controller.Services{
		Users:         users,
		Requests:      service.NewRequestService(store, users, auth, notifier, settings, clock, logger),
		Lessons:       service.NewLessonService(store, settings, clock, logger),
		Balances:      service.NewBalanceService(store, auth, notifier, settings, clock, logger),
		Confirmations: service.NewConfirmationService(store, users, auth, notifier, settings, clock, logger),
	}
	reminders := service.NewReminderService(store, auth, notifier, settings, clock, logger)

	botController := controller.NewBotController(b, services, clock, location, logger)
	if err := botController.RegisterHandlers(ctx); err != nil {
		// Меню команд не критично, бот работает и без него
		logger.Warn("Failed to register bot commands", zap.Error(err))
	}

	monday := time.Monday
	scheduler := app.NewScheduler(location, clock, logger,
		app.Job{
			Name: "lesson_reminders",
			Hour: cfg.ReminderHour,
			Run: func(ctx context.Context) error {
				_, err := reminders.SendDueReminders(ctx)
				return err
			},
		},
		app.Job{
			Name:    "weekly_request_sweep",
			Hour:    cfg.SweepHour,
			Weekday: &monday,
			Run: func(ctx context.Context) error {
				_, err := services.Requests.WeeklySweep(ctx)
				return err
			},
		},
	)
	scheduler.Start(ctx)

	var server *http.Server
	if cfg.HTTPAddr != "" {
		handler := api.NewHandler(api.Deps{
			Users:         services.Users,
			Requests:      services.Requests,
			Lessons:       services.Lessons,
			Balances:      services.Balances,
			Confirmations: services.Confirmations,
			Clock:         clock,
			Location:      location,
			TeacherID:     cfg.TeacherIDs[0],
			Token:         cfg.AdminAPIToken,
			Logger:        logger,
		})
		server = &http.Server{
			Addr:         cfg.HTTPAddr,
			Handler:      api.NewRouter(handler, cfg.CORSOrigins),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		}
		go func() {
			logger.Info("🚀 Admin API listening", zap.String("addr", cfg.HTTPAddr))
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Admin API failed", zap.Error(err))
				stop()
			}
		}()
	}

	// Блокируется до сигнала
	_ = botController.Start(ctx)

	logger.Info("Shutting down...")
	scheduler.Stop()

	if server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("Admin API forced to shutdown", zap.Error(err))
		}
	}

	logger.Info("Bot stopped")
}

// openStore открывает хранилище по DB_DRIVER и применяет миграции
func openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repository.Store, func(), error) {
	switch cfg.DBDriver {
	case config.DriverPostgres:
		pool, err := pgxpool.New(ctx, cfg.GetDBDSN())
		if err != nil {
			return nil, nil, fmt.Errorf("connect to postgres: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("ping postgres: %w", err)
		}

		migrator, err := app.NewPostgresMigrator(pool, logger)
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
		defer migrator.Close()
		if err := migrator.Run(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return postgres.New(pool), pool.Close, nil

	case config.DriverSQLite:
		db, err := sqlite.Open(cfg.GetDBDSN())
		if err != nil {
			return nil, nil, err
		}
		migrator, err := app.NewSQLiteMigrator(db, logger)
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		if err := migrator.Run(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		return sqlite.New(db), func() { _ = db.Close() }, nil

	default:
		logger.Warn("Using in-memory storage, data will be lost on restart")
		return memory.New(), func() {}, nil
	}
}
