package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"

	defaultSchoolAddress = "4-й Сыромятнический переулок, 3/5с3"
)

type Config struct {
	TelegramToken string `mapstructure:"TELEGRAM_TOKEN"`
	DBDriver      string `mapstructure:"DB_DRIVER"`
	DBDSN         string `mapstructure:"DB_DSN"`
	Environment   string `mapstructure:"ENV"`

	TeacherIDs            []int64 `mapstructure:"TEACHER_IDS"`
	DefaultLessonPrice    int64   `mapstructure:"DEFAULT_LESSON_PRICE"`
	Timezone              string  `mapstructure:"TIMEZONE"`
	RequestRetentionWeeks int     `mapstructure:"REQUEST_RETENTION_WEEKS"`
	ReminderHour          int     `mapstructure:"REMINDER_HOUR"`
	SweepHour             int     `mapstructure:"SWEEP_HOUR"`
	SchoolAddress         string  `mapstructure:"SCHOOL_ADDRESS"`

	HTTPAddr      string   `mapstructure:"HTTP_ADDR"`
	AdminAPIToken string   `mapstructure:"ADMIN_API_TOKEN"`
	CORSOrigins   []string `mapstructure:"CORS_ORIGINS"`
}

func Load() (*Config, error) {
	// Пытаемся загрузить .env файл (игнорируем ошибку, если файла нет)
	if err := godotenv.Load(".env"); err != nil {
		log.Println("⚠️  No .env file found, using environment variables")
	} else {
		log.Println("✅ Loaded configuration from .env file")
	}

	return FromEnv(os.Getenv)
}

// FromEnv собирает конфиг из произвольного источника переменных
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		TelegramToken: getenv("TELEGRAM_TOKEN"),
		DBDriver:      strings.ToLower(strings.TrimSpace(getenv("DB_DRIVER"))),
		DBDSN:         getenv("DB_DSN"),
		Environment:   getenv("ENV"),
		Timezone:      getenv("TIMEZONE"),
		SchoolAddress: getenv("SCHOOL_ADDRESS"),
		HTTPAddr:      getenv("HTTP_ADDR"),
		AdminAPIToken: getenv("ADMIN_API_TOKEN"),
		CORSOrigins:   splitList(getenv("CORS_ORIGINS")),
	}

	// Устанавливаем дефолтные значения
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.DBDriver == "" {
		cfg.DBDriver = DriverPostgres
	}
	if cfg.Timezone == "" {
		cfg.Timezone = "Europe/Moscow"
	}
	if cfg.SchoolAddress == "" {
		cfg.SchoolAddress = defaultSchoolAddress
	}

	var err error
	if cfg.DefaultLessonPrice, err = parseInt64(getenv, "DEFAULT_LESSON_PRICE", 1800); err != nil {
		return nil, err
	}
	if cfg.DefaultLessonPrice <= 0 {
		return nil, fmt.Errorf("DEFAULT_LESSON_PRICE must be positive")
	}

	retention, err := parseInt64(getenv, "REQUEST_RETENTION_WEEKS", 1)
	if err != nil {
		return nil, err
	}
	if retention < 0 {
		return nil, fmt.Errorf("REQUEST_RETENTION_WEEKS must not be negative")
	}
	cfg.RequestRetentionWeeks = int(retention)

	if cfg.ReminderHour, err = parseHour(getenv, "REMINDER_HOUR", 15); err != nil {
		return nil, err
	}
	if cfg.SweepHour, err = parseHour(getenv, "SWEEP_HOUR", 8); err != nil {
		return nil, err
	}

	if cfg.TeacherIDs, err = parseIDs(getenv("TEACHER_IDS")); err != nil {
		return nil, err
	}

	// Проверяем обязательные поля
	switch cfg.DBDriver {
	case DriverPostgres, DriverSQLite:
		if cfg.DBDSN == "" {
			return nil, fmt.Errorf("DB_DSN is required but not set")
		}
	case DriverMemory:
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER %q", cfg.DBDriver)
	}
	if len(cfg.TeacherIDs) == 0 {
		return nil, fmt.Errorf("TEACHER_IDS is required but not set")
	}
	if cfg.HTTPAddr != "" && cfg.AdminAPIToken == "" {
		return nil, fmt.Errorf("ADMIN_API_TOKEN is required when HTTP_ADDR is set")
	}

	return cfg, nil
}

// Location часовой пояс школы
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func (c *Config) GetDBDSN() string {
	return c.DBDSN
}

func parseInt64(getenv func(string) string, key string, def int64) (int64, error) {
	raw := strings.TrimSpace(getenv(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid number %q", key, raw)
	}
	return v, nil
}

func parseHour(getenv func(string) string, key string, def int64) (int, error) {
	hour, err := parseInt64(getenv, key, def)
	if err != nil {
		return 0, err
	}
	if hour < 0 || hour > 23 {
		return 0, fmt.Errorf("%s must be within 0..23", key)
	}
	return int(hour), nil
}

func splitList(raw string) []string {
	var items []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			items = append(items, part)
		}
	}
	return items
}

func parseIDs(raw string) ([]int64, error) {
	var ids []int64
	for _, part := range splitList(raw) {
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("TEACHER_IDS: invalid id %q", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
