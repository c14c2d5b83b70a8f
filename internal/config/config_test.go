package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(values map[string]string) func(string) string {
	return func(key string) string { return values[key] }
}

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv(env(map[string]string{
		"DB_DSN":      "postgres://localhost/school",
		"TEACHER_IDS": "111, 222",
	}))
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, DriverPostgres, cfg.DBDriver)
	assert.Equal(t, []int64{111, 222}, cfg.TeacherIDs)
	assert.Equal(t, int64(1800), cfg.DefaultLessonPrice)
	assert.Equal(t, "Europe/Moscow", cfg.Timezone)
	assert.Equal(t, 1, cfg.RequestRetentionWeeks)
	assert.Equal(t, 15, cfg.ReminderHour)
	assert.Equal(t, 8, cfg.SweepHour)
	assert.Equal(t, defaultSchoolAddress, cfg.SchoolAddress)
	assert.Empty(t, cfg.HTTPAddr)
}

func TestFromEnv_MemoryDriverNeedsNoDSN(t *testing.T) {
	cfg, err := FromEnv(env(map[string]string{
		"DB_DRIVER":            "Memory",
		"TEACHER_IDS":          "1",
		"DEFAULT_LESSON_PRICE": "2000",
		"REMINDER_HOUR":        "9",
	}))
	require.NoError(t, err)
	assert.Equal(t, DriverMemory, cfg.DBDriver)
	assert.Equal(t, int64(2000), cfg.DefaultLessonPrice)
	assert.Equal(t, 9, cfg.ReminderHour)
}

func TestFromEnv_AdminAPI(t *testing.T) {
	cfg, err := FromEnv(env(map[string]string{
		"DB_DRIVER":       "memory",
		"TEACHER_IDS":     "1",
		"HTTP_ADDR":       ":8080",
		"ADMIN_API_TOKEN": "secret",
		"CORS_ORIGINS":    "http://localhost:5173, ,https://school.example",
	}))
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, []string{"http://localhost:5173", "https://school.example"}, cfg.CORSOrigins)
}

func TestFromEnv_Errors(t *testing.T) {
	tests := []struct {
		name string
		vars map[string]string
	}{
		{"missing dsn", map[string]string{"TEACHER_IDS": "1"}},
		{"missing teachers", map[string]string{"DB_DSN": "x"}},
		{"bad teacher id", map[string]string{"DB_DSN": "x", "TEACHER_IDS": "1,abc"}},
		{"bad price", map[string]string{"DB_DSN": "x", "TEACHER_IDS": "1", "DEFAULT_LESSON_PRICE": "дорого"}},
		{"zero price", map[string]string{"DB_DSN": "x", "TEACHER_IDS": "1", "DEFAULT_LESSON_PRICE": "0"}},
		{"bad hour", map[string]string{"DB_DSN": "x", "TEACHER_IDS": "1", "REMINDER_HOUR": "24"}},
		{"negative retention", map[string]string{"DB_DSN": "x", "TEACHER_IDS": "1", "REQUEST_RETENTION_WEEKS": "-1"}},
		{"unknown driver", map[string]string{"DB_DRIVER": "mongo", "DB_DSN": "x", "TEACHER_IDS": "1"}},
		{"api without token", map[string]string{"DB_DSN": "x", "TEACHER_IDS": "1", "HTTP_ADDR": ":8080"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromEnv(env(tt.vars))
			assert.Error(t, err)
		})
	}
}
