package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestScheduler_Tick(t *testing.T) {
	loc := time.FixedZone("MSK", 3*60*60)
	now := time.Date(2026, 10, 19, 7, 59, 0, 0, loc) // понедельник
	monday := time.Monday

	var daily, weekly int
	s := NewScheduler(loc, func() time.Time { return now }, zap.NewNop(),
		Job{Name: "reminders", Hour: 15, Run: func(context.Context) error { daily++; return nil }},
		Job{Name: "sweep", Hour: 8, Weekday: &monday, Run: func(context.Context) error { weekly++; return errors.New("boom") }},
	)
	ctx := context.Background()

	s.Tick(ctx)
	assert.Equal(t, 0, weekly, "before the hour")

	now = now.Add(2 * time.Minute)
	s.Tick(ctx)
	s.Tick(ctx)
	assert.Equal(t, 1, weekly, "once per day even after a failure")
	assert.Equal(t, 0, daily)

	now = time.Date(2026, 10, 19, 15, 0, 0, 0, loc)
	s.Tick(ctx)
	assert.Equal(t, 1, daily)

	// вторник: напоминания снова, очистка нет
	now = now.AddDate(0, 0, 1)
	s.Tick(ctx)
	assert.Equal(t, 2, daily)
	assert.Equal(t, 1, weekly)
}
