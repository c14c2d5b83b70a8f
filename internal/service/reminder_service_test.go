package service

import (
	"context"
	"testing"
	"time"

	"github.com/UrikezZ/52HZSchoolBot/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addLesson(t *testing.T, f *fixture, studentID int64, slotID, label string) *model.ConfirmedLesson {
	t.Helper()
	lesson := &model.ConfirmedLesson{
		StudentID:   studentID,
		SlotID:      slotID,
		SlotLabel:   label,
		WeekOf:      time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC),
		ConfirmedBy: teacherID,
	}
	require.NoError(t, f.store.Lessons().Create(context.Background(), lesson))
	return lesson
}

func TestSendDueReminders(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	// GIVEN занятие завтра, послезавтра и нераспознанная подпись
	addLesson(t, f, studentA, "manual_a", "Вс 18.10.2026 15:00")
	addLesson(t, f, studentB, "manual_b", "Пн 19.10.2026 15:00")
	addLesson(t, f, studentB, "manual_c", "когда-нибудь")

	// WHEN запускаются напоминания
	sent, err := f.reminders.SendDueReminders(ctx)
	require.NoError(t, err)

	// THEN напоминание получил только A, преподаватель получил отчёт
	assert.Equal(t, 1, sent)
	assert.True(t, f.notifier.anyContains(studentA, "Напоминание о занятии"))
	assert.True(t, f.notifier.anyContains(studentA, "10:00 17.10"))
	assert.Empty(t, f.notifier.to(studentB))
	assert.True(t, f.notifier.anyContains(teacherID, "Отправлено 1 напоминание"))

	// повторный запуск ничего не шлёт
	sent, err = f.reminders.SendDueReminders(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, sent)
	assert.Len(t, f.notifier.to(studentA), 1)
}

func TestSendDueReminders_DeliveryFailureRetriesLater(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	addLesson(t, f, studentA, "manual_a", "Вс 18.10.2026 15:00")

	f.notifier.fail = true
	sent, err := f.reminders.SendDueReminders(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, sent)

	lessons, err := f.store.Lessons().ListForStudent(ctx, studentA)
	require.NoError(t, err)
	assert.False(t, lessons[0].ReminderSent)

	f.notifier.fail = false
	sent, err = f.reminders.SendDueReminders(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
}
