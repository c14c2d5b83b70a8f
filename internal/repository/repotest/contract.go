// Package repotest общий набор проверок для реализаций repository.Store.
package repotest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/UrikezZ/52HZSchoolBot/internal/model"
	"github.com/UrikezZ/52HZSchoolBot/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run прогоняет контракт хранилища. newStore должен отдавать пустое хранилище.
func Run(t *testing.T, newStore func(t *testing.T) repository.Store) {
	t.Run("users", func(t *testing.T) { testUsers(t, newStore(t)) })
	t.Run("balances", func(t *testing.T) { testBalances(t, newStore(t)) })
	t.Run("lessons", func(t *testing.T) { testLessons(t, newStore(t)) })
	t.Run("requests", func(t *testing.T) { testRequests(t, newStore(t)) })
	t.Run("transaction rollback", func(t *testing.T) { testRollback(t, newStore(t)) })
}

var weekOf = time.Date(2026, 10, 21, 0, 0, 0, 0, time.UTC)

func testUsers(t *testing.T, store repository.Store) {
	ctx := context.Background()

	missing, err := store.Users().GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, store.Users().Save(ctx, &model.User{ID: 2, FullName: "Борис", Instruments: []string{"Гитара"}}))
	require.NoError(t, store.Users().Save(ctx, &model.User{ID: 1, FullName: "Анна", Instruments: []string{"Вокал", "Фортепиано"}}))

	anna, err := store.Users().GetByID(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, anna)
	assert.Equal(t, []string{"Вокал", "Фортепиано"}, anna.Instruments)

	anna.Goals = "поступить в колледж"
	require.NoError(t, store.Users().Save(ctx, anna))

	users, err := store.Users().List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "Анна", users[0].FullName)
	assert.Equal(t, "поступить в колледж", users[0].Goals)
	assert.Equal(t, "Борис", users[1].FullName)
}

func testBalances(t *testing.T, store repository.Store) {
	ctx := context.Background()

	// GIVEN ученик без счёта
	// WHEN счёт запрашивают впервые
	acc, err := store.Balances().Get(ctx, 10, 1800)
	require.NoError(t, err)

	// THEN создаётся счёт по умолчанию
	assert.Equal(t, int64(10), acc.StudentID)
	assert.Equal(t, 0, acc.LessonsLeft)
	assert.Equal(t, int64(0), acc.Balance)
	assert.Equal(t, int64(1800), acc.LessonPrice)

	acc.CreditLessons(3)
	acc.Balance = -500
	acc.Notes = "платит по пятницам"
	require.NoError(t, store.Balances().Save(ctx, acc))

	again, err := store.Balances().Get(ctx, 10, 2500)
	require.NoError(t, err)
	assert.Equal(t, 3, again.LessonsLeft)
	assert.Equal(t, int64(-500), again.Balance)
	assert.Equal(t, int64(1800), again.LessonPrice, "existing price is kept")
	assert.Equal(t, "платит по пятницам", again.Notes)
	assert.Equal(t, 3, again.TotalPaidLessons)
}

func testLessons(t *testing.T, store repository.Store) {
	ctx := context.Background()

	taken, err := store.Lessons().IsSlotTaken(ctx, "day0_1300", weekOf)
	require.NoError(t, err)
	assert.False(t, taken)

	first := &model.ConfirmedLesson{
		StudentID:   1,
		SlotID:      "day0_1300",
		SlotLabel:   "Ср 21.10.2026 13:00",
		WeekOf:      weekOf,
		ConfirmedBy: 99,
		PaymentType: "списан 1 урок из предоплаты",
	}
	require.NoError(t, store.Lessons().Create(ctx, first))
	assert.NotZero(t, first.ID)

	taken, err = store.Lessons().IsSlotTaken(ctx, "day0_1300", weekOf)
	require.NoError(t, err)
	assert.True(t, taken)

	// тот же слот на следующей неделе свободен
	taken, err = store.Lessons().IsSlotTaken(ctx, "day0_1300", weekOf.AddDate(0, 0, 7))
	require.NoError(t, err)
	assert.False(t, taken)

	// GIVEN слот уже занят
	// WHEN другой ученик пытается занять его на той же неделе
	err = store.Lessons().Create(ctx, &model.ConfirmedLesson{
		StudentID: 2, SlotID: "day0_1300", SlotLabel: "Ср 21.10.2026 13:00", WeekOf: weekOf, ConfirmedBy: 99,
	})
	// THEN хранилище отвечает ErrSlotTaken
	assert.True(t, errors.Is(err, repository.ErrSlotTaken), "got %v", err)

	require.NoError(t, store.Lessons().Create(ctx, &model.ConfirmedLesson{
		StudentID: 2, SlotID: "day1_1400", SlotLabel: "Чт 22.10.2026 14:00", WeekOf: weekOf, ConfirmedBy: 99,
	}))

	all, err := store.Lessons().ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	mine, err := store.Lessons().ListForStudent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "day0_1300", mine[0].SlotID)
	assert.True(t, mine[0].WeekOf.Equal(weekOf))
	assert.False(t, mine[0].ReminderSent)

	require.NoError(t, store.Lessons().MarkReminderSent(ctx, first.ID))
	mine, err = store.Lessons().ListForStudent(ctx, 1)
	require.NoError(t, err)
	assert.True(t, mine[0].ReminderSent)

	assert.ErrorIs(t, store.Lessons().MarkReminderSent(ctx, 100500), repository.ErrNotFound)

	deleted, err := store.Lessons().DeleteBySlot(ctx, 1, "day0_1300")
	require.NoError(t, err)
	require.NotNil(t, deleted)
	assert.Equal(t, first.ID, deleted.ID)

	deleted, err = store.Lessons().DeleteBySlot(ctx, 1, "day0_1300")
	require.NoError(t, err)
	assert.Nil(t, deleted)

	taken, err = store.Lessons().IsSlotTaken(ctx, "day0_1300", weekOf)
	require.NoError(t, err)
	assert.False(t, taken)
}

func testRequests(t *testing.T, store repository.Store) {
	ctx := context.Background()

	missing, err := store.Requests().Get(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, missing)

	req, err := store.Requests().Upsert(ctx, 1, []string{"day0_1300", "day0_1400", "day0_1300", ""}, 42)
	require.NoError(t, err)
	assert.Equal(t, []string{"day0_1300", "day0_1400"}, req.SelectedSlots)
	assert.Equal(t, 42, req.WeekTag)

	_, err = store.Requests().Upsert(ctx, 2, []string{"day0_1300"}, 42)
	require.NoError(t, err)
	_, err = store.Requests().Upsert(ctx, 3, []string{"day2_1500"}, 42)
	require.NoError(t, err)

	// повторный Upsert заменяет набор целиком
	req, err = store.Requests().Upsert(ctx, 1, []string{"day0_1300", "day1_1300"}, 43)
	require.NoError(t, err)
	assert.Equal(t, []string{"day0_1300", "day1_1300"}, req.SelectedSlots)
	assert.Equal(t, 43, req.WeekTag)

	changed, err := store.Requests().RemoveSlotFromAll(ctx, "day0_1300")
	require.NoError(t, err)
	assert.Equal(t, 2, changed)

	req, err = store.Requests().Get(ctx, 2)
	require.NoError(t, err)
	require.NotNil(t, req)
	assert.Empty(t, req.SelectedSlots, "emptied request stays in place")

	req, err = store.Requests().Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"day1_1300"}, req.SelectedSlots)

	require.NoError(t, store.Requests().Delete(ctx, 3))
	all, err := store.Requests().ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	n, err := store.Requests().DeleteAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	all, err = store.Requests().ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func testRollback(t *testing.T, store repository.Store) {
	ctx := context.Background()
	boom := errors.New("boom")

	err := store.WithTx(ctx, func(tx repository.Store) error {
		acc, err := tx.Balances().GetForUpdate(ctx, 5, 1800)
		if err != nil {
			return err
		}
		acc.CreditLessons(4)
		if err := tx.Balances().Save(ctx, acc); err != nil {
			return err
		}
		if err := tx.Lessons().Create(ctx, &model.ConfirmedLesson{
			StudentID: 5, SlotID: "day3_1700", SlotLabel: "Сб 24.10.2026 17:00", WeekOf: weekOf, ConfirmedBy: 99,
		}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	acc, err := store.Balances().Get(ctx, 5, 1800)
	require.NoError(t, err)
	assert.Equal(t, 0, acc.LessonsLeft)

	taken, err := store.Lessons().IsSlotTaken(ctx, "day3_1700", weekOf)
	require.NoError(t, err)
	assert.False(t, taken)

	err = store.WithTx(ctx, func(tx repository.Store) error {
		_, err := tx.Requests().Upsert(ctx, 5, []string{"day3_1700"}, 1)
		return err
	})
	require.NoError(t, err)

	req, err := store.Requests().Get(ctx, 5)
	require.NoError(t, err)
	require.NotNil(t, req)
}
