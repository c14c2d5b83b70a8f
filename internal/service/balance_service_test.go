package service

import (
	"context"
	"testing"

	"github.com/UrikezZ/52HZSchoolBot/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBalanceService_LazyDefaultAccount(t *testing.T) {
	f := newFixture(t)

	acc := f.balance(t, 42)
	assert.Equal(t, 0, acc.LessonsLeft)
	assert.Equal(t, int64(0), acc.Balance)
	assert.Equal(t, int64(model.DefaultLessonPrice), acc.LessonPrice)
}

func TestBalanceService_Credits(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	acc, err := f.balances.CreditLessons(ctx, teacherID, studentA, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, acc.LessonsLeft)
	assert.Equal(t, 4, acc.TotalPaidLessons)

	acc, err = f.balances.CreditDeposit(ctx, teacherID, studentA, 5000)
	require.NoError(t, err)
	assert.Equal(t, int64(5000), acc.Balance)
	assert.True(t, f.notifier.anyContains(studentA, "Баланс пополнен"))

	acc, err = f.balances.SetPrice(ctx, teacherID, studentA, 2500)
	require.NoError(t, err)
	assert.Equal(t, int64(2500), acc.LessonPrice)

	acc, err = f.balances.SetNotes(ctx, teacherID, studentA, "  абонемент до ноября ")
	require.NoError(t, err)
	assert.Equal(t, "абонемент до ноября", acc.Notes)

	stored := f.balance(t, studentA)
	assert.Equal(t, 4, stored.LessonsLeft)
	assert.Equal(t, int64(5000), stored.Balance)
	assert.Equal(t, int64(2500), stored.LessonPrice)
}

func TestBalanceService_Validation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.balances.CreditLessons(ctx, teacherID, studentA, 0)
	assert.ErrorIs(t, err, ErrValidation)
	_, err = f.balances.CreditDeposit(ctx, teacherID, studentA, -100)
	assert.ErrorIs(t, err, ErrValidation)
	_, err = f.balances.SetPrice(ctx, teacherID, studentA, 0)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.balances.CreditLessons(ctx, studentA, studentA, 10)
	assert.ErrorIs(t, err, ErrAccessDenied)
	assert.Equal(t, 0, f.balance(t, studentA).LessonsLeft)
}

func TestBalanceService_ChargeLesson(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	acc, payment, err := f.balances.ChargeLesson(ctx, teacherID, studentA)
	require.NoError(t, err)
	assert.Equal(t, "добавлен долг 1800 руб.", payment)
	assert.Equal(t, int64(-1800), acc.Balance)

	_, payment, err = f.balances.ChargeLesson(ctx, teacherID, studentA)
	require.NoError(t, err)
	assert.Equal(t, "долг увеличен на 1800 руб.", payment)
	assert.Equal(t, int64(-3600), f.balance(t, studentA).Balance)
}

func TestBalanceService_Statistics(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.confirm.BatchConfirm(ctx, teacherID, studentA, []string{"day0_1300", "day1_1300"})
	require.NoError(t, err)

	// прошли сутки после первого занятия
	f.now = f.now.AddDate(0, 0, 5)

	stats, err := f.balances.Statistics(ctx, teacherID, studentA)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalLessons)
	assert.Equal(t, 1, stats.Completed)
	assert.Equal(t, 1, stats.Upcoming)
	assert.Equal(t, 1, stats.Account.TotalCompletedLessons)

	_, err = f.balances.Statistics(ctx, studentA, studentA)
	assert.ErrorIs(t, err, ErrAccessDenied)
}
