package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToggleSlot(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	req, added, err := f.requests.ToggleSlot(ctx, studentA, "day0_1300")
	require.NoError(t, err)
	assert.True(t, added)
	assert.Equal(t, []string{"day0_1300"}, req.SelectedSlots)
	assert.Equal(t, WeekTag(saturday), req.WeekTag)

	req, _, err = f.requests.ToggleSlot(ctx, studentA, "day3_2000")
	require.NoError(t, err)
	assert.Equal(t, []string{"day0_1300", "day3_2000"}, req.SelectedSlots)

	req, added, err = f.requests.ToggleSlot(ctx, studentA, "day0_1300")
	require.NoError(t, err)
	assert.False(t, added)
	assert.Equal(t, []string{"day3_2000"}, req.SelectedSlots)
}

func TestToggleSlot_Rejects(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, _, err := f.requests.ToggleSlot(ctx, studentA, "day0_0900")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.confirm.BatchConfirm(ctx, teacherID, studentB, []string{"day0_1300"})
	require.NoError(t, err)

	_, _, err = f.requests.ToggleSlot(ctx, studentA, "day0_1300")
	assert.ErrorIs(t, err, ErrSlotTaken)
}

func TestSubmit(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.requests.Submit(ctx, studentA)
	assert.ErrorIs(t, err, ErrValidation)

	f.request(t, studentA, "day1_1300", "day0_1400")
	_, err = f.requests.Submit(ctx, studentA)
	require.NoError(t, err)

	require.Len(t, f.notifier.reviews, 1)
	review := f.notifier.reviews[0]
	assert.Equal(t, teacherID, review.teacherID)
	assert.Equal(t, studentA, review.studentID)
	assert.Equal(t, []Candidate{
		{SlotID: "day1_1300", Label: "Чт 22.10.2026 13:00"},
		{SlotID: "day0_1400", Label: "Ср 21.10.2026 14:00"},
	}, review.candidates)
}

func TestCandidates_StaleID(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.store.Requests().Upsert(ctx, studentA, []string{"day0_1300", "day7_1300"}, WeekTag(saturday))
	require.NoError(t, err)
	req, err := f.requests.Get(ctx, studentA)
	require.NoError(t, err)

	candidates := f.requests.Candidates(req)
	require.Len(t, candidates, 2)
	assert.Equal(t, "Слот day7_1300", candidates[1].Label)
}

func TestWeekTag(t *testing.T) {
	assert.Equal(t, 202642, WeekTag(saturday))
	assert.Equal(t, 202653, WeekTag(time.Date(2026, 12, 31, 12, 0, 0, 0, msk)))
	assert.Equal(t, 202701, WeekTag(time.Date(2027, 1, 4, 12, 0, 0, 0, msk)))
}

func TestWeeksBehind(t *testing.T) {
	tests := []struct {
		current, tag, want int
	}{
		{202642, 202642, 0},
		{202642, 202641, 1},
		{202642, 202638, 4},
		// 2026 год из 53 ISO-недель
		{202702, 202653, 2},
		{202702, 202652, 3},
		{202701, 202653, 1},
		// 2025 год из 52 недель
		{202602, 202551, 3},
		{202601, 202552, 1},
		// старые метки без года
		{202642, 41, 1},
		{202702, 53, 2},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, weeksBehind(tt.current, tt.tag), "current=%d tag=%d", tt.current, tt.tag)
	}
}

func TestSweepOlderThan_AcrossLongYear(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.now = time.Date(2027, 1, 11, 12, 0, 0, 0, msk)

	// GIVEN заявки 53-й и 52-й недель 2026 года, на 2 и 3 недели позади
	_, err := f.store.Requests().Upsert(ctx, studentA, []string{"day0_1300"}, 202653)
	require.NoError(t, err)
	_, err = f.store.Requests().Upsert(ctx, studentB, []string{"day0_1400"}, 202652)
	require.NoError(t, err)
	_, err = f.store.Requests().Upsert(ctx, 3, []string{"day0_1500"}, WeekTag(f.now))
	require.NoError(t, err)

	// WHEN удаляются заявки старше одной недели
	deleted, err := f.requests.SweepOlderThan(ctx, 1)
	require.NoError(t, err)

	// THEN остаётся только заявка текущей недели
	assert.Equal(t, 2, deleted)
	left, err := f.requests.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, int64(3), left[0].StudentID)
}

func TestSweepOlderThan_Idempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	current := WeekTag(saturday)

	// GIVEN заявки текущей, прошлой и позапрошлой недели
	_, err := f.store.Requests().Upsert(ctx, 1, []string{"day0_1300"}, current)
	require.NoError(t, err)
	_, err = f.store.Requests().Upsert(ctx, 2, []string{"day0_1400"}, current-1)
	require.NoError(t, err)
	_, err = f.store.Requests().Upsert(ctx, 3, []string{"day0_1500"}, current-2)
	require.NoError(t, err)

	// WHEN очистка запускается дважды подряд
	first, err := f.requests.SweepOlderThan(ctx, 1)
	require.NoError(t, err)
	afterFirst, err := f.requests.ListAll(ctx)
	require.NoError(t, err)

	second, err := f.requests.SweepOlderThan(ctx, 1)
	require.NoError(t, err)
	afterSecond, err := f.requests.ListAll(ctx)
	require.NoError(t, err)

	// THEN удаляется только позапрошлая, второй вызов ничего не меняет
	assert.Equal(t, 1, first)
	assert.Equal(t, 0, second)
	assert.Equal(t, afterFirst, afterSecond)
	require.Len(t, afterSecond, 2)
}

func TestWeeklySweep(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	current := WeekTag(saturday)

	// у A есть занятие, у B нет, у 3 старая заявка
	_, err := f.confirm.BatchConfirm(ctx, teacherID, studentA, []string{"day4_2100"})
	require.NoError(t, err)
	f.request(t, studentA, "day0_1300")
	f.request(t, studentB, "day0_1400")
	_, err = f.store.Requests().Upsert(ctx, 3, []string{"day0_1500"}, current-3)
	require.NoError(t, err)

	result, err := f.requests.WeeklySweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, SweepResult{Stale: 1, WithoutLessons: 1}, result)

	remaining, err := f.requests.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, studentA, remaining[0].StudentID)

	assert.True(t, f.notifier.anyContains(teacherID, "Еженедельная очистка заявок"))
}

func TestDeleteAll_RequiresTeacher(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.request(t, studentA, "day0_1300")
	f.request(t, studentB, "day0_1400")

	_, err := f.requests.DeleteAll(ctx, studentA)
	assert.ErrorIs(t, err, ErrAccessDenied)

	n, err := f.requests.DeleteAll(ctx, teacherID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestDelete_OwnOrTeacher(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.request(t, studentA, "day0_1300")

	assert.ErrorIs(t, f.requests.Delete(ctx, studentB, studentA), ErrAccessDenied)
	require.NoError(t, f.requests.Delete(ctx, studentA, studentA))

	req, err := f.requests.Get(ctx, studentA)
	require.NoError(t, err)
	assert.Nil(t, req)
}
