package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/UrikezZ/52HZSchoolBot/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchConfirm_ScenarioA_DebtFromZeroBalance(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	// GIVEN ученик без предоплаты с нулевым балансом и ценой 1800
	f.request(t, studentA, "day0_1300")

	// WHEN преподаватель подтверждает один слот
	result, err := f.confirm.BatchConfirm(ctx, teacherID, studentA, []string{"day0_1300"})
	require.NoError(t, err)

	// THEN баланс уходит в долг, предоплата не меняется, занятие записано
	acc := f.balance(t, studentA)
	assert.Equal(t, int64(-1800), acc.Balance)
	assert.Equal(t, 0, acc.LessonsLeft)

	require.Len(t, result.Confirmed, 1)
	lesson := result.Confirmed[0]
	assert.Equal(t, "Ср 21.10.2026 13:00", lesson.SlotLabel)
	assert.Equal(t, "добавлен долг 1800 руб.", lesson.PaymentType)
	assert.Equal(t, teacherID, lesson.ConfirmedBy)
	assert.False(t, lesson.IsManual)

	taken, err := f.lessons.IsSlotTaken(ctx, "day0_1300")
	require.NoError(t, err)
	assert.True(t, taken)

	assert.Equal(t, 0, result.LessonsSpent)
	assert.Equal(t, int64(0), result.DepositSpent)
	assert.Equal(t, int64(1800), result.DebtAdded)

	assert.True(t, f.notifier.anyContains(studentA, "Запись на уроки подтверждена"))
	assert.True(t, f.notifier.anyContains(studentA, "Баланс: -1800 руб."))
}

func TestBatchConfirm_ScenarioB_PrepaidLesson(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	// GIVEN три предоплаченных урока
	_, err := f.balances.CreditLessons(ctx, teacherID, studentA, 3)
	require.NoError(t, err)
	f.request(t, studentA, "day1_1500")

	// WHEN подтверждён один слот
	result, err := f.confirm.BatchConfirm(ctx, teacherID, studentA, []string{"day1_1500"})
	require.NoError(t, err)

	// THEN списан один урок, деньги не тронуты
	acc := f.balance(t, studentA)
	assert.Equal(t, 2, acc.LessonsLeft)
	assert.Equal(t, int64(0), acc.Balance)
	assert.Equal(t, 1, result.LessonsSpent)
	assert.Equal(t, "списан 1 урок из предоплаты", result.Confirmed[0].PaymentType)
}

func TestBatchConfirm_ScenarioC_SlotPurgedAndConflict(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	// GIVEN оба ученика хотят day0_1300
	f.request(t, studentA, "day0_1300", "day2_1700")
	f.request(t, studentB, "day0_1300", "day3_1400")

	// WHEN слот подтверждён для A
	_, err := f.confirm.BatchConfirm(ctx, teacherID, studentA, []string{"day0_1300"})
	require.NoError(t, err)

	// THEN слот исчез из заявки B, остальные слоты на месте
	reqB, err := f.requests.Get(ctx, studentB)
	require.NoError(t, err)
	assert.Equal(t, []string{"day3_1400"}, reqB.SelectedSlots)

	reqA, err := f.requests.Get(ctx, studentA)
	require.NoError(t, err)
	assert.Equal(t, []string{"day2_1700"}, reqA.SelectedSlots)

	// AND подтверждение того же слота для B даёт конфликт без изменений
	result, err := f.confirm.BatchConfirm(ctx, teacherID, studentB, []string{"day0_1300"})
	assert.ErrorIs(t, err, ErrNothingConfirmed)
	require.Len(t, result.Skipped, 1)
	assert.ErrorIs(t, result.Skipped[0].Err, ErrSlotTaken)

	accB := f.balance(t, studentB)
	assert.Equal(t, int64(0), accB.Balance)
	assert.Empty(t, f.notifier.to(studentB))
}

func TestManualAdd_ScenarioD_NoDebit(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.request(t, studentB, "day1_1400")

	// GIVEN ученик с нулевым балансом
	// WHEN преподаватель добавляет занятие вручную на слот окна
	startsAt := time.Date(2026, 10, 22, 14, 0, 0, 0, msk)
	lesson, err := f.confirm.ManualAdd(ctx, teacherID, studentA, startsAt)
	require.NoError(t, err)

	// THEN занятие записано, баланс не тронут, чужие заявки не тронуты
	assert.True(t, lesson.IsManual)
	assert.Equal(t, "day1_1400", lesson.SlotID)
	assert.Equal(t, "Чт 22.10.2026 14:00", lesson.SlotLabel)
	assert.Equal(t, "Оплата обсуждается с преподавателем", lesson.PaymentType)

	acc := f.balance(t, studentA)
	assert.Equal(t, int64(0), acc.Balance)
	assert.Equal(t, 0, acc.LessonsLeft)

	reqB, err := f.requests.Get(ctx, studentB)
	require.NoError(t, err)
	assert.Equal(t, []string{"day1_1400"}, reqB.SelectedSlots)

	taken, err := f.lessons.IsSlotTaken(ctx, "day1_1400")
	require.NoError(t, err)
	assert.True(t, taken)
	assert.True(t, f.notifier.anyContains(studentA, "Добавлено новое занятие"))
}

func TestManualAdd_OutsideWindow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	startsAt := time.Date(2026, 11, 2, 10, 0, 0, 0, msk)
	lesson, err := f.confirm.ManualAdd(ctx, teacherID, studentA, startsAt)
	require.NoError(t, err)

	assert.True(t, lesson.IsManualSlot())
	assert.Equal(t, "Пн 02.11.2026 10:00", lesson.SlotLabel)

	// то же время второй раз занять нельзя
	_, err = f.confirm.ManualAdd(ctx, teacherID, studentB, startsAt)
	assert.ErrorIs(t, err, ErrSlotTaken)
}

func TestManualAdd_Validation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.confirm.ManualAdd(ctx, teacherID, studentA, time.Date(2026, 10, 22, 14, 30, 0, 0, msk))
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.confirm.ManualAdd(ctx, teacherID, studentA, time.Date(2026, 10, 1, 14, 0, 0, 0, msk))
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.confirm.ManualAdd(ctx, strangerID, studentA, time.Date(2026, 10, 22, 14, 0, 0, 0, msk))
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestCancel_ScenarioE_BalanceUntouched(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.request(t, studentA, "day0_1300")
	_, err := f.confirm.BatchConfirm(ctx, teacherID, studentA, []string{"day0_1300"})
	require.NoError(t, err)

	// WHEN занятие отменено
	lesson, err := f.confirm.Cancel(ctx, teacherID, studentA, "day0_1300")
	require.NoError(t, err)
	assert.Equal(t, "Ср 21.10.2026 13:00", lesson.SlotLabel)

	// THEN записи нет, слот свободен, долг остался
	lessons, err := f.lessons.ListForStudent(ctx, studentA)
	require.NoError(t, err)
	assert.Empty(t, lessons)

	taken, err := f.lessons.IsSlotTaken(ctx, "day0_1300")
	require.NoError(t, err)
	assert.False(t, taken)

	assert.Equal(t, int64(-1800), f.balance(t, studentA).Balance)
	assert.True(t, f.notifier.anyContains(studentA, "Занятие отменено"))

	_, err = f.confirm.Cancel(ctx, teacherID, studentA, "day0_1300")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBatchConfirm_MixedPaymentAggregates(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	// GIVEN один предоплаченный урок и 1000 на депозите при цене 1800
	_, err := f.balances.CreditLessons(ctx, teacherID, studentA, 1)
	require.NoError(t, err)
	_, err = f.balances.CreditDeposit(ctx, teacherID, studentA, 1000)
	require.NoError(t, err)

	// WHEN подтверждены три слота
	result, err := f.confirm.BatchConfirm(ctx, teacherID, studentA, []string{"day0_1300", "day0_1400", "day0_1500"})
	require.NoError(t, err)
	require.Len(t, result.Confirmed, 3)

	// THEN урок из предоплаты, затем депозит, затем рост долга
	assert.Equal(t, "списан 1 урок из предоплаты", result.Confirmed[0].PaymentType)
	assert.Equal(t, "списано 1800 руб. с депозита", result.Confirmed[1].PaymentType)
	assert.Equal(t, "долг увеличен на 1800 руб.", result.Confirmed[2].PaymentType)

	assert.Equal(t, 1, result.LessonsSpent)
	assert.Equal(t, int64(1000), result.DepositSpent)
	assert.Equal(t, int64(2600), result.DebtAdded)

	acc := f.balance(t, studentA)
	assert.Equal(t, 0, acc.LessonsLeft)
	assert.Equal(t, int64(-2600), acc.Balance)
}

func TestBatchConfirm_BadSlotDoesNotAbortBatch(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	result, err := f.confirm.BatchConfirm(ctx, teacherID, studentA, []string{"day0_1300", "day9_1300", "day4_2100"})
	require.NoError(t, err)

	assert.Equal(t, []string{"Ср 21.10.2026 13:00", "Вс 25.10.2026 21:00"}, result.Labels())
	require.Len(t, result.Skipped, 1)
	assert.Equal(t, "day9_1300", result.Skipped[0].SlotID)
	assert.ErrorIs(t, result.Skipped[0].Err, ErrValidation)
	assert.Equal(t, int64(-3600), f.balance(t, studentA).Balance)
}

func TestBatchConfirm_RequiresTeacher(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.request(t, studentA, "day0_1300")

	_, err := f.confirm.BatchConfirm(ctx, studentA, studentA, []string{"day0_1300"})
	assert.ErrorIs(t, err, ErrAccessDenied)

	taken, err := f.lessons.IsSlotTaken(ctx, "day0_1300")
	require.NoError(t, err)
	assert.False(t, taken)
	assert.Equal(t, int64(0), f.balance(t, studentA).Balance)

	req, err := f.requests.Get(ctx, studentA)
	require.NoError(t, err)
	assert.Equal(t, []string{"day0_1300"}, req.SelectedSlots)
}

func TestBatchConfirm_ConcurrentConfirmationsClaimSlotOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	const students = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < students; i++ {
		wg.Add(1)
		go func(studentID int64) {
			defer wg.Done()
			_, err := f.confirm.BatchConfirm(ctx, teacherID, studentID, []string{"day2_1800"})
			if err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}(int64(10 + i))
	}
	wg.Wait()

	assert.Equal(t, 1, successes)

	lessons, err := f.lessons.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, lessons, 1)

	// списание ровно у одного ученика
	debited := 0
	for i := 0; i < students; i++ {
		if f.balance(t, int64(10+i)).Balance != 0 {
			debited++
		}
	}
	assert.Equal(t, 1, debited)
}

func TestBatchConfirm_NextWeekSlotIsFreeAgain(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.confirm.BatchConfirm(ctx, teacherID, studentA, []string{"day0_1300"})
	require.NoError(t, err)

	// через неделю тот же id означает другую среду
	f.now = f.now.AddDate(0, 0, 7)
	result, err := f.confirm.BatchConfirm(ctx, teacherID, studentB, []string{"day0_1300"})
	require.NoError(t, err)
	assert.Equal(t, "Ср 28.10.2026 13:00", result.Confirmed[0].SlotLabel)
}

func TestConfirmSession(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.request(t, studentA, "day0_1300", "day1_1300", "day2_1300")

	req, err := f.requests.Get(ctx, studentA)
	require.NoError(t, err)
	session := NewReviewSession(studentA, f.requests.Candidates(req))
	assert.Equal(t, ReviewReviewing, session.State())

	_, err = session.Toggle("day4_2100")
	assert.ErrorIs(t, err, ErrValidation, "not a candidate")

	marked, err := session.Toggle("day2_1300")
	require.NoError(t, err)
	assert.True(t, marked)
	_, err = session.Toggle("day0_1300")
	require.NoError(t, err)
	_, err = session.Toggle("day1_1300")
	require.NoError(t, err)
	marked, err = session.Toggle("day1_1300")
	require.NoError(t, err)
	assert.False(t, marked)

	assert.Equal(t, []string{"day2_1300", "day0_1300"}, session.Marked())

	_, err = f.confirm.ConfirmSession(ctx, studentB, session)
	assert.ErrorIs(t, err, ErrAccessDenied)
	assert.Equal(t, ReviewReviewing, session.State())

	result, err := f.confirm.ConfirmSession(ctx, teacherID, session)
	require.NoError(t, err)
	assert.Equal(t, []string{"Пт 23.10.2026 13:00", "Ср 21.10.2026 13:00"}, result.Labels())
	assert.Equal(t, ReviewDone, session.State())

	_, err = session.Toggle("day1_1300")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = f.confirm.ConfirmSession(ctx, teacherID, session)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestConfirmSession_NothingMarked(t *testing.T) {
	f := newFixture(t)
	session := NewReviewSession(studentA, []Candidate{{SlotID: "day0_1300", Label: "Ср 21.10.2026 13:00"}})

	_, err := f.confirm.ConfirmSession(context.Background(), teacherID, session)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, ReviewReviewing, session.State())
}

func TestReject(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.request(t, studentA, "day0_1300")

	require.NoError(t, f.confirm.Reject(ctx, teacherID, studentA))

	req, err := f.requests.Get(ctx, studentA)
	require.NoError(t, err)
	assert.Nil(t, req)
	assert.True(t, f.notifier.anyContains(studentA, "Заявка отклонена"))

	assert.ErrorIs(t, f.confirm.Reject(ctx, teacherID, studentA), ErrNotFound)
}

func TestBatchConfirm_DeliveryFailureKeepsLessons(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.notifier.fail = true

	result, err := f.confirm.BatchConfirm(ctx, teacherID, studentA, []string{"day0_1300"})
	require.NoError(t, err)
	assert.Len(t, result.Confirmed, 1)

	lessons, err := f.lessons.ListForStudent(ctx, studentA)
	require.NoError(t, err)
	assert.Len(t, lessons, 1)
}

func TestBatchResult_Notice(t *testing.T) {
	result := &BatchResult{
		Confirmed: []*model.ConfirmedLesson{{SlotLabel: "Ср 21.10.2026 13:00"}},
		After:     &model.BalanceAccount{LessonsLeft: 2, Balance: 500, Notes: "ок"},
	}
	n := result.Notice(&model.User{FullName: "Анна"}, "адрес")
	assert.Equal(t, "Анна", n.StudentName)
	assert.Equal(t, []string{"Ср 21.10.2026 13:00"}, n.Labels)
	assert.Equal(t, 2, n.LessonsLeft)
	assert.Equal(t, int64(500), n.Balance)
	assert.Equal(t, "ок", n.Notes)
}

func TestConfirmRequested_SkipsSlotsOutsideRequest(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	// GIVEN в заявке ученика только day2_1400
	f.request(t, studentA, "day2_1400")

	// WHEN подтверждаются day4_2000 (не выбран) и day2_1400
	result, err := f.confirm.ConfirmRequested(ctx, teacherID, studentA, []string{"day4_2000", "day2_1400"})
	require.NoError(t, err)

	// THEN списан и записан только выбранный слот
	require.Len(t, result.Confirmed, 1)
	assert.Equal(t, "day2_1400", result.Confirmed[0].SlotID)
	require.Len(t, result.Skipped, 1)
	assert.Equal(t, "day4_2000", result.Skipped[0].SlotID)
	assert.Equal(t, "Вс 25.10.2026 20:00", result.Skipped[0].Label)
	assert.ErrorIs(t, result.Skipped[0].Err, ErrValidation)
	assert.Equal(t, int64(-1800), f.balance(t, studentA).Balance)

	taken, err := f.lessons.IsSlotTaken(ctx, "day4_2000")
	require.NoError(t, err)
	assert.False(t, taken)
}

func TestConfirmRequested_NoRequest(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	result, err := f.confirm.ConfirmRequested(ctx, teacherID, studentA, []string{"day0_1300"})
	assert.ErrorIs(t, err, ErrNothingConfirmed)
	require.NotNil(t, result)
	assert.Empty(t, result.Confirmed)
	assert.Equal(t, []string{"Ср 21.10.2026 13:00"}, result.SkippedLabels())
	assert.Equal(t, int64(0), f.balance(t, studentA).Balance)
	assert.Empty(t, f.notifier.to(studentA))
}

func TestConfirmRequested_RequiresTeacher(t *testing.T) {
	f := newFixture(t)
	f.request(t, studentA, "day0_1300")

	_, err := f.confirm.ConfirmRequested(context.Background(), strangerID, studentA, []string{"day0_1300"})
	assert.ErrorIs(t, err, ErrAccessDenied)
}
