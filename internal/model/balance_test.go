package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBalanceAccount_DebitOneLesson(t *testing.T) {
	tests := []struct {
		name        string
		lessonsLeft int
		balance     int64
		wantKind    DebitKind
		wantLessons int
		wantBalance int64
	}{
		{"prepaid lesson is used first", 3, 500, DebitPrepaid, 2, 500},
		{"last prepaid lesson", 1, -100, DebitPrepaid, 0, -100},
		{"deposit covers the lesson", 0, 5000, DebitDeposit, 0, 3200},
		{"deposit smaller than price goes negative", 0, 1000, DebitDeposit, 0, -800},
		{"zero balance becomes debt", 0, 0, DebitNewDebt, 0, -1800},
		{"existing debt grows", 0, -1800, DebitDebtIncrease, 0, -3600},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc := &BalanceAccount{StudentID: 1, LessonsLeft: tt.lessonsLeft, Balance: tt.balance, LessonPrice: 1800}

			kind := acc.DebitOneLesson()

			assert.Equal(t, tt.wantKind, kind)
			assert.Equal(t, tt.wantLessons, acc.LessonsLeft)
			assert.Equal(t, tt.wantBalance, acc.Balance)

			lessonsChanged := acc.LessonsLeft != tt.lessonsLeft
			moneyChanged := acc.Balance != tt.balance
			assert.True(t, lessonsChanged != moneyChanged, "exactly one of prepaid count or money must change")
		})
	}
}

func TestNewBalanceAccount_Defaults(t *testing.T) {
	acc := NewBalanceAccount(42, 0)

	assert.Equal(t, int64(42), acc.StudentID)
	assert.Equal(t, int64(DefaultLessonPrice), acc.LessonPrice)
	assert.Zero(t, acc.LessonsLeft)
	assert.Zero(t, acc.Balance)
}

func TestBalanceAccount_Credits(t *testing.T) {
	acc := NewBalanceAccount(1, 2000)

	acc.CreditLessons(4)
	acc.CreditLessons(2)
	acc.CreditDeposit(3000)

	assert.Equal(t, 6, acc.LessonsLeft)
	assert.Equal(t, 6, acc.TotalPaidLessons)
	assert.Equal(t, int64(3000), acc.Balance)
}

func TestToggled(t *testing.T) {
	slots, added := Toggled([]string{"day0_1300"}, "day1_1400")
	assert.True(t, added)
	assert.Equal(t, []string{"day0_1300", "day1_1400"}, slots)

	slots, added = Toggled(slots, "day0_1300")
	assert.False(t, added)
	assert.Equal(t, []string{"day1_1400"}, slots)
}

func TestNormalizeSlots(t *testing.T) {
	assert.Equal(t,
		[]string{"day0_1300", "day2_1500"},
		NormalizeSlots([]string{"day0_1300", "", "day2_1500", "day0_1300"}),
	)
}
