package model

import "time"

// DefaultLessonPrice цена урока для новых счетов, если не задана в конфиге
const DefaultLessonPrice = 1800

// DebitKind показывает, из чего было списано занятие
type DebitKind string

const (
	DebitPrepaid      DebitKind = "prepaid"       // списан предоплаченный урок
	DebitDeposit      DebitKind = "deposit"       // списано с положительного депозита
	DebitNewDebt      DebitKind = "new_debt"      // баланс был нулевым, появился долг
	DebitDebtIncrease DebitKind = "debt_increase" // долг увеличен
)

// BalanceAccount счёт ученика: предоплаченные уроки и денежный баланс.
// Balance > 0 депозит, Balance < 0 долг.
type BalanceAccount struct {
	StudentID             int64     `json:"student_id"`
	LessonsLeft           int       `json:"lessons_left"`
	Balance               int64     `json:"balance"`
	LessonPrice           int64     `json:"lesson_price"`
	Notes                 string    `json:"notes"`
	TotalPaidLessons      int       `json:"total_paid_lessons"`
	TotalCompletedLessons int       `json:"total_completed_lessons"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// NewBalanceAccount создаёт счёт с настройками по умолчанию
func NewBalanceAccount(studentID, lessonPrice int64) *BalanceAccount {
	if lessonPrice <= 0 {
		lessonPrice = DefaultLessonPrice
	}
	return &BalanceAccount{
		StudentID:   studentID,
		LessonPrice: lessonPrice,
	}
}

// DebitOneLesson списывает одно занятие: предоплаченный урок, если он есть,
// иначе цену урока с денежного баланса. Баланс может уйти в минус.
func (a *BalanceAccount) DebitOneLesson() DebitKind {
	if a.LessonsLeft > 0 {
		a.LessonsLeft--
		return DebitPrepaid
	}

	var kind DebitKind
	switch {
	case a.Balance > 0:
		kind = DebitDeposit
	case a.Balance == 0:
		kind = DebitNewDebt
	default:
		kind = DebitDebtIncrease
	}
	a.Balance -= a.LessonPrice
	return kind
}

// CreditLessons добавляет предоплаченные уроки
func (a *BalanceAccount) CreditLessons(n int) {
	a.LessonsLeft += n
	a.TotalPaidLessons += n
}

// CreditDeposit пополняет денежный баланс
func (a *BalanceAccount) CreditDeposit(amount int64) {
	a.Balance += amount
}
