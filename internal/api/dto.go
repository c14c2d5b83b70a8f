package api

import (
	"time"

	"github.com/UrikezZ/52HZSchoolBot/internal/model"
)

// SlotDTO слот окна записи
type SlotDTO struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	StartsAt  string `json:"starts_at"`
	Taken     bool   `json:"taken"`
	StudentID int64  `json:"student_id,omitempty"`
}

// LessonDTO подтверждённое занятие
type LessonDTO struct {
	StudentID    int64  `json:"student_id"`
	SlotID       string `json:"slot_id"`
	Label        string `json:"label"`
	WeekOf       string `json:"week_of"`
	PaymentType  string `json:"payment_type"`
	IsManual     bool   `json:"is_manual"`
	ReminderSent bool   `json:"reminder_sent"`
	ConfirmedBy  int64  `json:"confirmed_by"`
}

// RequestDTO заявка ученика с подписями слотов
type RequestDTO struct {
	StudentID   int64    `json:"student_id"`
	StudentName string   `json:"student_name"`
	SlotIDs     []string `json:"slot_ids"`
	Labels      []string `json:"labels"`
	WeekTag     int      `json:"week_tag"`
	UpdatedAt   string   `json:"updated_at"`
}

// BalanceDTO счёт ученика
type BalanceDTO struct {
	StudentID        int64  `json:"student_id"`
	LessonsLeft      int    `json:"lessons_left"`
	Balance          int64  `json:"balance"`
	LessonPrice      int64  `json:"lesson_price"`
	Notes            string `json:"notes,omitempty"`
	TotalPaidLessons int    `json:"total_paid_lessons"`
}

// ConfirmRequest тело POST /api/students/{id}/lessons/confirm
type ConfirmRequest struct {
	SlotIDs []string `json:"slot_ids"`
}

// ConfirmResponse итог пакетного подтверждения
type ConfirmResponse struct {
	Confirmed    []LessonDTO `json:"confirmed"`
	Skipped      []string    `json:"skipped"`
	LessonsSpent int         `json:"lessons_spent"`
	DepositSpent int64       `json:"deposit_spent"`
	DebtAdded    int64       `json:"debt_added"`
	Balance      *BalanceDTO `json:"balance,omitempty"`
}

// CreditLessonsRequest тело POST /balance/lessons
type CreditLessonsRequest struct {
	Count int `json:"count"`
}

// CreditDepositRequest тело POST /balance/deposit
type CreditDepositRequest struct {
	Amount int64 `json:"amount"`
}

// ErrorResponse ошибка API
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func toLessonDTO(l *model.ConfirmedLesson) LessonDTO {
	return LessonDTO{
		StudentID:    l.StudentID,
		SlotID:       l.SlotID,
		Label:        l.SlotLabel,
		WeekOf:       l.WeekOf.Format(time.DateOnly),
		PaymentType:  l.PaymentType,
		IsManual:     l.IsManual,
		ReminderSent: l.ReminderSent,
		ConfirmedBy:  l.ConfirmedBy,
	}
}

func toBalanceDTO(acc *model.BalanceAccount) *BalanceDTO {
	if acc == nil {
		return nil
	}
	return &BalanceDTO{
		StudentID:        acc.StudentID,
		LessonsLeft:      acc.LessonsLeft,
		Balance:          acc.Balance,
		LessonPrice:      acc.LessonPrice,
		Notes:            acc.Notes,
		TotalPaidLessons: acc.TotalPaidLessons,
	}
}
