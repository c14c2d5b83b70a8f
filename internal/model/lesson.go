package model

import (
	"strings"
	"time"
)

// ManualSlotPrefix префикс slot_id для занятий вне сетки слотов
const ManualSlotPrefix = "manual_"

// ConfirmedLesson подтверждённое занятие. После создания не меняется,
// кроме флага отправленного напоминания.
type ConfirmedLesson struct {
	ID           int64     `json:"id"`
	StudentID    int64     `json:"student_id"`
	SlotID       string    `json:"slot_id"`
	SlotLabel    string    `json:"slot_label"` // фиксируется в момент подтверждения
	WeekOf       time.Time `json:"week_of"`    // первый день окна записи, к которому относится slot_id
	ConfirmedBy  int64     `json:"confirmed_by"`
	PaymentType  string    `json:"payment_type"`
	IsManual     bool      `json:"is_manual"`
	ReminderSent bool      `json:"reminder_sent"`
	CreatedAt    time.Time `json:"created_at"`
}

// IsManualSlot сообщает, что slot_id не из сетки слотов
func (l *ConfirmedLesson) IsManualSlot() bool {
	return strings.HasPrefix(l.SlotID, ManualSlotPrefix)
}
