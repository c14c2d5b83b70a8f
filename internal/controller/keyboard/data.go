package keyboard

import (
	"fmt"
	"strconv"
	"strings"
)

// ========================
// Callback Data Patterns
// ========================
// Telegram ограничивает callback data 64 байтами, поэтому префиксы короткие.

// Общие
const (
	MainMenu = "menu"
	Noop     = "noop"
)

// Ученик: сетка записи и свои данные
const (
	BookDays    = "bk_days"
	BookDay     = "bk_day:" // bk_day:<offset>
	BookToggle  = "bk_t:"   // bk_t:<slot_id>
	BookShow    = "bk_show"
	BookSubmit  = "bk_submit"
	BookClear   = "bk_clear"
	MyLessons   = "my_lessons"
	MyBalance   = "my_balance"
	EditProfile = "profile"
)

// Преподаватель: разбор заявок
const (
	ReviewToggle  = "rv_t:"  // rv_t:<student_id>:<slot_id>
	ReviewConfirm = "rv_ok:" // rv_ok:<student_id>
	ReviewReject  = "rv_no:" // rv_no:<student_id>

	Requests             = "t_reqs"
	OpenRequest          = "t_req:" // t_req:<student_id>
	ClearRequests        = "t_clear"
	ClearRequestsConfirm = "t_clear_ok"
	WeekImage            = "t_week"
)

// Преподаватель: ученики, баланс, занятия
const (
	Students       = "t_students"
	StudentCard    = "t_st:" // t_st:<student_id>
	AddLessons     = "bl_l:" // bl_l:<student_id>
	AddDeposit     = "bl_d:"
	SetPrice       = "bl_p:"
	SetNotes       = "bl_n:"
	ChargeLesson   = "bl_c:"
	Stats          = "bl_s:"
	StudentLessons = "ls:"
	CancelLesson   = "lc:" // lc:<student_id>:<slot_id>
	ManualLesson   = "lm:"
)

// Data собирает callback data из префикса и аргументов
func Data(prefix string, args ...any) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = fmt.Sprint(a)
	}
	return prefix + strings.Join(parts, ":")
}

// ParseID извлекает числовой id после префикса: "t_st:42" -> 42
func ParseID(data, prefix string) (int64, error) {
	rest, ok := strings.CutPrefix(data, prefix)
	if !ok {
		return 0, fmt.Errorf("callback %q has no prefix %q", data, prefix)
	}
	return strconv.ParseInt(rest, 10, 64)
}

// ParseIDAndSlot извлекает id ученика и слот: "lc:42:day0_1300" -> 42, "day0_1300"
func ParseIDAndSlot(data, prefix string) (int64, string, error) {
	rest, ok := strings.CutPrefix(data, prefix)
	if !ok {
		return 0, "", fmt.Errorf("callback %q has no prefix %q", data, prefix)
	}
	idPart, slotID, ok := strings.Cut(rest, ":")
	if !ok || slotID == "" {
		return 0, "", fmt.Errorf("invalid callback %q", data)
	}
	id, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("invalid id in callback %q: %w", data, err)
	}
	return id, slotID, nil
}
