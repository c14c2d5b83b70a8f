package state

// UserState представляет текущее состояние пользователя в диалоге
type UserState string

const (
	StateNone UserState = "" // Нет активного состояния

	// Анкета ученика
	StateProfileName        UserState = "profile_name"
	StateProfileBirthdate   UserState = "profile_birthdate"
	StateProfileInstruments UserState = "profile_instruments"
	StateProfileGoals       UserState = "profile_goals"

	// Управление балансом (преподаватель)
	StateBalanceLessons UserState = "balance_lessons"
	StateBalanceDeposit UserState = "balance_deposit"
	StateBalancePrice   UserState = "balance_price"
	StateBalanceNotes   UserState = "balance_notes"

	// Ручное добавление занятия
	StateManualLesson UserState = "manual_lesson"
)

// Ключи временных данных диалога
const (
	KeyStudentID   = "student_id"
	KeyFullName    = "full_name"
	KeyBirthdate   = "birthdate"
	KeyInstruments = "instruments"
	KeyDay         = "day" // открытый ученику день сетки
)

// UserData хранит временные данные пользователя во время диалога
type UserData struct {
	State UserState
	Data  map[string]interface{} // Временные данные для текущего диалога
}
