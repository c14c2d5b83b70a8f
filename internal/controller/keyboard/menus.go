package keyboard

import (
	"fmt"

	"github.com/UrikezZ/52HZSchoolBot/internal/model"
	"github.com/go-telegram/bot/models"
)

// StudentMenu главное меню ученика
func StudentMenu() *models.InlineKeyboardMarkup {
	return NewBuilder().
		Row(Button("📅 Выбрать расписание", BookDays)).
		Row(Button("📚 Мои занятия", MyLessons), Button("💰 Мой баланс", MyBalance)).
		Row(Button("✏️ Анкета", EditProfile)).
		Build()
}

// TeacherMenu главное меню преподавателя
func TeacherMenu() *models.InlineKeyboardMarkup {
	return NewBuilder().
		Row(Button("📨 Заявки", Requests), Button("👥 Ученики", Students)).
		Row(Button("🖼 Сетка недели", WeekImage)).
		Row(Button("🧹 Очистить все заявки", ClearRequests)).
		Build()
}

// BackToMenu одна кнопка возврата в меню
func BackToMenu() *models.InlineKeyboardMarkup {
	return NewBuilder().Row(Button("⬅️ В меню", MainMenu)).Build()
}

// StudentList список учеников для преподавателя
func StudentList(students []*model.User) *models.InlineKeyboardMarkup {
	buttons := make([]models.InlineKeyboardButton, 0, len(students))
	for _, s := range students {
		buttons = append(buttons, Button("👤 "+s.DisplayName(), Data(StudentCard, s.ID)))
	}
	return NewBuilder().
		Grid(buttons, 2).
		Row(Button("⬅️ В меню", MainMenu)).
		Build()
}

// StudentActions действия преподавателя с учеником
func StudentActions(studentID int64) *models.InlineKeyboardMarkup {
	return NewBuilder().
		Row(Button("➕ Уроки", Data(AddLessons, studentID)), Button("➕ Депозит", Data(AddDeposit, studentID))).
		Row(Button("💵 Цена урока", Data(SetPrice, studentID)), Button("📝 Заметки", Data(SetNotes, studentID))).
		Row(Button("➖ Списать урок", Data(ChargeLesson, studentID)), Button("📊 Статистика", Data(Stats, studentID))).
		Row(Button("📚 Занятия", Data(StudentLessons, studentID)), Button("📌 Добавить занятие", Data(ManualLesson, studentID))).
		Row(Button("⬅️ К ученикам", Students)).
		Build()
}

// BackToStudent кнопка возврата к карточке ученика
func BackToStudent(studentID int64) *models.InlineKeyboardMarkup {
	return NewBuilder().Row(Button("⬅️ К ученику", Data(StudentCard, studentID))).Build()
}

// LessonsToCancel занятия ученика с кнопками отмены
func LessonsToCancel(studentID int64, lessons []*model.ConfirmedLesson) *models.InlineKeyboardMarkup {
	b := NewBuilder()
	for _, l := range lessons {
		b.Row(Button("❌ "+l.SlotLabel, Data(CancelLesson, studentID, l.SlotID)))
	}
	return b.Row(Button("⬅️ К ученику", Data(StudentCard, studentID))).Build()
}

// RequestList заявки учеников, каждая открывает разбор
func RequestList(requests []*model.AvailabilityRequest, names map[int64]string) *models.InlineKeyboardMarkup {
	b := NewBuilder()
	for _, r := range requests {
		name := names[r.StudentID]
		if name == "" {
			name = fmt.Sprintf("ID %d", r.StudentID)
		}
		b.Row(Button(fmt.Sprintf("📨 %s (%d)", name, len(r.SelectedSlots)), Data(OpenRequest, r.StudentID)))
	}
	return b.Row(Button("⬅️ В меню", MainMenu)).Build()
}

// ConfirmClearRequests подтверждение очистки всех заявок
func ConfirmClearRequests() *models.InlineKeyboardMarkup {
	return NewBuilder().
		Row(Button("✅ Да, удалить все", ClearRequestsConfirm), Button("❌ Нет", MainMenu)).
		Build()
}
