package formatting

import (
	"fmt"
	"html"
	"strings"

	"github.com/UrikezZ/52HZSchoolBot/internal/model"
)

const mapsLink = `<a href="https://yandex.ru/maps/-/CLdYmDK3">Яндекс Карты</a>`

// ConfirmationNotice данные итогового сообщения о пакетном подтверждении
type ConfirmationNotice struct {
	StudentName string
	Instruments string
	Labels      []string

	LessonsSpent int
	DepositSpent int64
	DebtAdded    int64

	LessonsLeft int
	Balance     int64
	Notes       string
	Address     string
}

func bullets(items []string) string {
	var sb strings.Builder
	for _, item := range items {
		sb.WriteString("• ")
		sb.WriteString(html.EscapeString(item))
		sb.WriteString("\n")
	}
	return sb.String()
}

func addressBlock(address string) string {
	return fmt.Sprintf("<b>Адрес:</b>\n%s\n%s\n\n", html.EscapeString(address), mapsLink)
}

// RequestForTeacher новая заявка ученика для преподавателя
func RequestForTeacher(student *model.User, weekRange string, labels []string) string {
	var sb strings.Builder
	sb.WriteString("🎹 <b>НОВАЯ ЗАЯВКА НА РАСПИСАНИЕ</b>\n")
	sb.WriteString(fmt.Sprintf("Неделя: %s\n\n", weekRange))
	sb.WriteString(fmt.Sprintf("👤 Студент: %s\n", html.EscapeString(student.DisplayName())))
	sb.WriteString(fmt.Sprintf("🎸 Инструмент: %s\n", html.EscapeString(student.InstrumentsText())))
	if student.Goals != "" {
		sb.WriteString(fmt.Sprintf("Цели: %s\n", html.EscapeString(student.Goals)))
	}
	sb.WriteString(fmt.Sprintf("User ID: %d\n\n", student.ID))
	sb.WriteString("<b>Выбранные слоты:</b>\n")
	sb.WriteString(bullets(labels))
	sb.WriteString("\nОтметьте подходящие слоты и подтвердите (можно выбрать несколько):")
	return sb.String()
}

// RequestSubmitted ответ ученику после отправки заявки
func RequestSubmitted(weekRange string, count int) string {
	return fmt.Sprintf(
		"✅ <b>Заявка отправлена преподавателю!</b>\n<b>Неделя:</b> %s\n\n"+
			"Вы выбрали %d %s. Ожидайте подтверждения в течение дня.",
		weekRange, count, PluralizeSlots(count),
	)
}

// LessonsConfirmedForStudent одно сообщение ученику на весь пакет
func LessonsConfirmedForStudent(n ConfirmationNotice) string {
	var sb strings.Builder
	sb.WriteString("✅ <b>Запись на уроки подтверждена!</b>\n\n<b>Подтвержденные занятия:</b>\n")
	for i, label := range n.Labels {
		line := html.EscapeString(label)
		if deadline, ok := CancellationDeadlineForLabel(label); ok {
			line += fmt.Sprintf(" (отмена до %s)", deadline)
		}
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, line))
	}
	sb.WriteString(fmt.Sprintf("\n<b>Всего подтверждено: %d %s</b>\n\n", len(n.Labels), PluralizeLessons(len(n.Labels))))
	sb.WriteString(addressBlock(n.Address))
	sb.WriteString("ℹ️ <b>Бесплатная отмена урока доступна не позже 10:00 предыдущего дня</b>\n\n")

	if changes := BalanceChanges(n.LessonsSpent, n.DepositSpent, n.DebtAdded); len(changes) > 0 {
		sb.WriteString("<b>Изменения баланса:</b>\n")
		sb.WriteString(strings.Join(changes, "\n"))
		sb.WriteString("\n\n")
	}

	sb.WriteString(fmt.Sprintf("Уроков осталось: %d шт.\nБаланс: %s\n", n.LessonsLeft, FormatBalance(n.Balance)))
	if n.Notes != "" {
		sb.WriteString(fmt.Sprintf("\n<b>Примечание:</b>\n%s\n", html.EscapeString(n.Notes)))
	}
	return sb.String()
}

// LessonsConfirmedForTeacher итог пакета для преподавателя
func LessonsConfirmedForTeacher(n ConfirmationNotice, conflicts []string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("✅ Подтверждено %d %s.\n", len(n.Labels), PluralizeLessons(len(n.Labels))))
	sb.WriteString(fmt.Sprintf("👤 Студент: %s\n", html.EscapeString(n.StudentName)))
	sb.WriteString(fmt.Sprintf("🎸 Инструмент: %s\n", html.EscapeString(n.Instruments)))
	sb.WriteString(bullets(n.Labels))
	sb.WriteString("Уведомлен одним сообщением.\n\n")

	if len(conflicts) > 0 {
		sb.WriteString("⛔ <b>Не подтверждены (время занято или недоступно):</b>\n")
		sb.WriteString(bullets(conflicts))
		sb.WriteString("\n")
	}

	if changes := BalanceChanges(n.LessonsSpent, n.DepositSpent, n.DebtAdded); len(changes) > 0 {
		sb.WriteString("<b>Изменения баланса:</b>\n")
		sb.WriteString(strings.Join(changes, "\n"))
		sb.WriteString("\n\n")
	}

	sb.WriteString("<b>Текущий баланс студента:</b>\n")
	sb.WriteString(fmt.Sprintf("Уроков осталось: %d шт.\nФинансовый баланс: %s", n.LessonsLeft, FormatBalance(n.Balance)))
	return sb.String()
}

// RequestRejected ученику об отклонённой заявке
func RequestRejected() string {
	return "❌ <b>Заявка отклонена</b>\n\n" +
		"К сожалению, выбранное время не подошло. Выберите другие слоты в разделе «📅 Выбрать расписание»."
}

// LessonCancelledForStudent ученику об отмене занятия
func LessonCancelledForStudent(label string) string {
	return fmt.Sprintf(
		"❌ <b>Занятие отменено</b>\n\n<b>Занятие:</b> %s\n\n"+
			"Занятие отменено преподавателем.\nПо вопросам возврата средств обратитесь к преподавателю.\n\n"+
			"Вы можете выбрать другое время в разделе «📅 Выбрать расписание»",
		html.EscapeString(label),
	)
}

// LessonCancelledForTeacher подтверждение отмены с предупреждением о балансе
func LessonCancelledForTeacher(studentName, label string) string {
	return fmt.Sprintf(
		"✅ <b>Занятие отменено</b>\n\n<b>Студент:</b> %s\n<b>Занятие:</b> %s\n\n"+
			"⚠️ <b>Важно!</b> Урок НЕ возвращен в баланс автоматически.\n"+
			"Для возврата средств используйте «➕ Уроки» или «➕ Депозит» в карточке ученика.\n\nСтудент уведомлен.",
		html.EscapeString(studentName), html.EscapeString(label),
	)
}

// ManualLessonForStudent ученику о занятии, добавленном преподавателем
func ManualLessonForStudent(label, address string) string {
	var sb strings.Builder
	sb.WriteString("✅ <b>Добавлено новое занятие!</b>\n\n")
	sb.WriteString(fmt.Sprintf("<b>Дата и время:</b>\n%s\n\n", html.EscapeString(label)))
	sb.WriteString(addressBlock(address))
	sb.WriteString("<b>Примечание:</b> Оплата будет обсуждена отдельно с преподавателем.\n\n")
	if deadline, ok := CancellationDeadlineForLabel(label); ok {
		sb.WriteString(fmt.Sprintf("ℹ️ <b>Бесплатная отмена урока доступна НЕ позже %s</b>\n\n", deadline))
	}
	sb.WriteString("По всем вопросам обращайтесь к преподавателю.")
	return sb.String()
}

// ManualLessonForTeacher подтверждение ручного добавления
func ManualLessonForTeacher(studentName, label string) string {
	return fmt.Sprintf(
		"✅ <b>Занятие добавлено!</b>\n\n<b>Студент:</b> %s\n<b>Дата и время:</b> %s\n\n"+
			"⚠️ Урок НЕ списан с баланса автоматически.\nСтудент уведомлен.",
		html.EscapeString(studentName), html.EscapeString(label),
	)
}

// Reminder напоминание о завтрашнем занятии
func Reminder(label, address string) string {
	var sb strings.Builder
	sb.WriteString("🔔 <b>Напоминание о занятии!</b>\n\n<b>Завтра у вас запланирован урок:</b>\n")
	sb.WriteString(bullets([]string{label}))
	sb.WriteString("\n")
	sb.WriteString(addressBlock(address))
	if deadline, ok := CancellationDeadlineForLabel(label); ok {
		sb.WriteString(fmt.Sprintf("ℹ️ <b>Бесплатная отмена урока доступна НЕ позже %s</b>\n\n", deadline))
	}
	sb.WriteString("Пожалуйста, не опаздывайте и возьмите с собой все необходимое!")
	return sb.String()
}

// RemindersSent отчёт преподавателю
func RemindersSent(count int) string {
	return fmt.Sprintf("🔔 Отправлено %d %s студентам о занятиях на завтра", count, PluralizeReminders(count))
}

// SweepReport отчёт преподавателю о недельной очистке
func SweepReport(stale, withoutLessons int) string {
	return fmt.Sprintf(
		"🧹 <b>Еженедельная очистка заявок</b>\n\nУстаревших заявок удалено: %d\nЗаявок учеников без занятий удалено: %d",
		stale, withoutLessons,
	)
}

// BalanceCard карточка счёта ученика
func BalanceCard(studentName string, acc *model.BalanceAccount) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("💰 <b>Баланс: %s</b>\n\n", html.EscapeString(studentName)))
	sb.WriteString(fmt.Sprintf("📊 Уроков осталось: %d шт.\n", acc.LessonsLeft))
	sb.WriteString(fmt.Sprintf("💵 Финансовый баланс: %s\n", FormatBalance(acc.Balance)))
	sb.WriteString(fmt.Sprintf("🏷 Стоимость урока: %s\n", FormatMoney(acc.LessonPrice)))
	if acc.Notes != "" {
		sb.WriteString(fmt.Sprintf("\n📝 <b>Примечание:</b>\n%s\n", html.EscapeString(acc.Notes)))
	}
	return sb.String()
}

// LessonList нумерованный список занятий
func LessonList(title string, labels []string) string {
	if len(labels) == 0 {
		return title + "\n\nЗанятий пока нет."
	}
	var sb strings.Builder
	sb.WriteString(title)
	sb.WriteString("\n\n")
	for i, label := range labels {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, html.EscapeString(label)))
	}
	return sb.String()
}

// BalanceCredited ученику о пополнении счёта
func BalanceCredited(what string, acc *model.BalanceAccount) string {
	return fmt.Sprintf(
		"💰 <b>Баланс пополнен</b>\n\n%s\n\nУроков осталось: %d шт.\nБаланс: %s",
		html.EscapeString(what), acc.LessonsLeft, FormatBalance(acc.Balance),
	)
}

// LessonCharged ученику о ручном списании занятия
func LessonCharged(payment string, acc *model.BalanceAccount) string {
	return fmt.Sprintf(
		"📝 <b>Списано занятие</b>\n\nСпособ оплаты: %s\n\nУроков осталось: %d шт.\nБаланс: %s",
		html.EscapeString(payment), acc.LessonsLeft, FormatBalance(acc.Balance),
	)
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

// ProfileCard анкета ученика
func ProfileCard(u *model.User) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("👤 <b>%s</b>\n", html.EscapeString(u.DisplayName())))
	sb.WriteString(fmt.Sprintf("📅 Дата рождения: %s\n", html.EscapeString(orDefault(u.Birthdate, "Не указано"))))
	sb.WriteString(fmt.Sprintf("🎸 Инструмент: %s\n", html.EscapeString(u.InstrumentsText())))
	sb.WriteString(fmt.Sprintf("🎯 Цели обучения: %s\n", html.EscapeString(orDefault(u.Goals, "Не указаны"))))
	sb.WriteString(fmt.Sprintf("🏫 Формат: %s\n", html.EscapeString(orDefault(u.StudyFormat, "очная"))))
	return sb.String()
}
