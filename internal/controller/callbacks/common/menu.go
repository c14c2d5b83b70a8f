package common

import (
	"github.com/UrikezZ/52HZSchoolBot/internal/controller/keyboard"
	"github.com/go-telegram/bot/models"
)

// MainMenu текст и клавиатура главного меню для роли пользователя
func MainMenu(isTeacher bool) (string, *models.InlineKeyboardMarkup) {
	if isTeacher {
		return "👨‍🏫 <b>Панель преподавателя</b>\n\nВыберите действие:", keyboard.TeacherMenu()
	}
	return "🎵 <b>Музыкальная школа</b>\n\nВыберите действие:", keyboard.StudentMenu()
}

// HandleMainMenu возвращает пользователя в главное меню
func HandleMainMenu(hc *HandlerContext) {
	hc.ClearState()
	hc.Answer("")
	text, kb := MainMenu(hc.Handler.UserService.IsTeacher(hc.TelegramID))
	hc.Show(text, kb)
}
