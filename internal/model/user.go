package model

import (
	"strings"
	"time"
)

// User профиль ученика. ID совпадает с Telegram ID.
type User struct {
	ID          int64     `json:"id"`
	FullName    string    `json:"full_name"`
	Birthdate   string    `json:"birthdate"`
	Instruments []string  `json:"instruments"`
	Goals       string    `json:"goals"`
	StudyFormat string    `json:"study_format"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DisplayName возвращает имя для подписей занятий и заявок
func (u *User) DisplayName() string {
	if u == nil || strings.TrimSpace(u.FullName) == "" {
		return "Неизвестно"
	}
	return u.FullName
}

// InstrumentsText возвращает инструменты через запятую
func (u *User) InstrumentsText() string {
	if u == nil || len(u.Instruments) == 0 {
		return "Не указан"
	}
	return strings.Join(u.Instruments, ", ")
}
