package models

import "gorm.io/gorm"

type User struct {
	gorm.Model
	// Subject — внешний идентификатор пользователя. Для локальных аккаунтов
	// генерируется при регистрации ("local:<uuid>").
	Subject      string `gorm:"uniqueIndex;not null"`
	Username     string `gorm:"not null"`
	Email        string
	PasswordHash string // empty for externally-identified users
	Role         string `gorm:"default:student"` // student, teacher, admin
}

func (u User) IsAdmin() bool {
	return u.Role == "admin"
}
