package models

import "gorm.io/gorm"

type ChatMessage struct {
	gorm.Model
	UserID uint   `gorm:"index;not null"`
	Role   string `gorm:"size:16;not null"` // user, assistant
	Body   string `gorm:"type:text;not null"`
}
