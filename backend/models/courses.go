package models

import (
	"encoding/json"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Course struct {
	gorm.Model
	UserID      uint   `gorm:"index;not null"`
	Title       string `gorm:"size:255;not null"`
	Description string `gorm:"type:text"`
	Topic       string

	Modules []CourseModule `gorm:"foreignKey:CourseID"`
}

type CourseModule struct {
	gorm.Model
	CourseID      uint   `gorm:"index;not null"`
	Title         string `gorm:"size:255;not null"`
	Description   string `gorm:"type:text"`
	SequenceOrder int    `gorm:"not null;default:1"`

	Lessons []Lesson `gorm:"foreignKey:ModuleID"`
}

type Lesson struct {
	gorm.Model
	ModuleID uint `gorm:"index;not null"`
	CourseID uint `gorm:"index;not null"`
	Title    string
	// Markdown. Пустая строка — контент ещё не сгенерирован.
	Content       string `gorm:"type:text"`
	SequenceOrder int    `gorm:"not null;default:1"`

	Questions []Question `gorm:"foreignKey:LessonID"`
}

type Question struct {
	gorm.Model
	LessonID      uint           `gorm:"index;not null"`
	Prompt        string         `gorm:"type:text;not null"`
	Options       datatypes.JSON `gorm:"type:jsonb"` // JSON array of option strings
	CorrectAnswer string         `gorm:"not null"`   // must be one of Options
	Explanation   string         `gorm:"type:text"`
	SequenceOrder int            `gorm:"not null;default:1"`
}

// OptionList декодирует варианты ответа из JSON-колонки.
func (q Question) OptionList() []string {
	var options []string
	_ = json.Unmarshal(q.Options, &options)
	return options
}

// HasOption reports whether answer is one of the stored options.
func (q Question) HasOption(answer string) bool {
	for _, opt := range q.OptionList() {
		if opt == answer {
			return true
		}
	}
	return false
}
