package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ProgressRecord — одна строка на пару (user, lesson).
type ProgressRecord struct {
	gorm.Model
	UserID    uint           `gorm:"not null;uniqueIndex:idx_user_lesson"`
	LessonID  uint           `gorm:"not null;uniqueIndex:idx_user_lesson"`
	Score     int            `gorm:"not null"` // best score, 0-100
	Completed bool           `gorm:"not null;default:false"`
	Attempts  int            `gorm:"not null;default:0"`
	Answers   datatypes.JSON `gorm:"type:jsonb"` // answers of the last submission
}

type SessionStatus string

const (
	SessionActive   SessionStatus = "active"
	SessionFinished SessionStatus = "finished"
)

type ExamSession struct {
	gorm.Model
	Token      uuid.UUID     `gorm:"type:uuid;uniqueIndex;not null"`
	UserID     uint          `gorm:"index;not null"`
	LessonID   uint          `gorm:"index;not null"`
	Status     SessionStatus `gorm:"size:32;not null;default:active"`
	StartedAt  time.Time
	FinishedAt *time.Time
	Violations int `gorm:"not null;default:0"`
}

// ViolationEvent хранится durably, а не только в логах.
type ViolationEvent struct {
	gorm.Model
	SessionID uint   `gorm:"index;not null"`
	UserID    uint   `gorm:"index;not null"`
	LessonID  uint   `gorm:"index;not null"`
	Type      string `gorm:"size:32;not null"` // tab_hidden, window_blur, copy_attempt
}
