package utils

import (
	"fmt"

	"aicademy/backend/config"
	"aicademy/backend/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// InitDB открывает соединение с Postgres и выполняет миграции.
func InitDB(cfg *config.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Course{},
		&models.CourseModule{},
		&models.Lesson{},
		&models.Question{},
		&models.ProgressRecord{},
		&models.ExamSession{},
		&models.ViolationEvent{},
		&models.ChatMessage{},
	); err != nil {
		return nil, err
	}

	return db, nil
}
