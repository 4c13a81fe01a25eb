package controllers

import (
	"encoding/json"
	"errors"
	"log"
	"strconv"
	"time"

	"aicademy/backend/config"
	"aicademy/backend/exam"
	"aicademy/backend/examguard"
	"aicademy/backend/identity"
	"aicademy/backend/models"
	"aicademy/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ExamController struct {
	DB     *gorm.DB
	Cfg    *config.Config
	Guards *examguard.Registry
	Logger *log.Logger
}

func NewExamController(db *gorm.DB, cfg *config.Config, guards *examguard.Registry, logger *log.Logger) *ExamController {
	return &ExamController{DB: db, Cfg: cfg, Guards: guards, Logger: logger}
}

// violationSink persists every counted violation and logs it, one write
// per event, no batching.
func (ec *ExamController) violationSink(session models.ExamSession) examguard.Sink {
	return func(e examguard.Event) {
		event := models.ViolationEvent{
			SessionID: session.ID,
			UserID:    session.UserID,
			LessonID:  session.LessonID,
			Type:      string(e),
		}
		if err := ec.DB.Create(&event).Error; err != nil {
			ec.Logger.Printf("exam: could not persist violation: %v", err)
		}
		ec.Logger.Printf("VIOLATION: user %d - %s on lesson %d", session.UserID, e, session.LessonID)
	}
}

// StartExam godoc
// @Summary Start a proctored exam session
// @Description Opens an exam session for the lesson and activates violation monitoring
// @Tags exams
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /exams/{lessonId}/start [post]
func (ec *ExamController) StartExam(c *fiber.Ctx) error {
	lessonID, err := strconv.Atoi(c.Params("lessonId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid lesson ID",
		})
	}

	var hint identity.Hint
	_ = c.BodyParser(&hint)

	id, err := identity.FromRequest(c, ec.DB, ec.Cfg, hint)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}
	if !id.Verified {
		ec.Logger.Printf("exam: starting session with UNVERIFIED identity hint %q", id.Subject)
	}

	user, err := identity.ResolveUser(ec.DB, id)
	if err != nil {
		return utils.InternalServerError(c, "Could not resolve user")
	}

	var lesson models.Lesson
	if err := ec.DB.First(&lesson, lessonID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Lesson not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	var questions []models.Question
	ec.DB.Where("lesson_id = ?", lessonID).Order("sequence_order").Find(&questions)

	session := models.ExamSession{
		Token:     uuid.New(),
		UserID:    user.ID,
		LessonID:  lesson.ID,
		Status:    models.SessionActive,
		StartedAt: time.Now(),
	}
	if err := ec.DB.Create(&session).Error; err != nil {
		return utils.InternalServerError(c, "Could not create exam session")
	}

	ec.Guards.Begin(session.Token, ec.violationSink(session))

	return c.JSON(fiber.Map{
		"session": session.Token,
		"lesson": fiber.Map{
			"id":        lesson.ID,
			"title":     lesson.Title,
			"questions": sanitizeQuestions(questions),
		},
	})
}

// ReportViolation godoc
// @Summary Report an exam integrity event
// @Description Counts tab switches, blur and copy attempts; context-menu and fullscreen-denied notices are acknowledged without counting
// @Tags exams
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /exams/violations [post]
func (ec *ExamController) ReportViolation(c *fiber.Ctx) error {
	var input struct {
		Session string `json:"session"`
		Type    string `json:"type"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	event := examguard.Event(input.Type)
	if !examguard.Known(event) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unknown violation type",
		})
	}

	token, err := uuid.Parse(input.Session)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid session token",
		})
	}

	// Notices (context menu, fullscreen denial) are soft: acknowledged,
	// logged at most, never counted and never fatal.
	if !examguard.Counted(event) {
		ec.Logger.Printf("exam: notice %s on session %s", event, token)
		return c.SendStatus(fiber.StatusNoContent)
	}

	guard, ok := ec.Guards.Get(token)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "No active exam session",
		})
	}

	guard.Record(event)

	return c.JSON(fiber.Map{
		"warnings": guard.Warnings(),
	})
}

// SubmitExam godoc
// @Summary Submit exam answers
// @Description Grades the submission and upserts the progress record for (user, lesson)
// @Tags exams
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /exams/{lessonId}/submit [post]
func (ec *ExamController) SubmitExam(c *fiber.Ctx) error {
	lessonID, err := strconv.Atoi(c.Params("lessonId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid lesson ID",
		})
	}

	var input struct {
		Session string   `json:"session"`
		Score   int      `json:"score"`
		Answers []string `json:"answers"`
		identity.Hint
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	// Отправка без какой-либо личности — громкая ошибка, не тихий no-op.
	id, err := identity.FromRequest(c, ec.DB, ec.Cfg, input.Hint)
	if err != nil {
		return utils.Unauthorized(c, "Unauthenticated: cannot record progress without an identity")
	}
	if !id.Verified {
		ec.Logger.Printf("exam: recording progress with UNVERIFIED identity hint %q", id.Subject)
	}

	user, err := identity.ResolveUser(ec.DB, id)
	if err != nil {
		return utils.InternalServerError(c, "Could not resolve user")
	}

	var lesson models.Lesson
	if err := ec.DB.First(&lesson, lessonID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Lesson not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	var questions []models.Question
	ec.DB.Where("lesson_id = ?", lessonID).Order("sequence_order").Find(&questions)

	// Сервер считает балл сам. Клиентский score принимается только для
	// уроков без сохранённых вопросов (legacy).
	score := exam.ClampScore(input.Score)
	correct := 0
	if len(questions) > 0 {
		score, correct = exam.ComputeScore(input.Answers, questions)
	}

	answersJSON, err := json.Marshal(input.Answers)
	if err != nil {
		return utils.InternalServerError(c, "Could not encode answers")
	}

	// Одно атомарное выражение вместо read-then-write: параллельные
	// отправки не теряют инкремент attempts и не роняют вставку на
	// уникальном индексе.
	upsert := models.ProgressRecord{
		UserID:    user.ID,
		LessonID:  lesson.ID,
		Score:     score,
		Completed: true,
		Attempts:  1,
		Answers:   datatypes.JSON(answersJSON),
	}
	err = ec.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "lesson_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"score":      gorm.Expr("CASE WHEN excluded.score > progress_records.score THEN excluded.score ELSE progress_records.score END"),
			"attempts":   gorm.Expr("progress_records.attempts + 1"),
			"completed":  true,
			"answers":    gorm.Expr("excluded.answers"),
			"updated_at": time.Now(),
		}),
	}).Create(&upsert).Error
	if err != nil {
		return utils.InternalServerError(c, "Could not save progress")
	}

	var record models.ProgressRecord
	if err := ec.DB.Where("user_id = ? AND lesson_id = ?", user.ID, lesson.ID).First(&record).Error; err != nil {
		return utils.InternalServerError(c, "Could not read back progress")
	}

	// Завершаем сессию, если она была открыта, — и только собственную
	// сессию этого урока.
	warnings := 0
	if input.Session != "" {
		if token, err := uuid.Parse(input.Session); err == nil {
			var session models.ExamSession
			err := ec.DB.
				Where("token = ? AND user_id = ? AND lesson_id = ?", token, user.ID, lesson.ID).
				First(&session).Error
			if err == nil {
				warnings = ec.Guards.End(token)
				now := time.Now()
				ec.DB.Model(&session).Updates(map[string]interface{}{
					"status":      models.SessionFinished,
					"finished_at": &now,
					"violations":  warnings,
				})
			}
		}
	}

	return c.JSON(fiber.Map{
		"message": "Progress recorded",
		"result": fiber.Map{
			"score":     score,
			"best":      record.Score,
			"correct":   correct,
			"questions": len(questions),
			"attempts":  record.Attempts,
			"completed": record.Completed,
			"warnings":  warnings,
		},
	})
}

// ListViolations returns recent integrity violations for review,
// optionally filtered by lesson. Admin only (enforced by middleware).
func (ec *ExamController) ListViolations(c *fiber.Ctx) error {
	query := ec.DB.Model(&models.ViolationEvent{}).Order("created_at DESC").Limit(100)

	if lessonParam := c.Query("lesson_id"); lessonParam != "" {
		lessonID, err := strconv.Atoi(lessonParam)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid lesson ID",
			})
		}
		query = query.Where("lesson_id = ?", lessonID)
	}

	var events []models.ViolationEvent
	if err := query.Find(&events).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	var result []fiber.Map
	for _, e := range events {
		result = append(result, fiber.Map{
			"id":         e.ID,
			"session_id": e.SessionID,
			"user_id":    e.UserID,
			"lesson_id":  e.LessonID,
			"type":       e.Type,
			"created_at": e.CreatedAt,
		})
	}

	return c.JSON(fiber.Map{
		"violations": result,
	})
}

// GetExamResult returns the question review (including correct answers)
// together with the stored progress for the lesson.
func (ec *ExamController) GetExamResult(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, ec.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	lessonID, err := strconv.Atoi(c.Params("lessonId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid lesson ID",
		})
	}

	var record models.ProgressRecord
	if err := ec.DB.Where("user_id = ? AND lesson_id = ?", userID, lessonID).First(&record).Error; err != nil {
		return utils.NotFound(c, "Exam not completed")
	}

	var questions []models.Question
	ec.DB.Where("lesson_id = ?", lessonID).Order("sequence_order").Find(&questions)

	var review []fiber.Map
	for _, q := range questions {
		review = append(review, fiber.Map{
			"id":             q.ID,
			"prompt":         q.Prompt,
			"options":        q.OptionList(),
			"correct_answer": q.CorrectAnswer,
			"explanation":    q.Explanation,
			"order":          q.SequenceOrder,
		})
	}

	return c.JSON(fiber.Map{
		"questions": review,
		"result": fiber.Map{
			"score":     record.Score,
			"attempts":  record.Attempts,
			"completed": record.Completed,
		},
	})
}
