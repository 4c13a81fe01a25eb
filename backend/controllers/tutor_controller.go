package controllers

import (
	"log"
	"strconv"

	"aicademy/backend/ai"
	"aicademy/backend/config"
	"aicademy/backend/identity"
	"aicademy/backend/models"
	"aicademy/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type TutorController struct {
	DB     *gorm.DB
	Cfg    *config.Config
	AI     *ai.Client
	Logger *log.Logger
}

func NewTutorController(db *gorm.DB, cfg *config.Config, aiClient *ai.Client, logger *log.Logger) *TutorController {
	return &TutorController{DB: db, Cfg: cfg, AI: aiClient, Logger: logger}
}

// SendMessage godoc
// @Summary Send a message to the AI tutor
// @Description Persists the user message, asks the tutor and persists the reply
// @Tags tutor
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /tutor/messages [post]
func (tc *TutorController) SendMessage(c *fiber.Ctx) error {
	var input struct {
		Body     string `json:"body"`
		LessonID uint   `json:"lesson_id"`
		identity.Hint
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}
	if input.Body == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Message body is required",
		})
	}

	id, err := identity.FromRequest(c, tc.DB, tc.Cfg, input.Hint)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized: please login")
	}
	if !id.Verified {
		tc.Logger.Printf("tutor: message with UNVERIFIED identity hint %q", id.Subject)
	}

	user, err := identity.ResolveUser(tc.DB, id)
	if err != nil {
		return utils.InternalServerError(c, "Could not resolve user")
	}

	userMessage := models.ChatMessage{
		UserID: user.ID,
		Role:   "user",
		Body:   input.Body,
	}
	if err := tc.DB.Create(&userMessage).Error; err != nil {
		return utils.InternalServerError(c, "Could not save message")
	}

	// Контекст урока подмешивается в системный промпт, если урок указан.
	lessonContext := ""
	if input.LessonID != 0 {
		var lesson models.Lesson
		if err := tc.DB.First(&lesson, input.LessonID).Error; err == nil {
			lessonContext = lesson.Content
		}
	}

	reply := tc.AI.Chat(c.Context(), lessonContext, []ai.ChatMessage{
		{Role: "user", Content: input.Body},
	})

	assistantMessage := models.ChatMessage{
		UserID: user.ID,
		Role:   "assistant",
		Body:   reply,
	}
	if err := tc.DB.Create(&assistantMessage).Error; err != nil {
		return utils.InternalServerError(c, "Could not save reply")
	}

	return c.JSON(fiber.Map{
		"reply": reply,
	})
}

// GetHistory returns the caller's latest messages, newest first.
func (tc *TutorController) GetHistory(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, tc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	if limit < 1 || limit > 200 {
		limit = 50
	}

	var messages []models.ChatMessage
	tc.DB.Where("user_id = ?", userID).Order("created_at DESC").Limit(limit).Find(&messages)

	var result []fiber.Map
	for _, m := range messages {
		result = append(result, fiber.Map{
			"id":         m.ID,
			"role":       m.Role,
			"body":       m.Body,
			"created_at": m.CreatedAt,
		})
	}

	return c.JSON(result)
}
