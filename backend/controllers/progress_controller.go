package controllers

import (
	"math"
	"strconv"

	"aicademy/backend/config"
	"aicademy/backend/models"
	"aicademy/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type ProgressController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewProgressController(db *gorm.DB, cfg *config.Config) *ProgressController {
	return &ProgressController{DB: db, Cfg: cfg}
}

// GetStats godoc
// @Summary Get user stats
// @Description Derives {completed, avgScore, totalAttempts} from the user's progress records at read time
// @Tags progress
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /progress/stats [get]
func (pc *ProgressController) GetStats(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, pc.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	var records []models.ProgressRecord
	pc.DB.Where("user_id = ?", userID).Find(&records)

	// Агрегаты считаются при чтении, без кэша.
	return c.JSON(StatsFromRecords(records))
}

// StatsFromRecords computes the read-time aggregate for one user.
// avgScore is the rounded mean of best scores, not weighted by attempts.
func StatsFromRecords(records []models.ProgressRecord) fiber.Map {
	if len(records) == 0 {
		return fiber.Map{
			"completed":     0,
			"avgScore":      0,
			"totalAttempts": 0,
		}
	}

	completed := 0
	totalScore := 0
	for _, r := range records {
		if r.Completed {
			completed++
		}
		totalScore += r.Score
	}

	return fiber.Map{
		"completed":     completed,
		"avgScore":      int(math.Round(float64(totalScore) / float64(len(records)))),
		"totalAttempts": len(records),
	}
}

// GetProgress returns per-lesson progress for the caller, optionally
// filtered by course.
func (pc *ProgressController) GetProgress(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, pc.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	query := pc.DB.Where("user_id = ?", userID)

	if courseParam := c.Query("course_id"); courseParam != "" {
		courseID, err := strconv.Atoi(courseParam)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid course ID",
			})
		}
		var lessonIDs []uint
		pc.DB.Model(&models.Lesson{}).Where("course_id = ?", courseID).Pluck("id", &lessonIDs)
		query = query.Where("lesson_id IN ?", lessonIDs)
	}

	var records []models.ProgressRecord
	query.Find(&records)

	var result []fiber.Map
	for _, r := range records {
		result = append(result, fiber.Map{
			"lesson_id": r.LessonID,
			"score":     r.Score,
			"completed": r.Completed,
			"attempts":  r.Attempts,
		})
	}

	return c.JSON(result)
}
