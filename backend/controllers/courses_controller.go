package controllers

import (
	"encoding/json"
	"errors"
	"log"
	"strconv"

	"aicademy/backend/ai"
	"aicademy/backend/config"
	"aicademy/backend/models"
	"aicademy/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type CoursesController struct {
	DB     *gorm.DB
	Cfg    *config.Config
	AI     *ai.Client
	Logger *log.Logger
}

func NewCoursesController(db *gorm.DB, cfg *config.Config, aiClient *ai.Client, logger *log.Logger) *CoursesController {
	return &CoursesController{DB: db, Cfg: cfg, AI: aiClient, Logger: logger}
}

// CreateCourse godoc
// @Summary Create a course
// @Description Creates a course and generates its module/lesson outline
// @Tags courses
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /courses [post]
func (cc *CoursesController) CreateCourse(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, cc.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	var input struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Topic       string `json:"topic"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}
	if input.Topic == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Topic is required",
		})
	}
	if input.Title == "" {
		input.Title = input.Topic
	}

	course := models.Course{
		UserID:      userID,
		Title:       input.Title,
		Description: input.Description,
		Topic:       input.Topic,
	}
	if err := cc.DB.Create(&course).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not create course",
		})
	}

	// Генерация плана курса. Никогда не падает: при любой ошибке вернётся
	// детерминированный fallback.
	outline := cc.AI.GenerateOutline(c.Context(), input.Topic)

	moduleOrder := 1
	for _, mod := range outline {
		courseModule := models.CourseModule{
			CourseID:      course.ID,
			Title:         mod.Title,
			Description:   mod.Description,
			SequenceOrder: moduleOrder,
		}
		if err := cc.DB.Create(&courseModule).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Could not save course outline",
			})
		}
		moduleOrder++

		lessonOrder := 1
		for _, lessonTitle := range mod.Lessons {
			lesson := models.Lesson{
				ModuleID:      courseModule.ID,
				CourseID:      course.ID,
				Title:         lessonTitle,
				Content:       "", // empty content triggers generation on first open
				SequenceOrder: lessonOrder,
			}
			if err := cc.DB.Create(&lesson).Error; err != nil {
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error": "Could not save course outline",
				})
			}
			lessonOrder++
		}
	}

	return c.JSON(fiber.Map{
		"message": "Course created",
		"course": fiber.Map{
			"id":      course.ID,
			"title":   course.Title,
			"topic":   course.Topic,
			"modules": len(outline),
		},
	})
}

// ListCourses returns the caller's courses, newest first.
func (cc *CoursesController) ListCourses(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, cc.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	var courses []models.Course
	cc.DB.Where("user_id = ?", userID).Order("created_at DESC").Find(&courses)

	var result []fiber.Map
	for _, course := range courses {
		var lessonCount int64
		cc.DB.Model(&models.Lesson{}).Where("course_id = ?", course.ID).Count(&lessonCount)

		result = append(result, fiber.Map{
			"id":          course.ID,
			"title":       course.Title,
			"description": course.Description,
			"topic":       course.Topic,
			"lessons":     lessonCount,
			"created_at":  course.CreatedAt,
		})
	}

	return c.JSON(result)
}

// GetCourseStructure returns the course with its modules and lessons in
// sequence order. Question bodies are not included here.
func (cc *CoursesController) GetCourseStructure(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, cc.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid course ID",
		})
	}

	var course models.Course
	if err := cc.DB.First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Course not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	var courseModules []models.CourseModule
	cc.DB.Where("course_id = ?", courseID).Order("sequence_order").Find(&courseModules)

	var modules []fiber.Map
	for _, mod := range courseModules {
		var lessons []models.Lesson
		cc.DB.Where("module_id = ?", mod.ID).Order("sequence_order").Find(&lessons)

		var lessonMaps []fiber.Map
		for _, lesson := range lessons {
			lessonMaps = append(lessonMaps, fiber.Map{
				"id":        lesson.ID,
				"title":     lesson.Title,
				"order":     lesson.SequenceOrder,
				"generated": lesson.Content != "",
			})
		}

		modules = append(modules, fiber.Map{
			"id":          mod.ID,
			"title":       mod.Title,
			"description": mod.Description,
			"order":       mod.SequenceOrder,
			"lessons":     lessonMaps,
		})
	}

	return c.JSON(fiber.Map{
		"course": fiber.Map{
			"id":          course.ID,
			"title":       course.Title,
			"description": course.Description,
			"topic":       course.Topic,
			"owner":       course.UserID == userID,
			"modules":     modules,
		},
	})
}

// DeleteCourse removes the course with all modules, lessons, questions
// and progress records (cascading lifecycle).
func (cc *CoursesController) DeleteCourse(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, cc.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid course ID",
		})
	}

	var course models.Course
	if err := cc.DB.First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Course not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	if course.UserID != userID {
		return utils.Forbidden(c, "You don't have permission to delete this course")
	}

	err = cc.DB.Transaction(func(tx *gorm.DB) error {
		var lessonIDs []uint
		if err := tx.Model(&models.Lesson{}).Where("course_id = ?", courseID).Pluck("id", &lessonIDs).Error; err != nil {
			return err
		}

		if len(lessonIDs) > 0 {
			if err := tx.Where("lesson_id IN ?", lessonIDs).Delete(&models.Question{}).Error; err != nil {
				return err
			}
			if err := tx.Where("lesson_id IN ?", lessonIDs).Delete(&models.ProgressRecord{}).Error; err != nil {
				return err
			}
			if err := tx.Where("lesson_id IN ?", lessonIDs).Delete(&models.ViolationEvent{}).Error; err != nil {
				return err
			}
			if err := tx.Where("lesson_id IN ?", lessonIDs).Delete(&models.ExamSession{}).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("course_id = ?", courseID).Delete(&models.Lesson{}).Error; err != nil {
			return err
		}
		if err := tx.Where("course_id = ?", courseID).Delete(&models.CourseModule{}).Error; err != nil {
			return err
		}
		return tx.Delete(&course).Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not delete course",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Course deleted",
	})
}

// GetLesson returns the lesson content and its questions without the
// correct answers.
func (cc *CoursesController) GetLesson(c *fiber.Ctx) error {
	if _, err := utils.ExtractUserIDFromToken(c, cc.Cfg); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	lessonID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid lesson ID",
		})
	}

	var lesson models.Lesson
	if err := cc.DB.First(&lesson, lessonID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Lesson not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	var questions []models.Question
	cc.DB.Where("lesson_id = ?", lessonID).Order("sequence_order").Find(&questions)

	return c.JSON(fiber.Map{
		"lesson": fiber.Map{
			"id":        lesson.ID,
			"title":     lesson.Title,
			"content":   lesson.Content,
			"order":     lesson.SequenceOrder,
			"questions": sanitizeQuestions(questions),
		},
	})
}

// GenerateLessonContent fills (or explicitly regenerates) the lesson's
// content and quiz questions. Generated content is otherwise immutable.
func (cc *CoursesController) GenerateLessonContent(c *fiber.Ctx) error {
	if _, err := utils.ExtractUserIDFromToken(c, cc.Cfg); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	lessonID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid lesson ID",
		})
	}

	var lesson models.Lesson
	if err := cc.DB.First(&lesson, lessonID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Lesson not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	var courseModule models.CourseModule
	cc.DB.First(&courseModule, lesson.ModuleID)

	generated := cc.AI.GenerateLesson(c.Context(), lesson.Title, courseModule.Title)

	err = cc.DB.Transaction(func(tx *gorm.DB) error {
		lesson.Content = generated.Content
		if err := tx.Save(&lesson).Error; err != nil {
			return err
		}

		// Регенерация заменяет прежний набор вопросов целиком.
		if err := tx.Where("lesson_id = ?", lesson.ID).Delete(&models.Question{}).Error; err != nil {
			return err
		}

		order := 1
		for _, draft := range generated.Questions {
			if !validDraft(draft) {
				cc.Logger.Printf("courses: dropping invalid generated question for lesson %d: %q", lesson.ID, draft.Question)
				continue
			}
			optionsJSON, err := json.Marshal(draft.Options)
			if err != nil {
				return err
			}
			question := models.Question{
				LessonID:      lesson.ID,
				Prompt:        draft.Question,
				Options:       datatypes.JSON(optionsJSON),
				CorrectAnswer: draft.CorrectAnswer,
				Explanation:   draft.Explanation,
				SequenceOrder: order,
			}
			if err := tx.Create(&question).Error; err != nil {
				return err
			}
			order++
		}
		return nil
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not save lesson content",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Lesson content generated",
		"lesson": fiber.Map{
			"id":        lesson.ID,
			"title":     lesson.Title,
			"content":   lesson.Content,
			"questions": len(generated.Questions),
		},
	})
}

// validDraft enforces the question invariant: the designated correct
// answer must be one of the options.
func validDraft(d ai.QuestionDraft) bool {
	if d.Question == "" || len(d.Options) == 0 {
		return false
	}
	for _, opt := range d.Options {
		if opt == d.CorrectAnswer {
			return true
		}
	}
	return false
}

// sanitizeQuestions strips correct answers and explanations before the
// questions leave the server for an exam taker.
func sanitizeQuestions(questions []models.Question) []fiber.Map {
	var result []fiber.Map
	for _, q := range questions {
		result = append(result, fiber.Map{
			"id":      q.ID,
			"prompt":  q.Prompt,
			"options": q.OptionList(),
			"order":   q.SequenceOrder,
		})
	}
	return result
}
