package routes

import (
	"log"

	"aicademy/backend/ai"
	"aicademy/backend/config"
	"aicademy/backend/controllers"
	"aicademy/backend/examguard"
	"aicademy/backend/middleware"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, db *gorm.DB, cfg *config.Config, aiClient *ai.Client, guards *examguard.Registry, logger *log.Logger) {
	// Auth routes
	authController := controllers.NewAuthController(db, cfg)
	app.Post("/api/auth/register", authController.Register)
	app.Post("/api/auth/login", authController.Login)

	// Middleware
	authMiddleware := middleware.AuthMiddleware(cfg)

	// User routes
	userController := controllers.NewUserController(db, cfg)
	app.Get("/api/user/profile", authMiddleware, userController.GetProfile)
	app.Put("/api/user/profile", authMiddleware, userController.UpdateProfile)

	// Courses routes
	coursesController := controllers.NewCoursesController(db, cfg, aiClient, logger)
	courses := app.Group("/api/courses", authMiddleware)
	courses.Post("/", coursesController.CreateCourse)
	courses.Get("/", coursesController.ListCourses)
	courses.Get("/:id", coursesController.GetCourseStructure)
	courses.Delete("/:id", coursesController.DeleteCourse)

	// Lesson routes
	app.Get("/api/lessons/:id", authMiddleware, coursesController.GetLesson)
	app.Post("/api/lessons/:id/generate", authMiddleware, coursesController.GenerateLessonContent)

	// Exam routes. Start and submit accept an identity hint in the body,
	// so the auth middleware is not applied; the controller resolves the
	// identity itself and rejects fully anonymous calls.
	examController := controllers.NewExamController(db, cfg, guards, logger)
	app.Post("/api/exams/:lessonId/start", examController.StartExam)
	app.Post("/api/exams/violations", examController.ReportViolation)
	app.Post("/api/exams/:lessonId/submit", examController.SubmitExam)
	app.Get("/api/exams/:lessonId/result", authMiddleware, examController.GetExamResult)

	// Admin routes
	adminMiddleware := middleware.AdminMiddleware(db, cfg)
	app.Get("/api/admin/violations", authMiddleware, adminMiddleware, examController.ListViolations)

	// Progress routes
	progressController := controllers.NewProgressController(db, cfg)
	app.Get("/api/progress", authMiddleware, progressController.GetProgress)
	app.Get("/api/progress/stats", authMiddleware, progressController.GetStats)

	// Tutor routes
	tutorController := controllers.NewTutorController(db, cfg, aiClient, logger)
	app.Post("/api/tutor/messages", tutorController.SendMessage)
	app.Get("/api/tutor/messages", authMiddleware, tutorController.GetHistory)
}
