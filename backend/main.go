package main

import (
	"log"

	"aicademy/backend/ai"
	"aicademy/backend/config"
	"aicademy/backend/examguard"
	"aicademy/backend/middleware"
	"aicademy/backend/routes"
	"aicademy/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// Initialize database
	db, err := utils.InitDB(cfg)
	if err != nil {
		log.Fatalf("Error initializing database: %v", err)
	}

	// Initialize logger
	logger := utils.InitLogger()

	// AI client and exam guard registry
	aiClient := ai.NewClient(cfg, logger)
	guards := examguard.NewRegistry()

	// Create Fiber app
	app := fiber.New()

	// Middleware
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(middleware.LoggingMiddleware(logger))

	// Setup routes
	routes.SetupRoutes(app, db, cfg, aiClient, guards, logger)

	// Start server
	log.Fatal(app.Listen(":" + cfg.ServerPort))
}
