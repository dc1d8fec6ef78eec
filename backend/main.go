package main

import (
	"log"

	"quizgame/backend/clients"
	"quizgame/backend/config"
	"quizgame/backend/middleware"
	"quizgame/backend/routes"
	"quizgame/backend/services"
	"quizgame/backend/storage"
	"quizgame/backend/utils"

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

	// Downstream services
	questionClient := clients.NewQuestionClient(cfg.QuestionServiceURL, cfg.ClientTimeout)
	userClient := clients.NewUserClient(cfg.UserServiceURL, cfg.ClientTimeout)

	quizStore := storage.NewQuizStore(db)
	quizService := services.NewQuizService(quizStore, questionClient, userClient, logger,
		cfg.PointsPerCorrect, cfg.DefaultQuestionCount)

	// Create Fiber app
	app := fiber.New()

	// Middleware
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(middleware.LoggingMiddleware(logger))

	// Setup routes
	routes.SetupRoutes(app, quizService, cfg)

	// Start server
	log.Fatal(app.Listen(":" + cfg.ServerPort))
}
