package routes

import (
	"quizgame/backend/config"
	"quizgame/backend/controllers"
	"quizgame/backend/middleware"
	"quizgame/backend/services"

	"github.com/gofiber/fiber/v2"
)

func SetupRoutes(app *fiber.App, quizService *services.QuizService, cfg *config.Config) {
	authMiddleware := middleware.AuthMiddleware(cfg)

	quizController := controllers.NewQuizController(quizService, cfg)
	quizzes := app.Group("/api/quizzes", authMiddleware)
	quizzes.Post("/", quizController.CreateQuiz)
	quizzes.Post("/submit", quizController.SubmitAnswer)
	quizzes.Get("/user/:userId", quizController.GetQuizHistory)
	quizzes.Get("/:id", quizController.GetQuiz)
	quizzes.Get("/:id/result", quizController.GetQuizResult)
}
