package controllers

import (
	"errors"

	"quizgame/backend/config"
	"quizgame/backend/middleware"
	"quizgame/backend/models"
	"quizgame/backend/services"
	"quizgame/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type QuizController struct {
	Service *services.QuizService
	Cfg     *config.Config
}

func NewQuizController(service *services.QuizService, cfg *config.Config) *QuizController {
	return &QuizController{Service: service, Cfg: cfg}
}

// CreateQuiz starts a new quiz session for the authenticated user.
func (qc *QuizController) CreateQuiz(c *fiber.Ctx) error {
	var req models.CreateQuizRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequest(c, "Invalid request body")
	}
	if req.Count < 0 {
		return utils.BadRequest(c, "Question count must not be negative")
	}

	response, err := qc.Service.CreateQuiz(c.Context(), services.CreateQuizInput{
		UserID:      middleware.UserIDFromContext(c),
		Category:    req.Category,
		Difficulty:  req.Difficulty,
		Count:       req.Count,
		RandomOrder: req.RandomOrder,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNoQuestionsAvailable):
			return utils.NotFound(c, err)
		case errors.Is(err, services.ErrQuestionLookup):
			return utils.BadGateway(c, err)
		default:
			return utils.InternalServerError(c, err)
		}
	}

	return utils.Created(c, response)
}

// SubmitAnswer records one answer against a quiz session and returns the
// session's cumulative score.
func (qc *QuizController) SubmitAnswer(c *fiber.Ctx) error {
	var req models.SubmitAnswerRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequest(c, "Invalid request body")
	}
	if req.QuizID == "" || req.QuestionID == "" {
		return utils.BadRequest(c, "Quiz ID and question ID are required")
	}
	if req.AnswerIndex < 0 {
		return utils.BadRequest(c, "Answer index must not be negative")
	}

	score, err := qc.Service.SubmitAnswer(c.Context(), req.QuizID, req.QuestionID, req.AnswerIndex)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrQuizNotFound):
			return utils.NotFound(c, err)
		case errors.Is(err, services.ErrQuizCompleted),
			errors.Is(err, services.ErrQuestionNotInQuiz),
			errors.Is(err, services.ErrAlreadyAnswered):
			return utils.Conflict(c, err)
		case errors.Is(err, services.ErrQuestionLookup):
			return utils.BadGateway(c, err)
		default:
			return utils.InternalServerError(c, err)
		}
	}

	return utils.Success(c, fiber.StatusOK, models.SubmitAnswerResponse{
		QuizID: req.QuizID,
		Score:  score,
	})
}

// GetQuiz returns the full session record, answers and score included.
func (qc *QuizController) GetQuiz(c *fiber.Ctx) error {
	quiz, err := qc.Service.GetQuiz(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, services.ErrQuizNotFound) {
			return utils.NotFound(c, err)
		}
		return utils.InternalServerError(c, err)
	}

	return utils.Success(c, fiber.StatusOK, quiz)
}

// GetQuizResult returns the per-question breakdown of a completed quiz.
func (qc *QuizController) GetQuizResult(c *fiber.Ctx) error {
	result, err := qc.Service.GetQuizResult(c.Context(), c.Params("id"))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrQuizNotFound):
			return utils.NotFound(c, err)
		case errors.Is(err, services.ErrQuizNotCompleted):
			return utils.Conflict(c, err)
		case errors.Is(err, services.ErrQuestionLookup):
			return utils.BadGateway(c, err)
		default:
			return utils.InternalServerError(c, err)
		}
	}

	return utils.Success(c, fiber.StatusOK, result)
}

// GetQuizHistory returns every quiz session of a user, newest first.
func (qc *QuizController) GetQuizHistory(c *fiber.Ctx) error {
	quizzes, err := qc.Service.GetQuizzesByUser(c.Context(), c.Params("userId"))
	if err != nil {
		return utils.InternalServerError(c, err)
	}

	return utils.Success(c, fiber.StatusOK, quizzes)
}
