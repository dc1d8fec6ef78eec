package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"

	"quizgame/backend/models"

	"gorm.io/datatypes"
)

var (
	ErrNoQuestionsAvailable = errors.New("no questions available for the requested filters")
	ErrQuizNotFound         = errors.New("quiz not found")
	ErrQuizCompleted        = errors.New("quiz already completed")
	ErrQuestionNotInQuiz    = errors.New("question does not belong to this quiz")
	ErrAlreadyAnswered      = errors.New("question already answered")
	ErrQuestionLookup       = errors.New("could not fetch question")
	ErrQuizNotCompleted     = errors.New("quiz not completed yet")
)

// QuizStore is the persistence contract for quiz sessions. Save overwrites
// the full record. GetByID returns (nil, nil) when no session exists.
type QuizStore interface {
	Create(ctx context.Context, quiz *models.QuizSession) error
	GetByID(ctx context.Context, id string) (*models.QuizSession, error)
	ListByUser(ctx context.Context, userID string) ([]models.QuizSession, error)
	Save(ctx context.Context, quiz *models.QuizSession) error
}

// QuestionSource provides question batches and per-question correctness data.
type QuestionSource interface {
	RandomQuestions(ctx context.Context, count int) ([]models.Question, error)
	RandomQuestionsByCategory(ctx context.Context, category string, count int) ([]models.Question, error)
	RandomQuestionsByDifficulty(ctx context.Context, difficulty string, count int) ([]models.Question, error)
	RandomQuestionsByCategoryAndDifficulty(ctx context.Context, category, difficulty string, count int) ([]models.Question, error)
	QuestionByID(ctx context.Context, id string) (*models.Question, error)
}

// ScoreSink receives cumulative-score deltas for users.
type ScoreSink interface {
	UpdateScore(ctx context.Context, userID string, scoreChange int) error
}

// QuizService owns the quiz session lifecycle: creation, answer submission,
// completion detection, scoring, and score propagation to the user service.
type QuizService struct {
	store     QuizStore
	questions QuestionSource
	scores    ScoreSink
	logger    *log.Logger

	pointsPerCorrect int
	defaultCount     int

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewQuizService(store QuizStore, questions QuestionSource, scores ScoreSink, logger *log.Logger, pointsPerCorrect, defaultCount int) *QuizService {
	if pointsPerCorrect <= 0 {
		pointsPerCorrect = 1
	}
	if defaultCount <= 0 {
		defaultCount = 10
	}
	return &QuizService{
		store:            store,
		questions:        questions,
		scores:           scores,
		logger:           logger,
		pointsPerCorrect: pointsPerCorrect,
		defaultCount:     defaultCount,
		locks:            make(map[string]*sync.Mutex),
	}
}

type CreateQuizInput struct {
	UserID      string
	Category    string
	Difficulty  string
	Count       int
	RandomOrder bool
}

// CreateQuiz fetches a question batch, persists a fresh session over it and
// returns the session id with the sanitized questions in session order. The
// correct-answer index never reaches the caller.
func (s *QuizService) CreateQuiz(ctx context.Context, input CreateQuizInput) (*models.StartQuizResponse, error) {
	count := input.Count
	if count <= 0 {
		count = s.defaultCount
	}

	var questions []models.Question
	var err error
	switch {
	case input.Category != "" && input.Difficulty != "":
		questions, err = s.questions.RandomQuestionsByCategoryAndDifficulty(ctx, input.Category, input.Difficulty, count)
	case input.Category != "":
		questions, err = s.questions.RandomQuestionsByCategory(ctx, input.Category, count)
	case input.Difficulty != "":
		questions, err = s.questions.RandomQuestionsByDifficulty(ctx, input.Difficulty, count)
	default:
		questions, err = s.questions.RandomQuestions(ctx, count)
	}
	if err != nil {
		return nil, fmt.Errorf("%w batch: %v", ErrQuestionLookup, err)
	}
	if len(questions) == 0 {
		return nil, ErrNoQuestionsAvailable
	}

	// The question service already randomizes its batches; a stable order is
	// requested by sorting on question id.
	if !input.RandomOrder {
		sort.Slice(questions, func(i, j int) bool { return questions[i].ID < questions[j].ID })
	}

	questionIDs := make([]string, len(questions))
	for i, q := range questions {
		questionIDs[i] = q.ID
	}

	quiz := &models.QuizSession{
		UserID:      input.UserID,
		QuestionIDs: datatypes.JSONSlice[string](questionIDs),
		Answers:     map[string]int{},
	}
	if err := s.store.Create(ctx, quiz); err != nil {
		return nil, fmt.Errorf("saving quiz: %w", err)
	}

	sanitized := make([]models.QuizQuestion, len(questions))
	for i, q := range questions {
		sanitized[i] = q.Sanitized()
	}
	return &models.StartQuizResponse{QuizID: quiz.ID, Questions: sanitized}, nil
}

// SubmitAnswer records one answer, scores it against the question service's
// correct index and completes the session once every question is answered.
// It returns the session's cumulative score.
//
// The answer is recorded and persisted before the correctness lookup, so a
// lookup failure leaves the answer in place unscored and a retry for the
// same question is rejected as already answered.
func (s *QuizService) SubmitAnswer(ctx context.Context, quizID, questionID string, answerIndex int) (int, error) {
	// Submissions for the same session are serialized so that concurrent
	// read-modify-write cycles cannot drop each other's answers.
	lock := s.sessionLock(quizID)
	lock.Lock()
	defer lock.Unlock()

	quiz, err := s.store.GetByID(ctx, quizID)
	if err != nil {
		return 0, fmt.Errorf("loading quiz: %w", err)
	}
	if quiz == nil {
		return 0, ErrQuizNotFound
	}
	if quiz.Completed {
		return 0, ErrQuizCompleted
	}
	if !quiz.HasQuestion(questionID) {
		return 0, ErrQuestionNotInQuiz
	}
	if _, answered := quiz.Answers[questionID]; answered {
		return 0, ErrAlreadyAnswered
	}

	if quiz.Answers == nil {
		quiz.Answers = map[string]int{}
	}
	quiz.Answers[questionID] = answerIndex

	question, err := s.questions.QuestionByID(ctx, questionID)
	if err != nil {
		if saveErr := s.store.Save(ctx, quiz); saveErr != nil {
			return 0, fmt.Errorf("saving quiz: %w", saveErr)
		}
		return 0, fmt.Errorf("%w %s: %v", ErrQuestionLookup, questionID, err)
	}

	if answerIndex == question.CorrectAnswerIndex {
		quiz.Score += s.pointsPerCorrect
	}

	if len(quiz.Answers) == len(quiz.QuestionIDs) {
		quiz.Completed = true
		s.logger.Printf("quiz %s completed, final score %d", quiz.ID, quiz.Score)

		// Best effort: the session stays completed and scored locally even
		// when the propagation to the user service fails.
		if err := s.scores.UpdateScore(ctx, quiz.UserID, quiz.Score); err != nil {
			s.logger.Printf("failed to update score for user %s: %v", quiz.UserID, err)
		}
	}

	if err := s.store.Save(ctx, quiz); err != nil {
		return 0, fmt.Errorf("saving quiz: %w", err)
	}

	if quiz.Completed {
		s.dropSessionLock(quizID)
	}
	return quiz.Score, nil
}

func (s *QuizService) GetQuiz(ctx context.Context, quizID string) (*models.QuizSession, error) {
	quiz, err := s.store.GetByID(ctx, quizID)
	if err != nil {
		return nil, fmt.Errorf("loading quiz: %w", err)
	}
	if quiz == nil {
		return nil, ErrQuizNotFound
	}
	return quiz, nil
}

func (s *QuizService) GetQuizzesByUser(ctx context.Context, userID string) ([]models.QuizSession, error) {
	return s.store.ListByUser(ctx, userID)
}

// GetQuizResult assembles the per-question breakdown of a completed quiz,
// correct answers included.
func (s *QuizService) GetQuizResult(ctx context.Context, quizID string) (*models.QuizResult, error) {
	quiz, err := s.store.GetByID(ctx, quizID)
	if err != nil {
		return nil, fmt.Errorf("loading quiz: %w", err)
	}
	if quiz == nil {
		return nil, ErrQuizNotFound
	}
	if !quiz.Completed {
		return nil, ErrQuizNotCompleted
	}

	results := make([]models.QuestionResult, 0, len(quiz.QuestionIDs))
	for _, qid := range quiz.QuestionIDs {
		question, err := s.questions.QuestionByID(ctx, qid)
		if err != nil {
			return nil, fmt.Errorf("%w %s: %v", ErrQuestionLookup, qid, err)
		}
		userAnswer := quiz.Answers[qid]
		results = append(results, models.QuestionResult{
			QuestionID:         qid,
			QuestionText:       question.QuestionText,
			Options:            question.Options,
			UserAnswerIndex:    userAnswer,
			CorrectAnswerIndex: question.CorrectAnswerIndex,
			Correct:            userAnswer == question.CorrectAnswerIndex,
		})
	}

	return &models.QuizResult{
		QuizID:          quiz.ID,
		UserID:          quiz.UserID,
		Score:           quiz.Score,
		TotalQuestions:  len(quiz.QuestionIDs),
		Completed:       quiz.Completed,
		QuestionResults: results,
	}, nil
}

func (s *QuizService) sessionLock(quizID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[quizID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[quizID] = lock
	}
	return lock
}

// dropSessionLock frees the per-session mutex once a session completes; any
// later submission re-creates it and is rejected off the persisted state.
func (s *QuizService) dropSessionLock(quizID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.locks, quizID)
}
