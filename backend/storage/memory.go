package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"quizgame/backend/models"

	"github.com/google/uuid"
)

// MemoryQuizStore keeps quiz sessions in a mutexed map. It copies records on
// the way in and out so callers observe the same read-then-write-back
// behavior as the database-backed store. Used by tests and local runs.
type MemoryQuizStore struct {
	mu      sync.RWMutex
	quizzes map[string]models.QuizSession
}

func NewMemoryQuizStore() *MemoryQuizStore {
	return &MemoryQuizStore{quizzes: make(map[string]models.QuizSession)}
}

func (s *MemoryQuizStore) Create(ctx context.Context, quiz *models.QuizSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if quiz.ID == "" {
		quiz.ID = uuid.NewString()
	}
	quiz.CreatedAt = time.Now()
	quiz.UpdatedAt = quiz.CreatedAt
	s.quizzes[quiz.ID] = copySession(*quiz)
	return nil
}

func (s *MemoryQuizStore) GetByID(ctx context.Context, id string) (*models.QuizSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	quiz, ok := s.quizzes[id]
	if !ok {
		return nil, nil
	}
	out := copySession(quiz)
	return &out, nil
}

func (s *MemoryQuizStore) ListByUser(ctx context.Context, userID string) ([]models.QuizSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var quizzes []models.QuizSession
	for _, quiz := range s.quizzes {
		if quiz.UserID == userID {
			quizzes = append(quizzes, copySession(quiz))
		}
	}
	sort.Slice(quizzes, func(i, j int) bool {
		return quizzes[i].CreatedAt.After(quizzes[j].CreatedAt)
	})
	return quizzes, nil
}

func (s *MemoryQuizStore) Save(ctx context.Context, quiz *models.QuizSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	quiz.UpdatedAt = time.Now()
	s.quizzes[quiz.ID] = copySession(*quiz)
	return nil
}

func copySession(quiz models.QuizSession) models.QuizSession {
	out := quiz
	out.QuestionIDs = append(out.QuestionIDs[:0:0], quiz.QuestionIDs...)
	out.Answers = make(map[string]int, len(quiz.Answers))
	for k, v := range quiz.Answers {
		out.Answers[k] = v
	}
	return out
}
