package storage

import (
	"context"
	"errors"

	"quizgame/backend/models"

	"gorm.io/gorm"
)

// QuizStore persists quiz sessions in Postgres through gorm. Save is a
// full-record overwrite; callers serialize writes per session id.
type QuizStore struct {
	db *gorm.DB
}

func NewQuizStore(db *gorm.DB) *QuizStore {
	return &QuizStore{db: db}
}

func (s *QuizStore) Create(ctx context.Context, quiz *models.QuizSession) error {
	return s.db.WithContext(ctx).Create(quiz).Error
}

func (s *QuizStore) GetByID(ctx context.Context, id string) (*models.QuizSession, error) {
	var quiz models.QuizSession
	err := s.db.WithContext(ctx).First(&quiz, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &quiz, nil
}

func (s *QuizStore) ListByUser(ctx context.Context, userID string) ([]models.QuizSession, error) {
	var quizzes []models.QuizSession
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&quizzes).Error
	return quizzes, err
}

func (s *QuizStore) Save(ctx context.Context, quiz *models.QuizSession) error {
	return s.db.WithContext(ctx).Save(quiz).Error
}
