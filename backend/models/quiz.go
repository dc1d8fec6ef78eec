package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// QuizSession is a single user's run through a fixed batch of questions.
// QuestionIDs is set at creation and never changes; Answers grows one entry
// per submitted answer until it covers every question id, at which point
// Completed flips to true and stays true.
type QuizSession struct {
	ID          string                      `gorm:"primaryKey;size:36" json:"id"`
	UserID      string                      `gorm:"index;not null" json:"userId"`
	QuestionIDs datatypes.JSONSlice[string] `gorm:"type:jsonb;not null" json:"questionIds"`
	Answers     map[string]int              `gorm:"serializer:json;not null" json:"answers"`
	Score       int                         `gorm:"default:0" json:"score"`
	Completed   bool                        `gorm:"default:false" json:"completed"`
	CreatedAt   time.Time                   `json:"createdAt"`
	UpdatedAt   time.Time                   `json:"updatedAt"`
}

func (q *QuizSession) BeforeCreate(tx *gorm.DB) error {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	return nil
}

// HasQuestion reports whether id belongs to this session's question set.
func (q *QuizSession) HasQuestion(id string) bool {
	for _, qid := range q.QuestionIDs {
		if qid == id {
			return true
		}
	}
	return false
}

type CreateQuizRequest struct {
	Category    string `json:"category"`
	Difficulty  string `json:"difficulty"`
	Count       int    `json:"count"`
	RandomOrder bool   `json:"randomOrder"`
}

type SubmitAnswerRequest struct {
	QuizID      string `json:"quizId"`
	QuestionID  string `json:"questionId"`
	AnswerIndex int    `json:"answerIndex"`
}

type StartQuizResponse struct {
	QuizID    string         `json:"quizId"`
	Questions []QuizQuestion `json:"questions"`
}

type SubmitAnswerResponse struct {
	QuizID string `json:"quizId"`
	Score  int    `json:"score"`
}

// QuestionResult is the per-question breakdown of a finished quiz.
type QuestionResult struct {
	QuestionID         string   `json:"questionId"`
	QuestionText       string   `json:"questionText"`
	Options            []string `json:"options"`
	UserAnswerIndex    int      `json:"userAnswerIndex"`
	CorrectAnswerIndex int      `json:"correctAnswerIndex"`
	Correct            bool     `json:"correct"`
}

type QuizResult struct {
	QuizID          string           `json:"quizId"`
	UserID          string           `json:"userId"`
	Score           int              `json:"score"`
	TotalQuestions  int              `json:"totalQuestions"`
	Completed       bool             `json:"completed"`
	QuestionResults []QuestionResult `json:"questionResults"`
}
