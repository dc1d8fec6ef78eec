package clients

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"quizgame/backend/models"
)

// ErrQuestionNotFound is returned when the question service has no question
// with the requested id.
var ErrQuestionNotFound = errors.New("question not found")

// QuestionClient talks to the question service. All calls are bounded by the
// client timeout and by the caller's context.
type QuestionClient struct {
	baseURL string
	http    *http.Client
}

func NewQuestionClient(baseURL string, timeout time.Duration) *QuestionClient {
	return &QuestionClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

func (qc *QuestionClient) RandomQuestions(ctx context.Context, count int) ([]models.Question, error) {
	return qc.fetchRandom(ctx, "/api/questions/random", count)
}

func (qc *QuestionClient) RandomQuestionsByCategory(ctx context.Context, category string, count int) ([]models.Question, error) {
	path := "/api/questions/random/category/" + url.PathEscape(category)
	return qc.fetchRandom(ctx, path, count)
}

func (qc *QuestionClient) RandomQuestionsByDifficulty(ctx context.Context, difficulty string, count int) ([]models.Question, error) {
	path := "/api/questions/random/difficulty/" + url.PathEscape(difficulty)
	return qc.fetchRandom(ctx, path, count)
}

func (qc *QuestionClient) RandomQuestionsByCategoryAndDifficulty(ctx context.Context, category, difficulty string, count int) ([]models.Question, error) {
	path := "/api/questions/random/category/" + url.PathEscape(category) +
		"/difficulty/" + url.PathEscape(difficulty)
	return qc.fetchRandom(ctx, path, count)
}

func (qc *QuestionClient) QuestionByID(ctx context.Context, id string) (*models.Question, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, qc.baseURL+"/api/questions/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}

	resp, err := qc.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrQuestionNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("question service returned status %d", resp.StatusCode)
	}

	var question models.Question
	if err := json.NewDecoder(resp.Body).Decode(&question); err != nil {
		return nil, fmt.Errorf("decoding question: %w", err)
	}
	return &question, nil
}

func (qc *QuestionClient) fetchRandom(ctx context.Context, path string, count int) ([]models.Question, error) {
	endpoint := qc.baseURL + path + "?count=" + strconv.Itoa(count)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := qc.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("question service returned status %d", resp.StatusCode)
	}

	var questions []models.Question
	if err := json.NewDecoder(resp.Body).Decode(&questions); err != nil {
		return nil, fmt.Errorf("decoding questions: %w", err)
	}
	return questions, nil
}
