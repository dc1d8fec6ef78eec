package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"testing"

	"quizgame/backend/models"
	"quizgame/backend/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeQuestionSource struct {
	mu        sync.Mutex
	batch     []models.Question
	batchErr  error
	lookupErr error
	lastFetch string
	lastCount int
	lookups   int
}

func (f *fakeQuestionSource) fetch(variant string, count int) ([]models.Question, error) {
	f.mu.Lock()
	f.lastFetch = variant
	f.lastCount = count
	f.mu.Unlock()
	if f.batchErr != nil {
		return nil, f.batchErr
	}
	return f.batch, nil
}

func (f *fakeQuestionSource) RandomQuestions(ctx context.Context, count int) ([]models.Question, error) {
	return f.fetch("random", count)
}

func (f *fakeQuestionSource) RandomQuestionsByCategory(ctx context.Context, category string, count int) ([]models.Question, error) {
	return f.fetch("category", count)
}

func (f *fakeQuestionSource) RandomQuestionsByDifficulty(ctx context.Context, difficulty string, count int) ([]models.Question, error) {
	return f.fetch("difficulty", count)
}

func (f *fakeQuestionSource) RandomQuestionsByCategoryAndDifficulty(ctx context.Context, category, difficulty string, count int) ([]models.Question, error) {
	return f.fetch("category+difficulty", count)
}

func (f *fakeQuestionSource) QuestionByID(ctx context.Context, id string) (*models.Question, error) {
	f.mu.Lock()
	f.lookups++
	f.mu.Unlock()
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	for _, q := range f.batch {
		if q.ID == id {
			return &q, nil
		}
	}
	return nil, errors.New("question not found")
}

type fakeScoreSink struct {
	mu    sync.Mutex
	calls []scoreCall
	err   error
}

type scoreCall struct {
	userID string
	change int
}

func (f *fakeScoreSink) UpdateScore(ctx context.Context, userID string, scoreChange int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, scoreCall{userID: userID, change: scoreChange})
	return f.err
}

func (f *fakeScoreSink) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func threeQuestions() []models.Question {
	return []models.Question{
		{ID: "q1", QuestionText: "First?", Options: []string{"a", "b"}, CorrectAnswerIndex: 0, Category: "science", Difficulty: "easy"},
		{ID: "q2", QuestionText: "Second?", Options: []string{"a", "b", "c"}, CorrectAnswerIndex: 1, Category: "science", Difficulty: "easy"},
		{ID: "q3", QuestionText: "Third?", Options: []string{"a", "b"}, CorrectAnswerIndex: 1, Category: "science", Difficulty: "easy"},
	}
}

func newTestService(source *fakeQuestionSource, sink *fakeScoreSink) (*QuizService, *storage.MemoryQuizStore) {
	store := storage.NewMemoryQuizStore()
	logger := log.New(io.Discard, "", 0)
	return NewQuizService(store, source, sink, logger, 1, 10), store
}

func startQuiz(t *testing.T, svc *QuizService, userID string) *models.StartQuizResponse {
	t.Helper()
	resp, err := svc.CreateQuiz(context.Background(), CreateQuizInput{UserID: userID, RandomOrder: true})
	require.NoError(t, err)
	return resp
}

func TestCreateQuizPicksMostSpecificFetch(t *testing.T) {
	cases := []struct {
		name       string
		category   string
		difficulty string
		want       string
	}{
		{"both filters", "science", "easy", "category+difficulty"},
		{"category only", "science", "", "category"},
		{"difficulty only", "", "easy", "difficulty"},
		{"no filters", "", "", "random"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			source := &fakeQuestionSource{batch: threeQuestions()}
			svc, _ := newTestService(source, &fakeScoreSink{})

			_, err := svc.CreateQuiz(context.Background(), CreateQuizInput{
				UserID:     "user-1",
				Category:   tc.category,
				Difficulty: tc.difficulty,
				Count:      3,
			})
			require.NoError(t, err)
			assert.Equal(t, tc.want, source.lastFetch)
			assert.Equal(t, 3, source.lastCount)
		})
	}
}

func TestCreateQuizDefaultsCount(t *testing.T) {
	source := &fakeQuestionSource{batch: threeQuestions()}
	svc, _ := newTestService(source, &fakeScoreSink{})

	_, err := svc.CreateQuiz(context.Background(), CreateQuizInput{UserID: "user-1"})
	require.NoError(t, err)
	assert.Equal(t, 10, source.lastCount)
}

func TestCreateQuizStableOrderSortsByID(t *testing.T) {
	shuffled := []models.Question{
		{ID: "q3", QuestionText: "Third?", Options: []string{"a", "b"}},
		{ID: "q1", QuestionText: "First?", Options: []string{"a", "b"}},
		{ID: "q2", QuestionText: "Second?", Options: []string{"a", "b"}},
	}
	source := &fakeQuestionSource{batch: shuffled}
	svc, store := newTestService(source, &fakeScoreSink{})

	resp, err := svc.CreateQuiz(context.Background(), CreateQuizInput{UserID: "user-1", RandomOrder: false})
	require.NoError(t, err)

	require.Len(t, resp.Questions, 3)
	assert.Equal(t, "q1", resp.Questions[0].ID)
	assert.Equal(t, "q2", resp.Questions[1].ID)
	assert.Equal(t, "q3", resp.Questions[2].ID)

	quiz, err := store.GetByID(context.Background(), resp.QuizID)
	require.NoError(t, err)
	require.NotNil(t, quiz)
	assert.Equal(t, []string{"q1", "q2", "q3"}, []string(quiz.QuestionIDs))
}

func TestCreateQuizRandomOrderKeepsSourceOrder(t *testing.T) {
	shuffled := []models.Question{
		{ID: "q3", QuestionText: "Third?", Options: []string{"a", "b"}},
		{ID: "q1", QuestionText: "First?", Options: []string{"a", "b"}},
	}
	source := &fakeQuestionSource{batch: shuffled}
	svc, _ := newTestService(source, &fakeScoreSink{})

	resp, err := svc.CreateQuiz(context.Background(), CreateQuizInput{UserID: "user-1", RandomOrder: true})
	require.NoError(t, err)
	assert.Equal(t, "q3", resp.Questions[0].ID)
	assert.Equal(t, "q1", resp.Questions[1].ID)
}

func TestCreateQuizNeverExposesCorrectAnswer(t *testing.T) {
	source := &fakeQuestionSource{batch: threeQuestions()}
	svc, _ := newTestService(source, &fakeScoreSink{})

	resp, err := svc.CreateQuiz(context.Background(), CreateQuizInput{UserID: "user-1", Count: 3})
	require.NoError(t, err)
	require.Len(t, resp.Questions, 3)

	payload, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.NotContains(t, string(payload), "correctAnswerIndex")
}

func TestCreateQuizEmptySourcePersistsNothing(t *testing.T) {
	source := &fakeQuestionSource{batch: nil}
	svc, store := newTestService(source, &fakeScoreSink{})

	_, err := svc.CreateQuiz(context.Background(), CreateQuizInput{UserID: "user-1"})
	assert.ErrorIs(t, err, ErrNoQuestionsAvailable)

	quizzes, err := store.ListByUser(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Empty(t, quizzes)
}

func TestCreateQuizSourceFailureSurfaces(t *testing.T) {
	source := &fakeQuestionSource{batchErr: errors.New("connection refused")}
	svc, _ := newTestService(source, &fakeScoreSink{})

	_, err := svc.CreateQuiz(context.Background(), CreateQuizInput{UserID: "user-1"})
	assert.ErrorIs(t, err, ErrQuestionLookup)
}

func TestSubmitAnswerFullRun(t *testing.T) {
	source := &fakeQuestionSource{batch: threeQuestions()}
	sink := &fakeScoreSink{}
	svc, store := newTestService(source, sink)
	resp := startQuiz(t, svc, "user-1")

	// Two correct, one wrong, submitted out of presentation order.
	score, err := svc.SubmitAnswer(context.Background(), resp.QuizID, "q2", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, score)
	assertCompletionInvariant(t, store, resp.QuizID)

	score, err = svc.SubmitAnswer(context.Background(), resp.QuizID, "q1", 1) // wrong
	require.NoError(t, err)
	assert.Equal(t, 1, score)
	assertCompletionInvariant(t, store, resp.QuizID)

	score, err = svc.SubmitAnswer(context.Background(), resp.QuizID, "q3", 1)
	require.NoError(t, err)
	assert.Equal(t, 2, score)
	assertCompletionInvariant(t, store, resp.QuizID)

	quiz, err := store.GetByID(context.Background(), resp.QuizID)
	require.NoError(t, err)
	assert.True(t, quiz.Completed)
	assert.Equal(t, 2, quiz.Score)

	require.Equal(t, 1, sink.callCount())
	assert.Equal(t, scoreCall{userID: "user-1", change: 2}, sink.calls[0])
}

// completed must flip exactly when every question has an answer
func assertCompletionInvariant(t *testing.T, store *storage.MemoryQuizStore, quizID string) {
	t.Helper()
	quiz, err := store.GetByID(context.Background(), quizID)
	require.NoError(t, err)
	require.NotNil(t, quiz)
	assert.Equal(t, len(quiz.Answers) == len(quiz.QuestionIDs), quiz.Completed)
}

func TestSubmitAnswerUnknownQuiz(t *testing.T) {
	svc, _ := newTestService(&fakeQuestionSource{batch: threeQuestions()}, &fakeScoreSink{})

	_, err := svc.SubmitAnswer(context.Background(), "missing", "q1", 0)
	assert.ErrorIs(t, err, ErrQuizNotFound)
}

func TestSubmitAnswerDuplicateRejected(t *testing.T) {
	source := &fakeQuestionSource{batch: threeQuestions()}
	svc, store := newTestService(source, &fakeScoreSink{})
	resp := startQuiz(t, svc, "user-1")

	_, err := svc.SubmitAnswer(context.Background(), resp.QuizID, "q1", 0)
	require.NoError(t, err)

	_, err = svc.SubmitAnswer(context.Background(), resp.QuizID, "q1", 1)
	assert.ErrorIs(t, err, ErrAlreadyAnswered)

	quiz, err := store.GetByID(context.Background(), resp.QuizID)
	require.NoError(t, err)
	assert.Equal(t, 1, quiz.Score)
	assert.Equal(t, map[string]int{"q1": 0}, quiz.Answers)
}

func TestSubmitAnswerForeignQuestionRejected(t *testing.T) {
	source := &fakeQuestionSource{batch: threeQuestions()}
	svc, store := newTestService(source, &fakeScoreSink{})
	resp := startQuiz(t, svc, "user-1")

	_, err := svc.SubmitAnswer(context.Background(), resp.QuizID, "q99", 0)
	assert.ErrorIs(t, err, ErrQuestionNotInQuiz)

	quiz, err := store.GetByID(context.Background(), resp.QuizID)
	require.NoError(t, err)
	assert.Empty(t, quiz.Answers)
	assert.Equal(t, 0, quiz.Score)
}

func TestSubmitAnswerAfterCompletionRejected(t *testing.T) {
	source := &fakeQuestionSource{batch: threeQuestions()}
	svc, _ := newTestService(source, &fakeScoreSink{})
	resp := startQuiz(t, svc, "user-1")

	for _, qid := range []string{"q1", "q2", "q3"} {
		_, err := svc.SubmitAnswer(context.Background(), resp.QuizID, qid, 0)
		require.NoError(t, err)
	}

	_, err := svc.SubmitAnswer(context.Background(), resp.QuizID, "q1", 0)
	assert.ErrorIs(t, err, ErrQuizCompleted)
}

func TestSubmitAnswerLookupFailureKeepsAnswerRecorded(t *testing.T) {
	source := &fakeQuestionSource{batch: threeQuestions()}
	svc, store := newTestService(source, &fakeScoreSink{})
	resp := startQuiz(t, svc, "user-1")

	source.lookupErr = errors.New("question service down")
	_, err := svc.SubmitAnswer(context.Background(), resp.QuizID, "q1", 0)
	assert.ErrorIs(t, err, ErrQuestionLookup)

	// The answer is in, unscored; a retry counts as a duplicate.
	quiz, err := store.GetByID(context.Background(), resp.QuizID)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"q1": 0}, quiz.Answers)
	assert.Equal(t, 0, quiz.Score)

	source.lookupErr = nil
	_, err = svc.SubmitAnswer(context.Background(), resp.QuizID, "q1", 0)
	assert.ErrorIs(t, err, ErrAlreadyAnswered)
}

func TestSubmitAnswerSinkFailureSwallowed(t *testing.T) {
	source := &fakeQuestionSource{batch: threeQuestions()}
	sink := &fakeScoreSink{err: errors.New("user service down")}
	svc, store := newTestService(source, sink)
	resp := startQuiz(t, svc, "user-1")

	var score int
	var err error
	for _, qid := range []string{"q1", "q2", "q3"} {
		score, err = svc.SubmitAnswer(context.Background(), resp.QuizID, qid, 1)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, score)

	quiz, err := store.GetByID(context.Background(), resp.QuizID)
	require.NoError(t, err)
	assert.True(t, quiz.Completed)
	assert.Equal(t, 2, quiz.Score)
	assert.Equal(t, 1, sink.callCount())
}

func TestSubmitAnswerConfiguredReward(t *testing.T) {
	source := &fakeQuestionSource{batch: threeQuestions()}
	store := storage.NewMemoryQuizStore()
	svc := NewQuizService(store, source, &fakeScoreSink{}, log.New(io.Discard, "", 0), 5, 10)

	resp, err := svc.CreateQuiz(context.Background(), CreateQuizInput{UserID: "user-1"})
	require.NoError(t, err)

	score, err := svc.SubmitAnswer(context.Background(), resp.QuizID, "q1", 0)
	require.NoError(t, err)
	assert.Equal(t, 5, score)
}

func TestSubmitAnswerConcurrentDifferentQuestions(t *testing.T) {
	questions := make([]models.Question, 8)
	for i := range questions {
		questions[i] = models.Question{
			ID:                 fmt.Sprintf("q%d", i),
			QuestionText:       fmt.Sprintf("Question %d?", i),
			Options:            []string{"a", "b"},
			CorrectAnswerIndex: 0,
		}
	}
	source := &fakeQuestionSource{batch: questions}
	sink := &fakeScoreSink{}
	svc, store := newTestService(source, sink)
	resp := startQuiz(t, svc, "user-1")

	var wg sync.WaitGroup
	for i := range questions {
		wg.Add(1)
		go func(qid string) {
			defer wg.Done()
			_, err := svc.SubmitAnswer(context.Background(), resp.QuizID, qid, 0)
			assert.NoError(t, err)
		}(questions[i].ID)
	}
	wg.Wait()

	// No submission may be lost to a concurrent read-modify-write.
	quiz, err := store.GetByID(context.Background(), resp.QuizID)
	require.NoError(t, err)
	assert.Len(t, quiz.Answers, len(questions))
	assert.True(t, quiz.Completed)
	assert.Equal(t, len(questions), quiz.Score)
	assert.Equal(t, 1, sink.callCount())
}

func TestGetQuiz(t *testing.T) {
	source := &fakeQuestionSource{batch: threeQuestions()}
	svc, _ := newTestService(source, &fakeScoreSink{})
	resp := startQuiz(t, svc, "user-1")

	quiz, err := svc.GetQuiz(context.Background(), resp.QuizID)
	require.NoError(t, err)
	assert.Equal(t, "user-1", quiz.UserID)
	assert.Len(t, quiz.QuestionIDs, 3)

	_, err = svc.GetQuiz(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrQuizNotFound)
}

func TestGetQuizzesByUser(t *testing.T) {
	source := &fakeQuestionSource{batch: threeQuestions()}
	svc, _ := newTestService(source, &fakeScoreSink{})
	startQuiz(t, svc, "user-1")
	startQuiz(t, svc, "user-1")
	startQuiz(t, svc, "user-2")

	quizzes, err := svc.GetQuizzesByUser(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Len(t, quizzes, 2)
}

func TestGetQuizResult(t *testing.T) {
	source := &fakeQuestionSource{batch: threeQuestions()}
	svc, _ := newTestService(source, &fakeScoreSink{})
	resp := startQuiz(t, svc, "user-1")

	_, err := svc.GetQuizResult(context.Background(), resp.QuizID)
	assert.ErrorIs(t, err, ErrQuizNotCompleted)

	answers := map[string]int{"q1": 0, "q2": 0, "q3": 1}
	for qid, idx := range answers {
		_, err := svc.SubmitAnswer(context.Background(), resp.QuizID, qid, idx)
		require.NoError(t, err)
	}

	result, err := svc.GetQuizResult(context.Background(), resp.QuizID)
	require.NoError(t, err)
	assert.Equal(t, resp.QuizID, result.QuizID)
	assert.Equal(t, "user-1", result.UserID)
	assert.Equal(t, 2, result.Score)
	assert.Equal(t, 3, result.TotalQuestions)
	require.Len(t, result.QuestionResults, 3)

	byID := make(map[string]models.QuestionResult, len(result.QuestionResults))
	for _, qr := range result.QuestionResults {
		byID[qr.QuestionID] = qr
	}
	assert.True(t, byID["q1"].Correct)
	assert.False(t, byID["q2"].Correct)
	assert.True(t, byID["q3"].Correct)
	assert.Equal(t, 1, byID["q2"].CorrectAnswerIndex)

	_, err = svc.GetQuizResult(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrQuizNotFound)
}
