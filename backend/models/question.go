package models

// Question mirrors the question service's full representation, correct
// answer included. It never leaves this service in this form.
type Question struct {
	ID                 string   `json:"id"`
	QuestionText       string   `json:"questionText"`
	Options            []string `json:"options"`
	CorrectAnswerIndex int      `json:"correctAnswerIndex"`
	Category           string   `json:"category"`
	Difficulty         string   `json:"difficulty"`
}

// QuizQuestion is the sanitized view handed to quiz takers: same question,
// no correct-answer index.
type QuizQuestion struct {
	ID           string   `json:"id"`
	QuestionText string   `json:"questionText"`
	Options      []string `json:"options"`
	Category     string   `json:"category"`
	Difficulty   string   `json:"difficulty"`
}

func (q Question) Sanitized() QuizQuestion {
	return QuizQuestion{
		ID:           q.ID,
		QuestionText: q.QuestionText,
		Options:      q.Options,
		Category:     q.Category,
		Difficulty:   q.Difficulty,
	}
}
