package model

import (
	"time"

	"github.com/google/uuid"
)

// Option is one answer choice of a multiple-choice question.
type Option struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct"`
}

// Question represents a multiple-choice question. Questions reference their
// exam by its external token.
type Question struct {
	ID           uuid.UUID `json:"id"`
	ExamToken    string    `json:"exam_token"`
	QuestionText string    `json:"question"`
	Options      []Option  `json:"options"`
	Marks        int       `json:"ans_marks"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CorrectOption returns the first option flagged correct.
func (q *Question) CorrectOption() (Option, bool) {
	for _, o := range q.Options {
		if o.IsCorrect {
			return o, true
		}
	}
	return Option{}, false
}

// OptionForStudent hides the correctness flag.
type OptionForStudent struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// QuestionForStudent is a question without the correct answer, sent to students.
type QuestionForStudent struct {
	ID           uuid.UUID          `json:"id"`
	QuestionText string             `json:"question"`
	Options      []OptionForStudent `json:"options"`
	Marks        int                `json:"ans_marks"`
}

// ForStudent strips the answer key.
func (q *Question) ForStudent() QuestionForStudent {
	opts := make([]OptionForStudent, len(q.Options))
	for i, o := range q.Options {
		opts[i] = OptionForStudent{ID: o.ID, Text: o.Text}
	}
	return QuestionForStudent{
		ID:           q.ID,
		QuestionText: q.QuestionText,
		Options:      opts,
		Marks:        q.Marks,
	}
}

// OptionRequest is one option in a question payload. ID is generated when empty.
type OptionRequest struct {
	ID        string `json:"id" binding:"omitempty,max=64"`
	Text      string `json:"text" binding:"required,min=1,max=1000"`
	IsCorrect bool   `json:"is_correct"`
}

// CreateQuestionRequest is the payload for adding a question to an exam.
type CreateQuestionRequest struct {
	ExamToken    string          `json:"exam_token" binding:"required,max=128"`
	QuestionText string          `json:"question" binding:"required,min=1,max=2000"`
	Options      []OptionRequest `json:"options" binding:"required,min=2,max=10,dive"`
	Marks        int             `json:"ans_marks" binding:"min=0,max=1000"`
}

// UpdateQuestionRequest is a partial update: nil fields keep their value.
type UpdateQuestionRequest struct {
	ExamToken    *string         `json:"exam_token" binding:"omitempty,max=128"`
	QuestionText *string         `json:"question" binding:"omitempty,min=1,max=2000"`
	Options      []OptionRequest `json:"options" binding:"omitempty,min=2,max=10,dive"`
	Marks        *int            `json:"ans_marks" binding:"omitempty,min=0,max=1000"`
}
