package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// CodingQuestion is the optional coding task embedded in an exam.
type CodingQuestion struct {
	Question    string `json:"question"`
	Description string `json:"description"`
}

// Exam represents an exam entity. ID is the internal identifier assigned by
// the database; ExamToken is the externally visible identifier.
type Exam struct {
	ID              uuid.UUID       `json:"id"`
	ExamToken       string          `json:"exam_token"`
	ExamName        string          `json:"exam_name"`
	TotalQuestions  int             `json:"total_questions"`
	DurationMinutes int             `json:"duration"`
	LiveDate        time.Time       `json:"live_date"`
	DeadDate        time.Time       `json:"dead_date"`
	CodingQuestion  *CodingQuestion `json:"coding_question,omitempty"`
	CreatedBy       int64           `json:"created_by"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// OwnedBy reports whether the given teacher authored the exam.
func (e *Exam) OwnedBy(userID int64) bool {
	return e.CreatedBy == userID
}

// HasCodingQuestion reports whether the exam carries a coding question with
// actual text. Clients send an empty object when there is none.
func (e *Exam) HasCodingQuestion() bool {
	return e.CodingQuestion != nil && strings.TrimSpace(e.CodingQuestion.Question) != ""
}

// IsLive reports whether t falls inside the exam window.
// A window with live > dead is never live.
func (e *Exam) IsLive(t time.Time) bool {
	return !t.Before(e.LiveDate) && !t.After(e.DeadDate)
}

// ExamRequest is the payload for creating or replacing an exam.
// Updates overwrite every editable field, so the same rules apply to both.
type ExamRequest struct {
	ExamName       string          `json:"exam_name" binding:"required,min=3,max=255"`
	TotalQuestions int             `json:"total_questions" binding:"required,min=1,max=500"`
	Duration       int             `json:"duration" binding:"required,min=1,max=600"`
	LiveDate       time.Time       `json:"live_date" binding:"required"`
	DeadDate       time.Time       `json:"dead_date" binding:"required"`
	CodingQuestion *CodingQuestion `json:"coding_question" binding:"omitempty"`
}

// Apply copies every editable field of the request onto e.
func (r *ExamRequest) Apply(e *Exam) {
	e.ExamName = r.ExamName
	e.TotalQuestions = r.TotalQuestions
	e.DurationMinutes = r.Duration
	e.LiveDate = r.LiveDate
	e.DeadDate = r.DeadDate
	e.CodingQuestion = r.CodingQuestion
	if !e.HasCodingQuestion() {
		e.CodingQuestion = nil
	}
}
