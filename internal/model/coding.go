package model

import (
	"time"

	"github.com/google/uuid"
)

// CodingStatus tracks a coding answer.
type CodingStatus string

const CodingStatusSubmitted CodingStatus = "submitted"

// CodingSubmission is a learner's answer to an exam's coding question.
// There is at most one per (exam, learner).
type CodingSubmission struct {
	ExamID      uuid.UUID    `json:"exam_id"`
	StudentID   int64        `json:"student_id"`
	Code        string       `json:"code"`
	Language    string       `json:"language"`
	Status      CodingStatus `json:"status"`
	SubmittedAt time.Time    `json:"submitted_at"`
}

// SubmitCodingRequest is the payload for submitting a coding answer.
type SubmitCodingRequest struct {
	ExamToken string `json:"exam_token" binding:"required,max=128"`
	Code      string `json:"code" binding:"required,max=65536"`
	Language  string `json:"language" binding:"required,max=32"`
}
