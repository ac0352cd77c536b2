package model

import (
	"time"

	"github.com/google/uuid"
)

// AnswerInput is one answer as sent by the learner.
type AnswerInput struct {
	QuestionID     string `json:"question_id" binding:"required,max=64"`
	SelectedOption string `json:"selected_option" binding:"max=64"`
	CodeAnswer     string `json:"code_answer,omitempty" binding:"max=65536"`
}

// Answer is a scored answer record.
type Answer struct {
	QuestionID     string `json:"question_id"`
	SelectedOption string `json:"selected_option"`
	CodeAnswer     string `json:"code_answer,omitempty"`
	IsCorrect      bool   `json:"is_correct"`
}

// Submission is one scored attempt at an exam by one learner.
type Submission struct {
	ID        uuid.UUID `json:"id"`
	ExamID    uuid.UUID `json:"exam_id"`
	StudentID int64     `json:"student_id"`
	Score     int       `json:"score"`
	Answers   []Answer  `json:"answers"`
	CreatedAt time.Time `json:"created_at"`

	// MaxScore is only filled in on the submit response; it is not stored.
	MaxScore int `json:"max_score,omitempty"`
}

// SubmitExamRequest is the payload for submitting an exam.
type SubmitExamRequest struct {
	ExamToken string        `json:"exam_token" binding:"required,max=128"`
	Answers   []AnswerInput `json:"answers" binding:"required,max=1000,dive"`
}

// SubmissionWithStudent is a submission joined with the learner identity.
type SubmissionWithStudent struct {
	Submission
	Student UserRef `json:"student"`
}

// ExamDetails summarizes the exam a result belongs to.
type ExamDetails struct {
	ExamName       string `json:"exam_name"`
	TotalQuestions int    `json:"total_questions"`
	Duration       int    `json:"duration"`
}

// ExamResult is one row of the teacher's per-exam result list.
type ExamResult struct {
	SubmissionWithStudent
	ExamDetails ExamDetails `json:"exam_details"`
}

// StudentSubmission is a learner's submission joined with its exam.
type StudentSubmission struct {
	Submission
	ExamToken      string `json:"exam_token"`
	ExamName       string `json:"exam_name"`
	TotalQuestions int    `json:"total_questions"`
}

// RecentSubmission is one entry of a learner's recent activity.
type RecentSubmission struct {
	ExamID         uuid.UUID `json:"exam_id"`
	ExamName       string    `json:"exam_name"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"total_questions"`
	SubmittedAt    time.Time `json:"submitted_at"`
}

// LearnerStats aggregates a learner's submissions.
type LearnerStats struct {
	CompletedExams    int                `json:"completed_exams"`
	AvgScore          float64            `json:"avg_score"`
	TotalScore        int                `json:"total_score"`
	RecentSubmissions []RecentSubmission `json:"recent_submissions"`
}

// TeacherSubmission is one submission to an exam owned by the requesting teacher.
type TeacherSubmission struct {
	SubmissionID   uuid.UUID `json:"submission_id"`
	StudentName    string    `json:"student_name"`
	StudentEmail   string    `json:"student_email"`
	ExamName       string    `json:"exam_name"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"total_questions"`
	SubmittedAt    time.Time `json:"submitted_at"`
	ExamID         uuid.UUID `json:"exam_id"`
}

// TeacherSubmissions is the teacher's cross-exam submission listing.
type TeacherSubmissions struct {
	TotalSubmissions int                 `json:"total_submissions"`
	Submissions      []TeacherSubmission `json:"submissions"`
}

// LastSubmission identifies the exam of a learner's newest submission.
type LastSubmission struct {
	ExamID    uuid.UUID `json:"exam_id"`
	ExamToken string    `json:"exam_token"`
}
