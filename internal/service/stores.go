package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stemsi/exproctor-backend/internal/model"
	"github.com/stemsi/exproctor-backend/internal/repository"
)

// The interfaces below are satisfied by the repository package. Lookups
// report a missing row with repository.ErrNotFound.

// UserStore persists accounts.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
	Create(ctx context.Context, u *model.User) error
}

// SessionStore tracks the single active token of each user.
type SessionStore interface {
	Set(ctx context.Context, userID int64, jti string, ttl time.Duration) error
	Get(ctx context.Context, userID int64) (string, error)
	Delete(ctx context.Context, userID int64) error
}

// ExamStore persists exams.
type ExamStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Exam, error)
	GetByToken(ctx context.Context, token string) (*model.Exam, error)
	ListAll(ctx context.Context) ([]model.Exam, error)
	ListByTeacher(ctx context.Context, teacherID int64) ([]model.Exam, error)
	ListIDsByTeacher(ctx context.Context, teacherID int64) ([]uuid.UUID, error)
	Create(ctx context.Context, e *model.Exam) error
	Update(ctx context.Context, e *model.Exam) error
	DeleteByToken(ctx context.Context, token string) error
}

// QuestionStore persists questions.
type QuestionStore interface {
	ListByExamToken(ctx context.Context, examToken string) ([]model.Question, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Question, error)
	Create(ctx context.Context, q *model.Question) error
	Update(ctx context.Context, q *model.Question) error
}

// SubmissionStore persists scored submissions.
type SubmissionStore interface {
	Create(ctx context.Context, s *model.Submission) error
	ListByExam(ctx context.Context, examID uuid.UUID) ([]model.ExamResult, error)
	LatestForStudent(ctx context.Context, examID uuid.UUID, studentID int64) (*model.SubmissionWithStudent, error)
	ListByStudent(ctx context.Context, studentID int64) ([]model.StudentSubmission, error)
	ListByExamIDs(ctx context.Context, examIDs []uuid.UUID) ([]model.TeacherSubmission, error)
	LatestByStudent(ctx context.Context, studentID int64) (*model.LastSubmission, error)
}

// LiveLogStore holds in-progress cheating logs.
type LiveLogStore interface {
	Update(ctx context.Context, examID uuid.UUID, studentID int64, fn func(model.CheatingLog) (model.CheatingLog, error)) (model.CheatingLog, error)
	Get(ctx context.Context, examID uuid.UUID, studentID int64) (*model.CheatingLog, error)
	Take(ctx context.Context, examID uuid.UUID, studentID int64) (*model.CheatingLog, error)
	Active(ctx context.Context) ([]repository.LiveLogRef, error)
}

// CheatingLogQueue hands finished logs to the persistence worker.
type CheatingLogQueue interface {
	Push(ctx context.Context, logs ...model.CheatingLog) error
}

// CheatingLogReader reads persisted cheating logs.
type CheatingLogReader interface {
	ListByExam(ctx context.Context, examID uuid.UUID) ([]model.CheatingLog, error)
	Get(ctx context.Context, examID uuid.UUID, studentID int64) (*model.CheatingLog, error)
}

// CodingStore persists coding answers.
type CodingStore interface {
	Upsert(ctx context.Context, s *model.CodingSubmission) error
	Get(ctx context.Context, examID uuid.UUID, studentID int64) (*model.CodingSubmission, error)
}

// LiveLogFlusher moves a learner's live cheating log to persistent storage.
type LiveLogFlusher interface {
	Flush(ctx context.Context, learner Identity, examID uuid.UUID) (bool, error)
}
