package handler

import (
	"context"

	"github.com/google/uuid"
	"github.com/stemsi/exproctor-backend/internal/model"
	"github.com/stemsi/exproctor-backend/internal/service"
)

// The interfaces below list the service methods each handler calls.
// The concrete services in internal/service satisfy them.

type authService interface {
	Register(ctx context.Context, req model.RegisterRequest) (*model.User, error)
	Login(ctx context.Context, req model.LoginRequest) (*model.LoginResponse, error)
	Logout(ctx context.Context, caller service.Identity) error
	Me(ctx context.Context, userID int64) (*model.User, error)
}

type examService interface {
	Resolve(ctx context.Context, identifier string) (*model.Exam, error)
	ListAll(ctx context.Context) ([]model.Exam, error)
	ListByTeacher(ctx context.Context, teacherID int64) ([]model.Exam, error)
	Create(ctx context.Context, author service.Identity, req model.ExamRequest) (*model.Exam, error)
	Update(ctx context.Context, author service.Identity, identifier string, req model.ExamRequest) (*model.Exam, error)
	DeleteByToken(ctx context.Context, author service.Identity, token string) error
	Questions(ctx context.Context, identifier string) (*model.Exam, []model.Question, error)
}

type questionService interface {
	Create(ctx context.Context, author service.Identity, req model.CreateQuestionRequest) (*model.Question, error)
	Update(ctx context.Context, author service.Identity, id uuid.UUID, req model.UpdateQuestionRequest) (*model.Question, error)
}

type submissionService interface {
	Submit(ctx context.Context, learner service.Identity, req model.SubmitExamRequest) (*model.Submission, error)
}

type resultService interface {
	ResultsForExam(ctx context.Context, requester service.Identity, identifier string) ([]model.ExamResult, error)
	ResultForLearner(ctx context.Context, requester service.Identity, identifier string, learnerID int64) (*model.SubmissionWithStudent, error)
	StatsForLearner(ctx context.Context, learnerID int64) (model.LearnerStats, error)
	SubmissionsForTeacher(ctx context.Context, teacherID int64) (model.TeacherSubmissions, error)
	LastSubmission(ctx context.Context, learnerID int64) (*model.LastSubmission, error)
}

type proctorService interface {
	RecordSample(ctx context.Context, learner service.Identity, examID uuid.UUID, sample model.DetectionSample) (*service.SampleResult, error)
	Save(ctx context.Context, learner service.Identity, req model.SaveCheatingLogRequest) (*model.CheatingLog, error)
	Flush(ctx context.Context, learner service.Identity, examID uuid.UUID) (bool, error)
	ListByExam(ctx context.Context, requester service.Identity, identifier string) ([]model.CheatingLog, error)
	GetForLearner(ctx context.Context, requester service.Identity, identifier string, learnerID int64) (*model.CheatingLog, error)
}

type codingService interface {
	GetForExam(ctx context.Context, examToken string) (*model.CodingQuestion, error)
	Submit(ctx context.Context, learner service.Identity, req model.SubmitCodingRequest) (*model.CodingSubmission, error)
	MySubmission(ctx context.Context, learner service.Identity, examToken string) (*model.CodingSubmission, error)
}

var (
	_ authService       = (*service.AuthService)(nil)
	_ examService       = (*service.ExamService)(nil)
	_ questionService   = (*service.QuestionService)(nil)
	_ submissionService = (*service.SubmissionService)(nil)
	_ resultService     = (*service.ResultService)(nil)
	_ proctorService    = (*service.ProctorService)(nil)
	_ codingService     = (*service.CodingService)(nil)
)
