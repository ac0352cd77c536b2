package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stemsi/exproctor-backend/internal/middleware"
	"github.com/stemsi/exproctor-backend/internal/model"
	"github.com/stemsi/exproctor-backend/internal/service"
	"github.com/stemsi/exproctor-backend/internal/validator"
)

func init() {
	gin.SetMode(gin.TestMode)
	validator.Setup()
}

var (
	teacher = &service.Claims{UserID: 1, Role: model.RoleTeacher, Name: "Ada", Email: "ada@school.test"}
	student = &service.Claims{UserID: 10, Role: model.RoleStudent, Name: "Bo", Email: "bo@school.test"}
)

// as stands in for RequireAuth by placing fixed claims on the context.
func as(claims *service.Claims) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims != nil {
			c.Set(middleware.ContextKeyClaims, claims)
		}
		c.Next()
	}
}

func serve(r http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type stubExams struct {
	exam      *model.Exam
	questions []model.Question
	err       error
}

func (s *stubExams) Resolve(context.Context, string) (*model.Exam, error) { return s.exam, s.err }
func (s *stubExams) ListAll(context.Context) ([]model.Exam, error)       { return nil, s.err }
func (s *stubExams) ListByTeacher(context.Context, int64) ([]model.Exam, error) {
	if s.exam == nil {
		return nil, s.err
	}
	return []model.Exam{*s.exam}, s.err
}
func (s *stubExams) Create(_ context.Context, _ service.Identity, req model.ExamRequest) (*model.Exam, error) {
	if s.err != nil {
		return nil, s.err
	}
	e := &model.Exam{ID: uuid.New(), ExamToken: "created-1a2b3c4d"}
	req.Apply(e)
	return e, nil
}
func (s *stubExams) Update(context.Context, service.Identity, string, model.ExamRequest) (*model.Exam, error) {
	return s.exam, s.err
}
func (s *stubExams) DeleteByToken(context.Context, service.Identity, string) error { return s.err }
func (s *stubExams) Questions(context.Context, string) (*model.Exam, []model.Question, error) {
	return s.exam, s.questions, s.err
}

type stubResults struct {
	results []model.ExamResult
	sub     *model.SubmissionWithStudent
	last    *model.LastSubmission
	err     error

	gotLearner int64
}

func (s *stubResults) ResultsForExam(context.Context, service.Identity, string) ([]model.ExamResult, error) {
	return s.results, s.err
}
func (s *stubResults) ResultForLearner(_ context.Context, _ service.Identity, _ string, learnerID int64) (*model.SubmissionWithStudent, error) {
	s.gotLearner = learnerID
	return s.sub, s.err
}
func (s *stubResults) StatsForLearner(context.Context, int64) (model.LearnerStats, error) {
	return model.LearnerStats{RecentSubmissions: []model.RecentSubmission{}}, s.err
}
func (s *stubResults) SubmissionsForTeacher(context.Context, int64) (model.TeacherSubmissions, error) {
	return model.TeacherSubmissions{Submissions: []model.TeacherSubmission{}}, s.err
}
func (s *stubResults) LastSubmission(context.Context, int64) (*model.LastSubmission, error) {
	return s.last, s.err
}

type stubSubmissions struct {
	err error
}

func (s *stubSubmissions) Submit(_ context.Context, learner service.Identity, req model.SubmitExamRequest) (*model.Submission, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &model.Submission{ID: uuid.New(), StudentID: learner.UserID, Score: 10, Answers: []model.Answer{}}, nil
}

type stubProctor struct {
	sample  *service.SampleResult
	flushed bool
	err     error

	gotSamples []model.DetectionSample
	gotExam    uuid.UUID
}

func (s *stubProctor) RecordSample(_ context.Context, _ service.Identity, examID uuid.UUID, sample model.DetectionSample) (*service.SampleResult, error) {
	s.gotExam = examID
	s.gotSamples = append(s.gotSamples, sample)
	return s.sample, s.err
}
func (s *stubProctor) Save(_ context.Context, learner service.Identity, req model.SaveCheatingLogRequest) (*model.CheatingLog, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &model.CheatingLog{StudentID: learner.UserID, NoFaceCount: req.NoFaceCount, Screenshots: []model.Evidence{}}, nil
}
func (s *stubProctor) Flush(context.Context, service.Identity, uuid.UUID) (bool, error) {
	return s.flushed, s.err
}
func (s *stubProctor) ListByExam(context.Context, service.Identity, string) ([]model.CheatingLog, error) {
	return []model.CheatingLog{}, s.err
}
func (s *stubProctor) GetForLearner(_ context.Context, _ service.Identity, _ string, learnerID int64) (*model.CheatingLog, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &model.CheatingLog{StudentID: learnerID, Screenshots: []model.Evidence{}}, nil
}

type stubCoding struct {
	question *model.CodingQuestion
	err      error
}

func (s *stubCoding) GetForExam(context.Context, string) (*model.CodingQuestion, error) {
	return s.question, s.err
}
func (s *stubCoding) Submit(_ context.Context, learner service.Identity, req model.SubmitCodingRequest) (*model.CodingSubmission, error) {
	return &model.CodingSubmission{StudentID: learner.UserID, Code: req.Code, Language: req.Language, Status: model.CodingStatusSubmitted}, s.err
}
func (s *stubCoding) MySubmission(context.Context, service.Identity, string) (*model.CodingSubmission, error) {
	return nil, s.err
}

type stubAuth struct {
	user *model.User
	err  error
}

func (s *stubAuth) Register(context.Context, model.RegisterRequest) (*model.User, error) {
	return s.user, s.err
}
func (s *stubAuth) Login(context.Context, model.LoginRequest) (*model.LoginResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &model.LoginResponse{Token: "jwt", User: *s.user}, nil
}
func (s *stubAuth) Logout(context.Context, service.Identity) error { return s.err }
func (s *stubAuth) Me(context.Context, int64) (*model.User, error) { return s.user, s.err }
