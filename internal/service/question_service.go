package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/exproctor-backend/internal/grading"
	"github.com/stemsi/exproctor-backend/internal/model"
	"github.com/stemsi/exproctor-backend/internal/repository"
)

// QuestionService handles question authoring.
type QuestionService struct {
	questions QuestionStore
	exams     *ExamService
	log       zerolog.Logger
}

// NewQuestionService creates a new QuestionService.
func NewQuestionService(questions QuestionStore, exams *ExamService, log zerolog.Logger) *QuestionService {
	return &QuestionService{
		questions: questions,
		exams:     exams,
		log:       log.With().Str("component", "question_service").Logger(),
	}
}

// buildOptions validates the option list and assigns missing option IDs.
// Exactly one option must be flagged correct.
func buildOptions(reqs []model.OptionRequest) ([]model.Option, error) {
	if len(reqs) < 2 {
		return nil, validationErr("a question needs at least two options")
	}
	if n := grading.CorrectOptionCount(reqs); n != 1 {
		return nil, validationErr("exactly one option must be correct, got %d", n)
	}

	seen := make(map[string]struct{}, len(reqs))
	opts := make([]model.Option, len(reqs))
	for i, r := range reqs {
		id := strings.TrimSpace(r.ID)
		if id == "" {
			id = uuid.NewString()
		}
		if _, dup := seen[id]; dup {
			return nil, validationErr("duplicate option id %q", id)
		}
		seen[id] = struct{}{}
		opts[i] = model.Option{ID: id, Text: r.Text, IsCorrect: r.IsCorrect}
	}
	return opts, nil
}

// ownedExam resolves an exam by token and checks the caller authored it.
func (s *QuestionService) ownedExam(ctx context.Context, author Identity, token string) (*model.Exam, error) {
	exam, err := s.exams.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if !author.canManage(exam) {
		return nil, ErrForbidden
	}
	return exam, nil
}

// Create adds a question to an exam owned by the caller.
func (s *QuestionService) Create(ctx context.Context, author Identity, req model.CreateQuestionRequest) (*model.Question, error) {
	opts, err := buildOptions(req.Options)
	if err != nil {
		return nil, err
	}
	exam, err := s.ownedExam(ctx, author, req.ExamToken)
	if err != nil {
		return nil, err
	}

	q := &model.Question{
		ExamToken:    exam.ExamToken,
		QuestionText: req.QuestionText,
		Options:      opts,
		Marks:        req.Marks,
	}
	if err := s.questions.Create(ctx, q); err != nil {
		return nil, storageErr("create question", err)
	}

	s.log.Debug().Str("question_id", q.ID.String()).Str("exam_token", q.ExamToken).Msg("Question created")
	return q, nil
}

// Update replaces only the fields present in req.
func (s *QuestionService) Update(ctx context.Context, author Identity, id uuid.UUID, req model.UpdateQuestionRequest) (*model.Question, error) {
	q, err := s.questions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrQuestionNotFound
		}
		return nil, storageErr("get question", err)
	}
	if _, err := s.ownedExam(ctx, author, q.ExamToken); err != nil {
		return nil, err
	}

	if req.ExamToken != nil && *req.ExamToken != q.ExamToken {
		target, err := s.ownedExam(ctx, author, *req.ExamToken)
		if err != nil {
			return nil, err
		}
		q.ExamToken = target.ExamToken
	}
	if req.QuestionText != nil {
		q.QuestionText = *req.QuestionText
	}
	if req.Options != nil {
		opts, err := buildOptions(req.Options)
		if err != nil {
			return nil, err
		}
		q.Options = opts
	}
	if req.Marks != nil {
		q.Marks = *req.Marks
	}

	if err := s.questions.Update(ctx, q); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrQuestionNotFound
		}
		return nil, storageErr("update question", err)
	}
	return q, nil
}
