package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"github.com/stemsi/exproctor-backend/internal/model"
	"github.com/stemsi/exproctor-backend/internal/repository"
)

// CodingService handles answers to an exam's coding question.
type CodingService struct {
	exams  *ExamService
	coding CodingStore
	log    zerolog.Logger
}

// NewCodingService creates a new CodingService.
func NewCodingService(exams *ExamService, coding CodingStore, log zerolog.Logger) *CodingService {
	return &CodingService{
		exams:  exams,
		coding: coding,
		log:    log.With().Str("component", "coding_service").Logger(),
	}
}

// GetForExam returns the coding question embedded in an exam.
func (s *CodingService) GetForExam(ctx context.Context, examToken string) (*model.CodingQuestion, error) {
	exam, err := s.exams.GetByToken(ctx, examToken)
	if err != nil {
		return nil, err
	}
	if !exam.HasCodingQuestion() {
		return nil, ErrCodingQuestionNotFound
	}
	return exam.CodingQuestion, nil
}

// Submit stores the learner's coding answer, replacing an earlier one.
func (s *CodingService) Submit(ctx context.Context, learner Identity, req model.SubmitCodingRequest) (*model.CodingSubmission, error) {
	exam, err := s.exams.GetByToken(ctx, req.ExamToken)
	if err != nil {
		return nil, err
	}
	if !exam.HasCodingQuestion() {
		return nil, ErrCodingQuestionNotFound
	}

	sub := &model.CodingSubmission{
		ExamID:    exam.ID,
		StudentID: learner.UserID,
		Code:      req.Code,
		Language:  req.Language,
		Status:    model.CodingStatusSubmitted,
	}
	if err := s.coding.Upsert(ctx, sub); err != nil {
		return nil, storageErr("upsert coding submission", err)
	}

	s.log.Info().Str("exam_id", exam.ID.String()).Int64("student_id", learner.UserID).
		Str("language", sub.Language).Msg("Coding answer submitted")
	return sub, nil
}

// MySubmission returns the caller's coding answer for an exam.
func (s *CodingService) MySubmission(ctx context.Context, learner Identity, examToken string) (*model.CodingSubmission, error) {
	exam, err := s.exams.GetByToken(ctx, examToken)
	if err != nil {
		return nil, err
	}
	sub, err := s.coding.Get(ctx, exam.ID, learner.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSubmissionNotFound
		}
		return nil, storageErr("get coding submission", err)
	}
	return sub, nil
}
