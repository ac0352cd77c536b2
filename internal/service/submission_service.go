package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"github.com/stemsi/exproctor-backend/internal/grading"
	"github.com/stemsi/exproctor-backend/internal/model"
)

// SubmissionService scores and records exam submissions.
type SubmissionService struct {
	exams       *ExamService
	questions   QuestionStore
	submissions SubmissionStore
	liveLogs    LiveLogFlusher
	log         zerolog.Logger
}

// NewSubmissionService creates a new SubmissionService. liveLogs may be nil,
// in which case submitting does not flush the proctoring log.
func NewSubmissionService(
	exams *ExamService,
	questions QuestionStore,
	submissions SubmissionStore,
	liveLogs LiveLogFlusher,
	log zerolog.Logger,
) *SubmissionService {
	return &SubmissionService{
		exams:       exams,
		questions:   questions,
		submissions: submissions,
		liveLogs:    liveLogs,
		log:         log.With().Str("component", "submission_service").Logger(),
	}
}

// Submit scores the learner's answers and stores one new submission. The
// exam is looked up by token only. Nothing is stored when the exam is
// missing. Every call creates a new record.
func (s *SubmissionService) Submit(ctx context.Context, learner Identity, req model.SubmitExamRequest) (*model.Submission, error) {
	if strings.TrimSpace(req.ExamToken) == "" {
		return nil, validationErr("exam token is required")
	}
	if req.Answers == nil {
		return nil, validationErr("answers are required")
	}

	exam, err := s.exams.GetByToken(ctx, req.ExamToken)
	if err != nil {
		return nil, err
	}

	questions, err := s.questions.ListByExamToken(ctx, exam.ExamToken)
	if err != nil {
		return nil, storageErr("list questions", err)
	}

	scored := grading.Score(questions, req.Answers)
	sub := &model.Submission{
		ExamID:    exam.ID,
		StudentID: learner.UserID,
		Score:     scored.Score,
		Answers:   scored.Answers,
		MaxScore:  grading.MaxScore(questions),
	}
	if err := s.submissions.Create(ctx, sub); err != nil {
		return nil, storageErr("create submission", err)
	}

	s.log.Info().
		Str("exam_id", exam.ID.String()).
		Int64("student_id", learner.UserID).
		Int("score", sub.Score).
		Int("max_score", sub.MaxScore).
		Int("answers", len(sub.Answers)).
		Msg("Submission recorded")

	if s.liveLogs != nil {
		if _, err := s.liveLogs.Flush(ctx, learner, exam.ID); err != nil {
			s.log.Warn().Err(err).Str("exam_id", exam.ID.String()).
				Int64("student_id", learner.UserID).Msg("Failed to flush live cheating log")
		}
	}

	return sub, nil
}
