package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/rs/zerolog"
	"github.com/stemsi/exproctor-backend/internal/model"
	"github.com/stemsi/exproctor-backend/internal/repository"
)

const tokenAttempts = 3

// ExamService handles exam authoring and resolution.
type ExamService struct {
	exams     ExamStore
	questions QuestionStore
	log       zerolog.Logger
}

// NewExamService creates a new ExamService.
func NewExamService(exams ExamStore, questions QuestionStore, log zerolog.Logger) *ExamService {
	return &ExamService{
		exams:     exams,
		questions: questions,
		log:       log.With().Str("component", "exam_service").Logger(),
	}
}

// Resolve finds an exam by either of its identifiers. An identifier shaped
// like an internal ID is looked up by ID first; on a miss, or for any other
// shape, it is looked up as an exam token.
func (s *ExamService) Resolve(ctx context.Context, identifier string) (*model.Exam, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, ErrExamNotFound
	}

	if id, err := uuid.Parse(identifier); err == nil {
		exam, err := s.exams.GetByID(ctx, id)
		switch {
		case err == nil:
			return exam, nil
		case !errors.Is(err, repository.ErrNotFound):
			return nil, storageErr("get exam by id", err)
		}
	}

	return s.GetByToken(ctx, identifier)
}

// GetByToken finds an exam by its external token only.
func (s *ExamService) GetByToken(ctx context.Context, token string) (*model.Exam, error) {
	exam, err := s.exams.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExamNotFound
		}
		return nil, storageErr("get exam by token", err)
	}
	return exam, nil
}

// ListAll returns every exam.
func (s *ExamService) ListAll(ctx context.Context) ([]model.Exam, error) {
	exams, err := s.exams.ListAll(ctx)
	if err != nil {
		return nil, storageErr("list exams", err)
	}
	return exams, nil
}

// ListByTeacher returns the exams authored by teacherID.
func (s *ExamService) ListByTeacher(ctx context.Context, teacherID int64) ([]model.Exam, error) {
	exams, err := s.exams.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, storageErr("list exams by teacher", err)
	}
	return exams, nil
}

// Create stores a new exam authored by the caller and assigns its token.
func (s *ExamService) Create(ctx context.Context, author Identity, req model.ExamRequest) (*model.Exam, error) {
	if !author.IsTeacher() {
		return nil, ErrForbidden
	}

	exam := &model.Exam{CreatedBy: author.UserID}
	req.Apply(exam)

	var err error
	for range tokenAttempts {
		exam.ExamToken = NewExamToken(exam.ExamName)
		if err = s.exams.Create(ctx, exam); !errors.Is(err, repository.ErrDuplicate) {
			break
		}
	}
	if err != nil {
		return nil, storageErr("create exam", err)
	}

	s.log.Info().Str("exam_id", exam.ID.String()).Str("exam_token", exam.ExamToken).
		Int64("teacher_id", author.UserID).Msg("Exam created")
	return exam, nil
}

// Update overwrites every editable field of an exam owned by the caller.
func (s *ExamService) Update(ctx context.Context, author Identity, identifier string, req model.ExamRequest) (*model.Exam, error) {
	exam, err := s.Resolve(ctx, identifier)
	if err != nil {
		return nil, err
	}
	if !author.canManage(exam) {
		return nil, ErrForbidden
	}

	req.Apply(exam)
	if err := s.exams.Update(ctx, exam); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExamNotFound
		}
		return nil, storageErr("update exam", err)
	}
	return exam, nil
}

// DeleteByToken removes an exam owned by the caller. Deletion accepts the
// external token only.
func (s *ExamService) DeleteByToken(ctx context.Context, author Identity, token string) error {
	exam, err := s.GetByToken(ctx, token)
	if err != nil {
		return err
	}
	if !author.canManage(exam) {
		return ErrForbidden
	}

	if err := s.exams.DeleteByToken(ctx, token); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrExamNotFound
		}
		return storageErr("delete exam", err)
	}

	s.log.Info().Str("exam_token", token).Int64("teacher_id", author.UserID).Msg("Exam deleted")
	return nil
}

// Questions returns the questions of an exam resolved by either identifier.
func (s *ExamService) Questions(ctx context.Context, identifier string) (*model.Exam, []model.Question, error) {
	exam, err := s.Resolve(ctx, identifier)
	if err != nil {
		return nil, nil, err
	}
	questions, err := s.questions.ListByExamToken(ctx, exam.ExamToken)
	if err != nil {
		return nil, nil, storageErr("list questions", err)
	}
	return exam, questions, nil
}

// NewExamToken derives a public token from the exam name.
func NewExamToken(name string) string {
	base := slug.Make(name)
	if base == "" {
		base = "exam"
	}
	if len(base) > 64 {
		base = strings.TrimRight(base[:64], "-")
	}
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return base + "-" + suffix
}
