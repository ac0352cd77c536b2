package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"github.com/stemsi/exproctor-backend/internal/model"
	"github.com/stemsi/exproctor-backend/internal/repository"
	"github.com/stemsi/exproctor-backend/internal/results"
)

// ResultService answers result and statistics queries.
type ResultService struct {
	exams       *ExamService
	examStore   ExamStore
	submissions SubmissionStore
	recentLimit int
	log         zerolog.Logger
}

// NewResultService creates a new ResultService.
func NewResultService(exams *ExamService, examStore ExamStore, submissions SubmissionStore, recentLimit int, log zerolog.Logger) *ResultService {
	if recentLimit <= 0 {
		recentLimit = results.DefaultRecentLimit
	}
	return &ResultService{
		exams:       exams,
		examStore:   examStore,
		submissions: submissions,
		recentLimit: recentLimit,
		log:         log.With().Str("component", "result_service").Logger(),
	}
}

// ResultsForExam lists every submission of an exam, newest first. A teacher
// may only read results of exams they authored.
func (s *ResultService) ResultsForExam(ctx context.Context, requester Identity, identifier string) ([]model.ExamResult, error) {
	exam, err := s.exams.Resolve(ctx, identifier)
	if err != nil {
		return nil, err
	}
	if requester.IsTeacher() && !exam.OwnedBy(requester.UserID) {
		return nil, ErrForbidden
	}

	list, err := s.submissions.ListByExam(ctx, exam.ID)
	if err != nil {
		return nil, storageErr("list submissions by exam", err)
	}
	if list == nil {
		list = []model.ExamResult{}
	}
	return list, nil
}

// ResultForLearner returns a learner's most recent submission to an exam.
// Students may only read their own results and teachers only those of their
// own exams.
func (s *ResultService) ResultForLearner(ctx context.Context, requester Identity, identifier string, learnerID int64) (*model.SubmissionWithStudent, error) {
	exam, err := s.exams.Resolve(ctx, identifier)
	if err != nil {
		return nil, err
	}
	switch {
	case requester.IsStudent() && requester.UserID != learnerID:
		return nil, ErrForbidden
	case requester.IsTeacher() && !exam.OwnedBy(requester.UserID):
		return nil, ErrForbidden
	}

	sub, err := s.submissions.LatestForStudent(ctx, exam.ID, learnerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSubmissionNotFound
		}
		return nil, storageErr("get latest submission", err)
	}
	return sub, nil
}

// StatsForLearner summarizes every submission of a learner.
func (s *ResultService) StatsForLearner(ctx context.Context, learnerID int64) (model.LearnerStats, error) {
	subs, err := s.submissions.ListByStudent(ctx, learnerID)
	if err != nil {
		return model.LearnerStats{}, storageErr("list submissions by student", err)
	}
	return results.Stats(subs, s.recentLimit), nil
}

// SubmissionsForTeacher lists submissions across every exam the teacher authored.
func (s *ResultService) SubmissionsForTeacher(ctx context.Context, teacherID int64) (model.TeacherSubmissions, error) {
	ids, err := s.examStore.ListIDsByTeacher(ctx, teacherID)
	if err != nil {
		return model.TeacherSubmissions{}, storageErr("list exam ids", err)
	}
	if len(ids) == 0 {
		return results.ForTeacher(nil), nil
	}

	subs, err := s.submissions.ListByExamIDs(ctx, ids)
	if err != nil {
		return model.TeacherSubmissions{}, storageErr("list submissions by exams", err)
	}
	return results.ForTeacher(subs), nil
}

// LastSubmission returns the exam of the learner's newest submission, or nil
// when the learner has not submitted anything.
func (s *ResultService) LastSubmission(ctx context.Context, learnerID int64) (*model.LastSubmission, error) {
	last, err := s.submissions.LatestByStudent(ctx, learnerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, storageErr("get last submission", err)
	}
	return last, nil
}
