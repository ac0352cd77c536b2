package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/exproctor-backend/internal/model"
	"github.com/stemsi/exproctor-backend/internal/proctor"
	"github.com/stemsi/exproctor-backend/internal/repository"
)

// ProctorService accumulates cheating logs while learners take exams and
// hands them to the persistence worker.
type ProctorService struct {
	exams     *ExamService
	examStore ExamStore
	live      LiveLogStore
	queue     CheatingLogQueue
	stored    CheatingLogReader
	now       func() time.Time
	log       zerolog.Logger
}

// NewProctorService creates a new ProctorService.
func NewProctorService(
	exams *ExamService,
	examStore ExamStore,
	live LiveLogStore,
	queue CheatingLogQueue,
	stored CheatingLogReader,
	log zerolog.Logger,
) *ProctorService {
	return &ProctorService{
		exams:     exams,
		examStore: examStore,
		live:      live,
		queue:     queue,
		stored:    stored,
		now:       time.Now,
		log:       log.With().Str("component", "proctor_service").Logger(),
	}
}

// SampleResult is the outcome of recording one detector sample.
type SampleResult struct {
	Violations []model.ViolationType `json:"violations"`
	Recorded   bool                  `json:"recorded"`
	Log        model.CheatingLog     `json:"log"`
}

// RecordSample classifies a detector sample and merges its violations into
// the learner's live log. Violations are only recorded when the sample
// carries an evidence image, so every counted violation has evidence.
func (s *ProctorService) RecordSample(ctx context.Context, learner Identity, examID uuid.UUID, sample model.DetectionSample) (*SampleResult, error) {
	res := &SampleResult{Violations: proctor.Classify(sample)}
	if res.Violations == nil {
		res.Violations = []model.ViolationType{}
	}

	if len(res.Violations) == 0 || sample.EvidenceURL == "" {
		current, err := s.live.Get(ctx, examID, learner.UserID)
		switch {
		case err == nil:
			res.Log = *current
		case errors.Is(err, repository.ErrNotFound):
			res.Log = model.CheatingLog{ExamID: examID, StudentID: learner.UserID, Screenshots: []model.Evidence{}}
		default:
			return nil, storageErr("get live log", err)
		}
		return res, nil
	}

	at := s.now().UTC()
	if sample.CapturedAt != nil && !sample.CapturedAt.IsZero() {
		at = sample.CapturedAt.UTC()
	}

	updated, err := s.live.Update(ctx, examID, learner.UserID, func(l model.CheatingLog) (model.CheatingLog, error) {
		l.Username = learner.Name
		l.Email = learner.Email
		for _, v := range res.Violations {
			var err error
			if l, err = proctor.Merge(l, v, model.Evidence{URL: sample.EvidenceURL, DetectedAt: at}); err != nil {
				return l, err
			}
		}
		return l, nil
	})
	if err != nil {
		return nil, storageErr("update live log", err)
	}

	res.Recorded = true
	res.Log = updated
	return res, nil
}

// Save combines a client-accumulated log with the learner's live log and
// queues the result for persistence. The stored record is upserted per
// (exam, learner).
func (s *ProctorService) Save(ctx context.Context, learner Identity, req model.SaveCheatingLogRequest) (*model.CheatingLog, error) {
	exam, err := s.exams.Resolve(ctx, req.ExamID)
	if err != nil {
		return nil, err
	}

	posted, err := proctor.FromRequest(req)
	if err != nil {
		return nil, validationErr("%v", err)
	}
	posted.ExamID = exam.ID
	posted.StudentID = learner.UserID
	posted.Username = learner.Name
	posted.Email = learner.Email

	merged := posted
	live, err := s.live.Take(ctx, exam.ID, learner.UserID)
	switch {
	case err == nil:
		merged = proctor.Combine(posted, *live)
	case !errors.Is(err, repository.ErrNotFound):
		return nil, storageErr("take live log", err)
	}

	if err := s.queue.Push(ctx, merged); err != nil {
		return nil, storageErr("queue cheating log", err)
	}

	s.log.Info().Str("exam_id", exam.ID.String()).Int64("student_id", learner.UserID).
		Int("violations", merged.Total()).Msg("Cheating log queued")
	return &merged, nil
}

// Flush moves the learner's live log to the persistence queue. It reports
// false when there was nothing to flush.
func (s *ProctorService) Flush(ctx context.Context, learner Identity, examID uuid.UUID) (bool, error) {
	live, err := s.live.Take(ctx, examID, learner.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, nil
		}
		return false, storageErr("take live log", err)
	}

	if live.Username == "" {
		live.Username = learner.Name
	}
	if live.Email == "" {
		live.Email = learner.Email
	}
	if err := s.queue.Push(ctx, *live); err != nil {
		return false, storageErr("queue cheating log", err)
	}
	return true, nil
}

// FlushExpired queues every live log whose exam closed more than grace ago.
// Logs of exams that no longer exist are discarded. It returns the number of
// logs queued.
func (s *ProctorService) FlushExpired(ctx context.Context, grace time.Duration) (int, error) {
	refs, err := s.live.Active(ctx)
	if err != nil {
		return 0, storageErr("scan live logs", err)
	}

	now := s.now()
	exams := make(map[uuid.UUID]*model.Exam)
	flushed := 0

	for _, ref := range refs {
		exam, seen := exams[ref.ExamID]
		if !seen {
			exam, err = s.examStore.GetByID(ctx, ref.ExamID)
			if err != nil && !errors.Is(err, repository.ErrNotFound) {
				return flushed, storageErr("get exam", err)
			}
			exams[ref.ExamID] = exam
		}

		if exam != nil && !now.After(exam.DeadDate.Add(grace)) {
			continue
		}

		live, err := s.live.Take(ctx, ref.ExamID, ref.StudentID)
		if errors.Is(err, repository.ErrNotFound) {
			continue
		}
		if err != nil {
			return flushed, storageErr("take live log", err)
		}
		if exam == nil {
			s.log.Warn().Str("exam_id", ref.ExamID.String()).Int64("student_id", ref.StudentID).
				Msg("Discarding live log of deleted exam")
			continue
		}
		if err := s.queue.Push(ctx, *live); err != nil {
			return flushed, storageErr("queue cheating log", err)
		}
		flushed++
	}
	return flushed, nil
}

// ListByExam returns the stored cheating logs of an exam the caller authored.
func (s *ProctorService) ListByExam(ctx context.Context, requester Identity, identifier string) ([]model.CheatingLog, error) {
	exam, err := s.exams.Resolve(ctx, identifier)
	if err != nil {
		return nil, err
	}
	if !requester.canManage(exam) {
		return nil, ErrForbidden
	}

	logs, err := s.stored.ListByExam(ctx, exam.ID)
	if err != nil {
		return nil, storageErr("list cheating logs", err)
	}
	if logs == nil {
		logs = []model.CheatingLog{}
	}
	return logs, nil
}

// GetForLearner returns the stored cheating log of one learner in an exam
// the caller authored.
func (s *ProctorService) GetForLearner(ctx context.Context, requester Identity, identifier string, learnerID int64) (*model.CheatingLog, error) {
	exam, err := s.exams.Resolve(ctx, identifier)
	if err != nil {
		return nil, err
	}
	if !requester.canManage(exam) {
		return nil, ErrForbidden
	}

	l, err := s.stored.Get(ctx, exam.ID, learnerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCheatingLogNotFound
		}
		return nil, storageErr("get cheating log", err)
	}
	return l, nil
}
