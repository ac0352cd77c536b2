package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/exproctor-backend/internal/model"
)

// CodingSubmissionRepository stores one coding answer per (exam, learner).
type CodingSubmissionRepository struct {
	pool *pgxpool.Pool
}

// NewCodingSubmissionRepository creates a new CodingSubmissionRepository.
func NewCodingSubmissionRepository(pool *pgxpool.Pool) *CodingSubmissionRepository {
	return &CodingSubmissionRepository{pool: pool}
}

// Upsert stores the answer, replacing a previous answer of the same learner.
func (r *CodingSubmissionRepository) Upsert(ctx context.Context, s *model.CodingSubmission) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO coding_submissions (exam_id, student_id, code, language, status)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (exam_id, student_id)
		 DO UPDATE SET code = EXCLUDED.code, language = EXCLUDED.language,
		               status = EXCLUDED.status, submitted_at = NOW()
		 RETURNING submitted_at`,
		s.ExamID, s.StudentID, s.Code, s.Language, s.Status,
	).Scan(&s.SubmittedAt)
}

// Get returns a learner's coding answer for an exam.
func (r *CodingSubmissionRepository) Get(ctx context.Context, examID uuid.UUID, studentID int64) (*model.CodingSubmission, error) {
	s := &model.CodingSubmission{}
	err := r.pool.QueryRow(ctx,
		`SELECT exam_id, student_id, code, language, status, submitted_at
		 FROM coding_submissions
		 WHERE exam_id = $1 AND student_id = $2`, examID, studentID,
	).Scan(&s.ExamID, &s.StudentID, &s.Code, &s.Language, &s.Status, &s.SubmittedAt)
	if err != nil {
		return nil, translate(err)
	}
	return s, nil
}
