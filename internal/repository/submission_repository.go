package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/exproctor-backend/internal/model"
)

// SubmissionRepository handles submission data access. Submissions are
// written once and never updated.
type SubmissionRepository struct {
	pool *pgxpool.Pool
}

// NewSubmissionRepository creates a new SubmissionRepository.
func NewSubmissionRepository(pool *pgxpool.Pool) *SubmissionRepository {
	return &SubmissionRepository{pool: pool}
}

// Create inserts a scored submission.
func (r *SubmissionRepository) Create(ctx context.Context, s *model.Submission) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO submissions (exam_id, student_id, score, answers)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		s.ExamID, s.StudentID, s.Score, s.Answers,
	).Scan(&s.ID, &s.CreatedAt)
}

// ListByExam returns every submission of an exam with the learner identity
// and exam details, newest first.
func (r *SubmissionRepository) ListByExam(ctx context.Context, examID uuid.UUID) ([]model.ExamResult, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT s.id, s.exam_id, s.student_id, s.score, s.answers, s.created_at,
		        u.id, u.name, u.email,
		        e.exam_name, e.total_questions, e.duration_minutes
		 FROM submissions s
		 JOIN users u ON u.id = s.student_id
		 JOIN exams e ON e.id = s.exam_id
		 WHERE s.exam_id = $1
		 ORDER BY s.created_at DESC`, examID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []model.ExamResult{}
	for rows.Next() {
		var res model.ExamResult
		if err := rows.Scan(&res.ID, &res.ExamID, &res.StudentID, &res.Score, &res.Answers, &res.CreatedAt,
			&res.Student.ID, &res.Student.Name, &res.Student.Email,
			&res.ExamDetails.ExamName, &res.ExamDetails.TotalQuestions, &res.ExamDetails.Duration); err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, rows.Err()
}

// LatestForStudent returns a learner's most recent submission to an exam.
func (r *SubmissionRepository) LatestForStudent(ctx context.Context, examID uuid.UUID, studentID int64) (*model.SubmissionWithStudent, error) {
	s := &model.SubmissionWithStudent{}
	err := r.pool.QueryRow(ctx,
		`SELECT s.id, s.exam_id, s.student_id, s.score, s.answers, s.created_at,
		        u.id, u.name, u.email
		 FROM submissions s
		 JOIN users u ON u.id = s.student_id
		 WHERE s.exam_id = $1 AND s.student_id = $2
		 ORDER BY s.created_at DESC
		 LIMIT 1`, examID, studentID,
	).Scan(&s.ID, &s.ExamID, &s.StudentID, &s.Score, &s.Answers, &s.CreatedAt,
		&s.Student.ID, &s.Student.Name, &s.Student.Email)
	if err != nil {
		return nil, translate(err)
	}
	return s, nil
}

// ListByStudent returns every submission of a learner joined with its exam,
// newest first.
func (r *SubmissionRepository) ListByStudent(ctx context.Context, studentID int64) ([]model.StudentSubmission, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT s.id, s.exam_id, s.student_id, s.score, s.answers, s.created_at,
		        e.exam_token, e.exam_name, e.total_questions
		 FROM submissions s
		 JOIN exams e ON e.id = s.exam_id
		 WHERE s.student_id = $1
		 ORDER BY s.created_at DESC`, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	subs := []model.StudentSubmission{}
	for rows.Next() {
		var s model.StudentSubmission
		if err := rows.Scan(&s.ID, &s.ExamID, &s.StudentID, &s.Score, &s.Answers, &s.CreatedAt,
			&s.ExamToken, &s.ExamName, &s.TotalQuestions); err != nil {
			return nil, err
		}
		subs = append(subs, s)
	}
	return subs, rows.Err()
}

// ListByExamIDs returns the submissions of a set of exams in a single query,
// newest first.
func (r *SubmissionRepository) ListByExamIDs(ctx context.Context, examIDs []uuid.UUID) ([]model.TeacherSubmission, error) {
	subs := []model.TeacherSubmission{}
	if len(examIDs) == 0 {
		return subs, nil
	}

	rows, err := r.pool.Query(ctx,
		`SELECT s.id, u.name, u.email, e.exam_name, s.score, e.total_questions, s.created_at, s.exam_id
		 FROM submissions s
		 JOIN users u ON u.id = s.student_id
		 JOIN exams e ON e.id = s.exam_id
		 WHERE s.exam_id = ANY($1)
		 ORDER BY s.created_at DESC`, examIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var s model.TeacherSubmission
		if err := rows.Scan(&s.SubmissionID, &s.StudentName, &s.StudentEmail, &s.ExamName,
			&s.Score, &s.TotalQuestions, &s.SubmittedAt, &s.ExamID); err != nil {
			return nil, err
		}
		subs = append(subs, s)
	}
	return subs, rows.Err()
}

// LatestByStudent returns the exam of a learner's newest submission.
func (r *SubmissionRepository) LatestByStudent(ctx context.Context, studentID int64) (*model.LastSubmission, error) {
	last := &model.LastSubmission{}
	err := r.pool.QueryRow(ctx,
		`SELECT s.exam_id, e.exam_token
		 FROM submissions s
		 JOIN exams e ON e.id = s.exam_id
		 WHERE s.student_id = $1
		 ORDER BY s.created_at DESC
		 LIMIT 1`, studentID,
	).Scan(&last.ExamID, &last.ExamToken)
	if err != nil {
		return nil, translate(err)
	}
	return last, nil
}
