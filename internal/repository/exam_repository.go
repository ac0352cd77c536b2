package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/exproctor-backend/internal/model"
)

// ExamRepository handles exam data access.
type ExamRepository struct {
	pool *pgxpool.Pool
}

// NewExamRepository creates a new ExamRepository.
func NewExamRepository(pool *pgxpool.Pool) *ExamRepository {
	return &ExamRepository{pool: pool}
}

const examColumns = `id, exam_token, exam_name, total_questions, duration_minutes,
	live_date, dead_date, coding_question, created_by, created_at, updated_at`

func scanExam(row pgx.Row) (*model.Exam, error) {
	e := &model.Exam{}
	err := row.Scan(&e.ID, &e.ExamToken, &e.ExamName, &e.TotalQuestions, &e.DurationMinutes,
		&e.LiveDate, &e.DeadDate, &e.CodingQuestion, &e.CreatedBy, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return e, nil
}

func collectExams(rows pgx.Rows) ([]model.Exam, error) {
	defer rows.Close()

	exams := []model.Exam{}
	for rows.Next() {
		e, err := scanExam(rows)
		if err != nil {
			return nil, err
		}
		exams = append(exams, *e)
	}
	return exams, rows.Err()
}

// GetByID retrieves an exam by its internal identifier.
func (r *ExamRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Exam, error) {
	return scanExam(r.pool.QueryRow(ctx,
		`SELECT `+examColumns+` FROM exams WHERE id = $1`, id))
}

// GetByToken retrieves an exam by its external token.
func (r *ExamRepository) GetByToken(ctx context.Context, token string) (*model.Exam, error) {
	return scanExam(r.pool.QueryRow(ctx,
		`SELECT `+examColumns+` FROM exams WHERE exam_token = $1`, token))
}

// ListAll returns every exam, newest first.
func (r *ExamRepository) ListAll(ctx context.Context) ([]model.Exam, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+examColumns+` FROM exams ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	return collectExams(rows)
}

// ListByTeacher returns the exams authored by a teacher, newest first.
func (r *ExamRepository) ListByTeacher(ctx context.Context, teacherID int64) ([]model.Exam, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+examColumns+` FROM exams WHERE created_by = $1 ORDER BY created_at DESC`, teacherID)
	if err != nil {
		return nil, err
	}
	return collectExams(rows)
}

// ListIDsByTeacher returns only the internal identifiers of a teacher's exams.
func (r *ExamRepository) ListIDsByTeacher(ctx context.Context, teacherID int64) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, `SELECT id FROM exams WHERE created_by = $1`, teacherID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
}

// Create inserts a new exam. A taken token yields ErrDuplicate.
func (r *ExamRepository) Create(ctx context.Context, e *model.Exam) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO exams (exam_token, exam_name, total_questions, duration_minutes,
		                    live_date, dead_date, coding_question, created_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at, updated_at`,
		e.ExamToken, e.ExamName, e.TotalQuestions, e.DurationMinutes,
		e.LiveDate, e.DeadDate, e.CodingQuestion, e.CreatedBy,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	return translate(err)
}

// Update overwrites every editable field of the exam.
func (r *ExamRepository) Update(ctx context.Context, e *model.Exam) error {
	err := r.pool.QueryRow(ctx,
		`UPDATE exams
		 SET exam_name = $1, total_questions = $2, duration_minutes = $3,
		     live_date = $4, dead_date = $5, coding_question = $6, updated_at = NOW()
		 WHERE id = $7
		 RETURNING updated_at`,
		e.ExamName, e.TotalQuestions, e.DurationMinutes,
		e.LiveDate, e.DeadDate, e.CodingQuestion, e.ID,
	).Scan(&e.UpdatedAt)
	return translate(err)
}

// DeleteByToken removes an exam and, through cascading keys, its questions.
func (r *ExamRepository) DeleteByToken(ctx context.Context, token string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM exams WHERE exam_token = $1`, token)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
