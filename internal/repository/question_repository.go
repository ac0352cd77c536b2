package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/exproctor-backend/internal/model"
)

// QuestionRepository handles question data access.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

const questionColumns = `id, exam_token, question_text, options, marks, created_at, updated_at`

func scanQuestion(row pgx.Row) (*model.Question, error) {
	q := &model.Question{}
	if err := row.Scan(&q.ID, &q.ExamToken, &q.QuestionText, &q.Options, &q.Marks, &q.CreatedAt, &q.UpdatedAt); err != nil {
		return nil, translate(err)
	}
	return q, nil
}

// ListByExamToken retrieves every question of an exam in creation order.
func (r *QuestionRepository) ListByExamToken(ctx context.Context, examToken string) ([]model.Question, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+questionColumns+` FROM questions
		 WHERE exam_token = $1
		 ORDER BY created_at, id`, examToken)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	questions := []model.Question{}
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		questions = append(questions, *q)
	}
	return questions, rows.Err()
}

// GetByID retrieves a single question.
func (r *QuestionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Question, error) {
	return scanQuestion(r.pool.QueryRow(ctx,
		`SELECT `+questionColumns+` FROM questions WHERE id = $1`, id))
}

// Create inserts a new question.
func (r *QuestionRepository) Create(ctx context.Context, q *model.Question) error {
	return translate(r.pool.QueryRow(ctx,
		`INSERT INTO questions (exam_token, question_text, options, marks)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at, updated_at`,
		q.ExamToken, q.QuestionText, q.Options, q.Marks,
	).Scan(&q.ID, &q.CreatedAt, &q.UpdatedAt))
}

// Update writes back every column of q.
func (r *QuestionRepository) Update(ctx context.Context, q *model.Question) error {
	return translate(r.pool.QueryRow(ctx,
		`UPDATE questions
		 SET exam_token = $1, question_text = $2, options = $3, marks = $4, updated_at = NOW()
		 WHERE id = $5
		 RETURNING updated_at`,
		q.ExamToken, q.QuestionText, q.Options, q.Marks, q.ID,
	).Scan(&q.UpdatedAt))
}
