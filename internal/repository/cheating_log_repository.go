package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/exproctor-backend/internal/model"
	"github.com/stemsi/exproctor-backend/internal/proctor"
)

// CheatingLogRepository persists one cheating log per (exam, learner).
type CheatingLogRepository struct {
	pool *pgxpool.Pool
}

// NewCheatingLogRepository creates a new CheatingLogRepository.
func NewCheatingLogRepository(pool *pgxpool.Pool) *CheatingLogRepository {
	return &CheatingLogRepository{pool: pool}
}

const cheatingLogColumns = `id, exam_id, student_id, username, email,
	no_face_count, multiple_face_count, cell_phone_count, prohibited_object_count,
	screenshots, created_at, updated_at`

func scanCheatingLog(row pgx.Row) (*model.CheatingLog, error) {
	l := &model.CheatingLog{}
	err := row.Scan(&l.ID, &l.ExamID, &l.StudentID, &l.Username, &l.Email,
		&l.NoFaceCount, &l.MultipleFaceCount, &l.CellPhoneCount, &l.ProhibitedObjectCount,
		&l.Screenshots, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return l, nil
}

// Upsert combines log into the stored record of its (exam, learner) pair in
// its own transaction.
func (r *CheatingLogRepository) Upsert(ctx context.Context, log model.CheatingLog) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		return upsertCheatingLog(ctx, tx, log)
	})
}

// UpsertBatch combines every log in one transaction. Any failure rolls the
// whole batch back.
func (r *CheatingLogRepository) UpsertBatch(ctx context.Context, logs []model.CheatingLog) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		for i := range logs {
			if err := upsertCheatingLog(ctx, tx, logs[i]); err != nil {
				return fmt.Errorf("exam %s student %d: %w", logs[i].ExamID, logs[i].StudentID, err)
			}
		}
		return nil
	})
}

// upsertCheatingLog makes sure the row exists, locks it, and writes back the
// combination of the stored and incoming logs. Locking an existing row keeps
// concurrent upserts of the same pair from overwriting each other.
func upsertCheatingLog(ctx context.Context, tx pgx.Tx, log model.CheatingLog) error {
	if _, err := tx.Exec(ctx,
		`INSERT INTO cheating_logs (exam_id, student_id, username, email)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (exam_id, student_id) DO NOTHING`,
		log.ExamID, log.StudentID, log.Username, log.Email,
	); err != nil {
		return err
	}

	stored, err := scanCheatingLog(tx.QueryRow(ctx,
		`SELECT `+cheatingLogColumns+` FROM cheating_logs
		 WHERE exam_id = $1 AND student_id = $2
		 FOR UPDATE`, log.ExamID, log.StudentID))
	if err != nil {
		return err
	}

	merged := proctor.Combine(log, *stored)
	merged.ID = stored.ID

	_, err = tx.Exec(ctx,
		`UPDATE cheating_logs
		 SET username = $1, email = $2,
		     no_face_count = $3, multiple_face_count = $4,
		     cell_phone_count = $5, prohibited_object_count = $6,
		     screenshots = $7, updated_at = NOW()
		 WHERE id = $8`,
		merged.Username, merged.Email,
		merged.NoFaceCount, merged.MultipleFaceCount,
		merged.CellPhoneCount, merged.ProhibitedObjectCount,
		merged.Screenshots, merged.ID)
	return err
}

// Get returns the stored log of one learner in one exam.
func (r *CheatingLogRepository) Get(ctx context.Context, examID uuid.UUID, studentID int64) (*model.CheatingLog, error) {
	return scanCheatingLog(r.pool.QueryRow(ctx,
		`SELECT `+cheatingLogColumns+` FROM cheating_logs
		 WHERE exam_id = $1 AND student_id = $2`, examID, studentID))
}

// ListByExam returns every stored log of an exam, most violations first.
func (r *CheatingLogRepository) ListByExam(ctx context.Context, examID uuid.UUID) ([]model.CheatingLog, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+cheatingLogColumns+` FROM cheating_logs
		 WHERE exam_id = $1
		 ORDER BY (no_face_count + multiple_face_count + cell_phone_count + prohibited_object_count) DESC,
		          updated_at DESC`, examID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := []model.CheatingLog{}
	for rows.Next() {
		l, err := scanCheatingLog(rows)
		if err != nil {
			return nil, err
		}
		logs = append(logs, *l)
	}
	return logs, rows.Err()
}
