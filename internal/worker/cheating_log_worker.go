package worker

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"github.com/stemsi/exproctor-backend/internal/model"
	"github.com/stemsi/exproctor-backend/internal/repository"
)

const (
	BatchSize    = 50
	BatchTimeout = 2 * time.Second
	PollTimeout  = 1 * time.Second // Must be >= 1s to satisfy Redis
)

// LogQueue is the Redis list the worker drains.
type LogQueue interface {
	Pop(ctx context.Context, timeout time.Duration) ([]byte, error)
	Push(ctx context.Context, logs ...model.CheatingLog) error
}

// LogStore persists cheating logs, one row per (exam, learner).
type LogStore interface {
	Upsert(ctx context.Context, log model.CheatingLog) error
	UpsertBatch(ctx context.Context, logs []model.CheatingLog) error
}

// CheatingLogWorker moves queued cheating logs into Postgres in batches.
type CheatingLogWorker struct {
	queue        LogQueue
	store        LogStore
	batchSize    int
	batchTimeout time.Duration
	retryDelay   time.Duration
	log          zerolog.Logger
}

// NewCheatingLogWorker creates a new CheatingLogWorker.
func NewCheatingLogWorker(queue LogQueue, store LogStore, log zerolog.Logger) *CheatingLogWorker {
	return &CheatingLogWorker{
		queue:        queue,
		store:        store,
		batchSize:    BatchSize,
		batchTimeout: BatchTimeout,
		retryDelay:   2 * time.Second,
		log:          log.With().Str("component", "cheating_log_worker").Logger(),
	}
}

// Start drains the queue until ctx is cancelled, then flushes what is left.
func (w *CheatingLogWorker) Start(ctx context.Context) {
	w.log.Info().Msg("CheatingLogWorker started")

	buffer := make([]model.CheatingLog, 0, w.batchSize)
	lastFlushTime := time.Now()

	for {
		if len(buffer) > 0 &&
			(len(buffer) >= w.batchSize || time.Since(lastFlushTime) >= w.batchTimeout) {
			w.flushSafe(ctx, buffer)
			buffer = buffer[:0]
			lastFlushTime = time.Now()
		}

		select {
		case <-ctx.Done():
			w.shutdown(buffer)
			return
		default:
		}

		data, err := w.queue.Pop(ctx, PollTimeout)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				continue
			}
			if ctx.Err() != nil {
				w.shutdown(buffer)
				return
			}
			w.log.Error().Err(err).Msg("Redis connection error, sleeping 3s")
			sleep(ctx, 3*time.Second)
			continue
		}

		var entry model.CheatingLog
		if err := json.Unmarshal(data, &entry); err != nil {
			// Malformed entries can never succeed.
			w.log.Error().Err(err).Str("data", string(data)).Msg("Discarding malformed JSON")
			continue
		}

		buffer = append(buffer, entry)
	}
}

// flushSafe tries one transaction for the whole batch, then row by row.
func (w *CheatingLogWorker) flushSafe(ctx context.Context, batch []model.CheatingLog) {
	if err := w.store.UpsertBatch(ctx, batch); err != nil {
		w.log.Warn().Err(err).Int("count", len(batch)).Msg("Batch upsert failed, attempting row-by-row recovery")
		w.fallbackUpsert(ctx, batch)
		return
	}
	w.log.Debug().Int("count", len(batch)).Msg("Cheating logs persisted")
}

func (w *CheatingLogWorker) fallbackUpsert(ctx context.Context, batch []model.CheatingLog) {
	requeueList := make([]model.CheatingLog, 0)

	for _, entry := range batch {
		err := w.store.Upsert(ctx, entry)
		if err == nil {
			continue
		}
		if isDataError(err) {
			w.log.Error().Err(err).
				Str("exam_id", entry.ExamID.String()).
				Int64("student_id", entry.StudentID).
				Msg("Dropping cheating log rejected by the database")
			continue
		}
		w.log.Error().Err(err).Int64("student_id", entry.StudentID).Msg("Upsert failed, requeueing")
		requeueList = append(requeueList, entry)
	}

	if len(requeueList) > 0 {
		w.requeue(ctx, requeueList)
	}
}

func (w *CheatingLogWorker) requeue(ctx context.Context, items []model.CheatingLog) {
	// Requeue must survive shutdown cancellation.
	pushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if err := w.queue.Push(pushCtx, items...); err != nil {
		w.log.Error().Err(err).Int("count", len(items)).Msg("CRITICAL: Failed to requeue cheating logs. Data loss occurred.")
		return
	}
	w.log.Info().Int("count", len(items)).Msg("Requeued failed items back to Redis")
	// Back off so a database outage does not spin the loop.
	sleep(ctx, w.retryDelay)
}

func (w *CheatingLogWorker) shutdown(buffer []model.CheatingLog) {
	w.log.Info().Msg("Worker stopping, flushing remaining buffer...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if len(buffer) > 0 {
		w.flushSafe(shutdownCtx, buffer)
	}
}

// isDataError reports whether Postgres rejected the row itself. Data
// exceptions (class 22) and integrity violations (class 23, e.g. the exam
// was deleted) fail again on retry.
func isDataError(err error) bool {
	if errors.Is(err, repository.ErrDuplicate) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return strings.HasPrefix(pgErr.Code, "22") || strings.HasPrefix(pgErr.Code, "23")
	}
	return false
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
