package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stemsi/exproctor-backend/internal/config"
	"github.com/stemsi/exproctor-backend/internal/model"
)

// CheatingLogQueue hands cheating logs to the persistence worker.
type CheatingLogQueue struct {
	rdb *redis.Client
}

// NewCheatingLogQueue creates a new CheatingLogQueue.
func NewCheatingLogQueue(rdb *redis.Client) *CheatingLogQueue {
	return &CheatingLogQueue{rdb: rdb}
}

// Push appends logs to the persistence queue in one round trip.
func (q *CheatingLogQueue) Push(ctx context.Context, logs ...model.CheatingLog) error {
	if len(logs) == 0 {
		return nil
	}
	pipe := q.rdb.Pipeline()
	for i := range logs {
		data, err := json.Marshal(logs[i])
		if err != nil {
			return err
		}
		pipe.RPush(ctx, config.WorkerKey.PersistCheatingLogsQueue, data)
	}
	_, err := pipe.Exec(ctx)
	return err
}

// Pop blocks up to timeout for the next queued log and returns its raw JSON.
// An empty queue yields ErrNotFound.
func (q *CheatingLogQueue) Pop(ctx context.Context, timeout time.Duration) ([]byte, error) {
	res, err := q.rdb.BLPop(ctx, timeout, config.WorkerKey.PersistCheatingLogsQueue).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if len(res) < 2 {
		return nil, ErrNotFound
	}
	return []byte(res[1]), nil
}
