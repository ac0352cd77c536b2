package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stemsi/exproctor-backend/internal/config"
	"github.com/stemsi/exproctor-backend/internal/model"
)

// ErrConflict is returned when an optimistic update keeps losing the race.
var ErrConflict = errors.New("concurrent update, retries exhausted")

const maxWatchRetries = 8

// LiveLogRef names one in-progress cheating log.
type LiveLogRef struct {
	ExamID    uuid.UUID
	StudentID int64
}

// LiveLogStore keeps in-progress cheating logs in Redis until they are
// flushed to PostgreSQL.
type LiveLogStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewLiveLogStore creates a LiveLogStore whose keys expire after ttl of inactivity.
func NewLiveLogStore(rdb *redis.Client, ttl time.Duration) *LiveLogStore {
	return &LiveLogStore{rdb: rdb, ttl: ttl}
}

func decodeLiveLog(data string) (model.CheatingLog, error) {
	var l model.CheatingLog
	if err := json.Unmarshal([]byte(data), &l); err != nil {
		return l, fmt.Errorf("decode live log: %w", err)
	}
	return l, nil
}

// Update applies fn to the current log under WATCH and stores the result.
// fn may run several times and must not have side effects. A missing log
// starts out empty with its identity fields set.
func (s *LiveLogStore) Update(ctx context.Context, examID uuid.UUID, studentID int64, fn func(model.CheatingLog) (model.CheatingLog, error)) (model.CheatingLog, error) {
	key := config.CacheKey.LiveCheatingLogKey(examID.String(), studentID)

	var out model.CheatingLog
	txf := func(tx *redis.Tx) error {
		cur := model.CheatingLog{ExamID: examID, StudentID: studentID}

		data, err := tx.Get(ctx, key).Result()
		switch {
		case errors.Is(err, redis.Nil):
		case err != nil:
			return err
		default:
			if cur, err = decodeLiveLog(data); err != nil {
				return err
			}
		}

		next, err := fn(cur)
		if err != nil {
			return err
		}
		encoded, err := json.Marshal(next)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, encoded, s.ttl)
			return nil
		})
		if err == nil {
			out = next
		}
		return err
	}

	for range maxWatchRetries {
		err := s.rdb.Watch(ctx, txf, key)
		if err == nil {
			return out, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return out, err
	}
	return out, ErrConflict
}

// Get returns the current live log, or ErrNotFound.
func (s *LiveLogStore) Get(ctx context.Context, examID uuid.UUID, studentID int64) (*model.CheatingLog, error) {
	data, err := s.rdb.Get(ctx, config.CacheKey.LiveCheatingLogKey(examID.String(), studentID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	l, err := decodeLiveLog(data)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// Take atomically reads and deletes the live log, or returns ErrNotFound.
func (s *LiveLogStore) Take(ctx context.Context, examID uuid.UUID, studentID int64) (*model.CheatingLog, error) {
	data, err := s.rdb.GetDel(ctx, config.CacheKey.LiveCheatingLogKey(examID.String(), studentID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	l, err := decodeLiveLog(data)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// Active lists every live log currently held in Redis.
func (s *LiveLogStore) Active(ctx context.Context) ([]LiveLogRef, error) {
	var refs []LiveLogRef
	iter := s.rdb.Scan(ctx, 0, config.CacheKey.LiveCheatingLogPattern(), 200).Iterator()
	for iter.Next(ctx) {
		examStr, studentID, ok := config.CacheKey.ParseLiveCheatingLogKey(iter.Val())
		if !ok {
			continue
		}
		examID, err := uuid.Parse(examStr)
		if err != nil {
			continue
		}
		refs = append(refs, LiveLogRef{ExamID: examID, StudentID: studentID})
	}
	return refs, iter.Err()
}
