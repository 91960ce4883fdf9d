package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"survey-scoring/internal/domain"
)

// HistoryStore keeps the period results table as a JSON document in Redis.
// Before it is replaced, the previous document is copied to an archive key
// suffixed with the current date.
type HistoryStore struct {
	client     *redis.Client
	name       string
	archiveTTL time.Duration
	clock      func() time.Time
}

func NewHistoryStore(client *redis.Client, name string, archiveTTL time.Duration) *HistoryStore {
	return &HistoryStore{
		client:     client,
		name:       name,
		archiveTTL: archiveTTL,
		clock:      time.Now,
	}
}

func (s *HistoryStore) LoadHistory(ctx context.Context) (domain.PeriodHistory, error) {
	raw, err := s.client.Get(ctx, s.key()).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.PeriodHistory{}, domain.ErrHistoryNotFound
	}
	if err != nil {
		return domain.PeriodHistory{}, fmt.Errorf("get history: %w", err)
	}
	var history domain.PeriodHistory
	if err := json.Unmarshal(raw, &history); err != nil {
		return domain.PeriodHistory{}, fmt.Errorf("unmarshal history: %w", err)
	}
	return history, nil
}

func (s *HistoryStore) SaveHistory(ctx context.Context, history domain.PeriodHistory) error {
	data, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}

	previous, err := s.client.Get(ctx, s.key()).Bytes()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("get history: %w", err)
	}

	pipe := s.client.TxPipeline()
	if previous != nil {
		pipe.Set(ctx, s.archiveKey(), previous, s.archiveTTL)
	}
	pipe.Set(ctx, s.key(), data, 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save history: %w", err)
	}
	return nil
}

func (s *HistoryStore) key() string {
	return "results:" + s.name
}

func (s *HistoryStore) archiveKey() string {
	return s.key() + ":archive:" + s.clock().Format("2006-01-02")
}
