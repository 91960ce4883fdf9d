package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"survey-scoring/internal/domain"
)

// HistoryStore keeps each published results table as a new row of
// period_results, so earlier periods stay available as an archive.
type HistoryStore struct {
	pool *pgxpool.Pool
	name string
}

func NewHistoryStore(pool *pgxpool.Pool, name string) *HistoryStore {
	return &HistoryStore{pool: pool, name: name}
}

func (s *HistoryStore) LoadHistory(ctx context.Context) (domain.PeriodHistory, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx,
		`SELECT data FROM period_results WHERE name=$1 ORDER BY id DESC LIMIT 1`, s.name).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.PeriodHistory{}, domain.ErrHistoryNotFound
	}
	if err != nil {
		return domain.PeriodHistory{}, fmt.Errorf("load history: %w", err)
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
	_, err = s.pool.Exec(ctx,
		`INSERT INTO period_results (name, data, created_at) VALUES ($1, $2::jsonb, now())`,
		s.name, string(data))
	if err != nil {
		return fmt.Errorf("save history: %w", err)
	}
	return nil
}
