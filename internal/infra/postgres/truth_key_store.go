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

// TruthKeyStore loads and publishes truth keys as JSONB documents.
type TruthKeyStore struct {
	pool *pgxpool.Pool
}

func NewTruthKeyStore(pool *pgxpool.Pool) *TruthKeyStore {
	return &TruthKeyStore{pool: pool}
}

func (s *TruthKeyStore) LoadTruthKey(ctx context.Context, keyID string) (domain.TruthKey, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT data FROM truth_keys WHERE id=$1`, keyID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("truth key %q: %w", keyID, domain.ErrTruthKeyNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load truth key: %w", err)
	}
	var rows []domain.TruthAnswer
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("unmarshal truth key: %w", err)
	}
	return domain.NewTruthKey(rows)
}

// SaveTruthKey upserts the key under keyID.
func (s *TruthKeyStore) SaveTruthKey(ctx context.Context, keyID string, key domain.TruthKey) error {
	data, err := json.Marshal(key.Rows())
	if err != nil {
		return fmt.Errorf("marshal truth key: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO truth_keys (id, data, updated_at) VALUES ($1, $2::jsonb, now())
		 ON CONFLICT (id) DO UPDATE SET data=EXCLUDED.data, updated_at=EXCLUDED.updated_at`,
		keyID, string(data))
	if err != nil {
		return fmt.Errorf("save truth key: %w", err)
	}
	return nil
}
