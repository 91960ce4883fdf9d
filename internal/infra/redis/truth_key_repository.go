package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"survey-scoring/internal/domain"
)

// TruthKeyLoader fetches a truth key from a backing store (file, workbook, Postgres).
type TruthKeyLoader interface {
	LoadTruthKey(ctx context.Context, keyID string) (domain.TruthKey, error)
}

// TruthKeyRepository caches truth keys in Redis and falls back to a loader on cache miss.
// Entries are stored as: HSET truth:{keyID} {questionNumber} {json TruthAnswer}
type TruthKeyRepository struct {
	client *redis.Client
	loader TruthKeyLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewTruthKeyRepository(client *redis.Client, loader TruthKeyLoader, ttl time.Duration) *TruthKeyRepository {
	return &TruthKeyRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *TruthKeyRepository) GetTruthKey(ctx context.Context, keyID string) (domain.TruthKey, error) {
	if key, ok := r.cached(ctx, keyID); ok {
		return key, nil
	}

	result, err, _ := r.sf.Do(keyID, func() (interface{}, error) {
		// Re-check cache in case another caller filled it.
		if key, ok := r.cached(ctx, keyID); ok {
			return key, nil
		}

		key, err := r.loader.LoadTruthKey(ctx, keyID)
		if err != nil {
			return domain.TruthKey(nil), err
		}

		pipe := r.client.Pipeline()
		for number, answer := range key {
			data, err := json.Marshal(answer)
			if err != nil {
				return domain.TruthKey(nil), fmt.Errorf("marshal truth entry %s: %w", number, err)
			}
			pipe.HSet(ctx, r.key(keyID), number, data)
		}
		if ttl := r.ttlWithJitter(); ttl > 0 {
			pipe.Expire(ctx, r.key(keyID), ttl)
		}
		// best-effort; a failed write only costs a reload next time
		_, _ = pipe.Exec(ctx)

		return key, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(domain.TruthKey), nil
}

// Invalidate drops the cached copy of a key.
func (r *TruthKeyRepository) Invalidate(ctx context.Context, keyID string) error {
	return r.client.Del(ctx, r.key(keyID)).Err()
}

func (r *TruthKeyRepository) cached(ctx context.Context, keyID string) (domain.TruthKey, bool) {
	entries, err := r.client.HGetAll(ctx, r.key(keyID)).Result()
	if err != nil || len(entries) == 0 {
		return nil, false
	}
	key := make(domain.TruthKey, len(entries))
	for number, raw := range entries {
		var answer domain.TruthAnswer
		if err := json.Unmarshal([]byte(raw), &answer); err != nil {
			return nil, false
		}
		key[number] = answer
	}
	return key, true
}

func (r *TruthKeyRepository) key(keyID string) string {
	return "truth:" + keyID
}

func (r *TruthKeyRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
