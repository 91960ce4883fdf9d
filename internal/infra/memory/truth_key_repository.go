package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"survey-scoring/internal/domain"
)

// TruthKeyLoader fetches a truth key from a backing store (file, workbook, Postgres).
type TruthKeyLoader interface {
	LoadTruthKey(ctx context.Context, keyID string) (domain.TruthKey, error)
}

// TruthKeyRepository caches truth keys with a TTL so repeated runs in one
// process do not re-read the backing store.
type TruthKeyRepository struct {
	loader TruthKeyLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedKey
}

type cachedKey struct {
	key       domain.TruthKey
	expiresAt time.Time
}

func NewTruthKeyRepository(loader TruthKeyLoader, ttl time.Duration) *TruthKeyRepository {
	return &TruthKeyRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedKey),
	}
}

func (r *TruthKeyRepository) GetTruthKey(ctx context.Context, keyID string) (domain.TruthKey, error) {
	if key, ok := r.lookup(keyID); ok {
		return key, nil
	}

	result, err, _ := r.sf.Do(keyID, func() (interface{}, error) {
		if key, ok := r.lookup(keyID); ok {
			return key, nil
		}

		key, err := r.loader.LoadTruthKey(ctx, keyID)
		if err != nil {
			return domain.TruthKey(nil), err
		}

		r.mu.Lock()
		r.cache[keyID] = cachedKey{
			key:       key,
			expiresAt: r.clock().Add(r.ttlWithJitter()),
		}
		r.mu.Unlock()
		return key, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(domain.TruthKey), nil
}

// Invalidate drops a cached key, e.g. after the key was re-imported.
func (r *TruthKeyRepository) Invalidate(keyID string) {
	r.mu.Lock()
	delete(r.cache, keyID)
	r.mu.Unlock()
}

func (r *TruthKeyRepository) lookup(keyID string) (domain.TruthKey, bool) {
	now := r.clock()
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.cache[keyID]
	if !ok || !entry.expiresAt.After(now) {
		return nil, false
	}
	return entry.key, true
}

func (r *TruthKeyRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

// StaticTruthKeyLoader is a simple loader backed by an in-memory map (useful for tests/demos).
type StaticTruthKeyLoader struct {
	keys map[string]domain.TruthKey
}

func NewStaticTruthKeyLoader(keys map[string]domain.TruthKey) *StaticTruthKeyLoader {
	return &StaticTruthKeyLoader{keys: keys}
}

func (l *StaticTruthKeyLoader) LoadTruthKey(_ context.Context, keyID string) (domain.TruthKey, error) {
	if key, ok := l.keys[keyID]; ok {
		return key, nil
	}
	return nil, domain.ErrTruthKeyNotFound
}
