package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"survey-scoring/internal/domain"
	"survey-scoring/internal/infra/memory"
)

func TestTruthKeyRepositoryCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := newClient(mr)

	loader := &countingLoader{
		TruthKeyLoader: memory.NewStaticTruthKeyLoader(map[string]domain.TruthKey{
			"episode-key": sampleKey(),
		}),
	}
	repo := NewTruthKeyRepository(client, loader, time.Minute)

	_, err = repo.GetTruthKey(context.Background(), "episode-key")
	if err != nil {
		t.Fatalf("get truth key: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader called once, got %d", loader.calls)
	}
	if !mr.Exists("truth:episode-key") {
		t.Fatalf("expected redis hash to be written")
	}

	// Second call should hit cache, loader not incremented.
	key, err := repo.GetTruthKey(context.Background(), "episode-key")
	if err != nil {
		t.Fatalf("get truth key 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}
	if key["Q01"] != sampleKey()["Q01"] {
		t.Fatalf("cached entry differs: %+v", key["Q01"])
	}

	if err := repo.Invalidate(context.Background(), "episode-key"); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	_, _ = repo.GetTruthKey(context.Background(), "episode-key")
	if loader.calls != 2 {
		t.Fatalf("expected reload after invalidate, loader calls=%d", loader.calls)
	}
}

type countingLoader struct {
	memory.TruthKeyLoader
	calls int
}

func (l *countingLoader) LoadTruthKey(ctx context.Context, keyID string) (domain.TruthKey, error) {
	l.calls++
	return l.TruthKeyLoader.LoadTruthKey(ctx, keyID)
}

func sampleKey() domain.TruthKey {
	return domain.TruthKey{
		"Q00": {Number: "Q00", CorrectAnswer: "Arya Stark", Points: 5, Include: true},
		"Q01": {Number: "Q01", CorrectAnswer: "jon snow,daenerys targaryen", Points: 3, Include: true, MultipleAnswers: true},
	}
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
