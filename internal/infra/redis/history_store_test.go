package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"survey-scoring/internal/domain"
)

func TestHistoryStoreSavesAndArchives(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewHistoryStore(client, "got-2019", time.Hour)
	store.clock = func() time.Time { return time.Date(2019, 4, 21, 12, 0, 0, 0, time.UTC) }
	ctx := context.Background()

	if _, err := store.LoadHistory(ctx); !errors.Is(err, domain.ErrHistoryNotFound) {
		t.Fatalf("expected ErrHistoryNotFound, got %v", err)
	}

	first := domain.PeriodHistory{
		Columns: []string{"Team", "Iron Bank", "Episode 1 Rank", "Episode 1 Score"},
		Rows:    [][]string{{"Wolves", "Gold", "1", "10"}},
	}
	if err := store.SaveHistory(ctx, first); err != nil {
		t.Fatalf("save first: %v", err)
	}
	if mr.Exists("results:got-2019:archive:2019-04-21") {
		t.Fatalf("expected no archive for the first save")
	}

	second := domain.PeriodHistory{Columns: []string{"Team"}, Rows: [][]string{{"Wolves"}}}
	if err := store.SaveHistory(ctx, second); err != nil {
		t.Fatalf("save second: %v", err)
	}
	if !mr.Exists("results:got-2019:archive:2019-04-21") {
		t.Fatalf("expected previous history archived")
	}

	got, err := store.LoadHistory(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got.Columns) != 1 || got.Rows[0][0] != "Wolves" {
		t.Fatalf("unexpected history %+v", got)
	}
}
