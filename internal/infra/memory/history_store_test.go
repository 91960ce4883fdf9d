package memory

import (
	"context"
	"errors"
	"testing"

	"survey-scoring/internal/domain"
)

func TestHistoryStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewHistoryStore()

	if _, err := store.LoadHistory(ctx); !errors.Is(err, domain.ErrHistoryNotFound) {
		t.Fatalf("expected ErrHistoryNotFound, got %v", err)
	}

	history := domain.PeriodHistory{
		Columns: []string{"Team", "Iron Bank", "Episode 1 Rank", "Episode 1 Score"},
		Rows:    [][]string{{"Wolves", "Gold", "1", "10"}},
	}
	if err := store.SaveHistory(ctx, history); err != nil {
		t.Fatalf("save: %v", err)
	}
	history.Rows[0][3] = "999"

	got, err := store.LoadHistory(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Rows[0][3] != "10" {
		t.Fatalf("expected stored copy to be isolated, got %v", got.Rows[0])
	}
}

func TestCheckpointStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewCheckpointStore()

	if _, _, err := store.LoadCheckpoint(ctx); !errors.Is(err, domain.ErrCheckpointNotFound) {
		t.Fatalf("expected ErrCheckpointNotFound, got %v", err)
	}

	questions := []domain.Question{{Number: "Q00", Text: "Who sits the throne?", Points: 5}}
	records := []domain.AnswerRecord{{Team: "Wolves", PayType: "Gold", QuestionNumber: "Q00", Answer: "Bran"}}
	if err := store.SaveCheckpoint(ctx, questions, records); err != nil {
		t.Fatalf("save: %v", err)
	}

	gotQ, gotR, err := store.LoadCheckpoint(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(gotQ) != 1 || len(gotR) != 1 || gotR[0].Answer != "Bran" {
		t.Fatalf("unexpected checkpoint %+v %+v", gotQ, gotR)
	}
}
