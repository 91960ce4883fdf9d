package memory

import (
	"context"
	"sync"

	"survey-scoring/internal/domain"
)

// HistoryStore is an in-memory implementation of app.HistoryStore.
type HistoryStore struct {
	mu      sync.RWMutex
	history *domain.PeriodHistory
}

func NewHistoryStore() *HistoryStore {
	return &HistoryStore{}
}

func (s *HistoryStore) LoadHistory(_ context.Context) (domain.PeriodHistory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.history == nil {
		return domain.PeriodHistory{}, domain.ErrHistoryNotFound
	}
	return cloneHistory(*s.history), nil
}

func (s *HistoryStore) SaveHistory(_ context.Context, history domain.PeriodHistory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	h := cloneHistory(history)
	s.history = &h
	return nil
}

// CheckpointStore is an in-memory implementation of app.CheckpointStore.
type CheckpointStore struct {
	mu        sync.RWMutex
	saved     bool
	questions []domain.Question
	records   []domain.AnswerRecord
}

func NewCheckpointStore() *CheckpointStore {
	return &CheckpointStore{}
}

func (s *CheckpointStore) SaveCheckpoint(_ context.Context, questions []domain.Question, records []domain.AnswerRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.questions = append([]domain.Question(nil), questions...)
	s.records = append([]domain.AnswerRecord(nil), records...)
	s.saved = true
	return nil
}

func (s *CheckpointStore) LoadCheckpoint(_ context.Context) ([]domain.Question, []domain.AnswerRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.saved {
		return nil, nil, domain.ErrCheckpointNotFound
	}
	return append([]domain.Question(nil), s.questions...), append([]domain.AnswerRecord(nil), s.records...), nil
}

func cloneHistory(h domain.PeriodHistory) domain.PeriodHistory {
	out := domain.PeriodHistory{
		Columns: append([]string(nil), h.Columns...),
		Rows:    make([][]string, len(h.Rows)),
	}
	for i, row := range h.Rows {
		out.Rows[i] = append([]string(nil), row...)
	}
	return out
}
