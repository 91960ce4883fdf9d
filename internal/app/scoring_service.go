package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"survey-scoring/internal/domain"
)

// ResponseSource reads the raw wide response sheet.
type ResponseSource interface {
	LoadResponses(ctx context.Context) (domain.RawTable, error)
}

// TruthKeyRepository loads a truth key (from cache/backing store).
type TruthKeyRepository interface {
	GetTruthKey(ctx context.Context, keyID string) (domain.TruthKey, error)
}

// CheckpointStore keeps the parsed questions and normalized responses so
// later periods can be re-scored without the raw sheet.
type CheckpointStore interface {
	SaveCheckpoint(ctx context.Context, questions []domain.Question, records []domain.AnswerRecord) error
	LoadCheckpoint(ctx context.Context) ([]domain.Question, []domain.AnswerRecord, error)
}

// HistoryStore owns the cross-period results table.
type HistoryStore interface {
	LoadHistory(ctx context.Context) (domain.PeriodHistory, error)
	SaveHistory(ctx context.Context, history domain.PeriodHistory) error
}

// ReportWriter publishes secondary outputs of a run. It is optional.
type ReportWriter interface {
	WriteDistribution(ctx context.Context, shares []domain.AnswerShare) error
	WriteScored(ctx context.Context, records []domain.ScoredRecord) error
}

// Stores bundles the collaborators of a ScoringService.
type Stores struct {
	Responses  ResponseSource
	TruthKeys  TruthKeyRepository
	Checkpoint CheckpointStore
	History    HistoryStore
	Reports    ReportWriter
}

// Settings fixes how responses are interpreted for every run.
type Settings struct {
	TruthKeyID string
	Compound   []domain.CompoundQuestion
	Labels     domain.Labels
}

// RunOptions selects the period being scored.
type RunOptions struct {
	Period int
	// Reparse re-reads the raw sheet for periods after the first and
	// refreshes the checkpoint.
	Reparse bool
}

// RunResult summarizes one scoring period.
type RunResult struct {
	RunID       string
	Period      int
	Questions   []domain.Question
	Records     []domain.AnswerRecord
	Scored      []domain.ScoredRecord
	Leaderboard domain.Leaderboard
	History     domain.PeriodHistory
}

// ScoringService runs the per-period scoring pipeline.
type ScoringService struct {
	stores   Stores
	settings Settings
	logger   *slog.Logger
	newRunID func() string
}

func NewScoringService(stores Stores, settings Settings, logger *slog.Logger) *ScoringService {
	if logger == nil {
		logger = slog.Default()
	}
	if settings.Labels == (domain.Labels{}) {
		settings.Labels = domain.DefaultLabels()
	}
	return &ScoringService{
		stores:   stores,
		settings: settings,
		logger:   logger,
		newRunID: uuid.NewString,
	}
}

// Run scores one period end to end. Nothing is written unless every stage
// succeeds.
func (s *ScoringService) Run(ctx context.Context, opts RunOptions) (RunResult, error) {
	if opts.Period < 1 {
		return RunResult{}, domain.ErrInvalidPeriod
	}
	result := RunResult{RunID: s.newRunID(), Period: opts.Period}
	log := s.logger.With("run_id", result.RunID, "period", opts.Period)

	fromRaw := opts.Period == 1 || opts.Reparse
	var err error
	if fromRaw {
		result.Questions, result.Records, err = s.normalize(ctx)
	} else {
		result.Questions, result.Records, err = s.stores.Checkpoint.LoadCheckpoint(ctx)
	}
	if err != nil {
		return RunResult{}, err
	}
	log.Info("responses normalized", "questions", len(result.Questions), "records", len(result.Records), "from_raw", fromRaw)

	key, err := s.stores.TruthKeys.GetTruthKey(ctx, s.settings.TruthKeyID)
	if err != nil {
		return RunResult{}, fmt.Errorf("load truth key: %w", err)
	}
	if err := ValidateTruthKey(result.Questions, key, s.settings.Compound); err != nil {
		return RunResult{}, err
	}

	result.Scored, err = ScoreRecords(result.Records, key)
	if err != nil {
		return RunResult{}, err
	}
	result.Leaderboard = Aggregate(opts.Period, result.Scored, Roster(result.Records))
	log.Info("responses scored", "scored", len(result.Scored), "teams", len(result.Leaderboard.Entries))

	var previous domain.PeriodHistory
	if opts.Period > 1 {
		previous, err = s.stores.History.LoadHistory(ctx)
		if err != nil {
			return RunResult{}, &domain.MergeError{Period: opts.Period, Reason: "load previous history", Err: err}
		}
	}
	result.History, err = MergePeriods(result.Leaderboard, previous, s.settings.Labels)
	if err != nil {
		return RunResult{}, err
	}

	if err := s.publish(ctx, result, fromRaw, key); err != nil {
		return RunResult{}, err
	}
	log.Info("period published", "rows", len(result.History.Rows), "columns", len(result.History.Columns))
	return result, nil
}

// Questions parses the raw sheet headers without scoring anything.
func (s *ScoringService) Questions(ctx context.Context) ([]domain.Question, error) {
	_, questions, err := s.loadSheet(ctx)
	return questions, err
}

func (s *ScoringService) loadSheet(ctx context.Context) (domain.RawTable, []domain.Question, error) {
	table, err := s.stores.Responses.LoadResponses(ctx)
	if err != nil {
		return domain.RawTable{}, nil, fmt.Errorf("load responses: %w", err)
	}
	if len(table.Header) < MetadataColumns {
		return domain.RawTable{}, nil, fmt.Errorf("response sheet has %d columns, need at least %d", len(table.Header), MetadataColumns)
	}
	questions, err := ParseQuestions(table.Header[MetadataColumns:])
	if err != nil {
		return domain.RawTable{}, nil, err
	}
	return table, questions, nil
}

func (s *ScoringService) normalize(ctx context.Context) ([]domain.Question, []domain.AnswerRecord, error) {
	table, questions, err := s.loadSheet(ctx)
	if err != nil {
		return nil, nil, err
	}
	records, err := ReshapeResponses(table, questions, s.settings.Compound)
	if err != nil {
		return nil, nil, err
	}
	return questions, records, nil
}

func (s *ScoringService) publish(ctx context.Context, result RunResult, fromRaw bool, key domain.TruthKey) error {
	if fromRaw {
		if err := s.stores.Checkpoint.SaveCheckpoint(ctx, result.Questions, result.Records); err != nil {
			return fmt.Errorf("save checkpoint: %w", err)
		}
	}
	if s.stores.Reports != nil {
		if result.Period == 1 {
			shares := AnswerDistribution(result.Questions, result.Records, key)
			if err := s.stores.Reports.WriteDistribution(ctx, shares); err != nil {
				return fmt.Errorf("write distribution: %w", err)
			}
		}
		if err := s.stores.Reports.WriteScored(ctx, result.Scored); err != nil {
			return fmt.Errorf("write scored records: %w", err)
		}
	}
	if err := s.stores.History.SaveHistory(ctx, result.History); err != nil {
		return fmt.Errorf("save history: %w", err)
	}
	return nil
}

// IsInputError reports whether err stems from inconsistent input data
// rather than a storage failure.
func IsInputError(err error) bool {
	return errors.Is(err, domain.ErrParse) || errors.Is(err, domain.ErrJoin) || errors.Is(err, domain.ErrMerge)
}
