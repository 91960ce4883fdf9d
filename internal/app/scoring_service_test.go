package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"survey-scoring/internal/app"
	"survey-scoring/internal/domain"
	"survey-scoring/internal/infra/memory"
)

type staticSheet struct {
	table domain.RawTable
	err   error
}

func (s staticSheet) LoadResponses(context.Context) (domain.RawTable, error) {
	return s.table, s.err
}

type recordingReports struct {
	distributions int
	scored        []domain.ScoredRecord
}

func (r *recordingReports) WriteDistribution(_ context.Context, shares []domain.AnswerShare) error {
	r.distributions++
	return nil
}

func (r *recordingReports) WriteScored(_ context.Context, records []domain.ScoredRecord) error {
	r.scored = records
	return nil
}

type fixture struct {
	service    *app.ScoringService
	history    *memory.HistoryStore
	checkpoint *memory.CheckpointStore
	reports    *recordingReports
}

func newFixture(table domain.RawTable, key domain.TruthKey) fixture {
	f := fixture{
		history:    memory.NewHistoryStore(),
		checkpoint: memory.NewCheckpointStore(),
		reports:    &recordingReports{},
	}
	loader := memory.NewStaticTruthKeyLoader(map[string]domain.TruthKey{"episode": key})
	f.service = app.NewScoringService(app.Stores{
		Responses:  staticSheet{table: table},
		TruthKeys:  memory.NewTruthKeyRepository(loader, time.Minute),
		Checkpoint: f.checkpoint,
		History:    f.history,
		Reports:    f.reports,
	}, app.Settings{TruthKeyID: "episode"}, nil)
	return f
}

func aryaSheet() domain.RawTable {
	return domain.RawTable{
		Header: []string{"Name", "Team", "Iron Bank", "Split", "Who kills the Night King? (5 points)"},
		Rows: [][]string{
			{"Ann", "A", "Gold", "x", "Arya Stark"},
			{"Bob", "B", "Gold", "y", "arya stark"},
		},
	}
}

func aryaKey() domain.TruthKey {
	return domain.TruthKey{"Q00": {Number: "Q00", CorrectAnswer: "Arya Stark", Points: 5, Include: true}}
}

func TestRunScoresFirstPeriod(t *testing.T) {
	f := newFixture(aryaSheet(), aryaKey())
	ctx := context.Background()

	result, err := f.service.Run(ctx, app.RunOptions{Period: 1})
	require.NoError(t, err)

	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, []domain.LeaderboardEntry{
		{Team: "A", PayType: "Gold", Rank: 1, Score: 5},
		{Team: "B", PayType: "Gold", Rank: 2, Score: 0},
	}, result.Leaderboard.Entries)

	saved, err := f.history.LoadHistory(ctx)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"A", "Gold", "1", "5"}, {"B", "Gold", "2", "0"}}, saved.Rows)

	questions, records, err := f.checkpoint.LoadCheckpoint(ctx)
	require.NoError(t, err)
	assert.Len(t, questions, 1)
	assert.Len(t, records, 2)
	assert.Equal(t, 1, f.reports.distributions)
	assert.Len(t, f.reports.scored, 2)
}

func TestRunLaterPeriodUsesCheckpoint(t *testing.T) {
	f := newFixture(aryaSheet(), aryaKey())
	ctx := context.Background()
	_, err := f.service.Run(ctx, app.RunOptions{Period: 1})
	require.NoError(t, err)

	result, err := f.service.Run(ctx, app.RunOptions{Period: 2})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Team", "Iron Bank", "Episode 2 Rank", "Movement from Previous Episode", "Episode 2 Score",
		"Episode 1 Rank", "Episode 1 Score",
	}, result.History.Columns)
	assert.Equal(t, []string{"A", "Gold", "1", "0", "5", "1", "5"}, result.History.Rows[0])
	assert.Equal(t, 1, f.reports.distributions, "distribution is only written for the first period")
}

func TestRunLaterPeriodWithoutCheckpoint(t *testing.T) {
	f := newFixture(aryaSheet(), aryaKey())
	_, err := f.service.Run(context.Background(), app.RunOptions{Period: 2})
	assert.ErrorIs(t, err, domain.ErrCheckpointNotFound)
}

func TestRunPublishesNothingOnFailure(t *testing.T) {
	f := newFixture(aryaSheet(), domain.TruthKey{
		"Q03": {Number: "Q03", CorrectAnswer: "Bran", Points: 1, Include: true},
	})
	ctx := context.Background()

	_, err := f.service.Run(ctx, app.RunOptions{Period: 1})
	require.Error(t, err)
	assert.True(t, app.IsInputError(err))
	assert.True(t, errors.Is(err, domain.ErrJoin))

	_, err = f.history.LoadHistory(ctx)
	assert.ErrorIs(t, err, domain.ErrHistoryNotFound)
	_, _, err = f.checkpoint.LoadCheckpoint(ctx)
	assert.ErrorIs(t, err, domain.ErrCheckpointNotFound)
	assert.Zero(t, f.reports.distributions)
}

func TestRunRejectsInvalidPeriod(t *testing.T) {
	f := newFixture(aryaSheet(), aryaKey())
	_, err := f.service.Run(context.Background(), app.RunOptions{Period: 0})
	assert.ErrorIs(t, err, domain.ErrInvalidPeriod)
}

func TestRunSurfacesParseErrors(t *testing.T) {
	sheet := aryaSheet()
	sheet.Header[4] = "Who kills the Night King? (five points)"
	f := newFixture(sheet, aryaKey())

	_, err := f.service.Run(context.Background(), app.RunOptions{Period: 1})
	assert.ErrorIs(t, err, domain.ErrParse)
	assert.True(t, app.IsInputError(err))
}

func TestQuestions(t *testing.T) {
	f := newFixture(aryaSheet(), aryaKey())
	questions, err := f.service.Questions(context.Background())
	require.NoError(t, err)
	require.Len(t, questions, 1)
	assert.Equal(t, 5, questions[0].Points)
}
