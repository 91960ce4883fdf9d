package app_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"survey-scoring/internal/app"
	"survey-scoring/internal/domain"
)

func sheet(rows ...[]string) domain.RawTable {
	return domain.RawTable{
		Header: []string{"Name", "Team", "Iron Bank", "Split", "Who dies first? (5 points)", "Who rules and who is Hand? (4 points)"},
		Rows:   rows,
	}
}

func parseSheet(t *testing.T, table domain.RawTable) []domain.Question {
	t.Helper()
	questions, err := app.ParseQuestions(table.Header[app.MetadataColumns:])
	require.NoError(t, err)
	return questions
}

func TestReshapeResponsesMeltsSheet(t *testing.T) {
	table := sheet(
		[]string{"Ann", "Wolves", "Gold", "A", "Jon", "Bran"},
		[]string{"Bob", "Lions", "Silver", "B", "Cersei", ""},
	)
	records, err := app.ReshapeResponses(table, parseSheet(t, table), nil)
	require.NoError(t, err)

	assert.Equal(t, []domain.AnswerRecord{
		{Team: "Wolves", PayType: "Gold", QuestionNumber: "Q00", Answer: "Jon"},
		{Team: "Lions", PayType: "Silver", QuestionNumber: "Q00", Answer: "Cersei"},
		{Team: "Wolves", PayType: "Gold", QuestionNumber: "Q01", Answer: "Bran"},
		{Team: "Lions", PayType: "Silver", QuestionNumber: "Q01", Answer: ""},
	}, records)
}

func TestReshapeResponsesSplitsCompound(t *testing.T) {
	table := sheet(
		[]string{"Ann", "Wolves", "Gold", "A", "Jon", " Bran . Tyrion "},
		[]string{"Bob", "Lions", "Silver", "B", "Cersei", "Daenerys"},
	)
	compound := []domain.CompoundQuestion{{Number: "Q01", Separator: ".", PartNumbers: []string{"Q01", "Q02"}}}
	records, err := app.ReshapeResponses(table, parseSheet(t, table), compound)
	require.NoError(t, err)
	require.Len(t, records, 6)

	parts := records[2:]
	assert.Equal(t, domain.AnswerRecord{Team: "Wolves", PayType: "Gold", QuestionNumber: "Q01", Part: 1, Answer: "Bran"}, parts[0])
	assert.Equal(t, domain.AnswerRecord{Team: "Wolves", PayType: "Gold", QuestionNumber: "Q02", Part: 2, Answer: "Tyrion"}, parts[1])
	// No separator: the second part is present but blank.
	assert.Equal(t, domain.AnswerRecord{Team: "Lions", PayType: "Silver", QuestionNumber: "Q01", Part: 1, Answer: "Daenerys"}, parts[2])
	assert.Equal(t, domain.AnswerRecord{Team: "Lions", PayType: "Silver", QuestionNumber: "Q02", Part: 2, Answer: ""}, parts[3])
}

func TestSplitFragmentsConservesPrefix(t *testing.T) {
	for _, answer := range []string{"Bran.Tyrion", "Bran . Tyrion", "Bran.Tyrion.Sansa", "a.", ".b"} {
		first, second := app.SplitFragments(answer, ".")
		require.True(t, second.Valid, answer)
		pieces := strings.Split(answer, ".")
		assert.Equal(t, strings.TrimSpace(pieces[0]), first)
		assert.Equal(t, strings.TrimSpace(pieces[1]), second.Value)
	}

	first, second := app.SplitFragments("Bran", "")
	assert.Equal(t, "Bran", first)
	assert.False(t, second.Valid)
}

func TestReshapeResponsesRejectsInconsistentInput(t *testing.T) {
	table := sheet([]string{"Ann", "Wolves", "Gold", "A", "Jon", "Bran"})
	questions := parseSheet(t, table)

	_, err := app.ReshapeResponses(table, questions[:1], nil)
	assert.Error(t, err)

	_, err = app.ReshapeResponses(table, questions, []domain.CompoundQuestion{{Number: "Q09"}})
	assert.Error(t, err)

	_, err = app.ReshapeResponses(domain.RawTable{Header: []string{"Name", "Team"}}, nil, nil)
	assert.Error(t, err)
}

func TestRosterKeepsFirstSeenOrder(t *testing.T) {
	records := []domain.AnswerRecord{
		{Team: "Wolves", PayType: "Gold"},
		{Team: "Lions", PayType: "Silver"},
		{Team: "Wolves", PayType: "Gold"},
		{Team: "Wolves", PayType: "Silver"},
	}
	assert.Equal(t, []domain.TeamKey{
		{Team: "Wolves", PayType: "Gold"},
		{Team: "Lions", PayType: "Silver"},
		{Team: "Wolves", PayType: "Silver"},
	}, app.Roster(records))
}
