package app

import (
	"fmt"
	"strings"

	"survey-scoring/internal/domain"
)

// Metadata column positions in the raw response sheet.
const (
	colIdentity = iota
	colTeam
	colPayType
	colSplitType
)

// DefaultCompoundSeparator splits the two parts of a compound answer.
const DefaultCompoundSeparator = "."

// ReshapeResponses melts the wide sheet (one row per respondent) into one
// record per (respondent, question). Identity and split type are dropped;
// compound questions yield two records per respondent.
func ReshapeResponses(table domain.RawTable, questions []domain.Question, compound []domain.CompoundQuestion) ([]domain.AnswerRecord, error) {
	if len(table.Header) < MetadataColumns {
		return nil, fmt.Errorf("response sheet has %d columns, need at least %d metadata columns", len(table.Header), MetadataColumns)
	}
	if got := len(table.Header) - MetadataColumns; got != len(questions) {
		return nil, fmt.Errorf("response sheet has %d question columns but %d questions were parsed", got, len(questions))
	}

	known := make(map[string]struct{}, len(questions))
	for _, q := range questions {
		known[q.Number] = struct{}{}
	}
	splits := make(map[string]domain.CompoundQuestion, len(compound))
	for _, c := range compound {
		if _, ok := known[c.Number]; !ok {
			return nil, fmt.Errorf("compound question %s is not in the questionnaire", c.Number)
		}
		splits[c.Number] = c
	}

	records := make([]domain.AnswerRecord, 0, len(table.Rows)*len(questions))
	for i, q := range questions {
		col := MetadataColumns + i
		c, isCompound := splits[q.Number]
		for _, row := range table.Rows {
			base := domain.AnswerRecord{
				Team:           cell(row, colTeam),
				PayType:        cell(row, colPayType),
				QuestionNumber: q.Number,
				Answer:         cell(row, col),
			}
			if !isCompound {
				records = append(records, base)
				continue
			}
			records = append(records, splitCompound(base, c)...)
		}
	}
	return records, nil
}

// splitCompound turns one compound answer into its two part records.
func splitCompound(record domain.AnswerRecord, c domain.CompoundQuestion) []domain.AnswerRecord {
	first, second := SplitFragments(record.Answer, c.Separator)

	one := record
	one.QuestionNumber = c.PartNumber(1)
	one.Part = 1
	one.Answer = first

	two := record
	two.QuestionNumber = c.PartNumber(2)
	two.Part = 2
	// An absent second fragment is carried as a blank answer, which never matches.
	two.Answer = ""
	if second.Valid {
		two.Answer = second.Value
	}
	return []domain.AnswerRecord{one, two}
}

// SplitFragments splits answer on sep and returns the first two pieces
// trimmed of surrounding whitespace. Pieces after the second are discarded.
func SplitFragments(answer, sep string) (string, domain.OptionalFragment) {
	if sep == "" {
		sep = DefaultCompoundSeparator
	}
	pieces := strings.Split(answer, sep)
	first := strings.TrimSpace(pieces[0])
	if len(pieces) < 2 {
		return first, domain.OptionalFragment{}
	}
	return first, domain.OptionalFragment{Value: strings.TrimSpace(pieces[1]), Valid: true}
}

// Roster lists the distinct teams in record order.
func Roster(records []domain.AnswerRecord) []domain.TeamKey {
	seen := make(map[domain.TeamKey]struct{})
	teams := make([]domain.TeamKey, 0)
	for _, r := range records {
		k := r.Key()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		teams = append(teams, k)
	}
	return teams
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}
