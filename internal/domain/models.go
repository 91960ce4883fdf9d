package domain

import (
	"fmt"
	"sort"
)

// Question is one questionnaire item decoded from a raw column header.
type Question struct {
	Number       string `json:"questionNumber"`
	Header       string `json:"header"`
	Text         string `json:"question"`
	Points       int    `json:"points"`
	CharacterTag string `json:"characterTag,omitempty"`
}

// TruthAnswer is one row of the ground-truth key, joined to Question by Number.
type TruthAnswer struct {
	Number          string `json:"questionNumber" yaml:"question_number"`
	CorrectAnswer   string `json:"correctAnswer" yaml:"correct_answer"`
	Points          int    `json:"points" yaml:"points"`
	Include         bool   `json:"include" yaml:"include"`
	MultipleAnswers bool   `json:"multipleAnswers" yaml:"multiple_answers"`
}

// TruthKey indexes truth answers by question number.
type TruthKey map[string]TruthAnswer

// NewTruthKey builds a key from rows, rejecting duplicate question numbers.
func NewTruthKey(rows []TruthAnswer) (TruthKey, error) {
	key := make(TruthKey, len(rows))
	for _, row := range rows {
		if _, dup := key[row.Number]; dup {
			return nil, fmt.Errorf("duplicate truth key entry for %s", row.Number)
		}
		key[row.Number] = row
	}
	return key, nil
}

// Rows returns the entries ordered by question number.
func (k TruthKey) Rows() []TruthAnswer {
	rows := make([]TruthAnswer, 0, len(k))
	for _, row := range k {
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Number < rows[j].Number })
	return rows
}

// AnswerRecord is one team's answer to one question after reshaping.
// Part is 0 for ordinary questions and 1 or 2 for compound fragments.
type AnswerRecord struct {
	Team           string `json:"team"`
	PayType        string `json:"payType"`
	QuestionNumber string `json:"questionNumber"`
	Part           int    `json:"part,omitempty"`
	Answer         string `json:"answer"`
}

// Key returns the grouping key of the record.
func (r AnswerRecord) Key() TeamKey {
	return TeamKey{Team: r.Team, PayType: r.PayType}
}

// OptionalFragment is a compound answer piece that may be absent.
type OptionalFragment struct {
	Value string
	Valid bool
}

// ScoredRecord is an AnswerRecord after the truth join and matching decision.
type ScoredRecord struct {
	AnswerRecord
	Points  int  `json:"points"`
	Correct bool `json:"correct"`
	Score   int  `json:"score"`
}

// TeamKey identifies a team row; pay type is assumed constant per team.
type TeamKey struct {
	Team    string
	PayType string
}

// LeaderboardEntry is one team's total for a period.
type LeaderboardEntry struct {
	Team    string `json:"team"`
	PayType string `json:"payType"`
	Rank    int    `json:"rank"`
	Score   int    `json:"score"`
}

// Leaderboard captures the ranked totals of a single period.
type Leaderboard struct {
	Period  int                `json:"period"`
	Entries []LeaderboardEntry `json:"entries"`
}

// Table renders the leaderboard with presentation column names.
func (lb Leaderboard) Table(labels Labels) PeriodHistory {
	table := PeriodHistory{
		Columns: []string{labels.Team, labels.PayType, labels.RankColumn(lb.Period), labels.ScoreColumn(lb.Period)},
		Rows:    make([][]string, 0, len(lb.Entries)),
	}
	for _, e := range lb.Entries {
		table.Rows = append(table.Rows, []string{e.Team, e.PayType, fmt.Sprint(e.Rank), fmt.Sprint(e.Score)})
	}
	return table
}

// PeriodHistory is the accumulating cross-period results table. Historical
// cells are kept as text so earlier periods round-trip unchanged.
type PeriodHistory struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// ColumnIndex returns the position of name or -1.
func (h PeriodHistory) ColumnIndex(name string) int {
	for i, c := range h.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// IsEmpty reports whether the history has no columns.
func (h PeriodHistory) IsEmpty() bool {
	return len(h.Columns) == 0
}

// Labels holds the presentation names of output columns.
type Labels struct {
	Team     string `yaml:"team"`
	PayType  string `yaml:"pay_type"`
	Period   string `yaml:"period"`
	Movement string `yaml:"movement"`
}

// DefaultLabels mirrors the published results sheet.
func DefaultLabels() Labels {
	return Labels{
		Team:     "Team",
		PayType:  "Iron Bank",
		Period:   "Episode",
		Movement: "Movement from Previous Episode",
	}
}

func (l Labels) ScoreColumn(period int) string {
	return fmt.Sprintf("%s %d Score", l.Period, period)
}

func (l Labels) RankColumn(period int) string {
	return fmt.Sprintf("%s %d Rank", l.Period, period)
}

// CompoundQuestion declares a question whose single answer holds two scorable parts.
type CompoundQuestion struct {
	Number      string   `yaml:"number"`
	Separator   string   `yaml:"separator"`
	PartNumbers []string `yaml:"part_numbers"`
}

// PartNumber returns the truth key number for part 1 or 2, defaulting to Number.
func (c CompoundQuestion) PartNumber(part int) string {
	if part >= 1 && part <= len(c.PartNumbers) && c.PartNumbers[part-1] != "" {
		return c.PartNumbers[part-1]
	}
	return c.Number
}

// RawTable is the wide response sheet: one row per respondent.
type RawTable struct {
	Header []string
	Rows   [][]string
}

// AnswerShare is the fraction of respondents giving one answer to a question.
type AnswerShare struct {
	QuestionNumber string  `json:"questionNumber"`
	Question       string  `json:"question"`
	Answer         string  `json:"answer"`
	Count          int     `json:"count"`
	Share          float64 `json:"share"`
}
