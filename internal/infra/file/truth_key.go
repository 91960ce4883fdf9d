package file

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"survey-scoring/internal/domain"
)

// Truth key column names shared by CSV and workbook keys.
const (
	ColQuestionNumber  = "question_number"
	ColCorrectAnswer   = "correct_answer"
	ColPoints          = "points"
	ColInclude         = "include"
	ColMultipleAnswers = "multiple_answers"
)

// TruthKeyLoader reads a truth key from a CSV or YAML file; the key ID is the file path.
type TruthKeyLoader struct{}

func NewTruthKeyLoader() *TruthKeyLoader {
	return &TruthKeyLoader{}
}

func (l *TruthKeyLoader) LoadTruthKey(_ context.Context, path string) (domain.TruthKey, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, errors.Wrap(domain.ErrTruthKeyNotFound, path)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return loadYAMLKey(path)
	case ".csv":
		header, rows, err := readCSV(path)
		if err != nil {
			return nil, errors.Wrap(err, "load truth key")
		}
		return ParseTruthRows(header, rows)
	default:
		return nil, errors.Errorf("unsupported truth key format %q", filepath.Ext(path))
	}
}

func loadYAMLKey(path string) (domain.TruthKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "load truth key")
	}
	var rows []domain.TruthAnswer
	if err := yaml.Unmarshal(data, &rows); err != nil {
		return nil, errors.Wrapf(err, "decode %s", path)
	}
	return domain.NewTruthKey(rows)
}

// ParseTruthRows decodes a tabular truth key. Column order is free; the
// question_number and correct_answer columns are required.
func ParseTruthRows(header []string, rows [][]string) (domain.TruthKey, error) {
	cols := indexColumns(header)
	for _, required := range []string{ColQuestionNumber, ColCorrectAnswer} {
		if _, ok := cols[required]; !ok {
			return nil, errors.Errorf("truth key lacks column %q", required)
		}
	}

	answers := make([]domain.TruthAnswer, 0, len(rows))
	for n, row := range rows {
		number := strings.TrimSpace(field(row, colOf(cols, ColQuestionNumber)))
		if number == "" {
			continue
		}
		points, err := parseInt(field(row, colOf(cols, ColPoints)))
		if err != nil {
			return nil, errors.Wrapf(err, "truth key row %d (%s) points", n+1, number)
		}
		include, err := parseBool(field(row, colOf(cols, ColInclude)))
		if err != nil {
			return nil, errors.Wrapf(err, "truth key row %d (%s) include", n+1, number)
		}
		multiple, err := parseBool(field(row, colOf(cols, ColMultipleAnswers)))
		if err != nil {
			return nil, errors.Wrapf(err, "truth key row %d (%s) multiple_answers", n+1, number)
		}
		answers = append(answers, domain.TruthAnswer{
			Number:          number,
			CorrectAnswer:   field(row, colOf(cols, ColCorrectAnswer)),
			Points:          points,
			Include:         include,
			MultipleAnswers: multiple,
		})
	}
	return domain.NewTruthKey(answers)
}

// parseInt accepts blank cells (0) and integral floats written by spreadsheets.
func parseInt(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int(f)) {
		return 0, errors.Errorf("invalid integer %q", s)
	}
	return int(f), nil
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "0", "0.0", "false", "f", "no", "n":
		return false, nil
	case "1", "1.0", "true", "t", "yes", "y":
		return true, nil
	}
	return false, errors.Errorf("invalid boolean %q", s)
}
