package excel

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"survey-scoring/internal/domain"
)

func TestTruthKeyLoaderReadsFirstSheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "correct_answers.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]interface{}{
		{"question_number", "correct_answer", "points", "include", "multiple_answers"},
		{"Q00", "Arya Stark", 5, true, false},
		{"Q01", "jon snow,daenerys targaryen", 3, 1, 1},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
	_ = f.Close()

	key, err := NewTruthKeyLoader("").LoadTruthKey(context.Background(), path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := key["Q00"]; got.CorrectAnswer != "Arya Stark" || got.Points != 5 || !got.Include || got.MultipleAnswers {
		t.Fatalf("unexpected Q00 %+v", got)
	}
	if got := key["Q01"]; !got.MultipleAnswers || got.Points != 3 {
		t.Fatalf("unexpected Q01 %+v", got)
	}
}

func TestTruthKeyLoaderMissingFile(t *testing.T) {
	_, err := NewTruthKeyLoader("").LoadTruthKey(context.Background(), filepath.Join(t.TempDir(), "nope.xlsx"))
	if !errors.Is(err, domain.ErrTruthKeyNotFound) {
		t.Fatalf("expected ErrTruthKeyNotFound, got %v", err)
	}
}
