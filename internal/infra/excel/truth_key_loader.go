package excel

import (
	"context"
	"os"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"survey-scoring/internal/domain"
	"survey-scoring/internal/infra/file"
)

// TruthKeyLoader reads the truth key from a workbook; the key ID is the file
// path. The sheet must carry the same header row as the CSV key.
type TruthKeyLoader struct {
	sheet string
}

// NewTruthKeyLoader reads the named sheet, or the first sheet when sheet is empty.
func NewTruthKeyLoader(sheet string) *TruthKeyLoader {
	return &TruthKeyLoader{sheet: sheet}
}

func (l *TruthKeyLoader) LoadTruthKey(_ context.Context, path string) (domain.TruthKey, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, errors.Wrap(domain.ErrTruthKeyNotFound, path)
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open workbook %s", path)
	}
	defer f.Close()

	sheet := l.sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.Errorf("workbook %s has no sheets", path)
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.Wrapf(err, "read sheet %q", sheet)
	}
	if len(rows) == 0 {
		return nil, errors.Errorf("sheet %q is empty", sheet)
	}
	return file.ParseTruthRows(rows[0], rows[1:])
}
