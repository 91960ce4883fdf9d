package file

import (
	"context"

	"github.com/pkg/errors"

	"survey-scoring/internal/domain"
)

// ResponseReader loads the raw form export. Columns named in drop (such as
// the form's Timestamp) are removed before the sheet reaches the scorer.
type ResponseReader struct {
	path string
	drop map[string]struct{}
}

func NewResponseReader(path string, dropColumns []string) *ResponseReader {
	drop := make(map[string]struct{}, len(dropColumns))
	for _, c := range dropColumns {
		drop[c] = struct{}{}
	}
	return &ResponseReader{path: path, drop: drop}
}

func (r *ResponseReader) LoadResponses(_ context.Context) (domain.RawTable, error) {
	header, rows, err := readCSV(r.path)
	if err != nil {
		return domain.RawTable{}, errors.Wrap(err, "load responses")
	}

	keep := make([]int, 0, len(header))
	for i, h := range header {
		if _, ok := r.drop[h]; !ok {
			keep = append(keep, i)
		}
	}

	table := domain.RawTable{
		Header: pick(header, keep),
		Rows:   make([][]string, 0, len(rows)),
	}
	for _, row := range rows {
		table.Rows = append(table.Rows, pick(row, keep))
	}
	return table, nil
}

func pick(row []string, keep []int) []string {
	out := make([]string, 0, len(keep))
	for _, i := range keep {
		out = append(out, field(row, i))
	}
	return out
}
