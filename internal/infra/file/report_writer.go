package file

import (
	"context"
	"sort"
	"strconv"

	"survey-scoring/internal/domain"
)

// ReportWriter writes the answer distribution and the unaggregated scored
// records. An empty path disables that report.
type ReportWriter struct {
	distributionPath string
	scoredPath       string
}

func NewReportWriter(distributionPath, scoredPath string) *ReportWriter {
	return &ReportWriter{distributionPath: distributionPath, scoredPath: scoredPath}
}

func (w *ReportWriter) WriteDistribution(_ context.Context, shares []domain.AnswerShare) error {
	if w.distributionPath == "" {
		return nil
	}
	rows := make([][]string, 0, len(shares))
	for _, s := range shares {
		rows = append(rows, []string{
			s.QuestionNumber,
			s.Question,
			s.Answer,
			strconv.Itoa(s.Count),
			strconv.FormatFloat(s.Share*100, 'f', 1, 64),
		})
	}
	return writeCSV(w.distributionPath, []string{"question_number", "question", "answer", "count", "percent"}, rows)
}

func (w *ReportWriter) WriteScored(_ context.Context, records []domain.ScoredRecord) error {
	if w.scoredPath == "" {
		return nil
	}
	sorted := append([]domain.ScoredRecord(nil), records...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].QuestionNumber != sorted[j].QuestionNumber {
			return sorted[i].QuestionNumber < sorted[j].QuestionNumber
		}
		return sorted[i].Team < sorted[j].Team
	})

	rows := make([][]string, 0, len(sorted))
	for _, r := range sorted {
		rows = append(rows, []string{
			r.Team,
			r.PayType,
			r.QuestionNumber,
			strconv.Itoa(r.Part),
			r.Answer,
			strconv.Itoa(r.Points),
			strconv.FormatBool(r.Correct),
			strconv.Itoa(r.Score),
		})
	}
	header := []string{"team", "pay_type", "question_number", "part", "answer", "points", "correct", "score"}
	return writeCSV(w.scoredPath, header, rows)
}
