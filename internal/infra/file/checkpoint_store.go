package file

import (
	"context"
	"os"
	"strconv"

	"github.com/pkg/errors"

	"survey-scoring/internal/domain"
)

var (
	structureHeader  = []string{"question_number", "header", "question", "points", "character_tag"}
	checkpointHeader = []string{"team", "pay_type", "question_number", "part", "answer"}
)

// CheckpointStore persists the answer structure and the normalized
// long-form responses as two CSV files.
type CheckpointStore struct {
	structurePath string
	responsesPath string
}

func NewCheckpointStore(structurePath, responsesPath string) *CheckpointStore {
	return &CheckpointStore{structurePath: structurePath, responsesPath: responsesPath}
}

func (s *CheckpointStore) SaveCheckpoint(_ context.Context, questions []domain.Question, records []domain.AnswerRecord) error {
	qrows := make([][]string, 0, len(questions))
	for _, q := range questions {
		qrows = append(qrows, []string{q.Number, q.Header, q.Text, strconv.Itoa(q.Points), q.CharacterTag})
	}
	rrows := make([][]string, 0, len(records))
	for _, r := range records {
		rrows = append(rrows, []string{r.Team, r.PayType, r.QuestionNumber, strconv.Itoa(r.Part), r.Answer})
	}
	if err := writeCSV(s.structurePath, structureHeader, qrows); err != nil {
		return err
	}
	return writeCSV(s.responsesPath, checkpointHeader, rrows)
}

func (s *CheckpointStore) LoadCheckpoint(_ context.Context) ([]domain.Question, []domain.AnswerRecord, error) {
	for _, p := range []string{s.structurePath, s.responsesPath} {
		if _, err := os.Stat(p); os.IsNotExist(err) {
			return nil, nil, errors.Wrap(domain.ErrCheckpointNotFound, p)
		}
	}

	header, rows, err := readCSV(s.structurePath)
	if err != nil {
		return nil, nil, err
	}
	cols := indexColumns(header)
	questions := make([]domain.Question, 0, len(rows))
	for n, row := range rows {
		points, err := parseInt(field(row, colOf(cols, "points")))
		if err != nil {
			return nil, nil, errors.Wrapf(err, "%s row %d", s.structurePath, n+1)
		}
		questions = append(questions, domain.Question{
			Number:       field(row, colOf(cols, "question_number")),
			Header:       field(row, colOf(cols, "header")),
			Text:         field(row, colOf(cols, "question")),
			Points:       points,
			CharacterTag: field(row, colOf(cols, "character_tag")),
		})
	}

	header, rows, err = readCSV(s.responsesPath)
	if err != nil {
		return nil, nil, err
	}
	cols = indexColumns(header)
	records := make([]domain.AnswerRecord, 0, len(rows))
	for n, row := range rows {
		part, err := parseInt(field(row, colOf(cols, "part")))
		if err != nil {
			return nil, nil, errors.Wrapf(err, "%s row %d", s.responsesPath, n+1)
		}
		records = append(records, domain.AnswerRecord{
			Team:           field(row, colOf(cols, "team")),
			PayType:        field(row, colOf(cols, "pay_type")),
			QuestionNumber: field(row, colOf(cols, "question_number")),
			Part:           part,
			Answer:         field(row, colOf(cols, "answer")),
		})
	}
	return questions, records, nil
}

func colOf(cols map[string]int, name string) int {
	if i, ok := cols[name]; ok {
		return i
	}
	return -1
}
