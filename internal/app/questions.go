package app

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"survey-scoring/internal/domain"
)

// MetadataColumns is the number of fixed leading columns of the response
// sheet: identity, team, pay type and split type.
const MetadataColumns = 4

// QuestionNumber formats the ordinal token for a zero-based column position.
func QuestionNumber(position int) string {
	return fmt.Sprintf("Q%02d", position)
}

// ParseQuestions decodes questionnaire headers of the form
// "<text>(<points> <unit...>) [<tag>]" in column order.
func ParseQuestions(headers []string) ([]domain.Question, error) {
	questions := make([]domain.Question, 0, len(headers))
	for i, header := range headers {
		q, err := parseQuestion(i, header)
		if err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, nil
}

func parseQuestion(position int, header string) (domain.Question, error) {
	q := domain.Question{
		Number: QuestionNumber(position),
		Header: header,
	}

	text, clause, hasClause := strings.Cut(header, "(")
	if before, _, found := strings.Cut(text, "["); found {
		text = before
	}
	q.Text = strings.TrimSpace(text)

	if hasClause {
		token, _, _ := strings.Cut(clause, " ")
		points, err := strconv.Atoi(strings.TrimSuffix(token, ")"))
		if err != nil || points < 0 {
			return domain.Question{}, &domain.ParseError{Column: position, Header: header, Token: token}
		}
		q.Points = points
	}

	// The tag runs verbatim from the first '[' to the end of the header.
	if idx := strings.Index(header, "["); idx >= 0 {
		q.CharacterTag = header[idx:]
		q.Text = q.Text + " " + q.CharacterTag
	}
	return q, nil
}

// QuestionSet indexes parsed questions by number.
type QuestionSet struct {
	questions []domain.Question
	byNumber  map[string]int
}

func NewQuestionSet(questions []domain.Question) QuestionSet {
	sorted := append([]domain.Question(nil), questions...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Number < sorted[j].Number })

	byNumber := make(map[string]int, len(sorted))
	for i, q := range sorted {
		byNumber[q.Number] = i
	}
	return QuestionSet{questions: sorted, byNumber: byNumber}
}

// Get returns the question with the given number.
func (s QuestionSet) Get(number string) (domain.Question, bool) {
	i, ok := s.byNumber[number]
	if !ok {
		return domain.Question{}, false
	}
	return s.questions[i], true
}

// Questions returns the questions sorted by number.
func (s QuestionSet) Questions() []domain.Question {
	return append([]domain.Question(nil), s.questions...)
}

func (s QuestionSet) Len() int { return len(s.questions) }
