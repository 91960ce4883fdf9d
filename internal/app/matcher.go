package app

import (
	"strings"

	"survey-scoring/internal/domain"
)

// punctuation is the ASCII punctuation set removed before fuzzy comparison.
const punctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

// ScoreRecords joins each record to its truth entry and decides correctness.
// Records of excluded questions are dropped; the input is never modified.
func ScoreRecords(records []domain.AnswerRecord, key domain.TruthKey) ([]domain.ScoredRecord, error) {
	scored := make([]domain.ScoredRecord, 0, len(records))
	for _, r := range records {
		truth, ok := key[r.QuestionNumber]
		if !ok {
			return nil, &domain.JoinError{QuestionNumber: r.QuestionNumber, Reason: "no truth key entry"}
		}
		if !truth.Include {
			continue
		}
		scored = append(scored, scoreRecord(r, truth))
	}
	return scored, nil
}

func scoreRecord(r domain.AnswerRecord, truth domain.TruthAnswer) domain.ScoredRecord {
	correct := IsCorrect(r.Answer, truth)
	score := 0
	if correct {
		score = truth.Points
	}
	return domain.ScoredRecord{
		AnswerRecord: r,
		Points:       truth.Points,
		Correct:      correct,
		Score:        score,
	}
}

// IsCorrect applies exact matching, or fuzzy matching when the question
// accepts multiple answers. Fuzzy matching checks that the normalized answer
// is contained in the normalized truth string, never the reverse.
func IsCorrect(answer string, truth domain.TruthAnswer) bool {
	if strings.TrimSpace(answer) == "" {
		return false
	}
	if !truth.MultipleAnswers {
		return answer == truth.CorrectAnswer
	}
	needle := NormalizeAnswer(answer)
	if needle == "" {
		return false
	}
	return strings.Contains(NormalizeAnswer(truth.CorrectAnswer), needle)
}

// NormalizeAnswer lower-cases s and strips ASCII punctuation.
func NormalizeAnswer(s string) string {
	s = strings.ToLower(s)
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(punctuation, r) {
			return -1
		}
		return r
	}, s)
}

// ValidateTruthKey checks that the key covers every parsed question and
// every compound part, and that no included entry points at an unknown
// question.
func ValidateTruthKey(questions []domain.Question, key domain.TruthKey, compound []domain.CompoundQuestion) error {
	known := make(map[string]struct{}, len(questions))
	for _, q := range questions {
		known[q.Number] = struct{}{}
	}
	for _, c := range compound {
		for part := 1; part <= 2; part++ {
			known[c.PartNumber(part)] = struct{}{}
		}
	}

	for _, q := range questions {
		if _, ok := key[q.Number]; !ok {
			return &domain.JoinError{QuestionNumber: q.Number, Reason: "parsed question missing from truth key"}
		}
	}
	for _, c := range compound {
		for part := 1; part <= 2; part++ {
			if _, ok := key[c.PartNumber(part)]; !ok {
				return &domain.JoinError{QuestionNumber: c.PartNumber(part), Reason: "compound part missing from truth key"}
			}
		}
	}
	for _, row := range key.Rows() {
		if _, ok := known[row.Number]; !ok && row.Include {
			return &domain.JoinError{QuestionNumber: row.Number, Reason: "included truth entry has no matching question"}
		}
	}
	return nil
}
