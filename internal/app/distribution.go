package app

import (
	"sort"

	"survey-scoring/internal/domain"
)

// AnswerDistribution reports, per question, the share of respondents giving
// each distinct answer. Write-in answers (fuzzy questions and compound
// parts) are normalized first so spelling variants collapse together.
func AnswerDistribution(questions []domain.Question, records []domain.AnswerRecord, key domain.TruthKey) []domain.AnswerShare {
	set := NewQuestionSet(questions)

	type bucket struct {
		question string
		part     int
	}
	counts := make(map[bucket]map[string]int)
	totals := make(map[bucket]int)
	order := make([]bucket, 0)

	for _, r := range records {
		b := bucket{question: r.QuestionNumber, part: r.Part}
		if _, ok := counts[b]; !ok {
			counts[b] = make(map[string]int)
			order = append(order, b)
		}
		answer := r.Answer
		if truth, ok := key[r.QuestionNumber]; (ok && truth.MultipleAnswers) || r.Part > 0 {
			answer = NormalizeAnswer(answer)
		}
		counts[b][answer]++
		totals[b]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		if order[i].question != order[j].question {
			return order[i].question < order[j].question
		}
		return order[i].part < order[j].part
	})

	shares := make([]domain.AnswerShare, 0)
	for _, b := range order {
		text := b.question
		if q, ok := set.Get(b.question); ok {
			text = q.Text
		}
		answers := make([]string, 0, len(counts[b]))
		for a := range counts[b] {
			answers = append(answers, a)
		}
		sort.Slice(answers, func(i, j int) bool {
			ci, cj := counts[b][answers[i]], counts[b][answers[j]]
			if ci != cj {
				return ci > cj
			}
			return answers[i] < answers[j]
		})
		for _, a := range answers {
			shares = append(shares, domain.AnswerShare{
				QuestionNumber: b.question,
				Question:       text,
				Answer:         a,
				Count:          counts[b][a],
				Share:          float64(counts[b][a]) / float64(totals[b]),
			})
		}
	}
	return shares
}
