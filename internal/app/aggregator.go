package app

import (
	"sort"

	"survey-scoring/internal/domain"
)

// Aggregate sums scores per team and ranks teams for the period. Teams in
// roster without any included record are listed with a zero score.
//
// Ties take the highest ordinal of the tied block: a team's rank is the
// number of teams scoring at least as much as it did.
func Aggregate(period int, scored []domain.ScoredRecord, roster []domain.TeamKey) domain.Leaderboard {
	totals := make(map[domain.TeamKey]int, len(roster))
	for _, k := range roster {
		totals[k] = 0
	}
	for _, r := range scored {
		totals[r.Key()] += r.Score
	}

	entries := make([]domain.LeaderboardEntry, 0, len(totals))
	for k, score := range totals {
		entries = append(entries, domain.LeaderboardEntry{Team: k.Team, PayType: k.PayType, Score: score})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		if entries[i].Team != entries[j].Team {
			return entries[i].Team < entries[j].Team
		}
		return entries[i].PayType < entries[j].PayType
	})

	// Entries are sorted descending, so the rank of a tied block is the
	// position of its last member.
	for i := 0; i < len(entries); {
		j := i
		for j+1 < len(entries) && entries[j+1].Score == entries[i].Score {
			j++
		}
		for k := i; k <= j; k++ {
			entries[k].Rank = j + 1
		}
		i = j + 1
	}

	return domain.Leaderboard{Period: period, Entries: entries}
}
