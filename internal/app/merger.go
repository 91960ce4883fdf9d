package app

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"survey-scoring/internal/domain"
)

// MergePeriods folds the current leaderboard into the previous history.
//
// For period 1 the current table is returned unchanged. Otherwise the
// previous movement column is dropped, the current table is left-joined onto
// the previous history by (team, pay type), and movement is computed as
// current rank minus previous rank, so a negative value is an improvement.
// Teams missing from the current period are not carried over.
func MergePeriods(current domain.Leaderboard, previous domain.PeriodHistory, labels domain.Labels) (domain.PeriodHistory, error) {
	if current.Period < 1 {
		return domain.PeriodHistory{}, domain.ErrInvalidPeriod
	}
	table := current.Table(labels)
	if current.Period == 1 {
		return table, nil
	}

	prev, err := indexHistory(previous, current.Period, labels)
	if err != nil {
		return domain.PeriodHistory{}, err
	}

	// current: team, pay type, rank | movement | score, historical columns...
	columns := make([]string, 0, len(table.Columns)+1+len(prev.columns))
	columns = append(columns, table.Columns[:3]...)
	columns = append(columns, labels.Movement)
	columns = append(columns, table.Columns[3:]...)
	columns = append(columns, prev.columns...)

	type mergedRow struct {
		rank  int
		team  string
		cells []string
	}
	rows := make([]mergedRow, 0, len(current.Entries))
	for i, e := range current.Entries {
		cur := table.Rows[i]
		history, found := prev.rows[domain.TeamKey{Team: e.Team, PayType: e.PayType}]

		movement := ""
		if found {
			movement = strconv.Itoa(e.Rank - history.rank)
		} else {
			history.cells = make([]string, len(prev.columns))
		}

		cells := make([]string, 0, len(columns))
		cells = append(cells, cur[:3]...)
		cells = append(cells, movement)
		cells = append(cells, cur[3:]...)
		cells = append(cells, history.cells...)
		rows = append(rows, mergedRow{rank: e.Rank, team: e.Team, cells: cells})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].rank != rows[j].rank {
			return rows[i].rank < rows[j].rank
		}
		return rows[i].team < rows[j].team
	})

	merged := domain.PeriodHistory{Columns: columns, Rows: make([][]string, 0, len(rows))}
	for _, r := range rows {
		merged.Rows = append(merged.Rows, r.cells)
	}
	return merged, nil
}

type historyRow struct {
	rank  int
	cells []string
}

type historyIndex struct {
	// columns are the historical columns kept after the join keys and the
	// stale movement column are removed.
	columns []string
	rows    map[domain.TeamKey]historyRow
}

func indexHistory(h domain.PeriodHistory, period int, labels domain.Labels) (historyIndex, error) {
	fail := func(reason string, err error) (historyIndex, error) {
		return historyIndex{}, &domain.MergeError{Period: period, Reason: reason, Err: err}
	}

	if h.IsEmpty() {
		return fail("previous history is empty", domain.ErrHistoryNotFound)
	}
	teamCol := h.ColumnIndex(labels.Team)
	payCol := h.ColumnIndex(labels.PayType)
	if teamCol < 0 || payCol < 0 {
		return fail(fmt.Sprintf("previous history lacks join columns %q/%q", labels.Team, labels.PayType), nil)
	}
	prevRankName := labels.RankColumn(period - 1)
	rankCol := h.ColumnIndex(prevRankName)
	if rankCol < 0 {
		return fail(fmt.Sprintf("previous history lacks column %q", prevRankName), nil)
	}
	if h.ColumnIndex(labels.RankColumn(period)) >= 0 {
		return fail(fmt.Sprintf("previous history already has column %q", labels.RankColumn(period)), nil)
	}
	moveCol := h.ColumnIndex(labels.Movement)

	keep := make([]int, 0, len(h.Columns))
	idx := historyIndex{rows: make(map[domain.TeamKey]historyRow, len(h.Rows))}
	for i, c := range h.Columns {
		if i == teamCol || i == payCol || i == moveCol {
			continue
		}
		keep = append(keep, i)
		idx.columns = append(idx.columns, c)
	}

	for n, row := range h.Rows {
		if len(row) != len(h.Columns) {
			return fail(fmt.Sprintf("row %d has %d cells, want %d", n+1, len(row), len(h.Columns)), nil)
		}
		key := domain.TeamKey{Team: row[teamCol], PayType: row[payCol]}
		if _, dup := idx.rows[key]; dup {
			return fail(fmt.Sprintf("duplicate team %q/%q", key.Team, key.PayType), nil)
		}
		rank, err := parseRank(row[rankCol])
		if err != nil {
			return fail(fmt.Sprintf("row %d column %q", n+1, prevRankName), err)
		}
		cells := make([]string, 0, len(keep))
		for _, i := range keep {
			cells = append(cells, row[i])
		}
		idx.rows[key] = historyRow{rank: rank, cells: cells}
	}
	return idx, nil
}

// parseRank accepts integer ranks and the integral floats ("2.0") written
// by older result files.
func parseRank(s string) (int, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid rank %q", s)
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("non-integral rank %q", s)
	}
	return int(f), nil
}
