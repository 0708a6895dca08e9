package domain

import (
	"slices"
	"time"
)

// Pivot reshapes converted rows into one column per component, indexed by
// unique ascending timestamps. Every timestamp seen in the source appears
// once; cells never filled stay missing. Two rows for the same component and
// timestamp are a consistency error.
func Pivot(ct ConvertedTable) (PivotedTable, error) {
	index := make(map[time.Time]int)
	var times []time.Time
	for _, r := range ct.Rows {
		if _, ok := index[r.Time]; !ok {
			index[r.Time] = len(times)
			times = append(times, r.Time)
		}
	}

	// Re-index after sorting so column positions follow time order.
	slices.SortFunc(times, func(a, b time.Time) int { return a.Compare(b) })
	for i, t := range times {
		index[t] = i
	}

	columns := make(map[Component][]Value)
	seen := make(map[Component][]bool)
	for _, r := range ct.Rows {
		col, ok := columns[r.Component]
		if !ok {
			col = make([]Value, len(times))
			columns[r.Component] = col
			seen[r.Component] = make([]bool, len(times))
		}
		i := index[r.Time]
		if seen[r.Component][i] {
			return PivotedTable{}, &ConsistencyError{
				Kind:      ConflictDuplicateTimestamp,
				Code:      ct.Code,
				Component: r.Component,
				Time:      r.Time,
			}
		}
		seen[r.Component][i] = true
		col[i] = r.Mean
	}

	return PivotedTable{Code: ct.Code, Times: times, Columns: columns}, nil
}
