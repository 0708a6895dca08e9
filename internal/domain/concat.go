package domain

import "slices"

// Concat appends the series of several files from one station into a single
// series sorted by ascending time. Tables are not modified. Overlapping
// timestamps and differing station codes are reported, never merged.
func Concat(tables ...XYZTable) (XYZTable, error) {
	var (
		code string
		n    int
	)
	for _, t := range tables {
		if t.Code == "" {
			continue
		}
		if code == "" {
			code = t.Code
		} else if t.Code != code {
			return XYZTable{}, &ConsistencyError{Kind: ConflictStationMismatch, Code: code, Other: t.Code}
		}
		n += len(t.Rows)
	}

	rows := make([]XYZRow, 0, n)
	for _, t := range tables {
		rows = append(rows, t.Rows...)
	}
	slices.SortStableFunc(rows, func(a, b XYZRow) int { return a.Time.Compare(b.Time) })

	for i := 1; i < len(rows); i++ {
		if rows[i].Time.Equal(rows[i-1].Time) {
			return XYZTable{}, &ConsistencyError{Kind: ConflictDuplicateTimestamp, Code: code, Time: rows[i].Time}
		}
	}
	return XYZTable{Code: code, Rows: rows}, nil
}

// Append is Concat for the common two-table case.
func Append(dst, src XYZTable) (XYZTable, error) {
	return Concat(dst, src)
}
