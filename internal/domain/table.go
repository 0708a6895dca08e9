package domain

import "time"

// HoursPerDay is the number of hourly values in one WDC record.
const HoursPerDay = 24

// RawRecord is one decoded WDC line.
type RawRecord struct {
	Line      int
	Code      string
	Component Component
	Century   int
	Year      int // within century
	Month     int
	Day       int
	Base      int
	Hourly    [HoursPerDay]int
	DailyMean *int // nil when the trailing field is blank
}

// FullYear returns century*100 + year.
func (r RawRecord) FullYear() int {
	return r.Century*100 + r.Year
}

// ParsedRow is one record-hour after unpivoting the 24 hourly fields.
type ParsedRow struct {
	Code      string
	Component Component
	Century   int
	Year      int
	Month     int
	Day       int
	Hour      int
	Base      int
	Raw       int
}

// Date returns the calendar day of the row at midnight.
func (r ParsedRow) Date() time.Time {
	return time.Date(r.Century*100+r.Year, time.Month(r.Month), r.Day, 0, 0, 0, 0, time.UTC)
}

// ParsedTable holds the unpivoted rows of one file in file order.
type ParsedTable struct {
	Source string
	Code   string
	Layout string
	Rows   []ParsedRow
}

// TimestampedRow is a ParsedRow with its absolute mid-hour timestamp.
type TimestampedRow struct {
	Time      time.Time
	Code      string
	Component Component
	Base      int
	Raw       int
}

// TimestampedTable is the output of the timestamp reconstructor.
type TimestampedTable struct {
	Code string
	Rows []TimestampedRow
}

// ConvertedRow carries the physical hourly mean of one component.
type ConvertedRow struct {
	Time      time.Time
	Code      string
	Component Component
	Mean      Value
}

// ConvertedTable is the output of the unit converter.
type ConvertedTable struct {
	Code string
	Rows []ConvertedRow
}

// PivotedTable is indexed by unique ascending timestamps with one column per
// component present in the source.
type PivotedTable struct {
	Code    string
	Times   []time.Time
	Columns map[Component][]Value
}

// Has reports whether the component was present in the source.
func (p PivotedTable) Has(c Component) bool {
	_, ok := p.Columns[c]
	return ok
}

// Column returns the values for c, or all-missing values when c is absent.
func (p PivotedTable) Column(c Component) []Value {
	if col, ok := p.Columns[c]; ok {
		return col
	}
	return make([]Value, len(p.Times))
}

// XYZRow is one hour of geographic field components.
type XYZRow struct {
	Time time.Time `json:"time"`
	X    Value     `json:"x"`
	Y    Value     `json:"y"`
	Z    Value     `json:"z"`
}

// XYZTable is the final per-station series, sorted by ascending time.
type XYZTable struct {
	Code string   `json:"code"`
	Rows []XYZRow `json:"rows"`
}

// Len returns the number of hourly rows.
func (t XYZTable) Len() int {
	return len(t.Rows)
}

// Head returns a copy of the table limited to its first n rows.
func (t XYZTable) Head(n int) XYZTable {
	if n > len(t.Rows) {
		n = len(t.Rows)
	}
	if n < 0 {
		n = 0
	}
	rows := make([]XYZRow, n)
	copy(rows, t.Rows[:n])
	return XYZTable{Code: t.Code, Rows: rows}
}

// Span returns the first and last timestamps. ok is false for an empty table.
func (t XYZTable) Span() (first, last time.Time, ok bool) {
	if len(t.Rows) == 0 {
		return time.Time{}, time.Time{}, false
	}
	return t.Rows[0].Time, t.Rows[len(t.Rows)-1].Time, true
}
