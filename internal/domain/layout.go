package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Line widths accepted by the decoder. Lines between the two are padded: the
// only field allowed to be cut off is the optional daily mean.
const (
	RecordWidth    = 120
	MinRecordWidth = 116
)

// legacyCentury is implied by files that leave the century columns blank.
const legacyCentury = 19

// span is a zero-based half-open column range.
type span struct{ start, end int }

var (
	colCode      = span{0, 3}
	colYear      = span{3, 5}
	colMonth     = span{5, 7}
	colComponent = span{7, 8}
	colDay       = span{8, 10}
	colCentury   = span{14, 16}
	colBase      = span{16, 20}
	colHourly    = span{20, 116}
	colDailyMean = span{116, 120}
)

const hourlyWidth = 4

func (s span) of(line string) string { return line[s.start:s.end] }

// fieldError is a decode failure before file and line are known.
type fieldError struct {
	field  string
	reason string
}

func (e *fieldError) Error() string {
	if e.field == "" {
		return e.reason
	}
	return e.field + ": " + e.reason
}

// Layout decodes one padded WDC line. Implementations differ only in how the
// century is carried; all produce the same RawRecord shape.
type Layout interface {
	Name() string
	// Match reports whether the line belongs to this layout.
	Match(line string) bool
	Decode(line string) (RawRecord, error)
	// Encode renders a record as a RecordWidth line.
	Encode(rec RawRecord) string
}

// CenturyLayout is the current WDC layout with explicit century digits in
// columns 15-16.
type CenturyLayout struct{}

func (CenturyLayout) Name() string { return "century" }

func (CenturyLayout) Match(line string) bool {
	return isDigits(colCentury.of(line))
}

func (CenturyLayout) Decode(line string) (RawRecord, error) {
	century, err := intField(line, colCentury, "century")
	if err != nil {
		return RawRecord{}, err
	}
	return decodeCommon(line, century)
}

func (CenturyLayout) Encode(rec RawRecord) string {
	return encodeCommon(rec, fmt.Sprintf("%02d", rec.Century))
}

// LegacyLayout is the older layout that leaves columns 15-16 blank and
// implies the twentieth century.
type LegacyLayout struct{}

func (LegacyLayout) Name() string { return "legacy" }

func (LegacyLayout) Match(line string) bool {
	return strings.TrimSpace(colCentury.of(line)) == ""
}

func (LegacyLayout) Decode(line string) (RawRecord, error) {
	return decodeCommon(line, legacyCentury)
}

func (LegacyLayout) Encode(rec RawRecord) string {
	return encodeCommon(rec, "  ")
}

// DetectLayout probes the century columns of the first record.
func DetectLayout(line string) (Layout, error) {
	line, err := padLine(line)
	if err != nil {
		return nil, err
	}
	for _, l := range []Layout{CenturyLayout{}, LegacyLayout{}} {
		if l.Match(line) {
			return l, nil
		}
	}
	return nil, &fieldError{field: "century", reason: fmt.Sprintf("%q is neither digits nor blank", colCentury.of(line))}
}

func decodeCommon(line string, century int) (RawRecord, error) {
	rec := RawRecord{Century: century}

	rec.Code = strings.TrimSpace(colCode.of(line))
	if rec.Code == "" {
		return RawRecord{}, &fieldError{field: "code", reason: "blank station code"}
	}

	c, err := ParseComponent(colComponent.of(line))
	if err != nil {
		return RawRecord{}, &fieldError{field: "component", reason: err.Error()}
	}
	rec.Component = c

	ints := []struct {
		dst  *int
		col  span
		name string
	}{
		{&rec.Year, colYear, "year"},
		{&rec.Month, colMonth, "month"},
		{&rec.Day, colDay, "day"},
		{&rec.Base, colBase, "base"},
	}
	for _, f := range ints {
		if *f.dst, err = intField(line, f.col, f.name); err != nil {
			return RawRecord{}, err
		}
	}

	for h := range HoursPerDay {
		start := colHourly.start + h*hourlyWidth
		col := span{start, start + hourlyWidth}
		if rec.Hourly[h], err = intField(line, col, fmt.Sprintf("hour %02d", h)); err != nil {
			return RawRecord{}, err
		}
	}

	if strings.TrimSpace(colDailyMean.of(line)) != "" {
		mean, err := intField(line, colDailyMean, "daily mean")
		if err != nil {
			return RawRecord{}, err
		}
		rec.DailyMean = &mean
	}

	if err := validateDate(rec); err != nil {
		return RawRecord{}, err
	}
	return rec, nil
}

func validateDate(rec RawRecord) error {
	if rec.Month < 1 || rec.Month > 12 {
		return &fieldError{field: "month", reason: fmt.Sprintf("%d out of range", rec.Month)}
	}
	if rec.Day < 1 || rec.Day > daysIn(rec.FullYear(), rec.Month) {
		return &fieldError{field: "day", reason: fmt.Sprintf("%d out of range for %04d-%02d", rec.Day, rec.FullYear(), rec.Month)}
	}
	return nil
}

func intField(line string, col span, name string) (int, error) {
	raw := strings.TrimSpace(col.of(line))
	if raw == "" {
		return 0, &fieldError{field: name, reason: "blank"}
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &fieldError{field: name, reason: fmt.Sprintf("%q is not an integer", raw)}
	}
	return v, nil
}

// padLine validates the width and pads a short line out to RecordWidth.
func padLine(line string) (string, error) {
	line = strings.TrimRight(line, "\r")
	switch {
	case len(line) < MinRecordWidth || len(line) > RecordWidth:
		return "", &fieldError{reason: fmt.Sprintf("width %d, want %d-%d", len(line), MinRecordWidth, RecordWidth)}
	case len(line) < RecordWidth:
		return line + strings.Repeat(" ", RecordWidth-len(line)), nil
	default:
		return line, nil
	}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
