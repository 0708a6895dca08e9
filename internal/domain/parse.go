package domain

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ParseFile reads and decodes one WDC file into a ParsedTable.
func ParseFile(path string) (ParsedTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return ParsedTable{}, fmt.Errorf("open wdc file: %w", err)
	}
	defer f.Close()

	return Parse(f, filepath.Base(path))
}

// Parse decodes WDC text from r. name identifies the source in errors.
func Parse(r io.Reader, name string) (ParsedTable, error) {
	records, layout, err := ParseRecords(r, name)
	if err != nil {
		return ParsedTable{}, err
	}
	return ParsedTable{
		Source: name,
		Code:   records[0].Code,
		Layout: layout.Name(),
		Rows:   Unpivot(records),
	}, nil
}

// maxLineBytes bounds the scanner buffer. It leaves room for a CRLF ending and
// a few stray columns so moderately long lines still get a width error.
const maxLineBytes = RecordWidth + 8

// ParseRecords decodes every record line of r. Blank lines are only allowed
// after the last record. The layout is detected from the first record and
// enforced for the rest of the file, as is the station code. On error no
// records are returned.
func ParseRecords(r io.Reader, name string) ([]RawRecord, Layout, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, maxLineBytes), maxLineBytes)

	var (
		records []RawRecord
		layout  Layout
		lineNo  int
		blankAt int
	)
	for sc.Scan() {
		lineNo++
		text := sc.Text()
		if strings.TrimSpace(text) == "" {
			if blankAt == 0 {
				blankAt = lineNo
			}
			continue
		}
		if blankAt != 0 {
			return nil, nil, &FormatError{File: name, Line: blankAt, Reason: "blank line before a record"}
		}

		line, err := padLine(text)
		if err != nil {
			return nil, nil, formatError(name, lineNo, err)
		}

		if layout == nil {
			if layout, err = DetectLayout(line); err != nil {
				return nil, nil, formatError(name, lineNo, err)
			}
		} else if !layout.Match(line) {
			return nil, nil, &FormatError{File: name, Line: lineNo, Field: "century", Reason: "layout differs from " + layout.Name() + " layout of first record"}
		}

		rec, err := layout.Decode(line)
		if err != nil {
			return nil, nil, formatError(name, lineNo, err)
		}
		rec.Line = lineNo

		if len(records) > 0 && rec.Code != records[0].Code {
			return nil, nil, &FormatError{
				File:   name,
				Line:   lineNo,
				Field:  "code",
				Reason: fmt.Sprintf("station %s differs from %s on line %d", rec.Code, records[0].Code, records[0].Line),
			}
		}
		records = append(records, rec)
	}
	if err := sc.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return nil, nil, &FormatError{File: name, Line: lineNo + 1, Reason: fmt.Sprintf("width exceeds %d", RecordWidth)}
		}
		return nil, nil, fmt.Errorf("read %s: %w", name, err)
	}
	if len(records) == 0 {
		return nil, nil, &FormatError{File: name, Reason: "no records"}
	}
	return records, layout, nil
}

// Unpivot expands each record into one row per hour, preserving record order.
func Unpivot(records []RawRecord) []ParsedRow {
	rows := make([]ParsedRow, 0, len(records)*HoursPerDay)
	for _, rec := range records {
		for h, raw := range rec.Hourly {
			rows = append(rows, ParsedRow{
				Code:      rec.Code,
				Component: rec.Component,
				Century:   rec.Century,
				Year:      rec.Year,
				Month:     rec.Month,
				Day:       rec.Day,
				Hour:      h,
				Base:      rec.Base,
				Raw:       raw,
			})
		}
	}
	return rows
}

func formatError(name string, line int, err error) error {
	var fe *fieldError
	if errors.As(err, &fe) {
		return &FormatError{File: name, Line: line, Field: fe.field, Reason: fe.reason}
	}
	return &FormatError{File: name, Line: line, Reason: err.Error()}
}
