package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrFormat classifies malformed WDC input. Use errors.Is.
	ErrFormat = errors.New("wdc format error")

	// ErrConsistency classifies cross-record and cross-file conflicts.
	ErrConsistency = errors.New("wdc consistency error")
)

// FormatError reports a malformed line in a WDC file. It aborts the parse of
// that file.
type FormatError struct {
	File   string
	Line   int
	Field  string
	Reason string
}

func (e *FormatError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Reason)
	}
	return fmt.Sprintf("%s:%d: %s: %s", e.File, e.Line, e.Field, e.Reason)
}

func (e *FormatError) Is(target error) bool { return target == ErrFormat }

// Consistency conflict kinds.
const (
	ConflictDuplicateTimestamp = "duplicate timestamp"
	ConflictStationMismatch    = "station mismatch"
)

// ConsistencyError reports data that cannot be combined without choosing
// between conflicting values.
type ConsistencyError struct {
	Kind      string
	Code      string
	Other     string // second station code, for station mismatches
	Component Component
	Time      time.Time
}

func (e *ConsistencyError) Error() string {
	switch e.Kind {
	case ConflictStationMismatch:
		return fmt.Sprintf("%s: %s vs %s", e.Kind, e.Code, e.Other)
	default:
		if e.Component != 0 {
			return fmt.Sprintf("%s: %s %s at %s", e.Kind, e.Code, e.Component, e.Time.Format(time.DateTime))
		}
		return fmt.Sprintf("%s: %s at %s", e.Kind, e.Code, e.Time.Format(time.DateTime))
	}
}

func (e *ConsistencyError) Is(target error) bool { return target == ErrConsistency }
