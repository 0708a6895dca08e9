// Package csv renders XYZ series as CSV for downstream plotting and analysis
// tools. Missing values are written as empty cells.
package csv

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/couchcryptid/geomag-wdc-etl/internal/domain"
)

var header = []string{"station", "time", "X", "Y", "Z"}

// Writer writes tables to an io.Writer. It implements pipeline.Loader.
type Writer struct {
	w           io.Writer
	wroteHeader bool
}

// NewWriter creates a CSV sink. The header is written once, before the first table.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

func (w *Writer) Name() string { return "csv" }

func (w *Writer) Load(_ context.Context, table domain.XYZTable) error {
	cw := csv.NewWriter(w.w)
	if !w.wroteHeader {
		if err := cw.Write(header); err != nil {
			return fmt.Errorf("write csv header: %w", err)
		}
		w.wroteHeader = true
	}
	for _, r := range table.Rows {
		rec := []string{table.Code, r.Time.Format(time.DateTime), cell(r.X), cell(r.Y), cell(r.Z)}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func cell(v domain.Value) string {
	f, ok := v.Get()
	if !ok {
		return ""
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
