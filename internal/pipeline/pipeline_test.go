package pipeline_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/geomag-wdc-etl/internal/domain"
	"github.com/couchcryptid/geomag-wdc-etl/internal/observability"
	"github.com/couchcryptid/geomag-wdc-etl/internal/pipeline"
)

// --- mocks ---

type mockLoader struct {
	name    string
	err     error
	pingErr error
	loaded  []domain.XYZTable
}

func (m *mockLoader) Name() string { return m.name }

func (m *mockLoader) Load(_ context.Context, table domain.XYZTable) error {
	if m.err != nil {
		return m.err
	}
	m.loaded = append(m.loaded, table)
	return nil
}

func (m *mockLoader) Ping(_ context.Context) error { return m.pingErr }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// writeMonth writes a WDC file holding days 1..days of one month for H, D and Z.
func writeMonth(t *testing.T, dir, code string, month, days int) string {
	t.Helper()
	var records []domain.RawRecord
	for _, comp := range []domain.Component{domain.ComponentH, domain.ComponentD, domain.ComponentZ} {
		for day := 1; day <= days; day++ {
			rec := domain.RawRecord{Code: code, Component: comp, Century: 19, Year: 88, Month: month, Day: day}
			switch comp {
			case domain.ComponentH:
				rec.Base = 174
			case domain.ComponentD:
				rec.Base = -6
			case domain.ComponentZ:
				rec.Base = 459
			}
			for h := range rec.Hourly {
				rec.Hourly[h] = 10 + h
			}
			records = append(records, rec)
		}
	}
	path := filepath.Join(dir, code+time.Month(month).String()+".wdc")
	require.NoError(t, os.WriteFile(path, []byte(domain.FormatRecords(domain.CenturyLayout{}, records)), 0o600))
	return path
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func newReader(metrics *observability.Metrics, continueOnError bool) *pipeline.Reader {
	return pipeline.NewReader(discardLogger(), metrics, pipeline.ReaderOptions{
		Concurrency:     2,
		ContinueOnError: continueOnError,
		Clock:           clockwork.NewFakeClock(),
	})
}

// --- tests ---

func TestReader_ReadAndAppend(t *testing.T) {
	dir := t.TempDir()
	feb := writeMonth(t, dir, "ESK", 2, 3)
	jan := writeMonth(t, dir, "ESK", 1, 2)
	metrics := observability.NewMetricsForTesting()

	table, err := newReader(metrics, false).ReadAndAppend(context.Background(), []string{jan, feb})
	require.NoError(t, err)

	assert.Equal(t, "ESK", table.Code)
	assert.Equal(t, 5*domain.HoursPerDay, table.Len())
	for i := 1; i < table.Len(); i++ {
		assert.True(t, table.Rows[i-1].Time.Before(table.Rows[i].Time))
	}
	for _, r := range table.Rows {
		assert.True(t, r.X.Valid())
		assert.True(t, r.Y.Valid())
		assert.True(t, r.Z.Valid())
	}

	assert.InDelta(t, 2, testutil.ToFloat64(metrics.FilesRead), 0)
	assert.InDelta(t, 15, testutil.ToFloat64(metrics.RecordsParsed), 0)
	assert.InDelta(t, 120, testutil.ToFloat64(metrics.HourlyValues), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(metrics.MissingValues.WithLabelValues("Z")), 0)
}

func TestReader_ReadAndAppend_Overlap(t *testing.T) {
	dir := t.TempDir()
	a := writeMonth(t, dir, "ESK", 1, 2)
	b := writeFile(t, dir, "copy.wdc", mustRead(t, a))
	metrics := observability.NewMetricsForTesting()

	_, err := newReader(metrics, false).ReadAndAppend(context.Background(), []string{a, b})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConsistency)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.AppendConflicts), 0)
}

func TestReader_ReadAndAppend_StationMismatch(t *testing.T) {
	dir := t.TempDir()
	a := writeMonth(t, dir, "ESK", 1, 1)
	b := writeMonth(t, dir, "LER", 2, 1)

	_, err := newReader(observability.NewMetricsForTesting(), false).ReadAndAppend(context.Background(), []string{a, b})
	require.Error(t, err)
	var ce *domain.ConsistencyError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, domain.ConflictStationMismatch, ce.Kind)
}

func TestReader_ReadAndAppend_AbortOnFormatError(t *testing.T) {
	dir := t.TempDir()
	good := writeMonth(t, dir, "ESK", 1, 1)
	bad := writeFile(t, dir, "bad.wdc", "ESK8801H01 garbage\n")
	metrics := observability.NewMetricsForTesting()

	table, err := newReader(metrics, false).ReadAndAppend(context.Background(), []string{good, bad})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrFormat)
	assert.Contains(t, err.Error(), "bad.wdc:1")
	assert.Zero(t, table.Len())
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.FileErrors.WithLabelValues("format")), 0)
}

func TestReader_ReadAndAppend_ContinueOnError(t *testing.T) {
	dir := t.TempDir()
	jan := writeMonth(t, dir, "ESK", 1, 1)
	bad := writeFile(t, dir, "bad.wdc", "ESK8801H01 garbage\n")
	feb := writeMonth(t, dir, "ESK", 2, 1)

	table, err := newReader(observability.NewMetricsForTesting(), true).ReadAndAppend(context.Background(), []string{jan, bad, feb})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrFormat)
	assert.Equal(t, 2*domain.HoursPerDay, table.Len())
}

func TestReader_ReadAndAppend_MissingFile(t *testing.T) {
	metrics := observability.NewMetricsForTesting()

	_, err := newReader(metrics, false).ReadAndAppend(context.Background(), []string{filepath.Join(t.TempDir(), "nope.wdc")})
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.FileErrors.WithLabelValues("io")), 0)
}

func TestReader_ReadAndAppend_Cancelled(t *testing.T) {
	dir := t.TempDir()
	jan := writeMonth(t, dir, "ESK", 1, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newReader(observability.NewMetricsForTesting(), false).ReadAndAppend(ctx, []string{jan})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPipeline_Run_LoadsEverySink(t *testing.T) {
	dir := t.TempDir()
	jan := writeMonth(t, dir, "ESK", 1, 2)
	metrics := observability.NewMetricsForTesting()
	first := &mockLoader{name: "first"}
	second := &mockLoader{name: "second"}

	p := pipeline.New(newReader(metrics, false), []pipeline.Loader{first, second}, discardLogger(), metrics)

	table, err := p.Run(context.Background(), []string{jan})
	require.NoError(t, err)

	require.Len(t, first.loaded, 1)
	require.Len(t, second.loaded, 1)
	assert.Equal(t, table, first.loaded[0])
	assert.InDelta(t, 48, testutil.ToFloat64(metrics.RowsLoaded.WithLabelValues("second")), 0)
}

func TestPipeline_Run_LoadError(t *testing.T) {
	dir := t.TempDir()
	jan := writeMonth(t, dir, "ESK", 1, 1)
	metrics := observability.NewMetricsForTesting()
	failing := &mockLoader{name: "sqlite", err: errors.New("disk full")}

	p := pipeline.New(newReader(metrics, false), []pipeline.Loader{failing}, discardLogger(), metrics)

	_, err := p.Run(context.Background(), []string{jan})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load sqlite: disk full")
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.LoadErrors.WithLabelValues("sqlite")), 0)
}

func TestPipeline_Ingest(t *testing.T) {
	dir := t.TempDir()
	text := mustRead(t, writeMonth(t, dir, "ESK", 3, 1))
	metrics := observability.NewMetricsForTesting()
	sink := &mockLoader{name: "mock"}

	p := pipeline.New(newReader(metrics, false), []pipeline.Loader{sink}, discardLogger(), metrics)

	table, err := p.Ingest(context.Background(), strings.NewReader(text), "upload.wdc")
	require.NoError(t, err)
	assert.Equal(t, domain.HoursPerDay, table.Len())
	require.Len(t, sink.loaded, 1)

	_, err = p.Ingest(context.Background(), strings.NewReader("not wdc"), "upload.wdc")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrFormat)
	assert.Len(t, sink.loaded, 1)
}

func TestPipeline_CheckReadiness(t *testing.T) {
	metrics := observability.NewMetricsForTesting()
	sink := &mockLoader{name: "sqlite", pingErr: errors.New("closed")}
	p := pipeline.New(newReader(metrics, false), []pipeline.Loader{sink}, discardLogger(), metrics)

	err := p.CheckReadiness(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sqlite not ready")

	sink.pingErr = nil
	assert.NoError(t, p.CheckReadiness(context.Background()))
}

func mustRead(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}
