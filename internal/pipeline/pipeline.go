package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/couchcryptid/geomag-wdc-etl/internal/domain"
	"github.com/couchcryptid/geomag-wdc-etl/internal/observability"
)

// Loader writes an assembled series to a destination.
type Loader interface {
	Name() string
	Load(ctx context.Context, table domain.XYZTable) error
}

// Pinger is implemented by loaders that can report connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Pipeline orchestrates read, append and load.
type Pipeline struct {
	reader  *Reader
	loaders []Loader
	logger  *slog.Logger
	metrics *observability.Metrics
}

// New creates a Pipeline writing to the given loaders in order.
func New(reader *Reader, loaders []Loader, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		reader:  reader,
		loaders: loaders,
		logger:  logger,
		metrics: metrics,
	}
}

// CheckReadiness pings every loader that supports it.
func (p *Pipeline) CheckReadiness(ctx context.Context) error {
	for _, l := range p.loaders {
		pinger, ok := l.(Pinger)
		if !ok {
			continue
		}
		if err := pinger.Ping(ctx); err != nil {
			return fmt.Errorf("%s not ready: %w", l.Name(), err)
		}
	}
	return nil
}

// Run reads and appends the files, then loads the series into every sink.
// With ContinueOnError the partial series is still loaded and the per-file
// errors are returned afterwards.
func (p *Pipeline) Run(ctx context.Context, paths []string) (domain.XYZTable, error) {
	table, readErr := p.reader.ReadAndAppend(ctx, paths)
	if readErr != nil && !p.reader.opts.ContinueOnError {
		return domain.XYZTable{}, readErr
	}
	if err := p.load(ctx, table); err != nil {
		return table, errors.Join(readErr, err)
	}
	return table, readErr
}

// Ingest converts one uploaded WDC text and loads it.
func (p *Pipeline) Ingest(ctx context.Context, src io.Reader, name string) (domain.XYZTable, error) {
	table, err := p.reader.ReadText(src, name)
	if err != nil {
		return domain.XYZTable{}, err
	}
	if err := p.load(ctx, table); err != nil {
		return domain.XYZTable{}, err
	}
	return table, nil
}

func (p *Pipeline) load(ctx context.Context, table domain.XYZTable) error {
	if table.Len() == 0 {
		return nil
	}
	for _, l := range p.loaders {
		if err := l.Load(ctx, table); err != nil {
			p.metrics.LoadErrors.WithLabelValues(l.Name()).Inc()
			p.logger.Error("load failed", "sink", l.Name(), "station", table.Code, "rows", table.Len(), "error", err)
			return fmt.Errorf("load %s: %w", l.Name(), err)
		}
		p.metrics.RowsLoaded.WithLabelValues(l.Name()).Add(float64(table.Len()))
		p.logger.Info("series loaded", "sink", l.Name(), "station", table.Code, "rows", table.Len())
	}
	return nil
}
