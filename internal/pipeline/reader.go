package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/geomag-wdc-etl/internal/domain"
	"github.com/couchcryptid/geomag-wdc-etl/internal/observability"
)

// ReaderOptions tunes multi-file reads.
type ReaderOptions struct {
	// Concurrency bounds parallel file parses. Values below 1 mean 1.
	Concurrency int
	// ContinueOnError skips files that fail and reports their errors joined
	// alongside the series built from the remaining files.
	ContinueOnError bool
	Clock           clockwork.Clock
}

// Reader runs WDC files through the domain pipeline with logging and metrics.
type Reader struct {
	logger  *slog.Logger
	metrics *observability.Metrics
	opts    ReaderOptions
}

// NewReader creates a Reader. A nil clock uses the real clock.
func NewReader(logger *slog.Logger, metrics *observability.Metrics, opts ReaderOptions) *Reader {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	return &Reader{logger: logger, metrics: metrics, opts: opts}
}

// ReadFile parses and assembles a single file.
func (r *Reader) ReadFile(path string) (domain.XYZTable, error) {
	start := r.opts.Clock.Now()
	parsed, err := domain.ParseFile(path)
	if err != nil {
		return domain.XYZTable{}, r.fail(path, err)
	}
	return r.assemble(parsed, start)
}

// ReadText parses and assembles WDC text from r, e.g. an uploaded body.
func (r *Reader) ReadText(src io.Reader, name string) (domain.XYZTable, error) {
	start := r.opts.Clock.Now()
	parsed, err := domain.Parse(src, name)
	if err != nil {
		return domain.XYZTable{}, r.fail(name, err)
	}
	return r.assemble(parsed, start)
}

func (r *Reader) assemble(parsed domain.ParsedTable, start time.Time) (domain.XYZTable, error) {
	xyz, err := domain.Process(parsed)
	if err != nil {
		return domain.XYZTable{}, r.fail(parsed.Source, err)
	}

	s := domain.Summarize(xyz)
	r.metrics.FilesRead.Inc()
	r.metrics.RecordsParsed.Add(float64(len(parsed.Rows) / domain.HoursPerDay))
	r.metrics.HourlyValues.Add(float64(s.Rows))
	r.metrics.MissingValues.WithLabelValues("X").Add(float64(s.MissingX))
	r.metrics.MissingValues.WithLabelValues("Y").Add(float64(s.MissingY))
	r.metrics.MissingValues.WithLabelValues("Z").Add(float64(s.MissingZ))
	r.metrics.FileProcessingDuration.Observe(r.opts.Clock.Since(start).Seconds())

	r.logger.Debug("wdc file assembled",
		"source", parsed.Source,
		"station", parsed.Code,
		"layout", parsed.Layout,
		"rows", s.Rows,
		"missing_x", s.MissingX,
		"missing_y", s.MissingY,
		"missing_z", s.MissingZ,
		"empty_hours", s.Empty,
	)
	return xyz, nil
}

func (r *Reader) fail(source string, err error) error {
	kind := errorKind(err)
	r.metrics.FileErrors.WithLabelValues(kind).Inc()
	r.logger.Warn("wdc file rejected", "source", source, "kind", kind, "error", err)
	return err
}

// ReadAndAppend reads files with bounded parallelism and appends their series
// in input order. Without ContinueOnError the first failure cancels the
// remaining parses and is returned alone.
func (r *Reader) ReadAndAppend(ctx context.Context, paths []string) (domain.XYZTable, error) {
	tables := make([]domain.XYZTable, len(paths))
	fileErrs := make([]error, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Concurrency)
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			t, err := r.ReadFile(path)
			if err != nil {
				if r.opts.ContinueOnError {
					fileErrs[i] = err
					return nil
				}
				return err
			}
			tables[i] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return domain.XYZTable{}, err
	}

	var out domain.XYZTable
	for i, t := range tables {
		if fileErrs[i] != nil {
			continue
		}
		next, err := domain.Append(out, t)
		if err != nil {
			r.metrics.AppendConflicts.Inc()
			r.logger.Error("append rejected", "source", paths[i], "error", err)
			if !r.opts.ContinueOnError {
				return domain.XYZTable{}, err
			}
			fileErrs[i] = err
			continue
		}
		out = next
	}

	joined := errors.Join(fileErrs...)
	r.logger.Info("wdc files appended",
		"files", len(paths),
		"station", out.Code,
		"rows", out.Len(),
		"failed", countErrs(fileErrs),
	)
	return out, joined
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, domain.ErrFormat):
		return "format"
	case errors.Is(err, domain.ErrConsistency):
		return "consistency"
	default:
		return "io"
	}
}

func countErrs(errs []error) int {
	n := 0
	for _, err := range errs {
		if err != nil {
			n++
		}
	}
	return n
}
