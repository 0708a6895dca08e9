// Command wdcetl converts WDC hourly-value files into X/Y/Z series.
//
// Usage:
//
//	wdcetl convert esk1988.wdc esk1989.wdc --out esk.csv
//	wdcetl validate data/*.wdc
//	wdcetl serve
package main

import (
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	kafkaadapter "github.com/couchcryptid/geomag-wdc-etl/internal/adapter/kafka"
	"github.com/couchcryptid/geomag-wdc-etl/internal/adapter/sqlite"
	"github.com/couchcryptid/geomag-wdc-etl/internal/config"
	"github.com/couchcryptid/geomag-wdc-etl/internal/observability"
	"github.com/couchcryptid/geomag-wdc-etl/internal/pipeline"
)

var rootCmd = &cobra.Command{
	Use:           "wdcetl",
	Short:         "Convert WDC geomagnetic hourly means into X/Y/Z series",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	convertCmd.Flags().StringVarP(&convertOut, "out", "o", "", "CSV output path (default: stdout)")
	rootCmd.AddCommand(convertCmd, validateCmd, serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("wdcetl failed", "error", err)
		os.Exit(1)
	}
}

// runtimeDeps bundles what every subcommand builds from the environment.
type runtimeDeps struct {
	cfg     *config.Config
	logger  *slog.Logger
	metrics *observability.Metrics
	clock   clockwork.Clock
}

// loadDeps reads the environment. With dataOnStdout the logger moves to
// stderr so it cannot interleave with the data stream.
func loadDeps(dataOnStdout bool) (*runtimeDeps, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := observability.NewLogger(cfg)
	if dataOnStdout {
		logger = observability.NewTextLogger(os.Stderr, cfg.LogLevel)
		slog.SetDefault(logger)
	}
	return &runtimeDeps{
		cfg:     cfg,
		logger:  logger,
		metrics: observability.NewMetrics(),
		clock:   clockwork.NewRealClock(),
	}, nil
}

func (d *runtimeDeps) reader() *pipeline.Reader {
	return pipeline.NewReader(d.logger, d.metrics, pipeline.ReaderOptions{
		Concurrency:     d.cfg.ParseConcurrency,
		ContinueOnError: d.cfg.ContinueOnError,
		Clock:           d.clock,
	})
}

// sinks opens the configured loaders. The returned closers must be closed
// even when an error is returned.
func (d *runtimeDeps) sinks() ([]pipeline.Loader, []io.Closer, error) {
	var loaders []pipeline.Loader
	var closers []io.Closer

	if d.cfg.SQLitePath != "" {
		store, err := sqlite.Open(d.cfg.SQLitePath, d.clock)
		if err != nil {
			return nil, closers, err
		}
		loaders = append(loaders, store)
		closers = append(closers, store)
		d.logger.Info("sqlite sink enabled", "path", d.cfg.SQLitePath)
	}

	if d.cfg.KafkaEnabled {
		writer := kafkaadapter.NewWriter(d.cfg, d.logger)
		loaders = append(loaders, writer)
		closers = append(closers, writer)
		d.logger.Info("kafka sink enabled", "brokers", d.cfg.KafkaBrokers, "topic", d.cfg.KafkaTopic)
	}

	return loaders, closers, nil
}

func closeAll(logger *slog.Logger, closers []io.Closer) {
	var errs []error
	for _, c := range closers {
		errs = append(errs, c.Close())
	}
	if err := errors.Join(errs...); err != nil {
		logger.Error("sink close error", "error", err)
	}
}
