package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	csvadapter "github.com/couchcryptid/geomag-wdc-etl/internal/adapter/csv"
	"github.com/couchcryptid/geomag-wdc-etl/internal/domain"
	"github.com/couchcryptid/geomag-wdc-etl/internal/pipeline"
)

var convertOut string

var convertCmd = &cobra.Command{
	Use:   "convert FILE...",
	Short: "Append WDC files into one X/Y/Z series and write it out",
	Long: `Reads every FILE as a WDC hourly-value file of one observatory, appends
them in ascending time order and writes the series as CSV. Configured
SQLite and Kafka sinks receive the same series.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runConvert,
}

func runConvert(cmd *cobra.Command, args []string) (err error) {
	deps, err := loadDeps(convertOut == "")
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if convertOut != "" {
		f, ferr := os.Create(convertOut)
		if ferr != nil {
			return fmt.Errorf("create output: %w", ferr)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("close output: %w", cerr)
			}
		}()
		out = f
	}

	sinks, closers, err := deps.sinks()
	defer closeAll(deps.logger, closers)
	if err != nil {
		return err
	}
	loaders := append([]pipeline.Loader{csvadapter.NewWriter(out)}, sinks...)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	p := pipeline.New(deps.reader(), loaders, deps.logger, deps.metrics)
	table, err := p.Run(ctx, args)
	if table.Len() > 0 {
		logSummary(ctx, deps, table)
	}
	return err
}

func logSummary(ctx context.Context, deps *runtimeDeps, table domain.XYZTable) {
	s := domain.Summarize(table)
	first, last, _ := table.Span()
	deps.logger.InfoContext(ctx, "series converted",
		"station", s.Code,
		"rows", s.Rows,
		"from", first,
		"to", last,
		"missing_x", s.MissingX,
		"missing_y", s.MissingY,
		"missing_z", s.MissingZ,
		"empty_hours", s.Empty,
	)
}
