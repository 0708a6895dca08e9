package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	httpadapter "github.com/couchcryptid/geomag-wdc-etl/internal/adapter/http"
	"github.com/couchcryptid/geomag-wdc-etl/internal/pipeline"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP conversion service",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	deps, err := loadDeps(false)
	if err != nil {
		return err
	}
	logger := deps.logger

	loaders, closers, err := deps.sinks()
	defer closeAll(logger, closers)
	if err != nil {
		return err
	}

	p := pipeline.New(deps.reader(), loaders, logger, deps.metrics)
	srv := httpadapter.NewServer(deps.cfg.HTTPAddr, p, deps.cfg.MaxUploadBytes, logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			return err
		}
	}
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), deps.cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
	return nil
}
