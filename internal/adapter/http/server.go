// Package http exposes the pipeline over HTTP: probes, metrics and WDC upload.
package http

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/geomag-wdc-etl/internal/domain"
)

// Service is what the HTTP layer needs from the pipeline.
type Service interface {
	sharedobs.ReadinessChecker
	Ingest(ctx context.Context, src io.Reader, name string) (domain.XYZTable, error)
}

// Server serves the probe, metrics and upload routes.
type Server struct {
	srv    *http.Server
	mux    *http.ServeMux
	logger *slog.Logger
}

// NewServer wires GET /healthz, GET /readyz, GET /metrics and POST /v1/xyz.
// Upload bodies over maxUpload bytes get 413.
func NewServer(addr string, svc Service, maxUpload int64, logger *slog.Logger) *Server {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(svc))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.Handle("POST /v1/xyz", &ingestHandler{svc: svc, maxUpload: maxUpload, logger: logger})

	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       time.Minute,
			WriteTimeout:      time.Minute,
		},
		mux:    mux,
		logger: logger,
	}
}

// Start blocks serving until Shutdown, then returns http.ErrServerClosed.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.srv.Addr)
	return s.srv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error { return s.srv.Shutdown(ctx) }

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.mux.ServeHTTP(w, r) }

// ingestHandler converts the request body as one WDC file named by ?name=.
type ingestHandler struct {
	svc       Service
	maxUpload int64
	logger    *slog.Logger
}

func (h *ingestHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		name = "upload.wdc"
	}

	table, err := h.svc.Ingest(r.Context(), http.MaxBytesReader(w, r.Body, h.maxUpload), name)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("ingest failed", "name", name, "error", err)
		}
		sharedobs.WriteJSON(w, status, map[string]string{"error": err.Error()})
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, table)
}

func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, domain.ErrFormat):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrConsistency):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
