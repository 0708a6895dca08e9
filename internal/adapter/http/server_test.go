package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpadapter "github.com/couchcryptid/geomag-wdc-etl/internal/adapter/http"
	"github.com/couchcryptid/geomag-wdc-etl/internal/domain"
)

type mockService struct {
	readyErr  error
	ingestErr error
	gotName   string
	gotBody   string
}

func (m *mockService) CheckReadiness(_ context.Context) error { return m.readyErr }

func (m *mockService) Ingest(_ context.Context, src io.Reader, name string) (domain.XYZTable, error) {
	m.gotName = name
	data, err := io.ReadAll(src)
	if err != nil {
		return domain.XYZTable{}, err
	}
	m.gotBody = string(data)
	if m.ingestErr != nil {
		return domain.XYZTable{}, m.ingestErr
	}
	return domain.XYZTable{
		Code: "ESK",
		Rows: []domain.XYZRow{{Time: time.Date(1988, 9, 21, 2, 30, 0, 0, time.UTC), Z: domain.Some(45912)}},
	}, nil
}

func newTestServer(svc *mockService) *httpadapter.Server {
	return httpadapter.NewServer(":0", svc, 64, slog.Default())
}

func TestHealthzReturns200(t *testing.T) {
	srv := newTestServer(&mockService{})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	srv := newTestServer(&mockService{})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ready", body["status"])
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	srv := newTestServer(&mockService{readyErr: fmt.Errorf("sqlite not ready")})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not ready", body["status"])
	assert.Equal(t, "sqlite not ready", body["error"])
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(&mockService{})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestIngestReturnsTable(t *testing.T) {
	svc := &mockService{}
	srv := newTestServer(svc)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/xyz?name=esk1988.wdc", strings.NewReader("payload"))

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "esk1988.wdc", svc.gotName)
	assert.Equal(t, "payload", svc.gotBody)
	assert.JSONEq(t, `{"code":"ESK","rows":[{"time":"1988-09-21T02:30:00Z","x":null,"y":null,"z":45912}]}`, rec.Body.String())
}

func TestIngestErrorStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"format", &domain.FormatError{File: "upload.wdc", Line: 1, Reason: "width 3, want 116-120"}, http.StatusBadRequest},
		{"consistency", &domain.ConsistencyError{Kind: domain.ConflictDuplicateTimestamp, Code: "ESK"}, http.StatusConflict},
		{"sink", fmt.Errorf("load sqlite: disk full"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockService{ingestErr: tt.err}
			srv := newTestServer(svc)
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/v1/xyz", strings.NewReader("x"))

			srv.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
			assert.Equal(t, "upload.wdc", svc.gotName)

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.err.Error(), body["error"])
		})
	}
}

func TestIngestRejectsOversizedBody(t *testing.T) {
	srv := newTestServer(&mockService{})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/xyz", strings.NewReader(strings.Repeat("x", 65)))

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}
