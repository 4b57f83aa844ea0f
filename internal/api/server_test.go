package api_test

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eshaffer321/travel-reconcile/internal/api"
	"github.com/eshaffer321/travel-reconcile/internal/api/dto"
	"github.com/eshaffer321/travel-reconcile/internal/application/reconcile"
	"github.com/eshaffer321/travel-reconcile/internal/infrastructure/config"
	"github.com/eshaffer321/travel-reconcile/internal/infrastructure/storage"
)

const flightPair = `{
	"bookings": [{"id": "B1", "merchant": "Delta Air Lines", "amount": 450.75, "card_last4": "1234"}],
	"expenses": [{"id": "E1", "vendor": "Delta Airlines", "amount": 450.75, "card_last4": "1234", "description": "DL1234 SFO-JFK"}],
	"record": true
}`

func newTestServer(t *testing.T) (*api.Server, *storage.MockRepository) {
	t.Helper()
	repo := storage.NewMockRepository()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	svc, err := reconcile.NewService(&config.Config{}, repo, logger)
	require.NoError(t, err)
	server := api.NewServer(api.DefaultConfig(), svc, logger)
	return server, repo
}

func TestServer_HealthEndpoint(t *testing.T) {
	server, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	server.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var response dto.HealthResponse
	err := json.NewDecoder(rec.Body).Decode(&response)
	require.NoError(t, err)
	assert.Equal(t, "ok", response.Status)
	assert.Equal(t, "auto", response.Strategy)
}

func TestServer_ReconcileEndpoint(t *testing.T) {
	t.Run("POST /api/reconcile records and returns the report", func(t *testing.T) {
		server, repo := newTestServer(t)

		req := httptest.NewRequest(http.MethodPost, "/api/reconcile", strings.NewReader(flightPair))
		rec := httptest.NewRecorder()

		server.Router().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		var response dto.ReportResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
		require.Len(t, response.Matches, 1)
		assert.NotEmpty(t, response.RunID)
		assert.Equal(t, 1, repo.RunCount())
	})

	t.Run("GET /api/reconcile is not routed", func(t *testing.T) {
		server, _ := newTestServer(t)

		req := httptest.NewRequest(http.MethodGet, "/api/reconcile", nil)
		rec := httptest.NewRecorder()

		server.Router().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})

	t.Run("GET /api/strategies", func(t *testing.T) {
		server, _ := newTestServer(t)

		req := httptest.NewRequest(http.MethodGet, "/api/strategies", nil)
		rec := httptest.NewRecorder()

		server.Router().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestServer_RunsEndpoints(t *testing.T) {
	t.Run("GET /api/runs returns runs", func(t *testing.T) {
		server, repo := newTestServer(t)
		_, err := repo.StartRun(storage.RunParams{Strategy: "auto", Direction: "expense"})
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/runs", nil)
		rec := httptest.NewRecorder()

		server.Router().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		var response dto.RunListResponse
		err = json.NewDecoder(rec.Body).Decode(&response)
		require.NoError(t, err)
		assert.Equal(t, 1, response.Count)
		assert.Equal(t, "running", response.Runs[0].Status)
	})

	t.Run("GET /api/runs/:id returns single run", func(t *testing.T) {
		server, repo := newTestServer(t)
		run, err := repo.StartRun(storage.RunParams{Strategy: "flight", Direction: "expense"})
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/runs/"+run.ID, nil)
		rec := httptest.NewRecorder()

		server.Router().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		var response dto.RunDetailResponse
		err = json.NewDecoder(rec.Body).Decode(&response)
		require.NoError(t, err)
		assert.Equal(t, run.ID, response.ID)
		assert.Equal(t, "flight", response.Strategy)
		assert.Empty(t, response.Matches)
	})
}

func TestServer_JobsEndpoints(t *testing.T) {
	server, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/jobs/unknown", nil)
	rec := httptest.NewRecorder()

	server.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_CORS(t *testing.T) {
	server, _ := newTestServer(t)

	t.Run("sets CORS headers for allowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		rec := httptest.NewRecorder()

		server.Router().ServeHTTP(rec, req)

		assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("handles OPTIONS preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/reconcile", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		rec := httptest.NewRecorder()

		server.Router().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
	})
}

func TestConfigFrom(t *testing.T) {
	t.Run("keeps defaults for unset fields", func(t *testing.T) {
		cfg := api.ConfigFrom(config.APIConfig{})
		assert.Equal(t, api.DefaultConfig(), cfg)
	})

	t.Run("uses configured values", func(t *testing.T) {
		cfg := api.ConfigFrom(config.APIConfig{Port: 9000, AllowedOrigins: []string{"https://app.example.com"}})
		assert.Equal(t, 9000, cfg.Port)
		assert.Equal(t, []string{"https://app.example.com"}, cfg.AllowedOrigins)
	})
}
