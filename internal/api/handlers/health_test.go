package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eshaffer321/travel-reconcile/internal/api/dto"
	"github.com/eshaffer321/travel-reconcile/internal/api/handlers"
	"github.com/eshaffer321/travel-reconcile/internal/infrastructure/storage"
)

func TestHealthHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name        string
		repo        storage.Repository
		wantHistory bool
	}{
		{"with run history", storage.NewMockRepository(), true},
		{"without run history", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			handler := handlers.NewHealthHandler(newTestService(t, tt.repo))
			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			rec := httptest.NewRecorder()

			// Act
			handler.ServeHTTP(rec, req)

			// Assert
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var response dto.HealthResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
			assert.Equal(t, "ok", response.Status)
			assert.NotEmpty(t, response.Timestamp)
			assert.Equal(t, "auto", response.Strategy)
			assert.Equal(t, tt.wantHistory, response.History)
			assert.Zero(t, response.ActiveJobs)
		})
	}
}
