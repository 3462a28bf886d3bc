package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthHandler(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	up := pingerFunc(func(ctx context.Context) error { return nil })
	down := pingerFunc(func(ctx context.Context) error { return errors.New("connection refused") })

	tests := []struct {
		name           string
		checks         map[string]Pinger
		expectedStatus int
		expectedState  string
	}{
		{"all up", map[string]Pinger{"postgres": up, "mongodb": up}, http.StatusOK, "ok"},
		{"mongo down", map[string]Pinger{"postgres": up, "mongodb": down}, http.StatusServiceUnavailable, "degraded"},
		{"nil checks skipped", map[string]Pinger{"postgres": up, "mongodb": nil}, http.StatusOK, "ok"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewHealthHandler(logger, 0, tt.checks)

			router := setupTestRouter()
			router.GET("/health", handler.Health)

			req, _ := http.NewRequest(http.MethodGet, "/health", nil)
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			assert.Equal(t, tt.expectedState, body["status"])
			deps := body["dependencies"].(map[string]interface{})
			assert.Equal(t, "up", deps["postgres"])
			_, hasMongo := deps["mongodb"]
			assert.Equal(t, tt.checks["mongodb"] != nil, hasMongo)
		})
	}
}
