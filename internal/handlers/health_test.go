package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
)

func TestHealthCheck(t *testing.T) {
	t.Parallel()

	healthy := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("dial tcp: connection refused") }

	tests := []struct {
		name         string
		target       string
		checks       map[string]CheckFunc
		expectedCode int
		wantStatus   string
		wantChecks   map[string]string
	}{
		{
			name:         "basic mode skips checks",
			target:       "/healthz",
			checks:       map[string]CheckFunc{"redis": down},
			expectedCode: http.StatusOK,
			wantStatus:   "healthy",
		},
		{
			name:         "extended all healthy",
			target:       "/healthz?mode=extended",
			checks:       map[string]CheckFunc{"redis": healthy, "database": healthy},
			expectedCode: http.StatusOK,
			wantStatus:   "healthy",
			wantChecks:   map[string]string{"redis": "healthy", "database": "healthy"},
		},
		{
			name:         "extended with failing dependency",
			target:       "/healthz?mode=extended",
			checks:       map[string]CheckFunc{"redis": down, "database": healthy},
			expectedCode: http.StatusServiceUnavailable,
			wantStatus:   "unhealthy",
			wantChecks: map[string]string{
				"redis":    "unhealthy: dial tcp: connection refused",
				"database": "healthy",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := mux.NewRouter()
			NewHealthChecker(tt.checks).RegisterRoutes(r)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.target, nil))

			if w.Code != tt.expectedCode {
				t.Errorf("Expected status %d, got %d", tt.expectedCode, w.Code)
			}

			var resp HealthResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}
			if resp.Status != tt.wantStatus {
				t.Errorf("Expected status %q, got %q", tt.wantStatus, resp.Status)
			}
			if resp.Timestamp == "" {
				t.Error("Expected timestamp")
			}
			if len(resp.Checks) != len(tt.wantChecks) {
				t.Fatalf("Expected %d checks, got %v", len(tt.wantChecks), resp.Checks)
			}
			for name, want := range tt.wantChecks {
				if resp.Checks[name] != want {
					t.Errorf("Check %s: expected %q, got %q", name, want, resp.Checks[name])
				}
			}
		})
	}
}
