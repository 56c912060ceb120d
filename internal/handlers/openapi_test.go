package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gorilla/mux"
)

const testOpenAPIDoc = `openapi: 3.0.3
info:
  title: Team Builder API
  version: 1.0.0
paths:
  /api/generate-team:
    post:
      summary: Generate a team
`

func newOpenAPIRouter(t *testing.T, path string) *mux.Router {
	t.Helper()
	r := mux.NewRouter()
	NewOpenAPIHandler(path).RegisterRoutes(r)
	return r
}

func writeOpenAPIDoc(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "openapi.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write openapi doc: %v", err)
	}
	return path
}

func TestOpenAPIHandler_ServeYAML(t *testing.T) {
	t.Parallel()

	r := newOpenAPIRouter(t, writeOpenAPIDoc(t, testOpenAPIDoc))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/openapi.yaml", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/x-yaml" {
		t.Errorf("Expected application/x-yaml, got %q", ct)
	}
	if w.Body.String() != testOpenAPIDoc {
		t.Error("Expected the document to be served verbatim")
	}
}

func TestOpenAPIHandler_ServeJSON(t *testing.T) {
	t.Parallel()

	r := newOpenAPIRouter(t, writeOpenAPIDoc(t, testOpenAPIDoc))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/openapi.json", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var doc map[string]any
	if err := json.NewDecoder(w.Body).Decode(&doc); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	info, ok := doc["info"].(map[string]any)
	if !ok || info["title"] != "Team Builder API" {
		t.Errorf("Unexpected info block %v", doc["info"])
	}
}

func TestOpenAPIHandler_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		path         string
		target       string
		expectedCode int
	}{
		{
			name:         "missing file yaml",
			path:         filepath.Join(t.TempDir(), "missing.yaml"),
			target:       "/api/openapi.yaml",
			expectedCode: http.StatusNotFound,
		},
		{
			name:         "missing file json",
			path:         filepath.Join(t.TempDir(), "missing.yaml"),
			target:       "/api/openapi.json",
			expectedCode: http.StatusNotFound,
		},
		{
			name:         "invalid yaml",
			path:         writeOpenAPIDoc(t, "openapi: [unclosed"),
			target:       "/api/openapi.json",
			expectedCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w := httptest.NewRecorder()
			newOpenAPIRouter(t, tt.path).ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.target, nil))

			if w.Code != tt.expectedCode {
				t.Errorf("Expected status %d, got %d", tt.expectedCode, w.Code)
			}
		})
	}
}
