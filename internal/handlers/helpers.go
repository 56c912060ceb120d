package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/benvon/team-builder/internal/logger"
)

// writeJSON sends body as is. The team endpoint uses its own response shapes.
func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// respondJSON sends data wrapped in the success envelope
func respondJSON(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, map[string]any{
		"success":   true,
		"data":      data,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// respondJSONError sends an error envelope. message is truncated and stripped of control characters.
func respondJSONError(w http.ResponseWriter, status int, errorType, message string) {
	writeJSON(w, status, map[string]any{
		"success":   false,
		"error":     errorType,
		"message":   logger.SanitizeString(message, logger.MaxPreviewLength),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// methodNotAllowed answers any method other than allowed
func methodNotAllowed(allowed string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Allow", allowed)
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "Method not allowed"})
	}
}
