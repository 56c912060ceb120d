package middleware

import (
	"encoding/json"
	"net/http"

	logpkg "github.com/benvon/team-builder/internal/logger"
	"github.com/benvon/team-builder/internal/request"
	"go.uber.org/zap"
)

const panicMessage = "An unexpected error occurred"

// ErrorResponse is the body middleware writes when it stops a request. It has the
// same shape as a failed team generation so clients handle both the same way.
type ErrorResponse struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	RequestID string `json:"requestId,omitempty"`
}

// ErrorHandler recovers panics into a JSON 500. The panic value is logged, never returned.
func ErrorHandler(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("panic_recovered",
						zap.Any("error", err),
						zap.String("path", logpkg.SanitizePath(r.URL.Path)),
						zap.String("method", r.Method),
						zap.String("request_id", request.RequestIDFromContext(r.Context())),
					)
					respondErrorJSON(w, r, http.StatusInternalServerError, panicMessage, logger)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

func respondErrorJSON(w http.ResponseWriter, r *http.Request, status int, message string, logger *zap.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := ErrorResponse{
		Error:     message,
		RequestID: request.RequestIDFromContext(r.Context()),
	}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.Error("failed_to_encode_error_response",
			zap.Error(err),
			zap.Int("status_code", status),
			zap.String("path", logpkg.SanitizePath(r.URL.Path)),
		)
	}
}
