package middleware

import (
	"net/http"

	"go.uber.org/zap"
)

const (
	// DefaultMaxRequestSize caps request bodies. A team request is a few kilobytes at most.
	DefaultMaxRequestSize int64 = 64 << 10
)

// MaxRequestSize rejects oversized bodies up front and bounds the rest with MaxBytesReader
func MaxRequestSize(maxBytes int64, logger *zap.Logger) func(http.Handler) http.Handler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxRequestSize
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				respondErrorJSON(w, r, http.StatusRequestEntityTooLarge, "Request body is too large", logger)
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
