package middleware

import (
	"net/http"
	"time"
)

const (
	// DefaultRequestTimeout leaves room for the provider call plus the limiter round trip
	DefaultRequestTimeout = 120 * time.Second

	timeoutBody = `{"success":false,"error":"The request took too long to complete"}`
)

// Timeout bounds the whole handler. The timeout must exceed the AI provider timeout,
// otherwise generations would be cut off before the provider gives up.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, timeout, timeoutBody)
	}
}
