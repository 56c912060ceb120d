package request

import (
	"context"
	"net"
	"net/http"
	"strings"
)

// LoopbackIdentifier is used when no address can be derived from the request
const LoopbackIdentifier = "127.0.0.1"

type contextKey string

const requestIDContextKey contextKey = "request_id"

// ClientIdentifier derives the rate limit partition key for a request.
// Order: first X-Forwarded-For entry, X-Real-IP, host of the direct connection, loopback.
func ClientIdentifier(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	remote := strings.TrimSpace(r.RemoteAddr)
	if host, _, err := net.SplitHostPort(remote); err == nil && host != "" {
		return host
	}
	if remote != "" {
		return remote
	}
	return LoopbackIdentifier
}

// WithRequestID returns a context carrying the request ID
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDContextKey, id)
}

// RequestIDFromContext returns the request ID, or "" if none was set
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDContextKey).(string)
	return id
}
