package middleware

import (
	"net/http"

	logpkg "github.com/benvon/team-builder/internal/logger"
	"github.com/benvon/team-builder/internal/request"
	"go.uber.org/zap"
)

// Audit logs quota and abuse related responses for monitoring
func Audit(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			wrapped := newStatusRecorder(w)

			next.ServeHTTP(wrapped, r)

			var event string
			switch wrapped.statusCode {
			case http.StatusTooManyRequests:
				event = "rate_limit_violation"
			case http.StatusUnauthorized, http.StatusForbidden, http.StatusRequestEntityTooLarge:
				event = "security_event"
			case http.StatusServiceUnavailable:
				event = "service_unavailable"
			default:
				return
			}

			logger.Warn(event,
				zap.Int("status_code", wrapped.statusCode),
				zap.String("method", r.Method),
				zap.String("path", logpkg.SanitizePath(r.URL.Path)),
				zap.String("identifier", logpkg.SanitizeIdentifier(request.ClientIdentifier(r))),
				zap.String("request_id", request.RequestIDFromContext(r.Context())),
			)
		})
	}
}
