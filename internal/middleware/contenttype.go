package middleware

import (
	"mime"
	"net/http"

	"go.uber.org/zap"
)

// ContentType requires a JSON body on POST requests
func ContentType(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				next.ServeHTTP(w, r)
				return
			}

			contentType := r.Header.Get("Content-Type")
			if contentType == "" {
				respondErrorJSON(w, r, http.StatusBadRequest, "Content-Type header is required", logger)
				return
			}

			// application/json with or without charset
			mediaType, _, err := mime.ParseMediaType(contentType)
			if err != nil || mediaType != "application/json" {
				respondErrorJSON(w, r, http.StatusUnsupportedMediaType, "Content-Type must be application/json", logger)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
