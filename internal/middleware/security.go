package middleware

import (
	"encoding/json"
	"net/http"
	"runtime/debug"

	"heritax/pkg/logger"
)

// Response hardening for a service that only ever serves JSON and WebSocket
// upgrades, never HTML: nothing may be framed, embedded, sniffed, or cached.
var securityHeaders = map[string]string{
	"Strict-Transport-Security":         "max-age=63072000; includeSubDomains; preload",
	"Content-Security-Policy":           "default-src 'none'; frame-ancestors 'none'; base-uri 'none'",
	"X-Content-Type-Options":            "nosniff",
	"X-Frame-Options":                   "DENY",
	"Referrer-Policy":                   "no-referrer",
	"Permissions-Policy":                "geolocation=(), microphone=(), camera=()",
	"X-Permitted-Cross-Domain-Policies": "none",
	"Cross-Origin-Opener-Policy":        "same-origin",
	"Cache-Control":                     "no-store, max-age=0",
	"Pragma":                            "no-cache",
}

// SecurityHeaders stamps the hardening headers on every response. Estimates
// depend on the requester's inputs, so caching is disabled across the board.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		for name, value := range securityHeaders {
			h.Set(name, value)
		}
		next.ServeHTTP(w, r)
	})
}

func jsonError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// Recovery converts handler panics into a 500 JSON response instead of a
// dropped connection, logging the stack under the request's correlation ID.
func Recovery(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					fields := map[string]interface{}{
						"panic": rec,
						"path":  r.URL.Path,
						"stack": string(debug.Stack()),
					}
					if id, ok := RequestIDFromContext(r.Context()); ok {
						fields["request_id"] = id
					}
					log.Error("Panic recovered", fields)
					jsonError(w, http.StatusInternalServerError, "Internal server error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
