// Package middleware provides shared HTTP middleware utilities.
package middleware

import "net/http"

// BodyLimit caps the request body size before handlers read it. Oversized
// bodies surface as read errors inside the decoding handler instead of
// silently truncated input.
func BodyLimit(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}
