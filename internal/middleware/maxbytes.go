package middleware

import "net/http"

// DefaultMaxBodyBytes caps request bodies at 1 MiB. Notes are short text;
// anything larger is a mistake or abuse.
const DefaultMaxBodyBytes = 1 << 20

// MaxBytes caps the request body size. Oversized bodies fail the handler's
// read with a 413.
func MaxBytes(maxBytes int64) func(http.Handler) http.Handler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBodyBytes
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}
