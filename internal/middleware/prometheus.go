package middleware

import (
	"net/http"
	"time"

	"github.com/gsokolov/noteblog/internal/metrics"
)

type statusCapture struct {
	http.ResponseWriter
	status int
}

func (w *statusCapture) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Prometheus observes duration and count per request. The metrics endpoint
// itself is excluded so scrapes do not feed back into the histograms.
func Prometheus(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusCapture{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, r)

		if r.URL.Path == "/metrics" {
			return
		}
		metrics.RecordRequest(r.Method, r.URL.Path, sw.status, time.Since(start).Seconds())
	})
}
