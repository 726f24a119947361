package middleware

import (
	"net/http"
	"time"

	"cityevents/pkg/metrics"
)

func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		startTime := time.Now()

		rw := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(rw, r)

		// Labelled by the matched route pattern, set on r by the mux.
		endpoint := r.Pattern
		if endpoint == "" {
			endpoint = "unmatched"
		}

		duration := time.Since(startTime)
		metrics.RecordHttpRequest(
			r.Method,
			endpoint,
			http.StatusText(rw.statusCode),
			duration,
		)
	})
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	return rw.ResponseWriter.Write(b)
}
