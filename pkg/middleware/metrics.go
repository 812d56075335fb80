package middleware

import (
	"net/http"
	"time"
)

type HTTPObserver interface {
	ObserveHTTP(method string, code int, duration time.Duration)
}

// RequestMetrics reports every request's method, status and latency to observer.
func RequestMetrics(observer HTTPObserver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if observer == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(wrapped, r)
			observer.ObserveHTTP(r.Method, wrapped.statusCode, time.Since(start))
		})
	}
}
