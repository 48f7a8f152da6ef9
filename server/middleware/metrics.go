package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/socialwiz/wingman/server/metrics"
)

// PrometheusMetrics middleware records HTTP metrics using Prometheus.
func PrometheusMetrics(m *metrics.Metrics) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Track active requests
			m.ActiveRequests.WithLabelValues(r.URL.Path).Inc()
			defer m.ActiveRequests.WithLabelValues(r.URL.Path).Dec()

			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(rw, r)

			duration := time.Since(start).Seconds()
			status := strconv.Itoa(rw.statusCode)

			m.RequestsTotal.WithLabelValues(r.URL.Path, status).Inc()
			m.RequestDuration.WithLabelValues(r.URL.Path).Observe(duration)

			if rw.statusCode >= 500 {
				m.ErrorsTotal.WithLabelValues("server_error").Inc()
			} else if rw.statusCode >= 400 {
				m.ErrorsTotal.WithLabelValues("client_error").Inc()
			}
			if rw.statusCode == http.StatusTooManyRequests {
				m.RateLimitHits.WithLabelValues(clientIP(r)).Inc()
			}
		})
	}
}

// clientIP strips the port from RemoteAddr.
func clientIP(r *http.Request) string {
	ip := r.RemoteAddr
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}
	return ip
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.statusCode = code
		rw.ResponseWriter.WriteHeader(code)
		rw.wroteHeader = true
	}
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.wroteHeader {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}
