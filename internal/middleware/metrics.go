package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/diyoadisuta/SistemInformasiGadaiBiru/internal/metrics"
)

const slowRequestThreshold = time.Second

// HTTPMetrics records request counts and latencies labelled by the matched
// chi route pattern, and warns about slow requests.
func HTTPMetrics(m *metrics.Metrics, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			if m != nil {
				m.HTTPRequestsInFlight.Inc()
				defer m.HTTPRequestsInFlight.Dec()
			}

			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			duration := time.Since(start)
			path := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					path = pattern
				}
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			statusCode := strconv.Itoa(status)

			m.RecordHTTPRequest(r.Method, path, statusCode, duration)

			if duration > slowRequestThreshold {
				logger.Warn("Slow HTTP request",
					zap.String("method", r.Method),
					zap.String("path", path),
					zap.String("status_code", statusCode),
					zap.Duration("duration", duration),
					zap.Int("response_size", ww.BytesWritten()),
				)
			}
		})
	}
}
