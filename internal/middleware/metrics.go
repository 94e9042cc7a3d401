package middleware

import (
	"net/http"
	"time"

	"github.com/hitoshi/blogapi/internal/metrics"
)

// NewMetricsMiddleware はHTTPステータスとレイテンシをPrometheusに記録する
// ミドルウェアを返す。
func NewMetricsMiddleware(collector metrics.HTTPCollector) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			rec := &statusRecorder{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			next.ServeHTTP(rec, r)

			collector.RecordHTTPStatus(rec.statusCode)
			collector.RecordHTTPLatency(time.Since(start))
		})
	}
}
