package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequests counts handled HTTP requests
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jewellery_http_requests_total",
			Help: "Total number of HTTP requests handled",
		},
		[]string{"method", "path", "status"},
	)

	// InterestCalculations counts per-loan interest evaluations
	InterestCalculations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jewellery_interest_calculations_total",
			Help: "Number of per-loan interest calculations",
		},
		[]string{"interest_type"},
	)

	// WorkbookExports counts xlsx exports produced
	WorkbookExports = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "jewellery_workbook_exports_total",
			Help: "Number of workbook exports produced",
		},
	)
)

// Middleware records a counter per handled request.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)
		HTTPRequests.WithLabelValues(r.Method, r.URL.Path, strconv.Itoa(recorder.status)).Inc()
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}
