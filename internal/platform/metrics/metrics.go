package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

var (
	// HTTP Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "guidematch_http_requests_total",
			Help: "Total number of HTTP requests by method, route and status",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "guidematch_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// Account Metrics
	LoginsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "guidematch_logins_total",
			Help: "Total number of login attempts by role and outcome",
		},
		[]string{"role", "outcome"},
	)

	RegistrationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "guidematch_registrations_total",
			Help: "Total number of registration attempts by role and outcome",
		},
		[]string{"role", "outcome"},
	)

	// MatchResults observes how many guides each profile lookup matched.
	MatchResults = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "guidematch_match_results",
			Help:    "Number of matching guides returned per tourist profile view",
			Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100},
		},
	)
)

func outcome(err error) string {
	if err != nil {
		return OutcomeFailure
	}
	return OutcomeSuccess
}

// RecordLogin counts a login attempt for role.
func RecordLogin(role string, err error) {
	LoginsTotal.WithLabelValues(role, outcome(err)).Inc()
}

// RecordRegistration counts a registration attempt for role.
func RecordRegistration(role string, err error) {
	RegistrationsTotal.WithLabelValues(role, outcome(err)).Inc()
}

// RecordMatches observes the size of one match result.
func RecordMatches(n int) {
	MatchResults.Observe(float64(n))
}

// RecordHTTPRequest records one served request.
func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// Middleware records request counts and latency labelled by the chi route
// pattern, so path parameters do not explode label cardinality.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		RecordHTTPRequest(r.Method, route, status, time.Since(start))
	})
}
