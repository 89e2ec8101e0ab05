// internal/app/system/metrics/metrics.go
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Submission outcomes and saga steps.
const (
	OutcomeRecorded         = "recorded"
	OutcomeAlreadySubmitted = "already_submitted"
	OutcomeRejected         = "rejected"
	OutcomeIndexFailed      = "index_failed"
	OutcomeLeaderboardFail  = "leaderboard_failed"
)

var (
	SubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "internhub_submissions_total",
			Help: "Submission attempts by outcome",
		},
		[]string{"track", "kind", "outcome"},
	)

	ResponseLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "internhub_response_latency_seconds",
			Help:    "Clamped time between assignment creation and submission",
			Buckets: []float64{60, 300, 900, 1800, 3600, 3 * 3600, 6 * 3600, 12 * 3600, 86400},
		},
		[]string{"track"},
	)

	LeaderboardCache = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "internhub_leaderboard_cache_total",
			Help: "Leaderboard cache lookups by result",
		},
		[]string{"result"},
	)

	JobRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "internhub_job_runs_total",
			Help: "Background job runs by outcome",
		},
		[]string{"job", "outcome"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method", "status"},
	)
)

// Handler serves the default registry.
func Handler() http.Handler { return promhttp.Handler() }

// Middleware records APIRequestDuration keyed by the chi route pattern, so
// path parameters do not explode label cardinality.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		path := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil {
			if p := rc.RoutePattern(); p != "" {
				path = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		APIRequestDuration.WithLabelValues(path, r.Method, strconv.Itoa(status)).
			Observe(time.Since(start).Seconds())
	})
}
