package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flightplans_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"path", "method", "code"},
	)

	httpDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "flightplans_http_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method"},
	)

	trajectoriesGenerated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flightplans_trajectories_generated_total",
			Help: "Trajectories generated, by arc variant.",
		},
		[]string{"variant"},
	)

	missionsExported = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flightplans_missions_exported_total",
			Help: "Mission files exported, by format.",
		},
		[]string{"format"},
	)

	observePairsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "flightplans_observe_pairs_total",
			Help: "Telescope/trajectory pointing pairs computed.",
		},
	)

	observeWorkers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "flightplans_observe_workers",
			Help: "Size of the pointing summary worker pool.",
		},
	)
)

func init() {
	prometheus.MustRegister(httpRequestsTotal)
	prometheus.MustRegister(httpDurationSeconds)
	prometheus.MustRegister(trajectoriesGenerated)
	prometheus.MustRegister(missionsExported)
	prometheus.MustRegister(observePairsTotal)
	prometheus.MustRegister(observeWorkers)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// TrajectoryGenerated counts one generated trajectory of the given variant.
func TrajectoryGenerated(variant string) {
	trajectoriesGenerated.WithLabelValues(variant).Inc()
}

// MissionExported counts one exported mission file of the given format.
func MissionExported(format string) {
	missionsExported.WithLabelValues(format).Inc()
}

// ObservePairs counts pointing pairs computed by a summary.
func ObservePairs(n int) {
	observePairsTotal.Add(float64(n))
}

// SetObserveWorkers records the configured worker pool size.
func SetObserveWorkers(n int) {
	observeWorkers.Set(float64(n))
}

// knownRoutes are the exact paths the server serves.
var knownRoutes = map[string]bool{
	"/":            true,
	"/healthz":     true,
	"/readyz":      true,
	"/metrics":     true,
	"/api/v1/site": true,
	"/api/v1/plan": true,
}

// normalizeRoute maps a request path to a bounded label set: known routes
// pass through, parameterized export paths collapse to one label, and
// everything else (scanners, bots) becomes "other".
func normalizeRoute(path string) string {
	if knownRoutes[path] {
		return path
	}
	if strings.HasPrefix(path, "/api/v1/export/") {
		return "/api/v1/export/{format}"
	}
	return "other"
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Middleware records request count and duration for each request.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		code := strconv.Itoa(rw.statusCode)
		route := normalizeRoute(r.URL.Path)

		httpRequestsTotal.WithLabelValues(route, r.Method, code).Inc()
		httpDurationSeconds.WithLabelValues(route, r.Method).Observe(duration)
	})
}
