// Package metrics exposes the daemon's operational counters to Prometheus.
//
// The most useful series is aquabot_failures_since_success: it counts failed
// attempts since the last delivered notification, so a permanently broken page
// shows up as a steadily growing value instead of a quiet log stream.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Attempt results
const (
	ResultNotified     = "notified"
	ResultFetchFailed  = "fetch_failed"
	ResultStale        = "stale"
	ResultNotifyFailed = "notify_failed"
)

// Recorder holds the collectors. A nil *Recorder is valid and records nothing.
type Recorder struct {
	registry             *prometheus.Registry
	attempts             *prometheus.CounterVec
	failuresSinceSuccess prometheus.Gauge
	lastSuccess          prometheus.Gauge
	fetchDuration        prometheus.Histogram
}

// New creates a Recorder with its own registry
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "aquabot_attempts_total",
			Help: "Notification attempts by result.",
		}, []string{"result"}),
		failuresSinceSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "aquabot_failures_since_success",
			Help: "Failed attempts since the last delivered notification.",
		}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "aquabot_last_success_timestamp_seconds",
			Help: "Unix time of the last delivered notification.",
		}),
		fetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "aquabot_fetch_duration_seconds",
			Help:    "Time spent fetching and parsing the data page.",
			Buckets: prometheus.DefBuckets,
		}),
	}

	r.registry.MustRegister(r.attempts, r.failuresSinceSuccess, r.lastSuccess, r.fetchDuration)
	return r
}

// Attempt counts one gated attempt with the given result
func (r *Recorder) Attempt(result string) {
	if r == nil {
		return
	}
	r.attempts.WithLabelValues(result).Inc()
}

// FailuresSinceSuccess sets the number of failed attempts since the last success
func (r *Recorder) FailuresSinceSuccess(n int) {
	if r == nil {
		return
	}
	r.failuresSinceSuccess.Set(float64(n))
}

// Success records the time of a delivered notification
func (r *Recorder) Success(at time.Time) {
	if r == nil {
		return
	}
	r.lastSuccess.Set(float64(at.Unix()))
}

// FetchDuration records how long a fetch took
func (r *Recorder) FetchDuration(d time.Duration) {
	if r == nil {
		return
	}
	r.fetchDuration.Observe(d.Seconds())
}

// Registry returns the registry the collectors are registered with
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the collectors in the Prometheus text format
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
