// Package metrics exposes Prometheus collectors for generation runs and the
// HTTP boundary.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "heightfield"

// Run outcomes used as the outcome label of heightfield_runs_total.
const (
	OutcomeDone      = "done"
	OutcomeFailed    = "failed"
	OutcomeCancelled = "cancelled"
)

// Recorder owns the collectors. A nil *Recorder is valid and records
// nothing, so components can take one unconditionally.
type Recorder struct {
	stageDuration *prometheus.HistogramVec
	runs          *prometheus.CounterVec
	superseded    prometheus.Counter
	reqDuration   *prometheus.HistogramVec
	reqInflight   prometheus.Gauge
}

// New creates the collectors and registers them on reg. A nil reg skips
// registration, which is what tests want.
func New(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Time spent applying a pipeline stage.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"stage"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Generation runs by outcome.",
		}, []string{"outcome"}),
		superseded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_superseded_total",
			Help:      "Runs whose result was discarded because a newer request arrived.",
		}),
		reqDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		}, []string{"method", "route", "status"}),
		reqInflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_inflight",
			Help:      "HTTP requests currently being served.",
		}),
	}

	if reg != nil {
		reg.MustRegister(r.stageDuration, r.runs, r.superseded, r.reqDuration, r.reqInflight)
	}
	return r
}

// ObserveStage records how long one stage took.
func (r *Recorder) ObserveStage(stage string, d time.Duration) {
	if r == nil {
		return
	}
	r.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// RunFinished counts a completed or failed run.
func (r *Recorder) RunFinished(outcome string) {
	if r == nil {
		return
	}
	r.runs.WithLabelValues(outcome).Inc()
}

// RunSuperseded counts a discarded stale result.
func (r *Recorder) RunSuperseded() {
	if r == nil {
		return
	}
	r.superseded.Inc()
}

// RequestStarted marks an HTTP request as in flight. The returned func
// records its duration and must be called once the response is written.
func (r *Recorder) RequestStarted(method string) func(route string, status int) {
	if r == nil {
		return func(string, int) {}
	}
	start := time.Now()
	r.reqInflight.Inc()
	return func(route string, status int) {
		r.reqInflight.Dec()
		r.reqDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(time.Since(start).Seconds())
	}
}
