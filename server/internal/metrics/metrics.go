// Package metrics instruments pipeline invocations with Prometheus
// collectors and exposes them over HTTP.
package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/launchdash/launchdash/pkg/types"
)

// Outcome label values.
const (
	OutcomeOK          = "ok"
	OutcomeUnknownSite = "unknown_site"
	OutcomeError       = "error"
)

// Recorder holds the dashboard collectors on a private registry so tests
// can build as many as they need.
type Recorder struct {
	reg       *prometheus.Registry
	requests  *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	points    prometheus.Histogram
	sessions  prometheus.Gauge
	datasetSz prometheus.Gauge
}

// New creates a Recorder with all collectors registered.
func New() *Recorder {
	r := &Recorder{
		reg: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "launchdash",
			Name:      "pipeline_requests_total",
			Help:      "Pipeline invocations by operation, transport and outcome.",
		}, []string{"operation", "transport", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "launchdash",
			Name:      "pipeline_duration_seconds",
			Help:      "Pipeline invocation latency.",
			Buckets:   []float64{.00005, .0001, .0005, .001, .005, .01, .05},
		}, []string{"operation"}),
		points: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "launchdash",
			Name:      "scatter_points",
			Help:      "Points returned per payload filter.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 6),
		}),
		sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "launchdash",
			Name:      "ws_sessions",
			Help:      "Connected WebSocket dashboard sessions.",
		}),
		datasetSz: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "launchdash",
			Name:      "dataset_records",
			Help:      "Launch records loaded at startup.",
		}),
	}
	r.reg.MustRegister(r.requests, r.duration, r.points, r.sessions, r.datasetSz)
	return r
}

// Observe records one pipeline invocation that started at start.
func (r *Recorder) Observe(operation, transport string, start time.Time, err error) {
	if r == nil {
		return
	}
	r.requests.WithLabelValues(operation, transport, outcome(err)).Inc()
	r.duration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// ObservePoints records the size of one scatter result.
func (r *Recorder) ObservePoints(n int) {
	if r == nil {
		return
	}
	r.points.Observe(float64(n))
}

// SessionOpened and SessionClosed track live WebSocket sessions.
func (r *Recorder) SessionOpened() {
	if r != nil {
		r.sessions.Inc()
	}
}

func (r *Recorder) SessionClosed() {
	if r != nil {
		r.sessions.Dec()
	}
}

// SetDatasetSize records the number of loaded records.
func (r *Recorder) SetDatasetSize(n int) {
	if r != nil {
		r.datasetSz.Set(float64(n))
	}
}

// Registry exposes the underlying registry for gathering in tests.
func (r *Recorder) Registry() *prometheus.Registry { return r.reg }

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

func outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, types.ErrUnknownSite):
		return OutcomeUnknownSite
	default:
		return OutcomeError
	}
}
