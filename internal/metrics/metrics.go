// Package metrics records warehouse build metrics on a dedicated Prometheus registry.
package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

const namespace = "ff_warehouse"

// Run outcomes
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// Recorder holds the build metrics. A nil Recorder records nothing.
type Recorder struct {
	registry *prometheus.Registry

	rows         *prometheus.CounterVec
	runs         *prometheus.CounterVec
	stepDuration *prometheus.HistogramVec
	lastSuccess  *prometheus.GaugeVec
}

// New creates a recorder with its own registry
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),

		rows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_written_total",
			Help:      "Rows written per step and category",
		}, []string{"step", "category"}),

		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Finished runs per command and outcome",
		}, []string{"command", "status"}),

		stepDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "step_duration_seconds",
			Help:      "Duration of one step over one month",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 14),
		}, []string{"step"}),

		lastSuccess: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful run per command",
		}, []string{"command"}),
	}

	r.registry.MustRegister(r.rows, r.runs, r.stepDuration, r.lastSuccess)
	return r
}

// Registry returns the registry holding the recorder's collectors
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// AddRows counts rows written by a step
func (r *Recorder) AddRows(step, category string, n int) {
	if r == nil || n <= 0 {
		return
	}
	r.rows.WithLabelValues(step, category).Add(float64(n))
}

// ObserveStep records how long a step took for one month
func (r *Recorder) ObserveStep(step string, d time.Duration) {
	if r == nil {
		return
	}
	r.stepDuration.WithLabelValues(step).Observe(d.Seconds())
}

// RunFinished counts a finished run. Successful runs also set the last-success gauge.
func (r *Recorder) RunFinished(command string, at time.Time, err error) {
	if r == nil {
		return
	}
	if err != nil {
		r.runs.WithLabelValues(command, StatusFailure).Inc()
		return
	}
	r.runs.WithLabelValues(command, StatusSuccess).Inc()
	r.lastSuccess.WithLabelValues(command).Set(float64(at.Unix()))
}

// Push sends the registry to a Pushgateway under the given job name
func (r *Recorder) Push(ctx context.Context, url, job string) error {
	if r == nil || url == "" {
		return nil
	}
	if err := push.New(url, job).Gatherer(r.registry).PushContext(ctx); err != nil {
		return fmt.Errorf("failed to push metrics: %w", err)
	}
	return nil
}
