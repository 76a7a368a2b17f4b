// Package prompush implements a Prometheus Pushgateway backend for the
// metrics package.
//
// Validation runs are short-lived (one CLI invocation or one upload), so
// instead of exposing a scrape endpoint the backend keeps its own registry and
// pushes it to a Pushgateway on Flush, grouped under the job name.
package prompush

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/Karanpr-18/Excel-cleaning/internal/metrics"
)

// Backend is a Prometheus Pushgateway metrics backend.
type Backend struct {
	gatewayURL string // e.g. http://pushgateway:9091
	jobName    string // Pushgateway "job" group
	reg        *prometheus.Registry

	stepCounter  *prometheus.CounterVec // validation_step_total
	stepDuration *prometheus.SummaryVec // validation_step_duration_seconds
	rowCounter   *prometheus.CounterVec // validation_rows_total
	errorCounter *prometheus.CounterVec // validation_errors_total
}

// NewBackend constructs a Pushgateway backend. An empty jobName defaults to
// "validator".
func NewBackend(jobName, gatewayURL string) (*Backend, error) {
	if gatewayURL == "" {
		return nil, fmt.Errorf("prompush: gateway URL is required")
	}
	if jobName == "" {
		jobName = "validator"
	}

	b := &Backend{
		gatewayURL: gatewayURL,
		jobName:    jobName,
		reg:        prometheus.NewRegistry(),
		stepCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metrics.StepTotal,
			Help: "Validation step executions by profile, step and status.",
		}, []string{"profile", "step", "status"}),
		stepDuration: prometheus.NewSummaryVec(prometheus.SummaryOpts{
			Name:       metrics.StepDuration,
			Help:       "Validation step duration in seconds by profile, step and status.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		}, []string{"profile", "step", "status"}),
		rowCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metrics.RowsTotal,
			Help: "Data rows checked by profile.",
		}, []string{"profile"}),
		errorCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metrics.ErrorsTotal,
			Help: "Failing cells by profile and column.",
		}, []string{"profile", "column"}),
	}

	for _, c := range []prometheus.Collector{b.stepCounter, b.stepDuration, b.rowCounter, b.errorCounter} {
		if err := b.reg.Register(c); err != nil {
			return nil, fmt.Errorf("prompush: register collector: %w", err)
		}
	}
	return b, nil
}

// IncCounter routes a counter update to its collector. Unknown names are ignored.
func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	switch name {
	case metrics.StepTotal:
		if b.stepCounter != nil {
			b.stepCounter.WithLabelValues(labels["profile"], labels["step"], labels["status"]).Add(delta)
		}
	case metrics.RowsTotal:
		if b.rowCounter != nil {
			b.rowCounter.WithLabelValues(labels["profile"]).Add(delta)
		}
	case metrics.ErrorsTotal:
		if b.errorCounter != nil {
			b.errorCounter.WithLabelValues(labels["profile"], labels["column"]).Add(delta)
		}
	}
}

// ObserveHistogram records a step duration. Other names are ignored.
func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	if name != metrics.StepDuration || b.stepDuration == nil {
		return
	}
	b.stepDuration.WithLabelValues(labels["profile"], labels["step"], labels["status"]).Observe(value)
}

// Flush pushes the current registry to the Pushgateway.
func (b *Backend) Flush() error {
	return push.New(b.gatewayURL, b.jobName).
		Gatherer(b.reg).
		Push()
}
