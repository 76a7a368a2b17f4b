// Package metrics records operational metrics for validation runs behind a
// small, backend-agnostic interface.
//
// A process installs one Backend with SetBackend; until it does, every call
// goes to a no-op backend, so instrumentation is always safe. Concrete
// systems live in sub-packages (prompush for a Prometheus Pushgateway,
// datadog for DogStatsD) and the core never imports them.
package metrics

import (
	"sync"
	"time"
)

// Metric names shared by all backends.
const (
	StepTotal    = "validation_step_total"
	StepDuration = "validation_step_duration_seconds"
	RowsTotal    = "validation_rows_total"
	ErrorsTotal  = "validation_errors_total"
)

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a value in a latency/duration style metric.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes or flushes metrics, if the backend needs it (e.g. Pushgateway).
	Flush() error
}

type nopBackend struct{}

func (nopBackend) IncCounter(string, float64, Labels)       {}
func (nopBackend) ObserveHistogram(string, float64, Labels) {}
func (nopBackend) Flush() error                             { return nil }

var (
	mu      sync.RWMutex
	backend Backend = nopBackend{}
)

// SetBackend installs a concrete backend. Passing nil keeps the existing backend.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	mu.Lock()
	backend = b
	mu.Unlock()
}

func current() Backend {
	mu.RLock()
	defer mu.RUnlock()
	return backend
}

// Flush delegates to the current backend.
func Flush() error {
	return current().Flush()
}

// RecordStep counts one execution of a run step ("load", "validate",
// "write") for a profile and records its duration.
func RecordStep(profile, step string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	lbls := Labels{
		"profile": profile,
		"step":    step,
		"status":  status,
	}
	b := current()
	b.IncCounter(StepTotal, 1, lbls)
	b.ObserveHistogram(StepDuration, d.Seconds(), lbls)
}

// RecordRows adds the number of data rows a run checked.
func RecordRows(profile string, n int) {
	if n <= 0 {
		return
	}
	current().IncCounter(RowsTotal, float64(n), Labels{"profile": profile})
}

// RecordErrors adds failing cells per column.
func RecordErrors(profile, column string, n int) {
	if n <= 0 {
		return
	}
	current().IncCounter(ErrorsTotal, float64(n), Labels{"profile": profile, "column": column})
}
