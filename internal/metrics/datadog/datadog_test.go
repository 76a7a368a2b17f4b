package datadog

import (
	"reflect"
	"testing"

	"github.com/DataDog/datadog-go/v5/statsd"

	"github.com/Karanpr-18/Excel-cleaning/internal/metrics"
)

// recordingClient captures calls made through statsd.ClientInterface.
type recordingClient struct {
	statsd.NoOpClient
	counts     []string
	histograms []string
	tags       [][]string
	flushed    int
}

func (r *recordingClient) Count(name string, value int64, tags []string, rate float64) error {
	r.counts = append(r.counts, name)
	r.tags = append(r.tags, tags)
	return nil
}

func (r *recordingClient) Histogram(name string, value float64, tags []string, rate float64) error {
	r.histograms = append(r.histograms, name)
	return nil
}

func (r *recordingClient) Flush() error {
	r.flushed++
	return nil
}

func TestNewBackend_RequiresAddr(t *testing.T) {
	t.Parallel()

	if _, err := NewBackend(Config{}); err == nil {
		t.Fatal("expected error for empty Addr")
	}
}

func TestBackend_ForwardsToClient(t *testing.T) {
	t.Parallel()

	rc := &recordingClient{}
	b := &Backend{client: rc}

	b.IncCounter(metrics.ErrorsTotal, 4, metrics.Labels{"profile": "kadam", "column": "Baseline Math"})
	b.ObserveHistogram(metrics.StepDuration, 0.25, metrics.Labels{"step": "validate"})
	if err := b.Flush(); err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(rc.counts, []string{metrics.ErrorsTotal}) {
		t.Fatalf("counts = %v", rc.counts)
	}
	if want := []string{"column:Baseline Math", "profile:kadam"}; !reflect.DeepEqual(rc.tags[0], want) {
		t.Fatalf("tags = %v, want %v", rc.tags[0], want)
	}
	if !reflect.DeepEqual(rc.histograms, []string{metrics.StepDuration}) || rc.flushed != 1 {
		t.Fatalf("histograms = %v flushed = %d", rc.histograms, rc.flushed)
	}
}

func TestBackend_NilClient(t *testing.T) {
	t.Parallel()

	var b Backend
	b.IncCounter("x", 1, nil)
	b.ObserveHistogram("x", 1, nil)
	if err := b.Flush(); err != nil {
		t.Fatal(err)
	}
	if labelsToTags(nil) != nil {
		t.Fatal("expected nil tags")
	}
}
