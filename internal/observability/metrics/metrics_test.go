package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_RecordRun(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.RecordRun("diarized", 3, 0.01)
	m.RecordRun("diarized", 2, 0.01)
	m.RecordRun("plain", 1, 0.01)

	if got := testutil.ToFloat64(m.RunsTotal.WithLabelValues("diarized")); got != 2 {
		t.Errorf("expected 2 diarized runs, got %v", got)
	}
	if got := testutil.ToFloat64(m.ParagraphsRendered.WithLabelValues("diarized")); got != 5 {
		t.Errorf("expected 5 diarized paragraphs, got %v", got)
	}
}

func TestMetrics_RecordResolved(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.RecordResolved("overlap", 10, 3)

	if got := testutil.ToFloat64(m.UnitsResolved.WithLabelValues("overlap")); got != 10 {
		t.Errorf("expected 10 units, got %v", got)
	}
	if got := testutil.ToFloat64(m.UnknownAttributions); got != 3 {
		t.Errorf("expected 3 unknown attributions, got %v", got)
	}
}

func TestMetrics_RecordKafkaPublish(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.RecordKafkaPublish("t", "rendered", nil, 0.001)
	m.RecordKafkaPublish("t", "rendered", errors.New("boom"), 0.001)

	if got := testutil.ToFloat64(m.KafkaPublishTotal.WithLabelValues("t", "rendered")); got != 2 {
		t.Errorf("expected 2 publishes, got %v", got)
	}
	if got := testutil.ToFloat64(m.KafkaPublishErrors.WithLabelValues("t", "rendered")); got != 1 {
		t.Errorf("expected 1 publish error, got %v", got)
	}
}

func TestNewMetrics_IsolatedRegistries(t *testing.T) {
	// Registering twice against fresh registries must not panic.
	NewMetrics(prometheus.NewRegistry())
	NewMetrics(prometheus.NewRegistry())
}
