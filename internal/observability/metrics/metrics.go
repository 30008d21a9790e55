// Package metrics provides Prometheus metrics for observability.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "speech_transcript_formatter"

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	// Run metrics
	RunsTotal    *prometheus.CounterVec
	RunErrors    *prometheus.CounterVec
	RunDuration  prometheus.Histogram
	DiarFallback prometheus.Counter

	// Pass metrics
	UnitsResolved       *prometheus.CounterVec
	UnknownAttributions prometheus.Counter
	PassagesBuilt       prometheus.Counter
	ParagraphsRendered  *prometheus.CounterVec
	SpeakersPerRun      prometheus.Histogram

	// Kafka publish metrics
	KafkaPublishTotal   *prometheus.CounterVec
	KafkaPublishErrors  *prometheus.CounterVec
	KafkaPublishLatency *prometheus.HistogramVec

	// Transport metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// DefaultMetrics is the global metrics instance, registered with the default registry.
var DefaultMetrics = NewMetrics(prometheus.DefaultRegisterer)

// NewMetrics creates all metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		// Run metrics
		RunsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Total number of completed render runs by output path",
		}, []string{"path"}),
		RunErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "run_errors_total",
			Help:      "Total number of failed render runs",
		}, []string{"reason"}),
		RunDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of render runs in seconds",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}),
		DiarFallback: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "diarization_fallbacks_total",
			Help:      "Diarized runs that fell back to plain formatting for lack of speaker signal",
		}),

		// Pass metrics
		UnitsResolved: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "units_resolved_total",
			Help:      "Total number of text units attributed to a speaker",
		}, []string{"mode"}),
		UnknownAttributions: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unknown_attributions_total",
			Help:      "Total number of text units resolved to the Unknown speaker",
		}),
		PassagesBuilt: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "passages_built_total",
			Help:      "Total number of same-speaker passages built",
		}),
		ParagraphsRendered: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "paragraphs_rendered_total",
			Help:      "Total number of paragraphs rendered",
		}, []string{"path"}),
		SpeakersPerRun: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "speakers_per_run",
			Help:      "Distinct labeled speakers per diarized run",
			Buckets:   []float64{1, 2, 3, 4, 6, 8, 12, 16},
		}),

		// Kafka publish metrics
		KafkaPublishTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_publish_total",
			Help:      "Total number of Kafka messages published",
		}, []string{"topic", "event_type"}),
		KafkaPublishErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_publish_errors_total",
			Help:      "Total number of Kafka publish errors",
		}, []string{"topic", "event_type"}),
		KafkaPublishLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "kafka_publish_latency_seconds",
			Help:      "Kafka publish latency in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"topic"}),

		// Transport metrics
		RequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Total number of API requests",
		}, []string{"transport", "method", "code"}),
		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "API request duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"transport", "method"}),
	}
}

// RecordRun records a completed run.
func (m *Metrics) RecordRun(path string, paragraphs int, durationSeconds float64) {
	m.RunsTotal.WithLabelValues(path).Inc()
	m.ParagraphsRendered.WithLabelValues(path).Add(float64(paragraphs))
	m.RunDuration.Observe(durationSeconds)
}

// RecordRunError records a failed run.
func (m *Metrics) RecordRunError(reason string) {
	m.RunErrors.WithLabelValues(reason).Inc()
}

// RecordFallback records a diarized run rendered without speaker labels.
func (m *Metrics) RecordFallback() {
	m.DiarFallback.Inc()
}

// RecordResolved records one resolver pass.
func (m *Metrics) RecordResolved(mode string, units, unknown int) {
	m.UnitsResolved.WithLabelValues(mode).Add(float64(units))
	m.UnknownAttributions.Add(float64(unknown))
}

// RecordPassages records the passages built and speakers labeled by one run.
func (m *Metrics) RecordPassages(passages, speakers int) {
	m.PassagesBuilt.Add(float64(passages))
	m.SpeakersPerRun.Observe(float64(speakers))
}

// RecordKafkaPublish records a Kafka publish attempt.
func (m *Metrics) RecordKafkaPublish(topic, eventType string, err error, latencySeconds float64) {
	m.KafkaPublishTotal.WithLabelValues(topic, eventType).Inc()
	m.KafkaPublishLatency.WithLabelValues(topic).Observe(latencySeconds)
	if err != nil {
		m.KafkaPublishErrors.WithLabelValues(topic, eventType).Inc()
	}
}

// RecordRequest records an API request.
func (m *Metrics) RecordRequest(transport, method, code string, durationSeconds float64) {
	m.RequestsTotal.WithLabelValues(transport, method, code).Inc()
	m.RequestDuration.WithLabelValues(transport, method).Observe(durationSeconds)
}
