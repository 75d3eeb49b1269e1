package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// EngineMetrics exposes ingestion and retrieval counters on a private
// registry. It implements the use-case observer interfaces.
type EngineMetrics struct {
	registry *prometheus.Registry
	service  string

	ingestTotal       *prometheus.CounterVec
	ingestDuration    *prometheus.HistogramVec
	ingestInFlight    prometheus.Gauge
	chunksPerDocument prometheus.Histogram
	embedderAvailable prometheus.Gauge

	retrievalTotal    *prometheus.CounterVec
	retrievalDuration *prometheus.HistogramVec
	contextChunks     prometheus.Histogram
}

func NewEngineMetrics(service string) *EngineMetrics {
	registry := prometheus.NewRegistry()

	ingestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kbe",
			Subsystem: "ingest",
			Name:      "documents_total",
			Help:      "Total ingested documents by outcome.",
		},
		[]string{"service", "status"},
	)
	ingestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "kbe",
			Subsystem: "ingest",
			Name:      "duration_seconds",
			Help:      "Document ingestion duration in seconds by outcome.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "status"},
	)
	ingestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "kbe",
			Subsystem: "ingest",
			Name:      "in_flight",
			Help:      "Number of in-flight document ingestions.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	chunksPerDocument := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "kbe",
			Subsystem: "ingest",
			Name:      "chunks_per_document",
			Help:      "Distribution of persisted chunks per ingested document.",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 50, 100, 200},
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	embedderAvailable := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "kbe",
			Subsystem: "embedder",
			Name:      "available",
			Help:      "Whether the embedding backend passed its startup probe.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)

	retrievalTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kbe",
			Subsystem: "retrieval",
			Name:      "requests_total",
			Help:      "Total retrieval requests by mode.",
		},
		[]string{"service", "mode"},
	)
	retrievalDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "kbe",
			Subsystem: "retrieval",
			Name:      "duration_seconds",
			Help:      "Retrieval duration in seconds by mode.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "mode"},
	)
	contextChunks := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "kbe",
			Subsystem: "retrieval",
			Name:      "context_chunks",
			Help:      "Distribution of chunks included in retrieved context.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21},
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)

	registry.MustRegister(
		ingestTotal,
		ingestDuration,
		ingestInFlight,
		chunksPerDocument,
		embedderAvailable,
		retrievalTotal,
		retrievalDuration,
		contextChunks,
	)

	return &EngineMetrics{
		registry:          registry,
		service:           service,
		ingestTotal:       ingestTotal,
		ingestDuration:    ingestDuration,
		ingestInFlight:    ingestInFlight,
		chunksPerDocument: chunksPerDocument,
		embedderAvailable: embedderAvailable,
		retrievalTotal:    retrievalTotal,
		retrievalDuration: retrievalDuration,
		contextChunks:     contextChunks,
	}
}

func (m *EngineMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *EngineMetrics) StartIngest() {
	m.ingestInFlight.Inc()
}

func (m *EngineMetrics) ObserveIngest(succeeded bool, duration time.Duration, chunks int) {
	m.ingestInFlight.Dec()

	status := "completed"
	if !succeeded {
		status = "failed"
	}
	m.ingestTotal.WithLabelValues(m.service, status).Inc()
	m.ingestDuration.WithLabelValues(m.service, status).Observe(duration.Seconds())
	if succeeded {
		m.chunksPerDocument.Observe(float64(chunks))
	}
}

func (m *EngineMetrics) ObserveRetrieval(mode string, duration time.Duration, chunks int) {
	if mode == "" {
		mode = "unknown"
	}
	m.retrievalTotal.WithLabelValues(m.service, mode).Inc()
	m.retrievalDuration.WithLabelValues(m.service, mode).Observe(duration.Seconds())
	m.contextChunks.Observe(float64(chunks))
}

func (m *EngineMetrics) SetEmbedderAvailable(available bool) {
	if available {
		m.embedderAvailable.Set(1)
		return
	}
	m.embedderAvailable.Set(0)
}
