package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Pipeline stage names used as the "stage" label.
const (
	StageEmbed    = "embed"
	StageSearch   = "search"
	StageGenerate = "generate"
	StageTotal    = "total"
)

// Metrics holds the pipeline collectors on a private registry.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	queries            *prometheus.CounterVec
	fallbacks          prometheus.Counter
	topSimilarity      prometheus.Histogram
	stageLatency       *prometheus.HistogramVec
	generationFailures prometheus.Counter
	promptTokens       prometheus.Histogram
	queryLogDropped    prometheus.Counter
}

// NewMetrics creates the collectors and registers them, together with the
// Go runtime and process collectors, on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lens_queries_total",
			Help: "Queries handled, by intent and outcome",
		}, []string{"intent", "outcome"}),
		fallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lens_retrieval_fallback_total",
			Help: "Searches where the similarity gate kept too few chunks and the top results were used instead",
		}),
		topSimilarity: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "lens_retrieval_top_similarity",
			Help:    "Similarity of the best retrieved chunk",
			Buckets: []float64{0.2, 0.3, 0.35, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0},
		}),
		stageLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lens_stage_latency_seconds",
			Help:    "Latency of pipeline stages",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"stage"}),
		generationFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lens_generation_failures_total",
			Help: "Answer generations that failed and were replaced by an error answer",
		}),
		promptTokens: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "lens_prompt_tokens",
			Help:    "Estimated prompt size in tokens",
			Buckets: []float64{250, 500, 1000, 1500, 2000, 3000, 4000, 6000, 8000},
		}),
		queryLogDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lens_query_log_dropped_total",
			Help: "Query log entries dropped because the buffer was full",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m.registry.MustRegister(m.Collectors()...)
	return m
}

// Collectors exposes the pipeline collectors.
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.queries, m.fallbacks, m.topSimilarity, m.stageLatency,
		m.generationFailures, m.promptTokens, m.queryLogDropped,
	}
}

// Registry returns the registry the collectors are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// IncQuery counts a handled query.
func (m *Metrics) IncQuery(intent, outcome string) {
	if m == nil {
		return
	}
	m.queries.WithLabelValues(intent, outcome).Inc()
}

// ObserveRetrieval records the gate outcome of one search.
func (m *Metrics) ObserveRetrieval(topSimilarity float64, usedFallback bool) {
	if m == nil {
		return
	}
	if topSimilarity >= 0 {
		m.topSimilarity.Observe(topSimilarity)
	}
	if usedFallback {
		m.fallbacks.Inc()
	}
}

// ObserveStage records the latency of a stage that began at start.
func (m *Metrics) ObserveStage(stage string, start time.Time) {
	if m == nil {
		return
	}
	m.stageLatency.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

// ObserveGeneration records prompt size and whether the call failed.
func (m *Metrics) ObserveGeneration(promptTokens int, failed bool) {
	if m == nil {
		return
	}
	m.promptTokens.Observe(float64(promptTokens))
	if failed {
		m.generationFailures.Inc()
	}
}

// IncQueryLogDropped counts a query log entry that could not be buffered.
func (m *Metrics) IncQueryLogDropped() {
	if m == nil {
		return
	}
	m.queryLogDropped.Inc()
}
