package metrics

import "github.com/prometheus/client_golang/prometheus"

// AI provider Prometheus metrics.
var (
	EmbeddingRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "refind",
			Name:      "embedding_requests_total",
			Help:      "Total number of embedding requests",
		},
		[]string{"model", "status"},
	)

	EmbeddingRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "refind",
			Name:      "embedding_request_duration_seconds",
			Help:      "Embedding request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"model"},
	)

	EmbeddingCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "refind",
			Name:      "embedding_cache_total",
			Help:      "Embedding cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	ChatRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "refind",
			Name:      "chat_requests_total",
			Help:      "Total number of chat completion requests",
		},
		[]string{"model", "status"},
	)

	ChatRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "refind",
			Name:      "chat_request_duration_seconds",
			Help:      "Chat completion request duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"model"},
	)

	SemanticFallbackTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "refind",
			Name:      "semantic_fallback_total",
			Help:      "Semantic search fallbacks to keyword search, by failed stage",
		},
		[]string{"stage"}, // "precondition" / "remote_call" / "parse"
	)

	SemanticIndicesDroppedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "refind",
			Name:      "semantic_indices_dropped_total",
			Help:      "Out-of-range item indices discarded from model responses",
		},
	)
)

// RegisterAIMetrics registers AI metrics explicitly (no init()).
// Call once from the composition root.
func RegisterAIMetrics() {
	prometheus.MustRegister(
		EmbeddingRequestsTotal,
		EmbeddingRequestDuration,
		EmbeddingCacheTotal,
		ChatRequestsTotal,
		ChatRequestDuration,
		SemanticFallbackTotal,
		SemanticIndicesDroppedTotal,
	)
}
