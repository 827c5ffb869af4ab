package metrics

import "github.com/prometheus/client_golang/prometheus"

// Query pipeline Prometheus metrics.
var (
	QueryRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "slaquery",
			Name:      "query_requests_total",
			Help:      "Total number of query resolutions by outcome",
		},
		[]string{"outcome"}, // cache_hit / resolved / no_result / rate_limited / error
	)

	QueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "slaquery",
			Name:      "query_duration_seconds",
			Help:      "Query resolution duration in seconds, admission to terminal state",
			Buckets:   []float64{0.005, 0.025, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"outcome"},
	)

	CacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "slaquery",
			Name:      "response_cache_total",
			Help:      "Response cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	EmbeddingRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "slaquery",
			Name:      "embedding_requests_total",
			Help:      "Total number of embedding requests",
		},
		[]string{"model", "status"},
	)

	EmbeddingRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "slaquery",
			Name:      "embedding_request_duration_seconds",
			Help:      "Embedding request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"model"},
	)

	GenerationRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "slaquery",
			Name:      "generation_requests_total",
			Help:      "Total number of completion requests",
		},
		[]string{"model", "status"},
	)

	GenerationRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "slaquery",
			Name:      "generation_request_duration_seconds",
			Help:      "Completion request duration in seconds",
			Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"model"},
	)

	GenerationTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "slaquery",
			Name:      "generation_tokens_total",
			Help:      "Total completion tokens consumed",
		},
		[]string{"model", "type"}, // "prompt" / "completion" / "total"
	)
)

var pipelineMetricsRegistered bool

// RegisterPipelineMetrics registers query pipeline metrics. Must be called once from main.
func RegisterPipelineMetrics() {
	if pipelineMetricsRegistered {
		return
	}
	prometheus.MustRegister(QueryRequestsTotal)
	prometheus.MustRegister(QueryDuration)
	prometheus.MustRegister(CacheTotal)
	prometheus.MustRegister(EmbeddingRequestsTotal)
	prometheus.MustRegister(EmbeddingRequestDuration)
	prometheus.MustRegister(GenerationRequestsTotal)
	prometheus.MustRegister(GenerationRequestDuration)
	prometheus.MustRegister(GenerationTokensTotal)
	pipelineMetricsRegistered = true
}
