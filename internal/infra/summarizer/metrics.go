package summarizer

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ProviderMetricsRecorder abstracts metrics recording so it can be mocked
// in unit tests and swapped for a non-Prometheus backend.
type ProviderMetricsRecorder interface {
	RecordCompletion(provider string, tier ModelTier, duration time.Duration, inputTokens, outputTokens, cachedTokens int)
	RecordError(provider string)
}

// PrometheusProviderMetrics implements ProviderMetricsRecorder using
// Prometheus metrics, labeled by provider name so all three adapters share
// one set of collectors.
type PrometheusProviderMetrics struct {
	durationHistogram *prometheus.HistogramVec
	tokensCounter     *prometheus.CounterVec
	cachedCounter     *prometheus.CounterVec
	errorCounter      *prometheus.CounterVec
}

var (
	prometheusMetricsInstance *PrometheusProviderMetrics
	prometheusMetricsOnce     sync.Once
)

func getOrCreateHistogramVec(opts prometheus.HistogramOpts, labels []string) *prometheus.HistogramVec {
	h := prometheus.NewHistogramVec(opts, labels)
	if err := prometheus.Register(h); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector.(*prometheus.HistogramVec)
		}
		return promauto.NewHistogramVec(opts, labels)
	}
	return h
}

func getOrCreateCounterVec(opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	c := prometheus.NewCounterVec(opts, labels)
	if err := prometheus.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector.(*prometheus.CounterVec)
		}
		return promauto.NewCounterVec(opts, labels)
	}
	return c
}

// NewPrometheusProviderMetrics creates (or returns the existing singleton)
// Prometheus-based recorder, mirroring the teacher's once-registered
// collector pattern to survive repeated construction in tests.
func NewPrometheusProviderMetrics() *PrometheusProviderMetrics {
	prometheusMetricsOnce.Do(func() {
		prometheusMetricsInstance = &PrometheusProviderMetrics{
			durationHistogram: getOrCreateHistogramVec(prometheus.HistogramOpts{
				Name:    "llm_completion_duration_seconds",
				Help:    "Time taken to complete an LLM provider call",
				Buckets: prometheus.ExponentialBuckets(0.25, 2, 10),
			}, []string{"provider", "tier"}),
			tokensCounter: getOrCreateCounterVec(prometheus.CounterOpts{
				Name: "llm_completion_tokens_total",
				Help: "Total input and output tokens consumed by LLM provider calls",
			}, []string{"provider", "direction"}),
			cachedCounter: getOrCreateCounterVec(prometheus.CounterOpts{
				Name: "llm_completion_cached_tokens_total",
				Help: "Total prompt-cache-served tokens across LLM provider calls",
			}, []string{"provider"}),
			errorCounter: getOrCreateCounterVec(prometheus.CounterOpts{
				Name: "llm_completion_errors_total",
				Help: "Total LLM provider call failures",
			}, []string{"provider"}),
		}
	})
	return prometheusMetricsInstance
}

// RecordCompletion implements ProviderMetricsRecorder.RecordCompletion.
func (p *PrometheusProviderMetrics) RecordCompletion(provider string, tier ModelTier, duration time.Duration, inputTokens, outputTokens, cachedTokens int) {
	p.durationHistogram.WithLabelValues(provider, string(tier)).Observe(duration.Seconds())
	p.tokensCounter.WithLabelValues(provider, "input").Add(float64(inputTokens))
	p.tokensCounter.WithLabelValues(provider, "output").Add(float64(outputTokens))
	if cachedTokens > 0 {
		p.cachedCounter.WithLabelValues(provider).Add(float64(cachedTokens))
	}
}

// RecordError implements ProviderMetricsRecorder.RecordError.
func (p *PrometheusProviderMetrics) RecordError(provider string) {
	p.errorCounter.WithLabelValues(provider).Inc()
}
