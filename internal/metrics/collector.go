// Package metrics provides the Prometheus collector for the pipeline.
// This package is internal and should not be imported by external projects.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// Collector aggregates pipeline counters and gauges.
type Collector struct {
	generationsTotal   *prometheus.CounterVec
	generationDuration *prometheus.HistogramVec
	fallbacksTotal     *prometheus.CounterVec

	cacheHits   prometheus.Counter
	cacheMisses prometheus.Counter
	dedupTotal  prometheus.Counter

	evictionsTotal  prometheus.Counter
	queueDepth      prometheus.Gauge
	activeModels    prometheus.Gauge
	estimatedMemory prometheus.Gauge

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	logger *zap.Logger
}

// NewCollector creates a collector and registers its metrics. A nil
// registerer uses the default Prometheus registry; tests pass their
// own registry so repeated construction does not collide.
func NewCollector(namespace string, reg prometheus.Registerer, logger *zap.Logger) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	factory := promauto.With(reg)

	c := &Collector{
		logger: logger.With(zap.String("component", "metrics")),
	}

	c.generationsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generations_total",
			Help:      "Total number of model generations",
		},
		[]string{"method", "fallback"},
	)

	c.generationDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generation_duration_seconds",
			Help:      "Model generation duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"method"},
	)

	c.fallbacksTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fallbacks_total",
			Help:      "Strategy failures absorbed by the fallback chain",
		},
		[]string{"from", "code"},
	)

	c.cacheHits = factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_hits_total",
		Help:      "Cache lookups resolved from a stored model",
	})

	c.cacheMisses = factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_misses_total",
		Help:      "Cache lookups that enqueued new generation work",
	})

	c.dedupTotal = factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "inflight_dedup_total",
		Help:      "Submissions attached to already in-flight work",
	})

	c.evictionsTotal = factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_evictions_total",
		Help:      "Cache entries evicted by auto optimization",
	})

	c.queueDepth = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "queue_depth",
		Help:      "Requests waiting in the generation queue",
	})

	c.activeModels = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "active_models",
		Help:      "Models currently held in the cache",
	})

	c.estimatedMemory = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "estimated_memory_bytes",
		Help:      "Estimated memory footprint of cached models",
	})

	c.httpRequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	c.httpRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	return c
}

// RecordGeneration records one finished generation.
func (c *Collector) RecordGeneration(method string, fallback bool, duration time.Duration) {
	fb := "false"
	if fallback {
		fb = "true"
	}
	c.generationsTotal.WithLabelValues(method, fb).Inc()
	c.generationDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// RecordFallback records a strategy failure absorbed by the chain.
func (c *Collector) RecordFallback(from, code string) {
	c.fallbacksTotal.WithLabelValues(from, code).Inc()
}

// RecordCacheHit increments the cache hit counter.
func (c *Collector) RecordCacheHit() { c.cacheHits.Inc() }

// RecordCacheMiss increments the cache miss counter.
func (c *Collector) RecordCacheMiss() { c.cacheMisses.Inc() }

// RecordDedup increments the in-flight dedup counter.
func (c *Collector) RecordDedup() { c.dedupTotal.Inc() }

// RecordEvictions adds to the eviction counter.
func (c *Collector) RecordEvictions(n int) { c.evictionsTotal.Add(float64(n)) }

// SetQueueDepth updates the queue depth gauge.
func (c *Collector) SetQueueDepth(n int) { c.queueDepth.Set(float64(n)) }

// SetActiveModels updates the active model gauge.
func (c *Collector) SetActiveModels(n int) { c.activeModels.Set(float64(n)) }

// SetEstimatedMemory updates the memory estimate gauge.
func (c *Collector) SetEstimatedMemory(bytes int64) { c.estimatedMemory.Set(float64(bytes)) }

// RecordHTTPRequest records one served HTTP request.
func (c *Collector) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	c.httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	c.httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}
