// Package monitor accumulates generation statistics and drives the
// feedback loop: when the estimated memory footprint or active-model
// count crosses a threshold it evicts old cache entries or relaxes LOD
// distances.
package monitor

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Elarwei001/ocean-forest-3d-sub000/cache"
	"github.com/Elarwei001/ocean-forest-3d-sub000/internal/metrics"
	"github.com/Elarwei001/ocean-forest-3d-sub000/lod"
	"github.com/Elarwei001/ocean-forest-3d-sub000/types"
)

// Fixed per-unit memory costs. These are deliberately crude: the
// estimate only needs to be a monotonic proxy for memory pressure.
const (
	bytesPerVertex  = 48
	bytesPerTexture = 2 << 20
)

// emaFactor is the smoothing factor of the latency moving average.
const emaFactor = 0.5

// Config sets the optimization thresholds.
type Config struct {
	// MemoryThreshold is the estimated byte count above which old
	// cache entries are evicted.
	MemoryThreshold int64 `json:"memory_threshold_bytes" yaml:"memory_threshold_bytes"`
	// EvictionAge is how old an entry must be to be evicted.
	EvictionAge time.Duration `json:"eviction_age" yaml:"eviction_age"`
	// ActiveModelThreshold is the cached-model count above which LOD
	// distances are relaxed.
	ActiveModelThreshold int `json:"active_model_threshold" yaml:"active_model_threshold"`
	// RelaxFactor scales LOD distances on each relaxation.
	RelaxFactor float32 `json:"relax_factor" yaml:"relax_factor"`
}

// DefaultConfig returns the default thresholds.
func DefaultConfig() Config {
	return Config{
		MemoryThreshold:      256 << 20, // 256 MiB
		EvictionAge:          10 * time.Minute,
		ActiveModelThreshold: 64,
		RelaxFactor:          0.8,
	}
}

// Monitor tracks rolling generation statistics.
type Monitor struct {
	cfg       Config
	cache     *cache.Cache
	lod       *lod.Builder
	collector *metrics.Collector
	logger    *zap.Logger
	nowFn     func() time.Time

	mu         sync.Mutex
	generated  int64
	emaLatency time.Duration
}

// New creates a monitor. collector may be nil when Prometheus export
// is not wired.
func New(cfg Config, modelCache *cache.Cache, builder *lod.Builder, collector *metrics.Collector, logger *zap.Logger) *Monitor {
	if cfg.MemoryThreshold <= 0 {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		cfg:       cfg,
		cache:     modelCache,
		lod:       builder,
		collector: collector,
		logger:    logger.With(zap.String("component", "performance_monitor")),
		nowFn:     time.Now,
	}
}

// Record folds one generation latency into the moving average,
// increments the generated counter, and runs AutoOptimize.
func (m *Monitor) Record(latency time.Duration) {
	m.mu.Lock()
	m.generated++
	if m.emaLatency == 0 {
		m.emaLatency = latency
	} else {
		m.emaLatency = time.Duration(emaFactor*float64(latency) + (1-emaFactor)*float64(m.emaLatency))
	}
	m.mu.Unlock()

	m.AutoOptimize()
}

// EstimateMemory sums the per-unit costs across all cached models.
func (m *Monitor) EstimateMemory() int64 {
	_, vertices, textures := m.cache.Totals()
	return int64(vertices)*bytesPerVertex + int64(textures)*bytesPerTexture
}

// AutoOptimize applies the two threshold reactions: evict entries
// older than the eviction age when memory is high, and relax LOD
// distances when too many models are active.
func (m *Monitor) AutoOptimize() {
	models, vertices, textures := m.cache.Totals()
	estimated := int64(vertices)*bytesPerVertex + int64(textures)*bytesPerTexture

	if m.collector != nil {
		m.collector.SetActiveModels(models)
		m.collector.SetEstimatedMemory(estimated)
	}

	if estimated > m.cfg.MemoryThreshold {
		cutoff := m.nowFn().Add(-m.cfg.EvictionAge)
		evicted := m.cache.EvictOlderThan(cutoff)
		if evicted > 0 {
			m.logger.Info("memory threshold exceeded, evicted old models",
				zap.Int64("estimated_bytes", estimated),
				zap.Int("evicted", evicted),
			)
			if m.collector != nil {
				m.collector.RecordEvictions(evicted)
			}
		}
	}

	if models > m.cfg.ActiveModelThreshold && m.lod != nil {
		m.lod.RelaxDistances(m.cfg.RelaxFactor)
	}
}

// Metrics returns a read-only snapshot.
func (m *Monitor) Metrics() types.PerformanceMetrics {
	m.mu.Lock()
	generated := m.generated
	ema := m.emaLatency
	m.mu.Unlock()

	models, vertices, textures := m.cache.Totals()
	return types.PerformanceMetrics{
		ModelsGenerated:       generated,
		AverageGenerationTime: ema,
		MemoryUsage:           int64(vertices)*bytesPerVertex + int64(textures)*bytesPerTexture,
		ActiveModels:          models,
	}
}
