// Package oceanforest assembles the marine model generation pipeline:
// strategy set, fallback chain, content-addressed cache, LOD builder,
// performance monitor, and the request coordinator, behind one handle.
//
// Basic usage:
//
//	pipe, err := oceanforest.New(oceanforest.WithLogger(logger))
//	if err != nil { ... }
//	defer pipe.Close()
//
//	future := pipe.Submit(ctx, &types.GenerationRequest{Species: "great_white_shark"})
//	model, err := future.Wait(ctx)
package oceanforest

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/Elarwei001/ocean-forest-3d-sub000/cache"
	"github.com/Elarwei001/ocean-forest-3d-sub000/config"
	"github.com/Elarwei001/ocean-forest-3d-sub000/internal/metrics"
	"github.com/Elarwei001/ocean-forest-3d-sub000/lod"
	"github.com/Elarwei001/ocean-forest-3d-sub000/monitor"
	"github.com/Elarwei001/ocean-forest-3d-sub000/pipeline"
	"github.com/Elarwei001/ocean-forest-3d-sub000/strategy"
	"github.com/Elarwei001/ocean-forest-3d-sub000/strategy/depthsynth"
	"github.com/Elarwei001/ocean-forest-3d-sub000/strategy/hybrid"
	"github.com/Elarwei001/ocean-forest-3d-sub000/strategy/photogrammetric"
	"github.com/Elarwei001/ocean-forest-3d-sub000/strategy/procedural"
	"github.com/Elarwei001/ocean-forest-3d-sub000/types"
)

// Pipeline is the assembled generation stack.
type Pipeline struct {
	coordinator *pipeline.Coordinator
	monitor     *monitor.Monitor
	cache       *cache.Cache
	collector   *metrics.Collector
	logger      *zap.Logger
}

type options struct {
	logger      *zap.Logger
	pipelineCfg pipeline.Config
	monitorCfg  monitor.Config
	loader      strategy.ImageLoader
	registry    prometheus.Registerer
	strategies  strategy.Set
}

// Option customizes pipeline assembly.
type Option func(*options)

// WithLogger sets the logger shared by all components.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithConfig applies pipeline and monitor settings from a loaded
// configuration.
func WithConfig(cfg *config.Config) Option {
	return func(o *options) {
		o.pipelineCfg.MaxConcurrentGeneration = cfg.Pipeline.MaxConcurrentGeneration
		o.monitorCfg = monitor.Config{
			MemoryThreshold:      cfg.Monitor.MemoryThresholdBytes,
			EvictionAge:          cfg.Monitor.EvictionAge,
			ActiveModelThreshold: cfg.Monitor.ActiveModelThreshold,
			RelaxFactor:          float32(cfg.Monitor.RelaxFactor),
		}
	}
}

// WithMaxConcurrent caps the number of generations per batch.
func WithMaxConcurrent(n int) Option {
	return func(o *options) { o.pipelineCfg.MaxConcurrentGeneration = n }
}

// WithImageLoader sets the reference image source for the image-based
// strategies. Defaults to the synthetic loader.
func WithImageLoader(loader strategy.ImageLoader) Option {
	return func(o *options) { o.loader = loader }
}

// WithRegistry sets the prometheus registerer for pipeline metrics.
// Defaults to the global registry.
func WithRegistry(reg prometheus.Registerer) Option {
	return func(o *options) { o.registry = reg }
}

// WithStrategies replaces the default strategy set entirely.
func WithStrategies(set strategy.Set) Option {
	return func(o *options) { o.strategies = set }
}

// New assembles the full pipeline with the default strategy set:
// photogrammetric, depth synthesis, procedural, and a hybrid composed
// from the other three.
func New(opts ...Option) (*Pipeline, error) {
	o := options{
		pipelineCfg: pipeline.DefaultConfig(),
		monitorCfg:  monitor.DefaultConfig(),
		loader:      strategy.SyntheticImageLoader{},
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}

	collector := metrics.NewCollector("oceanforest", o.registry, o.logger)
	modelCache := cache.New(o.logger)
	builder := lod.NewBuilder(o.logger)
	perf := monitor.New(o.monitorCfg, modelCache, builder, collector, o.logger)

	strategies := o.strategies
	if strategies == nil {
		strategies = DefaultStrategies(o.loader, o.logger)
	}

	coord := pipeline.NewCoordinator(o.pipelineCfg, strategies, modelCache, builder, perf, collector, o.logger)
	return &Pipeline{
		coordinator: coord,
		monitor:     perf,
		cache:       modelCache,
		collector:   collector,
		logger:      o.logger,
	}, nil
}

// DefaultStrategies builds the standard strategy set. The hybrid
// strategy reuses the depth synthesis, procedural, and photogrammetric
// generators as its sub-stages.
func DefaultStrategies(loader strategy.ImageLoader, logger *zap.Logger) strategy.Set {
	photo := photogrammetric.New(photogrammetric.DefaultConfig(), loader, logger)
	depth := depthsynth.New(depthsynth.DefaultConfig(), loader, logger)
	proc := procedural.New(procedural.DefaultConfig(), logger)
	hyb := hybrid.New(hybrid.DefaultConfig(), depth, proc, photo, logger)
	return strategy.Set{
		types.StrategyPhotogrammetric: photo,
		types.StrategyDepthSynthesis:  depth,
		types.StrategyProcedural:      proc,
		types.StrategyHybrid:          hyb,
	}
}

// Submit queues a generation request. The returned future always
// resolves to a model; failures surface as fallback geometry.
func (p *Pipeline) Submit(ctx context.Context, req *types.GenerationRequest) *pipeline.Future {
	return p.coordinator.Submit(ctx, req)
}

// Coordinator exposes the request coordinator for server wiring.
func (p *Pipeline) Coordinator() *pipeline.Coordinator {
	return p.coordinator
}

// Collector exposes the prometheus collector for server wiring.
func (p *Pipeline) Collector() *metrics.Collector {
	return p.collector
}

// Metrics returns the current performance snapshot.
func (p *Pipeline) Metrics() types.PerformanceMetrics {
	return p.coordinator.Metrics()
}

// OnModelReady registers a handler invoked for every finished model.
func (p *Pipeline) OnModelReady(h pipeline.EventHandler) {
	p.coordinator.OnModelReady(h)
}

// Close releases pipeline resources. Submissions after Close resolve
// with uncached placeholder geometry.
func (p *Pipeline) Close() {
	p.coordinator.Dispose()
}
