package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Elarwei001/ocean-forest-3d-sub000/cache"
	"github.com/Elarwei001/ocean-forest-3d-sub000/internal/metrics"
	"github.com/Elarwei001/ocean-forest-3d-sub000/lod"
	"github.com/Elarwei001/ocean-forest-3d-sub000/monitor"
	"github.com/Elarwei001/ocean-forest-3d-sub000/strategy"
	"github.com/Elarwei001/ocean-forest-3d-sub000/types"
)

// Config configures the request coordinator.
type Config struct {
	// MaxConcurrentGeneration is the hard ceiling on simultaneously
	// executing strategy invocations. Batches are strictly sequential:
	// the drain loop awaits a whole batch before pulling the next.
	MaxConcurrentGeneration int `json:"max_concurrent_generation" yaml:"max_concurrent_generation"`
}

// DefaultConfig returns the default coordinator settings.
func DefaultConfig() Config {
	return Config{MaxConcurrentGeneration: 2}
}

// Event describes one finished generation, delivered to registered
// handlers after the caller's future resolves.
type Event struct {
	RequestID   string             `json:"request_id"`
	Fingerprint string             `json:"fingerprint"`
	Species     string             `json:"species"`
	Tier        types.Tier         `json:"tier"`
	Quality     types.Quality      `json:"quality"`
	Method      types.StrategyKind `json:"method"`
	IsFallback  bool               `json:"is_fallback"`
	AddToScene  bool               `json:"add_to_scene"`
	VertexCount int                `json:"vertex_count"`
	Duration    time.Duration      `json:"duration"`
	GeneratedAt time.Time          `json:"generated_at"`
}

// EventHandler receives model-ready events. Handlers run on the
// generating goroutine and must not block.
type EventHandler func(Event)

// Coordinator accepts generation requests, consults the cache,
// deduplicates in-flight work, and drains the queue in bounded
// concurrent batches. Its external contract is total: Submit never
// fails, worst case resolving with a placeholder model.
type Coordinator struct {
	cfg        Config
	modelCache *cache.Cache
	lodBuilder *lod.Builder
	perf       *monitor.Monitor
	collector  *metrics.Collector
	logger     *zap.Logger
	tracer     trace.Tracer

	mu        sync.Mutex
	chain     *FallbackChain
	available map[types.StrategyKind]bool
	queue     fifo
	inflight  map[string]*Future
	handlers  []EventHandler
	draining  bool
	closed    bool
}

// NewCoordinator wires the coordinator to its collaborators. All
// dependencies are explicit; there is no global registry.
func NewCoordinator(
	cfg Config,
	strategies strategy.Set,
	modelCache *cache.Cache,
	lodBuilder *lod.Builder,
	perf *monitor.Monitor,
	collector *metrics.Collector,
	logger *zap.Logger,
) *Coordinator {
	if cfg.MaxConcurrentGeneration <= 0 {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("component", "request_coordinator"))
	return &Coordinator{
		cfg:        cfg,
		chain:      NewFallbackChain(strategies, collector, logger),
		available:  strategies.Kinds(),
		modelCache: modelCache,
		lodBuilder: lodBuilder,
		perf:       perf,
		collector:  collector,
		logger:     logger,
		tracer:     otel.Tracer("oceanforest/pipeline"),
		inflight:   make(map[string]*Future),
	}
}

// Submit accepts a request and returns a future that always resolves.
// Completed cache entries resolve immediately with a clone; requests
// identical to in-flight work attach to the existing future; anything
// else is queued for the next batch.
func (c *Coordinator) Submit(ctx context.Context, req *types.GenerationRequest) *Future {
	req = req.Clone()
	req.Normalize()
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}
	fp := cache.Fingerprint(req)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		c.logger.Warn("submit after dispose, resolving with placeholder",
			zap.String("species", req.Species))
		raw := c.chain.Generate(ctx, types.StrategyProcedural, req)
		model := c.lodBuilder.Build(raw)
		model.Fingerprint = fp
		return resolved(model)
	}

	if m, ok := c.modelCache.Lookup(fp); ok {
		if c.collector != nil {
			c.collector.RecordCacheHit()
		}
		return resolved(m)
	}

	if f, ok := c.inflight[fp]; ok {
		if c.collector != nil {
			c.collector.RecordDedup()
		}
		return f
	}

	if !c.modelCache.Reserve(fp) {
		// The fingerprint was stored between the lookup and the
		// reservation. Re-read; the entry must be there now.
		if m, ok := c.modelCache.Lookup(fp); ok {
			return resolved(m)
		}
	}

	f := newFuture()
	c.inflight[fp] = f
	c.queue.push(req)
	if c.collector != nil {
		c.collector.RecordCacheMiss()
		c.collector.SetQueueDepth(c.queue.len())
	}
	c.ensureDraining()
	return f
}

// OnModelReady registers a handler for finished generations.
func (c *Coordinator) OnModelReady(h EventHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers = append(c.handlers, h)
}

// Metrics returns the performance monitor's snapshot.
func (c *Coordinator) Metrics() types.PerformanceMetrics {
	return c.perf.Metrics()
}

// QueueDepth returns the number of queued, not yet started requests.
func (c *Coordinator) QueueDepth() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.queue.len()
}

// Lookup exposes completed cache entries by fingerprint.
func (c *Coordinator) Lookup(fp string) (*types.LODModel, bool) {
	return c.modelCache.Lookup(fp)
}

// Dispose drops all cache entries and strategy instances. In-flight
// work is not cancelled: it runs to completion against the strategies
// it captured, but its results are no longer cached. Submissions after
// Dispose resolve with placeholders.
func (c *Coordinator) Dispose() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.chain = NewFallbackChain(nil, c.collector, c.logger)
	c.available = nil
	c.modelCache.Clear()
	c.logger.Info("coordinator disposed")
}

// ensureDraining starts the batch-drain loop if it is not already
// running. Callers must hold c.mu. Starting is idempotent.
func (c *Coordinator) ensureDraining() {
	if c.draining {
		return
	}
	c.draining = true
	go c.drainLoop()
}

// drainLoop pops up to MaxConcurrentGeneration requests, runs them in
// parallel, and awaits the whole batch before pulling the next. This
// enforces the concurrency ceiling without bounding throughput.
func (c *Coordinator) drainLoop() {
	for {
		c.mu.Lock()
		batch := c.queue.popN(c.cfg.MaxConcurrentGeneration)
		if len(batch) == 0 {
			c.draining = false
			c.mu.Unlock()
			return
		}
		chain := c.chain
		available := c.available
		if c.collector != nil {
			c.collector.SetQueueDepth(c.queue.len())
		}
		c.mu.Unlock()

		g, gctx := errgroup.WithContext(context.Background())
		for _, req := range batch {
			g.Go(func() error {
				c.generate(gctx, chain, available, req)
				return nil
			})
		}
		_ = g.Wait()
	}
}

// generate runs one request end to end: select, generate with
// fallback, build LOD levels, store, record, resolve, notify.
func (c *Coordinator) generate(ctx context.Context, chain *FallbackChain, available map[types.StrategyKind]bool, req *types.GenerationRequest) {
	ctx, span := c.tracer.Start(ctx, "pipeline.generate",
		trace.WithAttributes(
			attribute.String("species", req.Species),
			attribute.String("tier", string(req.Tier)),
			attribute.String("quality", string(req.Quality)),
		))
	defer span.End()

	start := time.Now()
	fp := cache.Fingerprint(req)

	kind := strategy.Select(req, available)
	span.SetAttributes(attribute.String("strategy", string(kind)))

	raw := chain.Generate(ctx, kind, req)
	model := c.lodBuilder.Build(raw)
	model.Fingerprint = fp

	c.modelCache.Store(fp, model)

	duration := time.Since(start)
	c.perf.Record(duration)
	if c.collector != nil {
		c.collector.RecordGeneration(string(raw.Method), raw.IsFallback, duration)
	}
	span.SetAttributes(
		attribute.String("method", string(raw.Method)),
		attribute.Bool("is_fallback", raw.IsFallback),
	)

	c.mu.Lock()
	f := c.inflight[fp]
	delete(c.inflight, fp)
	handlers := make([]EventHandler, len(c.handlers))
	copy(handlers, c.handlers)
	c.mu.Unlock()

	if f != nil {
		f.resolve(model)
	}

	c.logger.Debug("model generated",
		zap.String("species", req.Species),
		zap.String("method", string(raw.Method)),
		zap.Bool("is_fallback", raw.IsFallback),
		zap.Duration("duration", duration),
	)

	ev := Event{
		RequestID:   req.RequestID,
		Fingerprint: fp,
		Species:     req.Species,
		Tier:        req.Tier,
		Quality:     req.Quality,
		Method:      raw.Method,
		IsFallback:  raw.IsFallback,
		AddToScene:  req.AddToScene,
		VertexCount: model.VertexCount(),
		Duration:    duration,
		GeneratedAt: raw.GeneratedAt,
	}
	for _, h := range handlers {
		h(ev)
	}
}
