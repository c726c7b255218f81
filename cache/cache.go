// Package cache is the content-addressed model store. It keys finished
// LOD models by request fingerprint, guarantees at most one in-flight
// generation per fingerprint, and hands independent clones to callers
// so later mutation can never corrupt a cached master.
//
// The cache is purely in-process; it does not survive restarts.
package cache

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Elarwei001/ocean-forest-3d-sub000/types"
)

// Entry is one cache slot. While Model is nil the entry is a
// reservation: generation work for the fingerprint is in flight.
type Entry struct {
	Fingerprint string
	Model       *types.LODModel
	CreatedAt   time.Time
}

// Cache stores finished models and in-flight reservations.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*Entry
	logger  *zap.Logger
	nowFn   func() time.Time
}

// New creates an empty cache.
func New(logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{
		entries: make(map[string]*Entry),
		logger:  logger.With(zap.String("component", "model_cache")),
		nowFn:   time.Now,
	}
}

// Lookup returns a clone of the stored model for fp. A reservation
// (in-flight entry) is not a hit. A stored entry whose model is
// unusable counts as corruption: it is discarded and reported as a
// miss so the coordinator regenerates it.
func (c *Cache) Lookup(fp string) (*types.LODModel, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[fp]
	if !ok || e.Model == nil {
		return nil, false
	}
	if corrupted(e.Model) {
		delete(c.entries, fp)
		c.logger.Warn("discarding corrupted cache entry",
			zap.String("fingerprint", fp),
			zap.String("code", string(types.ErrCacheCorruption)),
		)
		return nil, false
	}
	return e.Model.Clone(), true
}

// Reserve marks fp as in flight. It returns false when the
// fingerprint already has a stored model or a live reservation: the
// caller must not start duplicate work. This is the cache's core
// correctness contract.
func (c *Cache) Reserve(fp string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[fp]; ok {
		return false
	}
	c.entries[fp] = &Entry{Fingerprint: fp, CreatedAt: c.nowFn()}
	return true
}

// Store completes fp with the finished model. The model becomes the
// immutable cached master; callers of Lookup receive clones.
func (c *Cache) Store(fp string, model *types.LODModel) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[fp] = &Entry{
		Fingerprint: fp,
		Model:       model,
		CreatedAt:   c.nowFn(),
	}
}

// Discard removes fp whether stored or reserved.
func (c *Cache) Discard(fp string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, fp)
}

// EvictOlderThan removes stored entries created before cutoff and
// returns how many were evicted. Reservations are never evicted: the
// in-flight invariant outranks memory pressure.
func (c *Cache) EvictOlderThan(cutoff time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	evicted := 0
	for fp, e := range c.entries {
		if e.Model != nil && e.CreatedAt.Before(cutoff) {
			delete(c.entries, fp)
			evicted++
		}
	}
	if evicted > 0 {
		c.logger.Info("evicted cache entries",
			zap.Int("count", evicted),
			zap.Time("cutoff", cutoff),
		)
	}
	return evicted
}

// Totals sums the stored models and their vertex and texture counts,
// feeding the monitor's memory estimate.
func (c *Cache) Totals() (models, vertices, textures int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, e := range c.entries {
		if e.Model == nil {
			continue
		}
		models++
		vertices += e.Model.VertexCount()
		textures += e.Model.TextureCount()
	}
	return models, vertices, textures
}

// Clear drops every entry, including reservations. Used by Dispose.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*Entry)
}

// Len returns the number of entries including reservations.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func corrupted(m *types.LODModel) bool {
	return m == nil || len(m.Levels) == 0 || m.Levels[0].Mesh.VertexCount() == 0
}
