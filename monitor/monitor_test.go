package monitor

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Elarwei001/ocean-forest-3d-sub000/cache"
	"github.com/Elarwei001/ocean-forest-3d-sub000/geometry"
	"github.com/Elarwei001/ocean-forest-3d-sub000/lod"
	"github.com/Elarwei001/ocean-forest-3d-sub000/types"
)

func storeModel(c *cache.Cache, fp string) {
	mesh := geometry.Capsule(0.3, 1.5, 12, 8)
	c.Store(fp, &types.LODModel{
		RawModel: types.RawModel{
			Species: fp,
			Method:  types.StrategyProcedural,
			Mesh:    mesh,
			Material: geometry.Material{
				Textures: []string{"tex"},
			},
		},
		Fingerprint: fp,
		Levels:      []types.LODLevel{{Distance: 0, Mesh: mesh}},
	})
}

func TestRecord_EMALatency(t *testing.T) {
	c := cache.New(zap.NewNop())
	m := New(DefaultConfig(), c, lod.NewBuilder(zap.NewNop()), nil, zap.NewNop())

	m.Record(100 * time.Millisecond)
	assert.Equal(t, 100*time.Millisecond, m.Metrics().AverageGenerationTime,
		"first sample seeds the average")

	m.Record(200 * time.Millisecond)
	assert.Equal(t, 150*time.Millisecond, m.Metrics().AverageGenerationTime,
		"EMA with factor 0.5")

	m.Record(50 * time.Millisecond)
	assert.Equal(t, 100*time.Millisecond, m.Metrics().AverageGenerationTime)

	assert.Equal(t, int64(3), m.Metrics().ModelsGenerated)
}

func TestEstimateMemory(t *testing.T) {
	c := cache.New(zap.NewNop())
	m := New(DefaultConfig(), c, lod.NewBuilder(zap.NewNop()), nil, zap.NewNop())

	assert.Zero(t, m.EstimateMemory())

	storeModel(c, "model:a")
	_, vertices, textures := c.Totals()
	want := int64(vertices)*bytesPerVertex + int64(textures)*bytesPerTexture
	assert.Equal(t, want, m.EstimateMemory())
	assert.Greater(t, want, int64(bytesPerTexture), "texture cost dominates")
}

func TestAutoOptimize_EvictsOldModelsWhenMemoryHigh(t *testing.T) {
	c := cache.New(zap.NewNop())
	cfg := Config{
		MemoryThreshold:      1, // any cached model exceeds it
		EvictionAge:          10 * time.Minute,
		ActiveModelThreshold: 64,
		RelaxFactor:          0.8,
	}
	m := New(cfg, c, lod.NewBuilder(zap.NewNop()), nil, zap.NewNop())

	storeModel(c, "model:old")

	// Advance the clock past the eviction age: the entry is now old.
	now := time.Now()
	m.nowFn = func() time.Time { return now.Add(11 * time.Minute) }
	m.AutoOptimize()

	_, ok := c.Lookup("model:old")
	assert.False(t, ok, "entries older than the eviction age are gone")

	m.nowFn = func() time.Time { return now.Add(5 * time.Minute) }
	storeModel(c, "model:young")
	m.AutoOptimize()
	_, ok = c.Lookup("model:young")
	assert.True(t, ok, "entries younger than the eviction age survive")
}

func TestAutoOptimize_MemoryBelowThresholdKeepsEverything(t *testing.T) {
	c := cache.New(zap.NewNop())
	m := New(DefaultConfig(), c, lod.NewBuilder(zap.NewNop()), nil, zap.NewNop())

	storeModel(c, "model:a")
	m.nowFn = func() time.Time { return time.Now().Add(24 * time.Hour) }
	m.AutoOptimize()

	_, ok := c.Lookup("model:a")
	assert.True(t, ok, "no eviction while under the memory threshold")
}

func TestAutoOptimize_RelaxesLODUnderModelPressure(t *testing.T) {
	c := cache.New(zap.NewNop())
	builder := lod.NewBuilder(zap.NewNop())
	cfg := Config{
		MemoryThreshold:      1 << 40,
		EvictionAge:          10 * time.Minute,
		ActiveModelThreshold: 2,
		RelaxFactor:          0.5,
	}
	m := New(cfg, c, builder, nil, zap.NewNop())

	storeModel(c, "model:a")
	storeModel(c, "model:b")
	m.AutoOptimize()
	assert.Equal(t, lod.DefaultDistances, builder.Distances(),
		"at the threshold, not above it")

	storeModel(c, "model:c")
	m.AutoOptimize()
	d := builder.Distances()
	assert.InDelta(t, 15.0, float64(d[1]), 1e-3)
	assert.InDelta(t, 50.0, float64(d[2]), 1e-3)
	assert.InDelta(t, 100.0, float64(d[3]), 1e-3)
}

func TestMetrics_Snapshot(t *testing.T) {
	c := cache.New(zap.NewNop())
	m := New(DefaultConfig(), c, lod.NewBuilder(zap.NewNop()), nil, zap.NewNop())

	for i := 0; i < 4; i++ {
		storeModel(c, fmt.Sprintf("model:%d", i))
	}
	m.Record(80 * time.Millisecond)

	snap := m.Metrics()
	require.Equal(t, 4, snap.ActiveModels)
	assert.Equal(t, int64(1), snap.ModelsGenerated)
	assert.Greater(t, snap.MemoryUsage, int64(0))
}
