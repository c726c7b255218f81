package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/Elarwei001/ocean-forest-3d-sub000/geometry"
	"github.com/Elarwei001/ocean-forest-3d-sub000/types"
)

func testModel(species string) *types.LODModel {
	mesh := geometry.Cone(0.3, 0.8, 12)
	mesh.Name = species
	return &types.LODModel{
		RawModel: types.RawModel{
			ID:      "test-" + species,
			Species: species,
			Method:  types.StrategyProcedural,
			Mesh:    mesh,
			Material: geometry.Material{
				Name:     species + "_mat",
				Textures: []string{"tex1"},
			},
			GeneratedAt: time.Now(),
		},
		Fingerprint: "model:" + species,
		Levels: []types.LODLevel{
			{Distance: 0, Mesh: mesh},
			{Distance: 30, Mesh: geometry.Simplify(mesh, 0.6)},
		},
	}
}

func TestFingerprint_Deterministic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		req := &types.GenerationRequest{
			Species:         rapid.StringMatching(`[a-z_]{1,20}`).Draw(t, "species"),
			Tier:            types.Tier(rapid.SampledFrom([]string{"hero", "standard", "background"}).Draw(t, "tier")),
			Quality:         types.Quality(rapid.SampledFrom([]string{"preview", "standard", "high"}).Draw(t, "quality")),
			ReferenceImages: rapid.SliceOfN(rapid.StringMatching(`ref[0-9]{1,3}`), 0, 5).Draw(t, "refs"),
		}
		assert.Equal(t, Fingerprint(req), Fingerprint(req.Clone()))
	})
}

func TestFingerprint_SensitiveToIdentityFields(t *testing.T) {
	base := &types.GenerationRequest{
		Species:         "yellowtail",
		Tier:            types.TierStandard,
		Quality:         types.QualityHigh,
		ReferenceImages: []string{"a", "b"},
	}
	fp := Fingerprint(base)

	species := base.Clone()
	species.Species = "bluefin"
	assert.NotEqual(t, fp, Fingerprint(species))

	tier := base.Clone()
	tier.Tier = types.TierHero
	assert.NotEqual(t, fp, Fingerprint(tier))

	quality := base.Clone()
	quality.Quality = types.QualityPreview
	assert.NotEqual(t, fp, Fingerprint(quality))

	order := base.Clone()
	order.ReferenceImages = []string{"b", "a"}
	assert.NotEqual(t, fp, Fingerprint(order), "reference order is part of the identity")
}

func TestFingerprint_IgnoresNonIdentityFields(t *testing.T) {
	base := &types.GenerationRequest{Species: "grouper", Tier: types.TierStandard, Quality: types.QualityStandard}
	other := base.Clone()
	other.RequestID = "some-uuid"
	other.AddToScene = true
	other.BiologicalParams = map[string]float64{"max_length_m": 2}
	assert.Equal(t, Fingerprint(base), Fingerprint(other))
}

func TestCache_StoreAndLookup(t *testing.T) {
	c := New(zap.NewNop())

	_, ok := c.Lookup("model:missing")
	assert.False(t, ok)

	model := testModel("grouper")
	c.Store("model:grouper", model)

	got, ok := c.Lookup("model:grouper")
	require.True(t, ok)
	assert.Equal(t, "grouper", got.Species)

	// The clone must be independent of the cached master.
	got.Levels[0].Mesh.Vertices[0].X += 100
	again, ok := c.Lookup("model:grouper")
	require.True(t, ok)
	assert.NotEqual(t, got.Levels[0].Mesh.Vertices[0].X, again.Levels[0].Mesh.Vertices[0].X)
}

func TestCache_ReservationIsNotAHit(t *testing.T) {
	c := New(zap.NewNop())
	require.True(t, c.Reserve("model:pending"))

	_, ok := c.Lookup("model:pending")
	assert.False(t, ok, "in-flight reservation must not be served")
	assert.Equal(t, 1, c.Len())
}

func TestCache_ReserveAtMostOnce(t *testing.T) {
	c := New(zap.NewNop())

	assert.True(t, c.Reserve("model:x"))
	assert.False(t, c.Reserve("model:x"), "second reservation must be refused")

	c.Store("model:x", testModel("x"))
	assert.False(t, c.Reserve("model:x"), "stored entry must refuse reservation")

	c.Discard("model:x")
	assert.True(t, c.Reserve("model:x"), "discard frees the slot")
}

func TestCache_CorruptedEntryIsMiss(t *testing.T) {
	c := New(zap.NewNop())

	empty := testModel("husk")
	empty.Levels = nil
	c.Store("model:husk", empty)

	_, ok := c.Lookup("model:husk")
	assert.False(t, ok, "corrupted entry reads as a miss")
	assert.Equal(t, 0, c.Len(), "corrupted entry is discarded")

	// Discarded means the slot is free for regeneration.
	assert.True(t, c.Reserve("model:husk"))
}

func TestCache_EvictOlderThan(t *testing.T) {
	c := New(zap.NewNop())
	now := time.Now()
	c.nowFn = func() time.Time { return now.Add(-20 * time.Minute) }
	c.Store("model:old", testModel("old"))

	c.nowFn = func() time.Time { return now }
	c.Store("model:fresh", testModel("fresh"))
	require.True(t, c.Reserve("model:pending"))

	evicted := c.EvictOlderThan(now.Add(-10 * time.Minute))
	assert.Equal(t, 1, evicted)

	_, ok := c.Lookup("model:old")
	assert.False(t, ok)
	_, ok = c.Lookup("model:fresh")
	assert.True(t, ok)
	assert.False(t, c.Reserve("model:pending"), "reservations survive eviction")
}

func TestCache_Totals(t *testing.T) {
	c := New(zap.NewNop())
	c.Store("model:a", testModel("a"))
	c.Store("model:b", testModel("b"))
	c.Reserve("model:c")

	models, vertices, textures := c.Totals()
	assert.Equal(t, 2, models)
	assert.Greater(t, vertices, 0)
	assert.Equal(t, 2, textures)

	c.Clear()
	models, vertices, textures = c.Totals()
	assert.Zero(t, models)
	assert.Zero(t, vertices)
	assert.Zero(t, textures)
	assert.Equal(t, 0, c.Len())
}
