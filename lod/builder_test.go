package lod

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Elarwei001/ocean-forest-3d-sub000/geometry"
	"github.com/Elarwei001/ocean-forest-3d-sub000/types"
)

func rawModel() *types.RawModel {
	mesh := geometry.Capsule(0.3, 2.0, 16, 12)
	mesh.Name = "leopard_shark"
	return &types.RawModel{
		ID:          "raw-1",
		Species:     "leopard_shark",
		Method:      types.StrategyProcedural,
		Mesh:        mesh,
		GeneratedAt: time.Now(),
	}
}

func TestBuild_FourLevels(t *testing.T) {
	b := NewBuilder(zap.NewNop())
	model := b.Build(rawModel())

	require.Len(t, model.Levels, 4)

	// Distance thresholds strictly increase.
	for i := 1; i < len(model.Levels); i++ {
		assert.Greater(t, model.Levels[i].Distance, model.Levels[i-1].Distance)
	}
	assert.Equal(t, DefaultDistances[:], []float32{
		model.Levels[0].Distance,
		model.Levels[1].Distance,
		model.Levels[2].Distance,
		model.Levels[3].Distance,
	})

	// Detail strictly decreases through the simplified levels.
	assert.Greater(t, model.Levels[0].Mesh.TriangleCount(), model.Levels[1].Mesh.TriangleCount())
	assert.Greater(t, model.Levels[1].Mesh.TriangleCount(), model.Levels[2].Mesh.TriangleCount())
	assert.Greater(t, model.Levels[2].Mesh.TriangleCount(), model.Levels[3].Mesh.TriangleCount())

	// Level 0 keeps the full mesh.
	assert.Equal(t, 16*13, model.Levels[0].Mesh.VertexCount())
	// The far level is the 4-vertex billboard.
	assert.Equal(t, 4, model.Levels[3].Mesh.VertexCount())
	assert.Equal(t, 2, model.Levels[3].Mesh.TriangleCount())
}

func TestBuild_BillboardSizedToBounds(t *testing.T) {
	b := NewBuilder(zap.NewNop())
	raw := rawModel()
	model := b.Build(raw)

	srcSize := raw.Mesh.Bounds().Size()
	bbSize := model.Levels[3].Mesh.Bounds().Size()

	// Capsule: Z span 2.0 dominates X span 0.6, so the billboard is
	// 2.0 wide; height follows the Y span.
	assert.InDelta(t, float64(srcSize.Z), float64(bbSize.X), 1e-3)
	assert.InDelta(t, float64(srcSize.Y), float64(bbSize.Z), 1e-3)
}

func TestBuild_DegenerateMeshStillBuilds(t *testing.T) {
	b := NewBuilder(zap.NewNop())
	raw := &types.RawModel{
		Species: "dot",
		Mesh:    &geometry.Mesh{Name: "dot", Vertices: []geometry.Vec3{{}}},
	}
	model := b.Build(raw)
	require.Len(t, model.Levels, 4)
	assert.Equal(t, 4, model.Levels[3].Mesh.VertexCount(), "zero-size bounds get a default billboard")
}

func TestRelaxDistances(t *testing.T) {
	b := NewBuilder(zap.NewNop())
	before := b.Build(rawModel())

	b.RelaxDistances(0.8)

	d := b.Distances()
	assert.Equal(t, float32(0), d[0], "level 0 threshold never moves")
	assert.InDelta(t, 24.0, float64(d[1]), 1e-3)
	assert.InDelta(t, 80.0, float64(d[2]), 1e-3)
	assert.InDelta(t, 160.0, float64(d[3]), 1e-3)

	// Relaxation applies to models built afterwards only.
	assert.Equal(t, float32(30), before.Levels[1].Distance)
	after := b.Build(rawModel())
	assert.InDelta(t, 24.0, float64(after.Levels[1].Distance), 1e-3)

	// Thresholds stay strictly increasing after repeated relaxation.
	for i := 0; i < 10; i++ {
		b.RelaxDistances(0.8)
	}
	d = b.Distances()
	for i := 1; i < len(d); i++ {
		assert.Greater(t, d[i], d[i-1])
	}

	// Invalid factors are ignored.
	b.RelaxDistances(0)
	b.RelaxDistances(-1)
	assert.Equal(t, d, b.Distances())
}
