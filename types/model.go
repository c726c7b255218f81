package types

import (
	"time"

	"github.com/Elarwei001/ocean-forest-3d-sub000/geometry"
)

// RawModel is the output of a single strategy run: one mesh plus
// material and species metadata. It is not yet multi-resolution.
type RawModel struct {
	ID       string            `json:"id"`
	Species  string            `json:"species"`
	Method   StrategyKind      `json:"method"`
	Mesh     *geometry.Mesh    `json:"-"`
	Material geometry.Material `json:"material"`

	// IsFallback is true when the model was not produced by the
	// strategy the selector chose for the request, including the
	// terminal primitive placeholder.
	IsFallback bool `json:"is_fallback"`

	GeneratedAt time.Time `json:"generated_at"`
}

// Clone returns a deep copy of the raw model.
func (m *RawModel) Clone() *RawModel {
	if m == nil {
		return nil
	}
	cp := *m
	cp.Mesh = m.Mesh.Clone()
	cp.Material = m.Material.Clone()
	return &cp
}

// LODLevel pairs a viewing-distance threshold with the mesh to render
// from that distance onward.
type LODLevel struct {
	Distance float32        `json:"distance"`
	Mesh     *geometry.Mesh `json:"-"`
}

// LODModel is the unit handed to callers and stored in the cache: the
// raw model plus three simplified representations, ordered by strictly
// increasing distance threshold. Levels[0].Mesh is the full mesh.
type LODModel struct {
	RawModel

	Fingerprint string     `json:"fingerprint"`
	Levels      []LODLevel `json:"levels"`
}

// Clone returns an independent deep copy so that callers can mutate or
// attach their copy without corrupting the cached master.
func (m *LODModel) Clone() *LODModel {
	if m == nil {
		return nil
	}
	cp := &LODModel{
		RawModel:    *m.RawModel.Clone(),
		Fingerprint: m.Fingerprint,
		Levels:      make([]LODLevel, len(m.Levels)),
	}
	for i, lv := range m.Levels {
		cp.Levels[i] = LODLevel{Distance: lv.Distance, Mesh: lv.Mesh.Clone()}
	}
	return cp
}

// VertexCount sums vertices across all representation levels.
func (m *LODModel) VertexCount() int {
	n := 0
	for _, lv := range m.Levels {
		n += lv.Mesh.VertexCount()
	}
	return n
}

// TextureCount counts textures referenced by the material.
func (m *LODModel) TextureCount() int {
	return len(m.Material.Textures)
}

// PerformanceMetrics is a read-only snapshot of pipeline statistics.
type PerformanceMetrics struct {
	ModelsGenerated       int64         `json:"models_generated"`
	AverageGenerationTime time.Duration `json:"average_generation_time"`
	MemoryUsage           int64         `json:"memory_usage_bytes"`
	ActiveModels          int           `json:"active_models"`
}
