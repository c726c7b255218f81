// Package lod turns one raw model into a 4-level multi-resolution
// representation: full, medium, low, and a billboard impostor for far
// distances.
package lod

import (
	"sync"

	"go.uber.org/zap"

	"github.com/Elarwei001/ocean-forest-3d-sub000/geometry"
	"github.com/Elarwei001/ocean-forest-3d-sub000/types"
)

// Fixed relative simplification factors per level. The last level is
// replaced by a billboard impostor rather than simplified.
var levelFactors = [3]float32{1.0, 0.6, 0.3}

// DefaultDistances are the default distance thresholds per level, in
// scene units.
var DefaultDistances = [4]float32{0, 30, 100, 200}

// Builder produces LOD models. Distance thresholds are shared mutable
// state: the performance monitor relaxes them under load, which
// affects subsequently built models.
type Builder struct {
	mu        sync.Mutex
	distances [4]float32
	logger    *zap.Logger
}

// NewBuilder creates a builder with the default distance thresholds.
func NewBuilder(logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{
		distances: DefaultDistances,
		logger:    logger.With(zap.String("component", "lod_builder")),
	}
}

// Build constructs the 4-level representation. Level 0 keeps the full
// mesh; levels 1 and 2 are decimated copies; level 3 is a flat
// billboard sized to the original bounding box. Distance thresholds
// are strictly increasing.
func (b *Builder) Build(raw *types.RawModel) *types.LODModel {
	b.mu.Lock()
	distances := b.distances
	b.mu.Unlock()

	levels := make([]types.LODLevel, 0, 4)
	for i, f := range levelFactors {
		mesh := raw.Mesh
		if f < 1 {
			mesh = geometry.Simplify(raw.Mesh, f)
		}
		levels = append(levels, types.LODLevel{Distance: distances[i], Mesh: mesh})
	}

	bounds := raw.Mesh.Bounds()
	size := bounds.Size()
	width := size.X
	if size.Z > width {
		width = size.Z
	}
	if width == 0 {
		width = 1
	}
	height := size.Y
	if height == 0 {
		height = width * 0.4
	}
	billboard := geometry.BillboardQuad(width, height)
	billboard.Name = raw.Mesh.Name + "_billboard"
	levels = append(levels, types.LODLevel{Distance: distances[3], Mesh: billboard})

	return &types.LODModel{
		RawModel: *raw,
		Levels:   levels,
	}
}

// RelaxDistances multiplies all non-zero thresholds by factor
// (0 < factor < 1 pushes detail reduction closer to the camera).
// Applies to models built afterwards; already-built models keep the
// thresholds they were built with.
func (b *Builder) RelaxDistances(factor float32) {
	if factor <= 0 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := 1; i < len(b.distances); i++ {
		b.distances[i] *= factor
	}
	b.logger.Info("relaxed lod distance thresholds",
		zap.Float32("factor", factor),
		zap.Float32s("distances", b.distances[:]),
	)
}

// Distances returns the current thresholds.
func (b *Builder) Distances() [4]float32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.distances
}
