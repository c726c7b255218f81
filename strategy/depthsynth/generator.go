// Package depthsynth builds a model from a single reference image by
// estimating a depth map from luminance and extruding the silhouette.
// The depth estimate is a heuristic stand-in, not a learned model.
package depthsynth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Elarwei001/ocean-forest-3d-sub000/geometry"
	"github.com/Elarwei001/ocean-forest-3d-sub000/strategy"
	"github.com/Elarwei001/ocean-forest-3d-sub000/types"
)

// Config configures the depth synthesis generator.
type Config struct {
	// GridSegments is the resolution of the extruded height field.
	GridSegments int `json:"grid_segments" yaml:"grid_segments"`
	// ExtrusionDepth scales luminance into model depth units.
	ExtrusionDepth float32 `json:"extrusion_depth" yaml:"extrusion_depth"`
	// MinVariance is the minimum luminance variance below which the
	// image is considered featureless and depth estimation fails.
	MinVariance float32 `json:"min_variance" yaml:"min_variance"`
}

// DefaultConfig returns default generator settings.
func DefaultConfig() Config {
	return Config{
		GridSegments:   32,
		ExtrusionDepth: 0.4,
		MinVariance:    1e-4,
	}
}

// Generator implements depth-based single-image extrusion.
type Generator struct {
	cfg    Config
	loader strategy.ImageLoader
	logger *zap.Logger
}

// New creates a depth synthesis generator.
func New(cfg Config, loader strategy.ImageLoader, logger *zap.Logger) *Generator {
	if cfg.GridSegments <= 0 {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{
		cfg:    cfg,
		loader: loader,
		logger: logger.With(zap.String("component", "strategy_depthsynth")),
	}
}

// Kind implements strategy.Strategy.
func (g *Generator) Kind() types.StrategyKind { return types.StrategyDepthSynthesis }

// Generate implements strategy.Strategy.
func (g *Generator) Generate(ctx context.Context, req *types.GenerationRequest) (*types.RawModel, error) {
	if err := strategy.ValidateParams(g.Kind(), req.BiologicalParams); err != nil {
		return nil, err
	}
	imgs := strategy.LoadAvailable(ctx, g.loader, req.ReferenceImages, g.logger)
	if len(imgs) < 1 {
		return nil, types.NewInputError(types.ErrInsufficientReferences, g.Kind(),
			"depth synthesis needs at least one loadable reference image")
	}

	depth, variance := g.estimateDepth(imgs[0])
	if variance < g.cfg.MinVariance {
		return nil, types.NewStrategyFailure(types.ErrDepthEstimation, g.Kind(), "depth_estimation",
			"reference image is featureless, no depth signal")
	}

	mesh := g.extrude(req.Species, depth)

	return &types.RawModel{
		ID:      uuid.NewString(),
		Species: req.Species,
		Method:  types.StrategyDepthSynthesis,
		Mesh:    mesh,
		Material: geometry.Material{
			Name:      req.Species + "_depth",
			BaseColor: geometry.Color{R: 0.5, G: 0.55, B: 0.6, A: 1},
			Roughness: 0.7,
			Textures:  []string{imgs[0].ID},
		},
		GeneratedAt: time.Now(),
	}, nil
}

// estimateDepth resamples the reference image onto the working grid
// and box-blurs it once. Returns the grid and its variance.
func (g *Generator) estimateDepth(img *strategy.ReferenceImage) ([]float32, float32) {
	n := g.cfg.GridSegments
	depth := make([]float32, n*n)
	var sum, sumSq float32
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			sx := x * img.Width / n
			sy := y * img.Height / n
			v := (img.At(sx, sy) + img.At(sx+1, sy) + img.At(sx, sy+1) + img.At(sx+1, sy+1)) / 4
			depth[y*n+x] = v
			sum += v
			sumSq += v * v
		}
	}
	count := float32(n * n)
	mean := sum / count
	return depth, sumSq/count - mean*mean
}

// extrude turns the depth grid into a two-sided displaced sheet.
func (g *Generator) extrude(name string, depth []float32) *geometry.Mesh {
	n := g.cfg.GridSegments
	m := &geometry.Mesh{Name: name}

	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			d := depth[y*n+x] * g.cfg.ExtrusionDepth
			m.Vertices = append(m.Vertices, geometry.Vec3{
				X: float32(x)/float32(n-1) - 0.5,
				Y: d,
				Z: float32(y)/float32(n-1) - 0.5,
			})
			m.Normals = append(m.Normals, geometry.Vec3{Y: 1})
			m.UVs = append(m.UVs, geometry.Vec2{
				X: float32(x) / float32(n-1),
				Y: float32(y) / float32(n-1),
			})
		}
	}
	front := m.Clone()
	for y := 0; y < n-1; y++ {
		for x := 0; x < n-1; x++ {
			a := uint32(y*n + x)
			b := a + 1
			c := a + uint32(n)
			d := c + 1
			m.Indices = append(m.Indices, a, c, b)
			m.Indices = append(m.Indices, b, c, d)
		}
	}
	// Mirror the sheet for the back side so the silhouette is solid
	// from both viewing directions.
	for i := range front.Vertices {
		front.Vertices[i].Y = -front.Vertices[i].Y
		front.Normals[i].Y = -1
	}
	front.Indices = make([]uint32, len(m.Indices))
	for i := 0; i < len(m.Indices); i += 3 {
		front.Indices[i] = m.Indices[i]
		front.Indices[i+1] = m.Indices[i+2]
		front.Indices[i+2] = m.Indices[i+1]
	}
	geometry.Merge(m, front)
	return m
}
