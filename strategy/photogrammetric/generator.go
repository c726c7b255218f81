// Package photogrammetric reconstructs a body from multiple reference
// images. Feature extraction and reconstruction are heuristic
// stand-ins operating on luminance grids: the package specifies the
// multi-image contract, not real structure-from-motion.
package photogrammetric

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Elarwei001/ocean-forest-3d-sub000/geometry"
	"github.com/Elarwei001/ocean-forest-3d-sub000/strategy"
	"github.com/Elarwei001/ocean-forest-3d-sub000/types"
)

// Config configures the photogrammetric generator.
type Config struct {
	// MinReferences is the minimum number of loadable reference
	// images; below it the generator fails fast with an input error.
	MinReferences int `json:"min_references" yaml:"min_references"`
	// ContrastThreshold is the local-contrast level at which a grid
	// cell counts as a feature point.
	ContrastThreshold float32 `json:"contrast_threshold" yaml:"contrast_threshold"`
	// MinFeatures is the feature count below which extraction fails.
	MinFeatures int `json:"min_features" yaml:"min_features"`
	// Rings and RadialSegments control reconstruction resolution.
	Rings          int `json:"rings" yaml:"rings"`
	RadialSegments int `json:"radial_segments" yaml:"radial_segments"`
}

// DefaultConfig returns default generator settings.
func DefaultConfig() Config {
	return Config{
		MinReferences:     3,
		ContrastThreshold: 0.02,
		MinFeatures:       24,
		Rings:             12,
		RadialSegments:    24,
	}
}

// feature is one detected corner-like point: its horizontal position
// normalized to [0, 1) and its contrast strength.
type feature struct {
	xNorm    float32
	strength float32
}

// Generator implements multi-image reconstruction.
type Generator struct {
	cfg    Config
	loader strategy.ImageLoader
	logger *zap.Logger
}

// New creates a photogrammetric generator.
func New(cfg Config, loader strategy.ImageLoader, logger *zap.Logger) *Generator {
	if cfg.MinReferences <= 0 {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{
		cfg:    cfg,
		loader: loader,
		logger: logger.With(zap.String("component", "strategy_photogrammetric")),
	}
}

// Kind implements strategy.Strategy.
func (g *Generator) Kind() types.StrategyKind { return types.StrategyPhotogrammetric }

// Generate implements strategy.Strategy.
func (g *Generator) Generate(ctx context.Context, req *types.GenerationRequest) (*types.RawModel, error) {
	if err := strategy.ValidateParams(g.Kind(), req.BiologicalParams); err != nil {
		return nil, err
	}
	imgs := strategy.LoadAvailable(ctx, g.loader, req.ReferenceImages, g.logger)
	if len(imgs) < g.cfg.MinReferences {
		return nil, types.NewInputError(types.ErrInsufficientReferences, g.Kind(),
			fmt.Sprintf("photogrammetry needs %d loadable references, have %d",
				g.cfg.MinReferences, len(imgs)))
	}

	var features []feature
	for _, img := range imgs {
		features = append(features, g.extractFeatures(img)...)
	}
	if len(features) < g.cfg.MinFeatures {
		return nil, types.NewStrategyFailure(types.ErrFeatureExtraction, g.Kind(), "feature_extraction",
			fmt.Sprintf("only %d feature points across %d images", len(features), len(imgs)))
	}

	profile, err := g.reconstructProfile(features)
	if err != nil {
		return nil, err
	}

	mesh := geometry.LoftBody(profile, bodyLength(req), g.cfg.RadialSegments)
	mesh.Name = req.Species

	textures := make([]string, 0, len(imgs))
	for _, img := range imgs {
		textures = append(textures, img.ID)
	}

	return &types.RawModel{
		ID:      uuid.NewString(),
		Species: req.Species,
		Method:  types.StrategyPhotogrammetric,
		Mesh:    mesh,
		Material: geometry.Material{
			Name:      req.Species + "_photogrammetric",
			BaseColor: meanColor(imgs),
			Roughness: 0.6,
			Textures:  textures,
		},
		GeneratedAt: time.Now(),
	}, nil
}

// extractFeatures runs a crude corner detector: a cell is a feature
// when its luminance differs from all four neighbors by more than the
// contrast threshold.
func (g *Generator) extractFeatures(img *strategy.ReferenceImage) []feature {
	var out []feature
	for y := 1; y < img.Height-1; y++ {
		for x := 1; x < img.Width-1; x++ {
			c := img.At(x, y)
			strength := minAbsDiff(c,
				img.At(x-1, y), img.At(x+1, y), img.At(x, y-1), img.At(x, y+1))
			if strength > g.cfg.ContrastThreshold {
				out = append(out, feature{
					xNorm:    float32(x) / float32(img.Width),
					strength: strength,
				})
			}
		}
	}
	return out
}

// reconstructProfile folds the feature cloud into a radial body
// profile: features are bucketed along the horizontal axis and each
// bucket's mean strength becomes that ring's relative radius.
func (g *Generator) reconstructProfile(features []feature) ([]float32, error) {
	rings := g.cfg.Rings
	sums := make([]float32, rings)
	counts := make([]int, rings)
	for _, f := range features {
		ring := int(f.xNorm * float32(rings))
		if ring >= rings {
			ring = rings - 1
		}
		sums[ring] += f.strength
		counts[ring]++
	}
	profile := make([]float32, rings)
	populated := 0
	var peak float32
	for i := range profile {
		if counts[i] > 0 {
			profile[i] = sums[i] / float32(counts[i])
			populated++
			if profile[i] > peak {
				peak = profile[i]
			}
		}
	}
	if populated < rings/2 || peak == 0 {
		return nil, types.NewStrategyFailure(types.ErrReconstruction, g.Kind(), "reconstruction",
			fmt.Sprintf("feature coverage too sparse: %d of %d rings populated", populated, rings))
	}
	// Normalize to a plausible half-width and taper the ends.
	for i := range profile {
		profile[i] = 0.05 + 0.3*profile[i]/peak
	}
	profile[0] *= 0.2
	profile[rings-1] *= 0.2
	return profile, nil
}

func bodyLength(req *types.GenerationRequest) float32 {
	if v, ok := req.BiologicalParams["max_length_m"]; ok && v == v && v > 0 {
		return float32(v)
	}
	return 1.0
}

func meanColor(imgs []*strategy.ReferenceImage) geometry.Color {
	var sum float32
	var n int
	for _, img := range imgs {
		for _, v := range img.Luma {
			sum += v
			n++
		}
	}
	if n == 0 {
		return geometry.Color{R: 0.5, G: 0.5, B: 0.5, A: 1}
	}
	v := sum / float32(n)
	return geometry.Color{R: v, G: v, B: v * 1.1, A: 1}
}

func minAbsDiff(c float32, neighbors ...float32) float32 {
	min := float32(2) // luma diffs are <= 1
	for _, nb := range neighbors {
		d := c - nb
		if d < 0 {
			d = -d
		}
		if d < min {
			min = d
		}
	}
	return min
}
