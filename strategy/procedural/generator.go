// Package procedural synthesizes species bodies from biological
// parameters alone. It is the pipeline's universal safety net: it
// works with zero reference images and never fails.
package procedural

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Elarwei001/ocean-forest-3d-sub000/geometry"
	"github.com/Elarwei001/ocean-forest-3d-sub000/types"
)

// bodyPlan is one entry of the built-in biological parameter table,
// keyed by species family. Profile radii are relative to body length.
type bodyPlan struct {
	lengthM  float32
	profile  []float32
	finCount int
	color    geometry.Color
}

// familyPlans is the fallback parameter table used when a request
// carries no usable biological parameters.
var familyPlans = map[string]bodyPlan{
	"shark": {
		lengthM:  4.5,
		profile:  []float32{0.02, 0.28, 0.42, 0.46, 0.38, 0.22, 0.08},
		finCount: 5,
		color:    geometry.Color{R: 0.45, G: 0.5, B: 0.55, A: 1},
	},
	"ray": {
		lengthM:  2.0,
		profile:  []float32{0.05, 0.6, 0.9, 0.7, 0.2},
		finCount: 2,
		color:    geometry.Color{R: 0.35, G: 0.35, B: 0.4, A: 1},
	},
	"eel": {
		lengthM:  1.5,
		profile:  []float32{0.03, 0.08, 0.1, 0.1, 0.1, 0.09, 0.06, 0.02},
		finCount: 1,
		color:    geometry.Color{R: 0.3, G: 0.4, B: 0.3, A: 1},
	},
	"cephalopod": {
		lengthM:  0.8,
		profile:  []float32{0.3, 0.4, 0.35, 0.2, 0.08},
		finCount: 8,
		color:    geometry.Color{R: 0.7, G: 0.4, B: 0.35, A: 1},
	},
	"fish": {
		lengthM:  0.6,
		profile:  []float32{0.03, 0.22, 0.3, 0.26, 0.12, 0.04},
		finCount: 3,
		color:    geometry.Color{R: 0.55, G: 0.6, B: 0.65, A: 1},
	},
}

// familyKeywords maps species-name fragments to table families.
// Ordered so that a name matching several fragments resolves the same
// way every time.
var familyKeywords = []struct {
	fragment string
	family   string
}{
	{"shark", "shark"},
	{"skate", "ray"},
	{"moray", "eel"}, // before "ray": moray contains it
	{"ray", "ray"},
	{"eel", "eel"},
	{"octopus", "cephalopod"},
	{"squid", "cephalopod"},
	{"cuttle", "cephalopod"},
	{"nautilus", "cephalopod"},
}

// Config configures the procedural generator.
type Config struct {
	// RadialSegments controls body mesh resolution.
	RadialSegments int `json:"radial_segments" yaml:"radial_segments"`
	// FinSegments controls fin cone resolution.
	FinSegments int `json:"fin_segments" yaml:"fin_segments"`
}

// DefaultConfig returns default generator settings.
func DefaultConfig() Config {
	return Config{
		RadialSegments: 24,
		FinSegments:    8,
	}
}

// Generator builds parametric bodies from the family table and any
// biological parameters on the request.
type Generator struct {
	cfg    Config
	logger *zap.Logger
}

// New creates a procedural generator.
func New(cfg Config, logger *zap.Logger) *Generator {
	if cfg.RadialSegments <= 0 {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{
		cfg:    cfg,
		logger: logger.With(zap.String("component", "strategy_procedural")),
	}
}

// Kind implements strategy.Strategy.
func (g *Generator) Kind() types.StrategyKind { return types.StrategyProcedural }

// Generate implements strategy.Strategy. It never fails: malformed or
// missing parameters fall back to the family table, and an unknown
// species gets the generic fish plan.
func (g *Generator) Generate(_ context.Context, req *types.GenerationRequest) (*types.RawModel, error) {
	plan := planFor(req.Species)

	length := plan.lengthM
	if v, ok := sanitized(req.BiologicalParams, "max_length_m"); ok {
		length = v
	}
	fins := plan.finCount
	if v, ok := sanitized(req.BiologicalParams, "fin_count"); ok {
		fins = int(v)
	}

	segments := g.cfg.RadialSegments
	if req.Quality == types.QualityPreview {
		segments /= 2
	}

	profile := make([]float32, len(plan.profile))
	for i, r := range plan.profile {
		profile[i] = r * length
	}
	mesh := geometry.LoftBody(profile, length, segments)
	mesh.Name = req.Species

	g.attachFins(mesh, length, fins)

	return &types.RawModel{
		ID:      uuid.NewString(),
		Species: req.Species,
		Method:  types.StrategyProcedural,
		Mesh:    mesh,
		Material: geometry.Material{
			Name:      req.Species + "_procedural",
			BaseColor: plan.color,
			Roughness: 0.8,
		},
		GeneratedAt: time.Now(),
	}, nil
}

// attachFins distributes simple cone fins along the dorsal line.
func (g *Generator) attachFins(body *geometry.Mesh, length float32, count int) {
	if count <= 0 {
		return
	}
	bounds := body.Bounds()
	top := bounds.Max.Y
	for i := 0; i < count; i++ {
		fin := geometry.Cone(length*0.04, length*0.12, g.cfg.FinSegments)
		z := bounds.Min.Z + bounds.Size().Z*float32(i+1)/float32(count+1)
		geometry.Translate(fin, geometry.Vec3{X: 0, Y: top, Z: z})
		geometry.Merge(body, fin)
	}
}

func planFor(species string) bodyPlan {
	s := strings.ToLower(species)
	for _, kw := range familyKeywords {
		if strings.Contains(s, kw.fragment) {
			return familyPlans[kw.family]
		}
	}
	return familyPlans["fish"]
}

// sanitized reads a parameter, rejecting NaN and non-positive values
// instead of failing the whole generation.
func sanitized(params map[string]float64, key string) (float32, bool) {
	v, ok := params[key]
	if !ok || v != v || v <= 0 {
		return 0, false
	}
	return float32(v), true
}
