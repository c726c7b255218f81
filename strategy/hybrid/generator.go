// Package hybrid composes sub-strategies: base geometry from depth
// synthesis (or procedural when that fails), procedural detail merged
// on top, and photogrammetric texture projection when enough
// references exist. It succeeds whenever at least one sub-stage does.
package hybrid

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Elarwei001/ocean-forest-3d-sub000/geometry"
	"github.com/Elarwei001/ocean-forest-3d-sub000/strategy"
	"github.com/Elarwei001/ocean-forest-3d-sub000/types"
)

// Config configures the hybrid generator.
type Config struct {
	// TextureMinReferences is the reference count at which the
	// photogrammetric texture stage is attempted.
	TextureMinReferences int `json:"texture_min_references" yaml:"texture_min_references"`
}

// DefaultConfig returns default generator settings.
func DefaultConfig() Config {
	return Config{TextureMinReferences: 3}
}

// Generator composes base, detail, and texture sub-strategies.
type Generator struct {
	cfg     Config
	base    strategy.Strategy // depth synthesis
	detail  strategy.Strategy // procedural
	texture strategy.Strategy // photogrammetric, optional
	logger  *zap.Logger
}

// New creates a hybrid generator from its sub-strategies. base and
// detail are required; texture may be nil.
func New(cfg Config, base, detail, texture strategy.Strategy, logger *zap.Logger) *Generator {
	if cfg.TextureMinReferences <= 0 {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{
		cfg:     cfg,
		base:    base,
		detail:  detail,
		texture: texture,
		logger:  logger.With(zap.String("component", "strategy_hybrid")),
	}
}

// Kind implements strategy.Strategy.
func (g *Generator) Kind() types.StrategyKind { return types.StrategyHybrid }

// Generate implements strategy.Strategy.
func (g *Generator) Generate(ctx context.Context, req *types.GenerationRequest) (*types.RawModel, error) {
	baseModel := g.run(ctx, g.base, req, "base_geometry")
	detailModel := g.run(ctx, g.detail, req, "procedural_detail")

	if baseModel == nil && detailModel == nil {
		return nil, types.NewStrategyFailure(types.ErrMorphologySynthesis, g.Kind(), "morphology_synthesis",
			"every hybrid sub-stage failed")
	}

	out := baseModel
	if out == nil {
		out = detailModel
		detailModel = nil
	}
	if detailModel != nil {
		geometry.Merge(out.Mesh, detailModel.Mesh)
	}

	if g.texture != nil && len(req.ReferenceImages) >= g.cfg.TextureMinReferences {
		if tex := g.run(ctx, g.texture, req, "texture_projection"); tex != nil {
			out.Material.Textures = append(out.Material.Textures, tex.Material.Textures...)
			out.Material.BaseColor = tex.Material.BaseColor
		}
	}

	out.ID = uuid.NewString()
	out.Method = types.StrategyHybrid
	out.Material.Name = req.Species + "_hybrid"
	out.GeneratedAt = time.Now()
	return out, nil
}

// run executes one sub-stage, logging and absorbing its failure.
func (g *Generator) run(ctx context.Context, s strategy.Strategy, req *types.GenerationRequest, stage string) *types.RawModel {
	if s == nil {
		return nil
	}
	m, err := s.Generate(ctx, req)
	if err != nil {
		g.logger.Debug("hybrid sub-stage failed",
			zap.String("stage", stage),
			zap.String("species", req.Species),
			zap.Error(err),
		)
		return nil
	}
	return m
}
