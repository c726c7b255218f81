package pipeline

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Elarwei001/ocean-forest-3d-sub000/geometry"
	"github.com/Elarwei001/ocean-forest-3d-sub000/internal/metrics"
	"github.com/Elarwei001/ocean-forest-3d-sub000/strategy"
	"github.com/Elarwei001/ocean-forest-3d-sub000/types"
)

// FallbackChain runs the chosen strategy and, on failure, retries with
// progressively safer ones: chosen strategy, then procedural, then a
// hard-coded primitive placeholder that cannot fail. Its contract to
// the coordinator is total: Generate always returns a model.
type FallbackChain struct {
	strategies strategy.Set
	collector  *metrics.Collector
	logger     *zap.Logger
}

// NewFallbackChain creates a chain over the configured strategies.
func NewFallbackChain(strategies strategy.Set, collector *metrics.Collector, logger *zap.Logger) *FallbackChain {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FallbackChain{
		strategies: strategies,
		collector:  collector,
		logger:     logger.With(zap.String("component", "fallback_chain")),
	}
}

// Generate runs the chain for the chosen kind. The returned model has
// IsFallback set whenever it was not produced by the chosen strategy.
func (fc *FallbackChain) Generate(ctx context.Context, chosen types.StrategyKind, req *types.GenerationRequest) *types.RawModel {
	order := []types.StrategyKind{chosen}
	if chosen != types.StrategyProcedural {
		order = append(order, types.StrategyProcedural)
	}

	for i, kind := range order {
		s, ok := fc.strategies[kind]
		if !ok {
			continue
		}
		model, err := s.Generate(ctx, req)
		if err != nil {
			fc.logFailure(kind, req, err)
			continue
		}
		model.IsFallback = i > 0
		return model
	}

	fc.logger.Warn("all strategies exhausted, using primitive placeholder",
		zap.String("species", req.Species),
		zap.String("chosen", string(chosen)),
	)
	return fc.placeholder(req)
}

func (fc *FallbackChain) logFailure(kind types.StrategyKind, req *types.GenerationRequest, err error) {
	code := "unknown"
	var pe *types.Error
	if errors.As(err, &pe) {
		code = string(pe.Code)
	}
	fc.logger.Warn("strategy failed, falling back",
		zap.String("strategy", string(kind)),
		zap.String("species", req.Species),
		zap.String("code", code),
		zap.Error(err),
	)
	if fc.collector != nil {
		fc.collector.RecordFallback(string(kind), code)
	}
}

// elongatedKeywords selects the capsule placeholder over the cone.
var elongatedKeywords = []string{"shark", "eel", "whale", "barracuda", "dolphin", "seal"}

// placeholder builds the guaranteed-success primitive: a capsule for
// elongated species, a cone otherwise, tagged as a fallback.
func (fc *FallbackChain) placeholder(req *types.GenerationRequest) *types.RawModel {
	var mesh *geometry.Mesh
	name := strings.ToLower(req.Species)
	elongated := false
	for _, kw := range elongatedKeywords {
		if strings.Contains(name, kw) {
			elongated = true
			break
		}
	}
	if elongated {
		mesh = geometry.Capsule(0.25, 1.5, 12, 8)
	} else {
		mesh = geometry.Cone(0.3, 0.8, 12)
	}
	mesh.Name = req.Species + "_placeholder"

	return &types.RawModel{
		ID:      uuid.NewString(),
		Species: req.Species,
		Method:  types.StrategyPlaceholder,
		Mesh:    mesh,
		Material: geometry.Material{
			Name:      req.Species + "_placeholder",
			BaseColor: geometry.Color{R: 0.6, G: 0.6, B: 0.6, A: 1},
			Roughness: 1,
		},
		IsFallback:  true,
		GeneratedAt: time.Now(),
	}
}
