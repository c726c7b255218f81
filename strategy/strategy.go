// Package strategy defines the generation strategy contract, the pure
// strategy selector, and the reference-image loading helpers shared by
// the concrete strategies.
package strategy

import (
	"context"

	"github.com/Elarwei001/ocean-forest-3d-sub000/types"
)

// Strategy turns a generation request into a raw model. Implementations
// are pure with respect to shared state: they may read reference images
// and their own configuration but hold no mutable pipeline state.
//
// Generate may fail with a *types.Error (input error or strategy
// failure); the fallback chain decides what happens next. A Strategy
// must never panic on malformed requests.
type Strategy interface {
	Kind() types.StrategyKind
	Generate(ctx context.Context, req *types.GenerationRequest) (*types.RawModel, error)
}

// Set is the collection of configured strategies, keyed by kind.
// A nil map or missing kind means that strategy is not configured.
type Set map[types.StrategyKind]Strategy

// Kinds reports which strategy kinds are configured.
func (s Set) Kinds() map[types.StrategyKind]bool {
	out := make(map[types.StrategyKind]bool, len(s))
	for k := range s {
		out[k] = true
	}
	return out
}

// ValidateParams checks the biological parameter map for values no
// synthesis stage can work with. Returns a malformed-params input
// error naming the first offending key.
func ValidateParams(kind types.StrategyKind, params map[string]float64) error {
	for k, v := range params {
		if v != v { // NaN
			return types.NewInputError(types.ErrMalformedParams, kind, "parameter "+k+" is NaN")
		}
		if v < 0 {
			return types.NewInputError(types.ErrMalformedParams, kind, "parameter "+k+" is negative")
		}
	}
	return nil
}
