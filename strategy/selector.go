package strategy

import (
	"strings"

	"github.com/Elarwei001/ocean-forest-3d-sub000/types"
)

// fishKeywords marks species names that read as free-swimming fish.
// Single reference images of fish silhouettes extrude well, so such
// species prefer depth synthesis even outside the standard tier.
var fishKeywords = []string{"fish", "shark", "ray", "eel", "tuna", "tail", "cod", "herring"}

// FishLikeName reports whether the species name denotes a fish-like
// species by keyword match.
func FishLikeName(species string) bool {
	s := strings.ToLower(species)
	for _, kw := range fishKeywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

// Select picks the strategy kind for a request. It is a pure decision
// table over the request and the set of configured kinds: identical
// inputs always select identically.
//
// Rules, in order:
//  1. A valid forced strategy is honored verbatim.
//  2. Hero tier with at least 3 references: photogrammetric.
//  3. Standard tier or fish-like name, with at least 1 reference:
//     depth synthesis.
//  4. At least 2 references and no procedural strategy configured:
//     hybrid.
//  5. Otherwise: procedural.
func Select(req *types.GenerationRequest, configured map[types.StrategyKind]bool) types.StrategyKind {
	if types.ValidStrategyKind(req.ForceStrategy) {
		return req.ForceStrategy
	}

	refs := len(req.ReferenceImages)

	if req.Tier == types.TierHero && refs >= 3 {
		return types.StrategyPhotogrammetric
	}
	if (req.Tier == types.TierStandard || FishLikeName(req.Species)) && refs >= 1 {
		return types.StrategyDepthSynthesis
	}
	if refs >= 2 && !configured[types.StrategyProcedural] {
		return types.StrategyHybrid
	}
	return types.StrategyProcedural
}
