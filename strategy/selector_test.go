package strategy

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"

	"github.com/Elarwei001/ocean-forest-3d-sub000/types"
)

func allKinds() map[types.StrategyKind]bool {
	return map[types.StrategyKind]bool{
		types.StrategyPhotogrammetric: true,
		types.StrategyDepthSynthesis:  true,
		types.StrategyProcedural:      true,
		types.StrategyHybrid:          true,
	}
}

func TestSelect_DecisionTable(t *testing.T) {
	tests := []struct {
		name string
		req  types.GenerationRequest
		want types.StrategyKind
	}{
		{
			name: "hero with three references uses photogrammetry",
			req: types.GenerationRequest{
				Species:         "great_white_shark",
				Tier:            types.TierHero,
				Quality:         types.QualityHigh,
				ReferenceImages: []string{"a", "b", "c"},
			},
			want: types.StrategyPhotogrammetric,
		},
		{
			name: "standard with one reference uses depth synthesis",
			req: types.GenerationRequest{
				Species:         "yellowtail",
				Tier:            types.TierStandard,
				ReferenceImages: []string{"a"},
			},
			want: types.StrategyDepthSynthesis,
		},
		{
			name: "fish-like background with one reference uses depth synthesis",
			req: types.GenerationRequest{
				Species:         "lantern_fish",
				Tier:            types.TierBackground,
				ReferenceImages: []string{"a"},
			},
			want: types.StrategyDepthSynthesis,
		},
		{
			name: "background with no references uses procedural",
			req: types.GenerationRequest{
				Species: "generic_reef_dweller",
				Tier:    types.TierBackground,
			},
			want: types.StrategyProcedural,
		},
		{
			name: "hero with too few references falls through",
			req: types.GenerationRequest{
				Species:         "kelp_crab",
				Tier:            types.TierHero,
				ReferenceImages: []string{"a", "b"},
			},
			want: types.StrategyProcedural,
		},
		{
			name: "forced strategy is honored verbatim",
			req: types.GenerationRequest{
				Species:         "great_white_shark",
				Tier:            types.TierHero,
				ReferenceImages: []string{"a", "b", "c"},
				ForceStrategy:   types.StrategyProcedural,
			},
			want: types.StrategyProcedural,
		},
		{
			name: "invalid forced strategy is ignored",
			req: types.GenerationRequest{
				Species:         "great_white_shark",
				Tier:            types.TierHero,
				ReferenceImages: []string{"a", "b", "c"},
				ForceStrategy:   "sorcery",
			},
			want: types.StrategyPhotogrammetric,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Select(&tt.req, allKinds()))
		})
	}
}

func TestSelect_HybridWhenProceduralMissing(t *testing.T) {
	configured := map[types.StrategyKind]bool{
		types.StrategyHybrid:          true,
		types.StrategyDepthSynthesis:  true,
		types.StrategyPhotogrammetric: true,
	}
	req := &types.GenerationRequest{
		Species:         "kelp_crab",
		Tier:            types.TierBackground,
		ReferenceImages: []string{"a", "b"},
	}
	assert.Equal(t, types.StrategyHybrid, Select(req, configured))

	// With procedural available the same request keeps the safe choice.
	assert.Equal(t, types.StrategyProcedural, Select(req, allKinds()))
}

func TestProperty_SelectIsDeterministic(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	properties.Property("identical inputs always select the same strategy", prop.ForAll(
		func(species string, tier string, refCount int) bool {
			req := &types.GenerationRequest{
				Species:         species,
				Tier:            types.Tier(tier),
				ReferenceImages: make([]string, refCount),
			}
			first := Select(req, allKinds())
			for i := 0; i < 5; i++ {
				if Select(req, allKinds()) != first {
					return false
				}
			}
			return types.ValidStrategyKind(first)
		},
		gen.RegexMatch(`[a-z_]{1,24}`),
		gen.OneConstOf("hero", "standard", "background"),
		gen.IntRange(0, 6),
	))

	properties.TestingRun(t)
}

func TestFishLikeName(t *testing.T) {
	assert.True(t, FishLikeName("Great_White_Shark"))
	assert.True(t, FishLikeName("moray_eel"))
	assert.True(t, FishLikeName("yellowtail"))
	assert.False(t, FishLikeName("kelp_crab"))
	assert.False(t, FishLikeName("octopus"))
}
