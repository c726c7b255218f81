package types

// Tier classifies how prominent a species is in the scene. Hero
// species justify the heaviest reconstruction work.
type Tier string

const (
	TierHero       Tier = "hero"
	TierStandard   Tier = "standard"
	TierBackground Tier = "background"
)

// Quality selects the geometric fidelity of the generated model.
type Quality string

const (
	QualityPreview  Quality = "preview"
	QualityStandard Quality = "standard"
	QualityHigh     Quality = "high"
)

// StrategyKind names a generation strategy.
type StrategyKind string

const (
	StrategyPhotogrammetric StrategyKind = "photogrammetric"
	StrategyDepthSynthesis  StrategyKind = "depth_synthesis"
	StrategyProcedural      StrategyKind = "procedural"
	StrategyHybrid          StrategyKind = "hybrid"

	// StrategyPlaceholder marks terminal fallback geometry. It is
	// never selectable and never appears in a strategy set.
	StrategyPlaceholder StrategyKind = "placeholder"
)

// ValidStrategyKind reports whether k names a selectable strategy.
func ValidStrategyKind(k StrategyKind) bool {
	switch k {
	case StrategyPhotogrammetric, StrategyDepthSynthesis, StrategyProcedural, StrategyHybrid:
		return true
	}
	return false
}

// GenerationRequest describes one model to produce.
type GenerationRequest struct {
	// RequestID is assigned by the coordinator when empty.
	RequestID string `json:"request_id,omitempty" yaml:"request_id,omitempty"`
	// Species is the display name, e.g. "great_white_shark".
	Species string `json:"species" yaml:"species"`
	// Tier defaults to TierBackground.
	Tier Tier `json:"tier,omitempty" yaml:"tier,omitempty"`
	// Quality defaults to QualityStandard.
	Quality Quality `json:"quality,omitempty" yaml:"quality,omitempty"`
	// ReferenceImages are loader-resolvable image references. Order
	// is significant for caching.
	ReferenceImages []string `json:"reference_images,omitempty" yaml:"reference_images,omitempty"`
	// BiologicalParams tune generation, e.g. "max_length_m",
	// "fin_count". Unknown keys are ignored by strategies.
	BiologicalParams map[string]float64 `json:"biological_params,omitempty" yaml:"biological_params,omitempty"`
	// ForceStrategy bypasses selection when it names a valid kind.
	ForceStrategy StrategyKind `json:"force_strategy,omitempty" yaml:"force_strategy,omitempty"`
	// AddToScene asks the consumer to place the model on completion.
	AddToScene bool `json:"add_to_scene,omitempty" yaml:"add_to_scene,omitempty"`
}

// Normalize fills the defaulted fields in place.
func (r *GenerationRequest) Normalize() {
	if r.Tier == "" {
		r.Tier = TierBackground
	}
	if r.Quality == "" {
		r.Quality = QualityStandard
	}
}

// Clone returns a deep copy.
func (r *GenerationRequest) Clone() *GenerationRequest {
	if r == nil {
		return nil
	}
	out := *r
	if r.ReferenceImages != nil {
		out.ReferenceImages = append([]string(nil), r.ReferenceImages...)
	}
	if r.BiologicalParams != nil {
		out.BiologicalParams = make(map[string]float64, len(r.BiologicalParams))
		for k, v := range r.BiologicalParams {
			out.BiologicalParams[k] = v
		}
	}
	return &out
}
