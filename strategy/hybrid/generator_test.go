package hybrid

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Elarwei001/ocean-forest-3d-sub000/geometry"
	"github.com/Elarwei001/ocean-forest-3d-sub000/strategy"
	"github.com/Elarwei001/ocean-forest-3d-sub000/types"
)

// stubStrategy is a scriptable sub-stage.
type stubStrategy struct {
	kind  types.StrategyKind
	fail  bool
	calls int
}

func (s *stubStrategy) Kind() types.StrategyKind { return s.kind }

func (s *stubStrategy) Generate(_ context.Context, req *types.GenerationRequest) (*types.RawModel, error) {
	s.calls++
	if s.fail {
		return nil, types.NewStrategyFailure(types.ErrDepthEstimation, s.kind, "stub", "scripted failure")
	}
	mesh := geometry.Cone(0.2, 0.5, 6)
	mesh.Name = string(s.kind)
	return &types.RawModel{
		ID:      string(s.kind) + "-model",
		Species: req.Species,
		Method:  s.kind,
		Mesh:    mesh,
		Material: geometry.Material{
			Name:     string(s.kind) + "_mat",
			Textures: []string{string(s.kind) + "_tex"},
			BaseColor: geometry.Color{
				R: 0.9, A: 1,
			},
		},
		GeneratedAt: time.Now(),
	}, nil
}

func newStubs(baseFails, detailFails bool) (base, detail *stubStrategy) {
	base = &stubStrategy{kind: types.StrategyDepthSynthesis, fail: baseFails}
	detail = &stubStrategy{kind: types.StrategyProcedural, fail: detailFails}
	return base, detail
}

func TestGenerate_MergesBaseAndDetail(t *testing.T) {
	base, detail := newStubs(false, false)
	g := New(DefaultConfig(), base, detail, nil, zap.NewNop())

	model, err := g.Generate(context.Background(), &types.GenerationRequest{Species: "cabezon"})
	require.NoError(t, err)

	assert.Equal(t, types.StrategyHybrid, model.Method)
	assert.Equal(t, "cabezon_hybrid", model.Material.Name)
	single, _ := (&stubStrategy{kind: types.StrategyProcedural}).Generate(context.Background(), &types.GenerationRequest{})
	assert.Equal(t, 2*single.Mesh.VertexCount(), model.Mesh.VertexCount(), "detail mesh merged into base")
}

func TestGenerate_SurvivesOneFailedSubStage(t *testing.T) {
	tests := []struct {
		name        string
		baseFails   bool
		detailFails bool
	}{
		{"base fails", true, false},
		{"detail fails", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base, detail := newStubs(tt.baseFails, tt.detailFails)
			g := New(DefaultConfig(), base, detail, nil, zap.NewNop())

			model, err := g.Generate(context.Background(), &types.GenerationRequest{Species: "cabezon"})
			require.NoError(t, err)
			assert.Equal(t, types.StrategyHybrid, model.Method)
			assert.Greater(t, model.Mesh.VertexCount(), 0)
		})
	}
}

func TestGenerate_AllSubStagesFailed(t *testing.T) {
	base, detail := newStubs(true, true)
	g := New(DefaultConfig(), base, detail, nil, zap.NewNop())

	_, err := g.Generate(context.Background(), &types.GenerationRequest{Species: "cabezon"})
	require.Error(t, err)

	var pe *types.Error
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, types.ErrMorphologySynthesis, pe.Code)
	assert.False(t, types.IsInputError(err))
}

func TestGenerate_TextureStageNeedsReferences(t *testing.T) {
	base, detail := newStubs(false, false)
	texture := &stubStrategy{kind: types.StrategyPhotogrammetric}
	g := New(DefaultConfig(), base, detail, texture, zap.NewNop())

	// Two references: below the texture threshold, stage skipped.
	model, err := g.Generate(context.Background(), &types.GenerationRequest{
		Species:         "cabezon",
		ReferenceImages: []string{"a", "b"},
	})
	require.NoError(t, err)
	assert.Zero(t, texture.calls)
	assert.NotContains(t, model.Material.Textures, "photogrammetric_tex")

	// Three references: texture stage runs and contributes.
	model, err = g.Generate(context.Background(), &types.GenerationRequest{
		Species:         "cabezon",
		ReferenceImages: []string{"a", "b", "c"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, texture.calls)
	assert.Contains(t, model.Material.Textures, "photogrammetric_tex")
}

func TestGenerate_TextureFailureIsAbsorbed(t *testing.T) {
	base, detail := newStubs(false, false)
	texture := &stubStrategy{kind: types.StrategyPhotogrammetric, fail: true}
	g := New(DefaultConfig(), base, detail, texture, zap.NewNop())

	model, err := g.Generate(context.Background(), &types.GenerationRequest{
		Species:         "cabezon",
		ReferenceImages: []string{"a", "b", "c"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, texture.calls)
	assert.NotNil(t, model)
}

var _ strategy.Strategy = (*stubStrategy)(nil)
