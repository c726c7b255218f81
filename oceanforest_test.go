package oceanforest

import (
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Elarwei001/ocean-forest-3d-sub000/pipeline"
	"github.com/Elarwei001/ocean-forest-3d-sub000/strategy"
	"github.com/Elarwei001/ocean-forest-3d-sub000/types"
)

func newTestPipeline(t *testing.T, opts ...Option) *Pipeline {
	t.Helper()
	opts = append([]Option{
		WithRegistry(prometheus.NewRegistry()),
		WithMaxConcurrent(2),
	}, opts...)
	p, err := New(opts...)
	require.NoError(t, err)
	t.Cleanup(p.Close)
	return p
}

func TestNew_SubmitEndToEnd(t *testing.T) {
	p := newTestPipeline(t)

	future := p.Submit(t.Context(), &types.GenerationRequest{Species: "garibaldi"})
	model, err := future.Wait(t.Context())
	require.NoError(t, err)

	assert.Equal(t, "garibaldi", model.Species)
	assert.Equal(t, types.StrategyProcedural, model.Method)
	assert.False(t, model.IsFallback)
	assert.NotEmpty(t, model.Fingerprint)
	assert.Len(t, model.Levels, 4)
}

func TestSubmit_SecondRequestHitsCache(t *testing.T) {
	p := newTestPipeline(t)

	req := &types.GenerationRequest{Species: "leopard_shark", Tier: types.TierBackground}
	first, err := p.Submit(t.Context(), req).Wait(t.Context())
	require.NoError(t, err)

	second, err := p.Submit(t.Context(), req).Wait(t.Context())
	require.NoError(t, err)

	assert.Equal(t, first.Fingerprint, second.Fingerprint)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, int64(1), p.Metrics().ModelsGenerated)
}

func TestDefaultStrategies_CoversAllKinds(t *testing.T) {
	set := DefaultStrategies(strategy.SyntheticImageLoader{}, nil)

	require.Len(t, set, 4)
	for _, kind := range []types.StrategyKind{
		types.StrategyPhotogrammetric,
		types.StrategyDepthSynthesis,
		types.StrategyProcedural,
		types.StrategyHybrid,
	} {
		gen, ok := set[kind]
		require.True(t, ok, "missing %s", kind)
		assert.Equal(t, kind, gen.Kind())
	}
}

func TestOnModelReady_ReceivesEvents(t *testing.T) {
	p := newTestPipeline(t)

	var (
		mu     sync.Mutex
		events []pipeline.Event
	)
	p.OnModelReady(func(ev pipeline.Event) {
		mu.Lock()
		events = append(events, ev)
		mu.Unlock()
	})

	_, err := p.Submit(t.Context(), &types.GenerationRequest{
		Species:    "moon_jelly",
		AddToScene: true,
	}).Wait(t.Context())
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(events) == 1
	}, 2*time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "moon_jelly", events[0].Species)
	assert.True(t, events[0].AddToScene)
}

func TestClose_SubsequentSubmitsResolveToPlaceholder(t *testing.T) {
	p := newTestPipeline(t)
	p.Close()
	p.Close()

	model, err := p.Submit(t.Context(), &types.GenerationRequest{Species: "garibaldi"}).Wait(t.Context())
	require.NoError(t, err)
	assert.True(t, model.IsFallback)
	assert.Equal(t, types.StrategyPlaceholder, model.Method)
}

func TestWithMaxConcurrent_InvalidFallsBackToDefault(t *testing.T) {
	p, err := New(
		WithRegistry(prometheus.NewRegistry()),
		WithMaxConcurrent(0),
	)
	require.NoError(t, err)
	defer p.Close()

	model, err := p.Submit(t.Context(), &types.GenerationRequest{Species: "garibaldi"}).Wait(t.Context())
	require.NoError(t, err)
	assert.NotNil(t, model)
}
