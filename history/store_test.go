package history

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Elarwei001/ocean-forest-3d-sub000/config"
	"github.com/Elarwei001/ocean-forest-3d-sub000/pipeline"
	"github.com/Elarwei001/ocean-forest-3d-sub000/types"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(config.HistoryConfig{Driver: "sqlite", Path: ":memory:"}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(config.HistoryConfig{Driver: "oracle"}, zap.NewNop())
	assert.Error(t, err)
}

func TestAppendAndRecent(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	for i, species := range []string{"garibaldi", "leopard_shark", "garibaldi"} {
		err := store.Append(ctx, &Record{
			RequestID:   "req",
			Fingerprint: "model:fp",
			Species:     species,
			Tier:        "standard",
			Method:      "procedural",
			VertexCount: 100 + i,
			CreatedAt:   time.Now(),
		})
		require.NoError(t, err)
	}

	recent, err := store.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "garibaldi", recent[0].Species, "newest first")
	assert.Equal(t, 102, recent[0].VertexCount)
	assert.Equal(t, "leopard_shark", recent[1].Species)

	all, err := store.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3, "non-positive limit uses the default")
}

func TestCountBySpecies(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, &Record{Species: "garibaldi"}))
	require.NoError(t, store.Append(ctx, &Record{Species: "garibaldi"}))
	require.NoError(t, store.Append(ctx, &Record{Species: "cabezon"}))

	n, err := store.CountBySpecies(ctx, "garibaldi")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = store.CountBySpecies(ctx, "nothing")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestHandler_RecordsEvents(t *testing.T) {
	store := setupTestStore(t)
	handler := store.Handler()

	handler(pipeline.Event{
		RequestID:   "req-1",
		Fingerprint: "model:abc",
		Species:     "moray_eel",
		Tier:        types.TierStandard,
		Quality:     types.QualityStandard,
		Method:      types.StrategyDepthSynthesis,
		IsFallback:  false,
		VertexCount: 2048,
		Duration:    42 * time.Millisecond,
		GeneratedAt: time.Now(),
	})

	// The handler writes asynchronously.
	require.Eventually(t, func() bool {
		n, err := store.CountBySpecies(context.Background(), "moray_eel")
		return err == nil && n == 1
	}, 2*time.Second, 10*time.Millisecond)

	recent, err := store.Recent(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "model:abc", recent[0].Fingerprint)
	assert.Equal(t, "depth_synthesis", recent[0].Method)
	assert.Equal(t, int64(42), recent[0].DurationMS)
}
