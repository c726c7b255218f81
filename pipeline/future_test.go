package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Elarwei001/ocean-forest-3d-sub000/geometry"
	"github.com/Elarwei001/ocean-forest-3d-sub000/types"
)

func futureModel() *types.LODModel {
	mesh := geometry.Cone(0.3, 0.8, 6)
	return &types.LODModel{
		RawModel:    types.RawModel{ID: "m1", Species: "sp", Method: types.StrategyProcedural, Mesh: mesh},
		Fingerprint: "model:sp",
		Levels:      []types.LODLevel{{Distance: 0, Mesh: mesh}},
	}
}

func TestFuture_WaitReturnsClone(t *testing.T) {
	f := newFuture()
	assert.Nil(t, f.Model(), "unresolved future has no model")

	master := futureModel()
	f.resolve(master)

	got, err := f.Wait(context.Background())
	require.NoError(t, err)
	got.Levels[0].Mesh.Vertices[0].X += 100
	assert.NotEqual(t, got.Levels[0].Mesh.Vertices[0].X, master.Levels[0].Mesh.Vertices[0].X)

	// A second wait gets its own independent clone.
	again, err := f.Wait(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, got.Levels[0].Mesh.Vertices[0].X, again.Levels[0].Mesh.Vertices[0].X)
}

func TestFuture_WaitHonorsContext(t *testing.T) {
	f := newFuture()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := f.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// The future itself is unaffected by the abandoned wait.
	f.resolve(futureModel())
	got, err := f.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "model:sp", got.Fingerprint)
}

func TestFuture_Resolved(t *testing.T) {
	f := resolved(futureModel())
	select {
	case <-f.Done():
	default:
		t.Fatal("resolved future must be done")
	}
	assert.NotNil(t, f.Model())
}

func TestFifo_PopN(t *testing.T) {
	var q fifo
	for _, sp := range []string{"a", "b", "c", "d", "e"} {
		q.push(&types.GenerationRequest{Species: sp})
	}
	assert.Equal(t, 5, q.len())

	batch := q.popN(2)
	require.Len(t, batch, 2)
	assert.Equal(t, "a", batch[0].Species)
	assert.Equal(t, "b", batch[1].Species)
	assert.Equal(t, 3, q.len())

	batch = q.popN(10)
	require.Len(t, batch, 3)
	assert.Equal(t, "e", batch[2].Species)
	assert.Equal(t, 0, q.len())
	assert.Empty(t, q.popN(2))
}
