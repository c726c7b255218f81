package pipeline

import (
	"context"
	"sync"

	"github.com/Elarwei001/ocean-forest-3d-sub000/types"
)

// Future is the caller's handle on a submitted request. It resolves
// exactly once, always with a model: failures are absorbed by the
// fallback chain before resolution. Multiple callers may share one
// future (in-flight dedup); each Wait hands out its own clone.
type Future struct {
	done chan struct{}

	mu     sync.Mutex
	master *types.LODModel
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

// resolved creates an already-resolved future for cache hits.
func resolved(master *types.LODModel) *Future {
	f := newFuture()
	f.resolve(master)
	return f
}

// resolve publishes the master model. Calling it twice is a bug;
// the second call panics on the closed channel.
func (f *Future) resolve(master *types.LODModel) {
	f.mu.Lock()
	f.master = master
	f.mu.Unlock()
	close(f.done)
}

// Done returns a channel closed when the future resolves.
func (f *Future) Done() <-chan struct{} { return f.done }

// Wait blocks until the future resolves or ctx ends. On resolution it
// returns an independent clone of the model; generation itself is not
// cancelled when ctx ends, only this wait.
func (f *Future) Wait(ctx context.Context) (*types.LODModel, error) {
	select {
	case <-f.done:
		return f.clone(), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Model returns a clone when resolved, nil otherwise.
func (f *Future) Model() *types.LODModel {
	select {
	case <-f.done:
		return f.clone()
	default:
		return nil
	}
}

func (f *Future) clone() *types.LODModel {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.master.Clone()
}
