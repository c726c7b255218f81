package pipeline

import "github.com/Elarwei001/ocean-forest-3d-sub000/types"

// fifo is the unbounded request queue. It is not safe for concurrent
// use: the coordinator owns it and guards it with its own lock.
type fifo struct {
	items []*types.GenerationRequest
}

func (q *fifo) push(req *types.GenerationRequest) {
	q.items = append(q.items, req)
}

// popN removes and returns up to n requests in arrival order.
func (q *fifo) popN(n int) []*types.GenerationRequest {
	if n > len(q.items) {
		n = len(q.items)
	}
	if n == 0 {
		return nil
	}
	batch := make([]*types.GenerationRequest, n)
	copy(batch, q.items[:n])
	rest := len(q.items) - n
	copy(q.items, q.items[n:])
	for i := rest; i < len(q.items); i++ {
		q.items[i] = nil
	}
	q.items = q.items[:rest]
	return batch
}

func (q *fifo) len() int { return len(q.items) }
