package panel

import (
	"context"
	"sync"
	"sync/atomic"
)

// ticketSeq numbers tickets across every Resource, so a ticket issued by one
// resource never matches another.
var ticketSeq atomic.Uint64

// Ticket identifies one fetch started by Resource.Begin.
type Ticket struct {
	seq uint64
}

// State is the observable state of a Resource.
type State[T any] struct {
	Data    T
	HasData bool
	Loading bool
	Err     error
}

// Resource holds the result of an asynchronous fetch. Only the most recently
// begun fetch may update it: Begin cancels the previous in-flight context and
// Apply discards results carrying an older ticket.
type Resource[T any] struct {
	mu     sync.Mutex
	seq    uint64
	cancel context.CancelFunc
	state  State[T]
}

// Begin marks the resource loading, clears the error and returns the context
// and ticket the new fetch must use.
func (r *Resource[T]) Begin(ctx context.Context) (context.Context, Ticket) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cancel != nil {
		r.cancel()
	}
	fetchCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.seq = ticketSeq.Add(1)
	r.state.Loading = true
	r.state.Err = nil
	return fetchCtx, Ticket{seq: r.seq}
}

// Apply records the outcome of the fetch identified by t. It reports false and
// changes nothing when a newer fetch has begun since.
func (r *Resource[T]) Apply(t Ticket, value T, err error) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if t.seq != r.seq {
		return false
	}
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	r.state.Loading = false
	if err != nil {
		r.state.Err = err
		return true
	}
	r.state.Data = value
	r.state.HasData = true
	return true
}

// Load runs fetch under a fresh ticket and applies its result.
func (r *Resource[T]) Load(ctx context.Context, fetch func(context.Context) (T, error)) State[T] {
	fetchCtx, t := r.Begin(ctx)
	value, err := fetch(fetchCtx)
	r.Apply(t, value, err)
	return r.Snapshot()
}

// Cancel aborts the in-flight fetch, if any. Its result will be discarded.
func (r *Resource[T]) Cancel() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	r.seq = ticketSeq.Add(1)
	r.state.Loading = false
}

func (r *Resource[T]) Snapshot() State[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}
