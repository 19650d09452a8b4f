package gpu

import (
	"context"
	"sync"
)

type result[T any] struct {
	value T
	err   error
}

// oneShot bridges a backend completion callback to a blocked caller. The first delivered
// result is kept; later deliveries are dropped. A caller that gives up through its context
// marks the cell abandoned so a late success can be released by the delivering callback.
type oneShot[T any] struct {
	mu        sync.Mutex
	delivered bool
	abandoned bool
	ch        chan result[T]
}

func newOneShot[T any]() *oneShot[T] {
	return &oneShot[T]{ch: make(chan result[T], 1)}
}

// complete stores the result. It reports false when a result was already stored or the
// waiter has gone away.
func (o *oneShot[T]) complete(v T, err error) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.delivered || o.abandoned {
		return false
	}
	o.delivered = true
	o.ch <- result[T]{value: v, err: err}
	return true
}

func (o *oneShot[T]) isAbandoned() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.abandoned
}

// wait blocks until a result is delivered or ctx is done.
func (o *oneShot[T]) wait(ctx context.Context) (T, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	select {
	case r := <-o.ch:
		return r.value, r.err
	case <-ctx.Done():
		o.mu.Lock()
		defer o.mu.Unlock()
		if o.delivered {
			r := <-o.ch
			return r.value, r.err
		}
		o.abandoned = true
		var zero T
		return zero, ctx.Err()
	}
}
