package pipeline

import (
	"sync"

	"golang.org/x/sync/errgroup"
)

// Barrier joins a fixed pool of workers and collects one typed result per
// worker, in worker-index order. Each worker owns its result slot, so no
// locking is needed around the slice.
type Barrier[T any] struct {
	group   errgroup.Group
	results []T
	once    sync.Once
	done    chan struct{}
}

// NewBarrier creates a barrier for n workers
func NewBarrier[T any](n int) *Barrier[T] {
	return &Barrier[T]{
		results: make([]T, n),
		done:    make(chan struct{}),
	}
}

// Go starts worker i; its return value fills result slot i
func (b *Barrier[T]) Go(i int, work func() T) {
	b.group.Go(func() error {
		b.results[i] = work()
		return nil
	})
}

// Wait blocks until every worker returned and hands back their results.
// It is safe to call Wait more than once.
func (b *Barrier[T]) Wait() []T {
	_ = b.group.Wait()
	b.once.Do(func() { close(b.done) })
	return b.results
}

// Done is closed once Wait has observed every worker finishing
func (b *Barrier[T]) Done() <-chan struct{} {
	return b.done
}
