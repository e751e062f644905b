package services

import (
	"context"

	"golang.org/x/sync/semaphore"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
)

// WorkerPool bounds concurrent extraction work. Up to workers tasks run
// at once and up to queueDepth more may wait for a slot; anything past
// that is rejected immediately with domain.ErrOverloaded so callers get
// backpressure instead of unbounded queueing.
type WorkerPool struct {
	slots     *semaphore.Weighted
	admission *semaphore.Weighted
}

// NewWorkerPool creates a pool with the given worker and queue limits.
// Non-positive values fall back to 1 worker / 0 queue.
func NewWorkerPool(workers, queueDepth int) *WorkerPool {
	if workers < 1 {
		workers = 1
	}
	if queueDepth < 0 {
		queueDepth = 0
	}
	return &WorkerPool{
		slots:     semaphore.NewWeighted(int64(workers)),
		admission: semaphore.NewWeighted(int64(workers + queueDepth)),
	}
}

// Do runs fn under a pool slot. It returns domain.ErrOverloaded when
// the pool and queue are saturated, or ctx.Err() when the caller
// cancels while waiting. The slot is released on every exit path.
func (p *WorkerPool) Do(ctx context.Context, fn func(context.Context) error) error {
	if !p.admission.TryAcquire(1) {
		return domain.ErrOverloaded
	}
	defer p.admission.Release(1)

	if err := p.slots.Acquire(ctx, 1); err != nil {
		return err
	}
	defer p.slots.Release(1)

	return fn(ctx)
}
