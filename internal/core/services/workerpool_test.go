package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
)

func TestWorkerPool_RunsFunction(t *testing.T) {
	pool := NewWorkerPool(2, 2)

	ran := false
	err := pool.Do(context.Background(), func(ctx context.Context) error {
		ran = true
		return nil
	})

	require.NoError(t, err)
	assert.True(t, ran)
}

func TestWorkerPool_PropagatesFunctionError(t *testing.T) {
	pool := NewWorkerPool(1, 0)

	err := pool.Do(context.Background(), func(ctx context.Context) error {
		return domain.ErrCorruptInput
	})

	assert.ErrorIs(t, err, domain.ErrCorruptInput)
}

func TestWorkerPool_RejectsWhenSaturated(t *testing.T) {
	pool := NewWorkerPool(1, 1)

	block := make(chan struct{})
	started := make(chan struct{}, 2)
	var wg sync.WaitGroup

	// Fill the worker slot and the queue slot
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = pool.Do(context.Background(), func(ctx context.Context) error {
				started <- struct{}{}
				<-block
				return nil
			})
		}()
	}

	// Wait until the first task holds the worker slot; the second is
	// queued behind it
	<-started
	waitForQueued(t, pool)

	err := pool.Do(context.Background(), func(ctx context.Context) error { return nil })
	assert.ErrorIs(t, err, domain.ErrOverloaded)

	close(block)
	wg.Wait()
}

// waitForQueued spins until the pool's admission capacity is exhausted.
func waitForQueued(t *testing.T, pool *WorkerPool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if !pool.admission.TryAcquire(1) {
			return
		}
		pool.admission.Release(1)
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("pool never saturated")
}

func TestWorkerPool_CancellationWhileWaiting(t *testing.T) {
	pool := NewWorkerPool(1, 1)

	block := make(chan struct{})
	started := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = pool.Do(context.Background(), func(ctx context.Context) error {
			close(started)
			<-block
			return nil
		})
	}()
	<-started

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- pool.Do(ctx, func(ctx context.Context) error { return nil })
	}()

	cancel()
	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("cancelled waiter never returned")
	}

	close(block)
	<-done
}

func TestNewWorkerPool_ClampsInvalidLimits(t *testing.T) {
	pool := NewWorkerPool(0, -5)

	err := pool.Do(context.Background(), func(ctx context.Context) error { return nil })
	assert.NoError(t, err)
}
