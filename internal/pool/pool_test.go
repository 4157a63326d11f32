package pool

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPool_Submit(t *testing.T) {
	t.Run("runs submitted tasks", func(t *testing.T) {
		p := New(2)
		defer p.Shutdown()

		var ran int32
		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			err := p.Submit(context.Background(), func() {
				atomic.AddInt32(&ran, 1)
				wg.Done()
			})
			assert.NoError(t, err)
		}
		wg.Wait()
		assert.Equal(t, int32(8), atomic.LoadInt32(&ran))
	})

	t.Run("cancelled context while full", func(t *testing.T) {
		p := New(1)
		defer p.Shutdown()

		release := make(chan struct{})
		var wg sync.WaitGroup
		wg.Add(1)
		assert.NoError(t, p.Submit(context.Background(), func() {
			defer wg.Done()
			<-release
		}))
		// fill the single buffer slot so the next submit must block
		assert.NoError(t, p.Submit(context.Background(), func() {}))

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := p.Submit(ctx, func() {})
		assert.ErrorIs(t, err, context.Canceled)

		close(release)
		wg.Wait()
	})

	t.Run("after shutdown", func(t *testing.T) {
		p := New(1)
		p.Shutdown()
		err := p.Submit(context.Background(), func() {})
		assert.ErrorIs(t, err, ErrShutdown)
	})
}

func TestPool_Shutdown(t *testing.T) {
	p := New(2)
	p.Shutdown()
	p.Shutdown() // idempotent
}
