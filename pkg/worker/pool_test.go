package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPool_DefaultConcurrency(t *testing.T) {
	p := NewPool("test", 0)
	assert.Equal(t, 2, p.Concurrency())
}

func TestPool_StartTwice(t *testing.T) {
	p := NewPool("test", 1)
	require.NoError(t, p.Start(context.Background()))
	defer p.Stop(context.Background())

	require.Error(t, p.Start(context.Background()))
}

func TestPool_DoReturnsTaskError(t *testing.T) {
	p := NewPool("test", 1)
	require.NoError(t, p.Start(context.Background()))
	defer p.Stop(context.Background())

	boom := errors.New("boom")
	err := p.Do(context.Background(), func(context.Context) error { return boom })
	require.ErrorIs(t, err, boom)

	require.NoError(t, p.Do(context.Background(), func(context.Context) error { return nil }))
}

func TestPool_DoWhenStopped(t *testing.T) {
	p := NewPool("test", 1)
	err := p.Do(context.Background(), func(context.Context) error { return nil })
	require.ErrorIs(t, err, ErrStopped)
}

func TestPool_BoundsConcurrency(t *testing.T) {
	p := NewPool("test", 2)
	require.NoError(t, p.Start(context.Background()))
	defer p.Stop(context.Background())

	var running, peak int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = p.Do(context.Background(), func(context.Context) error {
				n := atomic.AddInt32(&running, 1)
				for {
					old := atomic.LoadInt32(&peak)
					if n <= old || atomic.CompareAndSwapInt32(&peak, old, n) {
						break
					}
				}
				time.Sleep(10 * time.Millisecond)
				atomic.AddInt32(&running, -1)
				return nil
			})
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(2))
}

func TestPool_DoHonoursContextWhileQueued(t *testing.T) {
	p := NewPool("test", 1)
	require.NoError(t, p.Start(context.Background()))
	defer p.Stop(context.Background())

	release := make(chan struct{})
	go func() {
		_ = p.Do(context.Background(), func(context.Context) error {
			<-release
			return nil
		})
	}()
	time.Sleep(20 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := p.Do(ctx, func(context.Context) error { return nil })
	require.ErrorIs(t, err, context.DeadlineExceeded)
	close(release)
}

func TestPool_StopIdempotent(t *testing.T) {
	p := NewPool("test", 1)
	require.NoError(t, p.Start(context.Background()))
	require.NoError(t, p.Stop(context.Background()))
	require.NoError(t, p.Stop(context.Background()))
}
