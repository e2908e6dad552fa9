package records

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"reconciler/core/reconcile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingSource counts Load calls and can block them until released.
type countingSource struct {
	calls atomic.Int32
	gate  chan struct{}
	err   error
}

func (c *countingSource) Name() string { return "counting" }

func (c *countingSource) Load(_ context.Context, ref string) ([]reconcile.Record, error) {
	c.calls.Add(1)
	if c.gate != nil {
		<-c.gate
	}
	if c.err != nil {
		return nil, c.err
	}
	return []reconcile.Record{{"id": reconcile.String(ref)}}, nil
}

func TestCachedSource_ReusesWithinTTL(t *testing.T) {
	inner := &countingSource{}
	src := NewCachedSource(inner, time.Minute)
	ctx := context.Background()

	first, err := src.Load(ctx, "a")
	require.NoError(t, err)
	second, err := src.Load(ctx, "a")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), inner.calls.Load())

	_, err = src.Load(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, int32(2), inner.calls.Load(), "refs are cached independently")
	assert.Equal(t, "counting", src.Name())
}

func TestCachedSource_Invalidate(t *testing.T) {
	inner := &countingSource{}
	src := NewCachedSource(inner, time.Minute)
	ctx := context.Background()

	_, err := src.Load(ctx, "a")
	require.NoError(t, err)
	src.Invalidate("a")
	_, err = src.Load(ctx, "a")
	require.NoError(t, err)

	assert.Equal(t, int32(2), inner.calls.Load())
}

func TestCachedSource_ZeroTTLDisablesCache(t *testing.T) {
	inner := &countingSource{}
	src := NewCachedSource(inner, 0)

	for i := 0; i < 3; i++ {
		_, err := src.Load(context.Background(), "a")
		require.NoError(t, err)
	}
	assert.Equal(t, int32(3), inner.calls.Load())
}

func TestCachedSource_ErrorsAreNotCached(t *testing.T) {
	inner := &countingSource{err: errors.New("boom")}
	src := NewCachedSource(inner, time.Minute)

	_, err := src.Load(context.Background(), "a")
	assert.Error(t, err)
	_, err = src.Load(context.Background(), "a")
	assert.Error(t, err)
	assert.Equal(t, int32(2), inner.calls.Load())
}

func TestCachedSource_SingleFlight(t *testing.T) {
	inner := &countingSource{gate: make(chan struct{})}
	src := NewCachedSource(inner, time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			recs, err := src.Load(context.Background(), "a")
			assert.NoError(t, err)
			assert.Len(t, recs, 1)
		}()
	}

	// Give the callers time to pile up behind the first load.
	time.Sleep(50 * time.Millisecond)
	close(inner.gate)
	wg.Wait()

	assert.Equal(t, int32(1), inner.calls.Load())
}

func TestCacheConfig_TTL(t *testing.T) {
	assert.Equal(t, time.Duration(0), CacheConfig{}.TTL())
	assert.Equal(t, 2*time.Minute, CacheConfig{TTLSeconds: 120}.TTL())
}
