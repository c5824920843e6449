package cache

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/use-agent/domhash/domhash"
	"github.com/use-agent/domhash/models"
)

const page = "<div>Hello World, this is a sample document for testing.</div>"

func newEngine(t *testing.T, opts domhash.Options) *domhash.Engine {
	t.Helper()
	e, err := domhash.New(opts)
	require.NoError(t, err)
	return e
}

func TestKey_DependsOnContentAndOptions(t *testing.T) {
	opts := domhash.DefaultOptions()
	other := opts
	other.NgramSize = 3

	assert.Equal(t, Key(page, opts), Key(page, opts))
	assert.NotEqual(t, Key(page, opts), Key(page+" ", opts))
	assert.NotEqual(t, Key(page, opts), Key(page, other))
	assert.Len(t, Key(page, opts), 64)
}

func TestGenerate_HitAfterMiss(t *testing.T) {
	c, err := New(10)
	require.NoError(t, err)
	e := newEngine(t, domhash.DefaultOptions())

	first, status, err := c.Generate(e, page)
	require.NoError(t, err)
	assert.Equal(t, StatusMiss, status)

	second, status, err := c.Generate(e, page)
	require.NoError(t, err)
	assert.Equal(t, StatusHit, status)
	assert.True(t, first.Digest.Equal(second.Digest))

	stats := c.Stats()
	assert.Equal(t, 1, stats.Entries)
	assert.Equal(t, uint64(1), stats.Hits)
	assert.Equal(t, uint64(1), stats.Misses)
}

func TestGenerate_ErrorsNotCached(t *testing.T) {
	c, err := New(10)
	require.NoError(t, err)
	e := newEngine(t, domhash.DefaultOptions())

	_, _, err = c.Generate(e, "not markup")
	assert.True(t, errors.Is(err, models.ErrInvalidContent))
	assert.Equal(t, 0, c.Stats().Entries)
}

func TestEvictsLeastRecentlyUsed(t *testing.T) {
	c, err := New(2)
	require.NoError(t, err)

	c.Set("a", &domhash.Result{Units: 1})
	c.Set("b", &domhash.Result{Units: 2})
	_, _ = c.Get("a")
	c.Set("c", &domhash.Result{Units: 3})

	_, okA := c.Get("a")
	_, okB := c.Get("b")
	assert.True(t, okA)
	assert.False(t, okB)
	assert.Equal(t, 2, c.Stats().Entries)
}

func TestDo_SingleComputationPerKey(t *testing.T) {
	c, err := New(10)
	require.NoError(t, err)

	var calls atomic.Int32
	release := make(chan struct{})
	compute := func() (*domhash.Result, error) {
		calls.Add(1)
		<-release
		return &domhash.Result{Units: 7}, nil
	}

	const callers = 8
	var wg sync.WaitGroup
	results := make([]*domhash.Result, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, _, err := c.Do("k", compute)
			assert.NoError(t, err)
			results[i] = res
		}(i)
	}

	// Let the callers pile up on the in-flight computation.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, r := range results {
		require.NotNil(t, r)
		assert.Equal(t, 7, r.Units)
	}
}
