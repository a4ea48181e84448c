package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdaffarudiyanto/vacation-planner-poc/internal/planner"
)

func testRequest() planner.Request {
	return planner.Request{
		Origin:      "New York",
		Destination: "London",
		StartDate:   time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		Days:        5,
		Budget:      1100,
	}
}

func TestCache_Key(t *testing.T) {
	c := New(time.Minute)
	defer c.Close()

	key := c.Key(testRequest())
	assert.Equal(t, "new york:london:2024-06-01:5:1100", key)

	// Case differences in the route fold to the same key, matching the
	// planner's case-insensitive matching.
	upper := testRequest()
	upper.Origin = "NEW YORK"
	upper.Destination = "LONDON"
	assert.Equal(t, key, c.Key(upper))

	other := testRequest()
	other.Budget = 900
	assert.NotEqual(t, key, c.Key(other))
}

func TestCache_Key_BudgetIsLossless(t *testing.T) {
	c := New(time.Minute)
	defer c.Close()

	// Budgets that would round to the same two-decimal string must not
	// share an entry: a result cached for the higher budget would be
	// served to the lower-budget request and could exceed its ceiling.
	higher := testRequest()
	higher.Budget = 1020
	lower := testRequest()
	lower.Budget = 1019.996

	assert.NotEqual(t, c.Key(higher), c.Key(lower))

	fractional := testRequest()
	fractional.Budget = 1019.9999999
	assert.NotEqual(t, c.Key(higher), c.Key(fractional))
	assert.NotEqual(t, c.Key(lower), c.Key(fractional))
}

func TestCache_GetOrSearch_MissThenHit(t *testing.T) {
	c := New(time.Minute)
	defer c.Close()

	var calls atomic.Int64
	search := func() (*planner.Result, error) {
		calls.Add(1)
		return &planner.Result{Total: 1020}, nil
	}

	result, hit, err := c.GetOrSearch(context.Background(), "k", search)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.InDelta(t, 1020, result.Total, 1e-9)

	result, hit, err = c.GetOrSearch(context.Background(), "k", search)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.InDelta(t, 1020, result.Total, 1e-9)
	assert.Equal(t, int64(1), calls.Load())
}

func TestCache_GetOrSearch_CachesNoMatch(t *testing.T) {
	c := New(time.Minute)
	defer c.Close()

	var calls atomic.Int64
	search := func() (*planner.Result, error) {
		calls.Add(1)
		return nil, nil
	}

	result, hit, err := c.GetOrSearch(context.Background(), "k", search)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Nil(t, result)

	result, hit, err = c.GetOrSearch(context.Background(), "k", search)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Nil(t, result)
	assert.Equal(t, int64(1), calls.Load())
}

func TestCache_GetOrSearch_ErrorsNotCached(t *testing.T) {
	c := New(time.Minute)
	defer c.Close()

	var calls atomic.Int64
	search := func() (*planner.Result, error) {
		calls.Add(1)
		return nil, errors.New("boom")
	}

	_, _, err := c.GetOrSearch(context.Background(), "k", search)
	require.Error(t, err)

	_, hit, err := c.GetOrSearch(context.Background(), "k", search)
	require.Error(t, err)
	assert.False(t, hit)
	assert.Equal(t, int64(2), calls.Load())
}

func TestCache_GetOrSearch_Expiry(t *testing.T) {
	c := New(20 * time.Millisecond)
	defer c.Close()

	var calls atomic.Int64
	search := func() (*planner.Result, error) {
		calls.Add(1)
		return &planner.Result{Total: 1}, nil
	}

	_, _, err := c.GetOrSearch(context.Background(), "k", search)
	require.NoError(t, err)

	time.Sleep(40 * time.Millisecond)

	_, hit, err := c.GetOrSearch(context.Background(), "k", search)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, int64(2), calls.Load())
}

func TestCache_GetOrSearch_CollapsesConcurrentSearches(t *testing.T) {
	c := New(time.Minute)
	defer c.Close()

	var calls atomic.Int64
	started := make(chan struct{})
	search := func() (*planner.Result, error) {
		calls.Add(1)
		<-started
		return &planner.Result{Total: 1020}, nil
	}

	const workers = 8
	var wg sync.WaitGroup
	results := make([]*planner.Result, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			result, _, err := c.GetOrSearch(context.Background(), "k", search)
			assert.NoError(t, err)
			results[i] = result
		}(i)
	}

	// Give the goroutines a moment to pile onto the same key, then let the
	// single in-flight search finish.
	time.Sleep(20 * time.Millisecond)
	close(started)
	wg.Wait()

	assert.Equal(t, int64(1), calls.Load())
	for _, r := range results {
		require.NotNil(t, r)
		assert.InDelta(t, 1020, r.Total, 1e-9)
	}
}

func TestCache_Invalidate(t *testing.T) {
	c := New(time.Minute)
	defer c.Close()

	var calls atomic.Int64
	search := func() (*planner.Result, error) {
		calls.Add(1)
		return &planner.Result{Total: 1}, nil
	}

	_, _, err := c.GetOrSearch(context.Background(), "k", search)
	require.NoError(t, err)

	c.Invalidate("k")

	_, hit, err := c.GetOrSearch(context.Background(), "k", search)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, int64(2), calls.Load())
}
