package platform

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loanflow/internal/common/logger"
	"loanflow/internal/provider"
)

type countingLister struct {
	calls     int32
	platforms []provider.Platform
	err       error
}

func (l *countingLister) GetAccountingPlatforms(ctx context.Context) ([]provider.Platform, error) {
	atomic.AddInt32(&l.calls, 1)
	if l.err != nil {
		return nil, l.err
	}
	return l.platforms, nil
}

func accountingPlatforms() []provider.Platform {
	return []provider.Platform{
		{Key: "xero", Name: "Xero"},
		{Key: "quickbooks", Name: "QuickBooks Online"},
	}
}

func TestIsAccountingPlatformFetchesOnce(t *testing.T) {
	lister := &countingLister{platforms: accountingPlatforms()}
	cache := NewCache(lister, nil, time.Hour, logger.NewTestLogger(t))
	ctx := context.Background()

	ok, err := cache.IsAccountingPlatform(ctx, "xero")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = cache.IsAccountingPlatform(ctx, "shopify")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = cache.IsAccountingPlatform(ctx, "quickbooks")
	require.NoError(t, err)
	assert.True(t, ok)

	assert.Equal(t, int32(1), atomic.LoadInt32(&lister.calls))
}

func TestIsAccountingPlatformFetchError(t *testing.T) {
	lister := &countingLister{err: errors.New("provider unavailable")}
	cache := NewCache(lister, nil, time.Hour, logger.NewTestLogger(t))

	_, err := cache.IsAccountingPlatform(context.Background(), "xero")
	require.Error(t, err)

	// A failed fetch must not poison the cache.
	lister.err = nil
	lister.platforms = accountingPlatforms()
	ok, err := cache.IsAccountingPlatform(context.Background(), "xero")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestConcurrentFirstLookupSingleFetch(t *testing.T) {
	lister := &countingLister{platforms: accountingPlatforms()}
	cache := NewCache(lister, nil, time.Hour, logger.NewTestLogger(t))
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := cache.IsAccountingPlatform(ctx, "xero")
			assert.NoError(t, err)
			assert.True(t, ok)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&lister.calls))
}

func TestRedisReadThrough(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	seeded, err := json.Marshal([]string{"sage", "freshbooks"})
	require.NoError(t, err)
	require.NoError(t, mr.Set("platforms:accounting", string(seeded)))

	lister := &countingLister{platforms: accountingPlatforms()}
	cache := NewCache(lister, rdb, time.Hour, logger.NewTestLogger(t))

	ok, err := cache.IsAccountingPlatform(context.Background(), "sage")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = cache.IsAccountingPlatform(context.Background(), "xero")
	require.NoError(t, err)
	assert.False(t, ok)

	// The redis hit means the provider is never consulted.
	assert.Equal(t, int32(0), atomic.LoadInt32(&lister.calls))
}

func TestRedisWriteBackOnMiss(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	lister := &countingLister{platforms: accountingPlatforms()}
	cache := NewCache(lister, rdb, time.Hour, logger.NewTestLogger(t))

	ok, err := cache.IsAccountingPlatform(context.Background(), "xero")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int32(1), atomic.LoadInt32(&lister.calls))

	val, err := mr.Get("platforms:accounting")
	require.NoError(t, err)
	var keys []string
	require.NoError(t, json.Unmarshal([]byte(val), &keys))
	assert.ElementsMatch(t, []string{"xero", "quickbooks"}, keys)
}

func TestRedisUnavailableFallsBackToProvider(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	mr.Close()

	lister := &countingLister{platforms: accountingPlatforms()}
	cache := NewCache(lister, rdb, time.Hour, logger.NewTestLogger(t))

	ok, err := cache.IsAccountingPlatform(context.Background(), "xero")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int32(1), atomic.LoadInt32(&lister.calls))
}
