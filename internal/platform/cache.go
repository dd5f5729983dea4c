// Package platform resolves whether a provider platform key belongs to an
// accounting platform. The key set is fetched once per process, guarded by
// singleflight so concurrent first use performs a single provider call,
// with an optional redis read-through layer shared across instances.
package platform

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"loanflow/internal/common/logger"
	"loanflow/internal/provider"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const cacheKey = "platforms:accounting"

// Lister is the slice of the provider client this cache needs.
type Lister interface {
	GetAccountingPlatforms(ctx context.Context) ([]provider.Platform, error)
}

// Cache memoizes the accounting platform key set for its lifetime.
type Cache struct {
	lister Lister
	redis  *redis.Client // optional
	ttl    time.Duration
	logger logger.Logger

	group  singleflight.Group
	mu     sync.RWMutex
	keys   map[string]struct{}
	loaded bool
}

func NewCache(lister Lister, rdb *redis.Client, ttl time.Duration, log logger.Logger) *Cache {
	return &Cache{
		lister: lister,
		redis:  rdb,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"component": "platform-cache"}),
	}
}

// IsAccountingPlatform reports whether key identifies an accounting
// platform. The first call may perform a network fetch; subsequent calls
// are pure lookups.
func (c *Cache) IsAccountingPlatform(ctx context.Context, key string) (bool, error) {
	c.mu.RLock()
	if c.loaded {
		_, ok := c.keys[key]
		c.mu.RUnlock()
		return ok, nil
	}
	c.mu.RUnlock()

	if err := c.populate(ctx); err != nil {
		return false, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.keys[key]
	return ok, nil
}

func (c *Cache) populate(ctx context.Context) error {
	_, err, _ := c.group.Do(cacheKey, func() (interface{}, error) {
		c.mu.RLock()
		loaded := c.loaded
		c.mu.RUnlock()
		if loaded {
			return nil, nil
		}

		keys, err := c.fetchKeys(ctx)
		if err != nil {
			return nil, err
		}

		set := make(map[string]struct{}, len(keys))
		for _, k := range keys {
			set[k] = struct{}{}
		}

		c.mu.Lock()
		c.keys = set
		c.loaded = true
		c.mu.Unlock()
		return nil, nil
	})
	return err
}

func (c *Cache) fetchKeys(ctx context.Context) ([]string, error) {
	if c.redis != nil {
		if val, err := c.redis.Get(ctx, cacheKey).Result(); err == nil {
			var keys []string
			if err := json.Unmarshal([]byte(val), &keys); err == nil {
				return keys, nil
			}
		}
	}

	platforms, err := c.lister.GetAccountingPlatforms(ctx)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(platforms))
	for _, p := range platforms {
		keys = append(keys, p.Key)
	}

	if c.redis != nil {
		data, _ := json.Marshal(keys)
		if err := c.redis.Set(ctx, cacheKey, data, c.ttl).Err(); err != nil {
			c.logger.Warn("failed to cache platform keys in redis", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	return keys, nil
}
