package variant

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/revendelo/backend-tienda/internal/catalog"
)

// Cache memoizes sibling lookups per base code so repeated option renders do
// not refetch the upstream catalog.
type Cache interface {
	Get(ctx context.Context, baseCode string) ([]catalog.Product, bool, error)
	Set(ctx context.Context, baseCode string, variants []catalog.Product) error
	Clear(ctx context.Context) error
}

// MemoryCache is a process-local Cache for single-instance deployments and
// tests.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string][]catalog.Product
}

// NewMemoryCache constructs an empty in-process cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string][]catalog.Product)}
}

func (c *MemoryCache) Get(_ context.Context, baseCode string) ([]catalog.Product, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	variants, ok := c.entries[baseCode]
	return variants, ok, nil
}

func (c *MemoryCache) Set(_ context.Context, baseCode string, variants []catalog.Product) error {
	if baseCode == "" {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[baseCode] = variants
	return nil
}

func (c *MemoryCache) Clear(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string][]catalog.Product)
	return nil
}

// RedisCache stores sibling sets as JSON payloads with a TTL so stale option
// sets age out across instances. A companion index set makes Clear cheap
// without a SCAN.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisCache constructs a Redis-backed Cache.
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisCache{client: client, ttl: ttl, prefix: "variants:"}
}

func (c *RedisCache) key(baseCode string) string { return c.prefix + baseCode }
func (c *RedisCache) indexKey() string           { return c.prefix + "keys" }

func (c *RedisCache) Get(ctx context.Context, baseCode string) ([]catalog.Product, bool, error) {
	if c == nil || c.client == nil || baseCode == "" {
		return nil, false, nil
	}
	data, err := c.client.Get(ctx, c.key(baseCode)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, false, nil
		}
		return nil, false, err
	}
	var variants []catalog.Product
	if err := json.Unmarshal(data, &variants); err != nil {
		return nil, false, err
	}
	return variants, true, nil
}

func (c *RedisCache) Set(ctx context.Context, baseCode string, variants []catalog.Product) error {
	if c == nil || c.client == nil || baseCode == "" {
		return nil
	}
	data, err := json.Marshal(variants)
	if err != nil {
		return err
	}
	pipe := c.client.TxPipeline()
	pipe.Set(ctx, c.key(baseCode), data, c.ttl)
	pipe.SAdd(ctx, c.indexKey(), baseCode)
	pipe.Expire(ctx, c.indexKey(), c.ttl)
	_, err = pipe.Exec(ctx)
	return err
}

func (c *RedisCache) Clear(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	baseCodes, err := c.client.SMembers(ctx, c.indexKey()).Result()
	if err != nil && err != redis.Nil {
		return err
	}
	keys := make([]string, 0, len(baseCodes)+1)
	for _, base := range baseCodes {
		keys = append(keys, c.key(base))
	}
	keys = append(keys, c.indexKey())
	return c.client.Del(ctx, keys...).Err()
}
