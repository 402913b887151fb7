package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cane-backend/internal/config"
	"cane-backend/internal/metrics"
	"cane-backend/pkg/utils"

	"github.com/redis/go-redis/v9"
)

const (
	entryKeyFmt      = "entry:%s"
	comparisonKeyFmt = "entry:%s:comparison"
)

// Cache is a read-through cache for entries and comparisons. A Cache with no
// client is valid and never hits, so the service runs without Redis.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// Init connects to Redis. On failure it returns a disabled Cache together
// with the error so the caller can log it and carry on.
func Init(cfg *config.Config) (*Cache, error) {
	ttl := time.Duration(cfg.Redis.TTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return &Cache{ttl: ttl}, err
	}
	return &Cache{client: client, ttl: ttl}, nil
}

// New wraps an existing client; nil disables caching
func New(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// Enabled reports whether a Redis client is attached; a nil Cache is disabled
func (c *Cache) Enabled() bool {
	return c != nil && c.client != nil
}

func (c *Cache) Ping(ctx context.Context) error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Ping(ctx).Err()
}

// Close releases the Redis client
func (c *Cache) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Close()
}

func EntryKey(id string) string      { return fmt.Sprintf(entryKeyFmt, id) }
func ComparisonKey(id string) string { return fmt.Sprintf(comparisonKeyFmt, id) }

// GetJSON decodes the cached value at key into dst and reports a hit
func (c *Cache) GetJSON(ctx context.Context, key string, dst interface{}) bool {
	if !c.Enabled() {
		return false
	}
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		metrics.CacheLookups.WithLabelValues("miss").Inc()
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		metrics.CacheLookups.WithLabelValues("corrupt").Inc()
		c.client.Del(ctx, key)
		return false
	}
	metrics.CacheLookups.WithLabelValues("hit").Inc()
	return true
}

// SetJSON stores value under key for the cache TTL. Failures are logged only.
func (c *Cache) SetJSON(ctx context.Context, key string, value interface{}) {
	if !c.Enabled() {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		utils.GetLogger().WithError(err).WithField("key", key).Warn("cache write failed")
	}
}

// InvalidateEntry drops every cached view of one entry
func (c *Cache) InvalidateEntry(ctx context.Context, id string) {
	if !c.Enabled() {
		return
	}
	c.client.Del(ctx, EntryKey(id), ComparisonKey(id))
}
