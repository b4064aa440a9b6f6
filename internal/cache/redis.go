package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"jobpulse/internal/config"
	"jobpulse/internal/logging"
	"jobpulse/pkg/models"
)

// SearchCache keeps recent search responses in Redis so repeated queries
// skip the search cluster. A disabled cache is a no-op, never an error.
type SearchCache struct {
	client  *redis.Client
	ttl     time.Duration
	enabled bool
	logger  logging.Logger
}

// NewSearchCache builds the cache from config. When Redis is disabled the
// returned cache silently misses on every lookup.
func NewSearchCache(cfg *config.Config) *SearchCache {
	cache := &SearchCache{
		ttl:     cfg.Redis.TTL,
		enabled: cfg.Redis.Enabled,
		logger:  logging.GetGlobalLogger(),
	}
	if !cache.enabled {
		return cache
	}

	opts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		opts = &redis.Options{Addr: "localhost:6379"}
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	cache.client = redis.NewClient(opts)
	return cache
}

// Get returns the cached response for the request, or nil on a miss.
// Redis failures degrade to a miss so search never depends on the cache.
func (c *SearchCache) Get(ctx context.Context, req *models.SearchRequest) *models.SearchResponse {
	if !c.enabled {
		return nil
	}

	payload, err := c.client.Get(ctx, requestKey(req)).Result()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("Search cache read failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
		return nil
	}

	var resp models.SearchResponse
	if err := json.Unmarshal([]byte(payload), &resp); err != nil {
		return nil
	}
	return &resp
}

// Put stores a response under the request's key for the configured TTL.
func (c *SearchCache) Put(ctx context.Context, req *models.SearchRequest, resp *models.SearchResponse) {
	if !c.enabled {
		return
	}

	payload, err := json.Marshal(resp)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, requestKey(req), payload, c.ttl).Err(); err != nil {
		c.logger.Warn("Search cache write failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

// Ping tests the Redis connection. Disabled caches are always healthy.
func (c *SearchCache) Ping(ctx context.Context) error {
	if !c.enabled {
		return nil
	}
	return c.client.Ping(ctx).Err()
}

// Close releases the Redis connection.
func (c *SearchCache) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}

// requestKey derives a stable cache key from the full request shape.
func requestKey(req *models.SearchRequest) string {
	payload, _ := json.Marshal(req)
	sum := sha256.Sum256(payload)
	return fmt.Sprintf("search:results:%s", hex.EncodeToString(sum[:16]))
}
