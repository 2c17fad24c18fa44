package existence

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache wraps a Checker with a short-lived positive cache. Only Exists
// outcomes are stored: an Absent entity may be created at any moment and an
// Indeterminate result carries no information worth reusing. The TTL is the
// accepted staleness window for remote foreign keys.
type Cache struct {
	next   Checker
	client *redis.Client
	ttl    time.Duration
}

// NewCache instantiates the cache wrapper. A nil redis client degrades to a
// pass-through.
func NewCache(next Checker, client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{next: next, client: client, ttl: ttl}
}

func cacheKey(kind string, id int64) string {
	return fmt.Sprintf("existence:%s:%d", kind, id)
}

// Exists consults the positive cache before the wrapped checker. Cache
// errors are ignored; the remote check remains authoritative.
func (c *Cache) Exists(ctx context.Context, kind string, id int64) (Outcome, error) {
	if c.client != nil {
		if err := c.client.Get(ctx, cacheKey(kind, id)).Err(); err == nil {
			return Exists, nil
		}
	}
	outcome, err := c.next.Exists(ctx, kind, id)
	if outcome == Exists && c.client != nil {
		_ = c.client.Set(ctx, cacheKey(kind, id), 1, c.ttl).Err()
	}
	return outcome, err
}

var _ Checker = (*Cache)(nil)
