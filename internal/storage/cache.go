package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mohamedkhairy/stock-factors/internal/models"
	"github.com/mohamedkhairy/stock-factors/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// CachingBarStorage decorates a BarStorage with a Redis cache of GetBars results.
// Session queries are passed through.
type CachingBarStorage struct {
	inner     BarStorage
	rdb       redis.Cmdable
	ttl       time.Duration
	namespace string
}

// NewCachingBarStorage wraps inner. A non-positive ttl falls back to 5 minutes
// and an empty namespace to "bars". A nil client disables caching.
func NewCachingBarStorage(rdb redis.Cmdable, ttl time.Duration, inner BarStorage, namespace string) *CachingBarStorage {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if namespace == "" {
		namespace = "bars"
	}
	return &CachingBarStorage{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// WriteBars writes through and invalidates the cached ranges of every touched symbol
func (c *CachingBarStorage) WriteBars(ctx context.Context, bars []*models.Bar) error {
	if err := c.inner.WriteBars(ctx, bars); err != nil {
		return err
	}
	if c.rdb == nil || len(bars) == 0 {
		return nil
	}

	seen := map[string]struct{}{}
	for _, bar := range bars {
		prefix := c.cacheKeyPrefix(bar.Symbol)
		if _, ok := seen[prefix]; ok {
			continue
		}
		seen[prefix] = struct{}{}
		if err := c.deleteByPattern(ctx, prefix+"*"); err != nil {
			logger.Warn("Failed to invalidate bar cache",
				logger.ErrorField(err),
				logger.String("symbol", bar.Symbol),
			)
		}
	}
	return nil
}

// GetBars checks the cache first, then falls back to the inner storage
func (c *CachingBarStorage) GetBars(ctx context.Context, symbol string, start, end time.Time) ([]*models.Bar, error) {
	if c.rdb == nil {
		return c.inner.GetBars(ctx, symbol, start, end)
	}

	key := c.cacheKey(symbol, start, end)

	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out []*models.Bar
		if err := json.Unmarshal(b, &out); err == nil {
			return out, nil
		}
		// corrupted entry
		_ = c.rdb.Del(ctx, key).Err()
	}

	out, err := c.inner.GetBars(ctx, symbol, start, end)
	if err != nil {
		return nil, err
	}

	if b, err := json.Marshal(out); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
	}
	return out, nil
}

func (c *CachingBarStorage) GetSessions(ctx context.Context, start, end time.Time) ([]time.Time, error) {
	return c.inner.GetSessions(ctx, start, end)
}

func (c *CachingBarStorage) GetSessionsBefore(ctx context.Context, end time.Time, limit int) ([]time.Time, error) {
	return c.inner.GetSessionsBefore(ctx, end, limit)
}

func (c *CachingBarStorage) Close() error {
	return c.inner.Close()
}

func (c *CachingBarStorage) cacheKey(symbol string, start, end time.Time) string {
	return fmt.Sprintf("%s:%s:%s:%s",
		c.namespace,
		safe(symbol),
		start.UTC().Format(models.DateLayout),
		end.UTC().Format(models.DateLayout),
	)
}

func (c *CachingBarStorage) cacheKeyPrefix(symbol string) string {
	return fmt.Sprintf("%s:%s:", c.namespace, safe(symbol))
}

// deleteByPattern deletes every key matching pattern using SCAN
func (c *CachingBarStorage) deleteByPattern(ctx context.Context, pattern string) error {
	var cursor uint64
	for {
		keys, cur, err := c.rdb.Scan(ctx, cursor, pattern, 200).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = cur
		if cursor == 0 {
			return nil
		}
	}
}

// safe escapes characters that clash with the key layout
func safe(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ":", "_")
	return s
}
