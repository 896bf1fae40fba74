// Package cache decorates the market data store with Redis caching for the
// calendar lookups (trading days, expiry dates, contract months). Bar queries
// always go straight to the store.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/yourorg/market-data-service/internal/model"
	"github.com/yourorg/market-data-service/internal/service"

	"github.com/redis/go-redis/v9"
)

// CalendarCache decorates a MarketDataStore with Redis caching of the
// calendar lookups. A nil client makes every call a transparent pass-through.
type CalendarCache struct {
	inner service.MarketDataStore
	rdb   *redis.Client
	ttl   time.Duration
}

// NewCalendarCache decorates a MarketDataStore with calendar caching. If ttl
// is 0 it defaults to 15 minutes.
func NewCalendarCache(rdb *redis.Client, ttl time.Duration, inner service.MarketDataStore) *CalendarCache {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &CalendarCache{
		inner: inner,
		rdb:   rdb,
		ttl:   ttl,
	}
}

// GetTradingDays retrieves the trading day calendar, checking the cache first
func (c *CalendarCache) GetTradingDays(ctx context.Context) ([]time.Time, error) {
	return cached(ctx, c, key("trading_days"), func() ([]time.Time, error) {
		return c.inner.GetTradingDays(ctx)
	})
}

// GetExpiryDates retrieves option expiry dates, checking the cache first
func (c *CalendarCache) GetExpiryDates(ctx context.Context, symbol string) ([]time.Time, error) {
	return cached(ctx, c, key("expiry_dates", symbol), func() ([]time.Time, error) {
		return c.inner.GetExpiryDates(ctx, symbol)
	})
}

// GetContractMonths retrieves futures contract months, checking the cache first
func (c *CalendarCache) GetContractMonths(ctx context.Context, symbol string) ([]string, error) {
	return cached(ctx, c, key("contract_months", symbol), func() ([]string, error) {
		return c.inner.GetContractMonths(ctx, symbol)
	})
}

// GetIndexBars passes through to the store
func (c *CalendarCache) GetIndexBars(ctx context.Context, q model.IndexQuery) ([]model.IndexBar, error) {
	return c.inner.GetIndexBars(ctx, q)
}

// GetOptionBars passes through to the store
func (c *CalendarCache) GetOptionBars(ctx context.Context, q model.OptionQuery) ([]model.OptionBar, error) {
	return c.inner.GetOptionBars(ctx, q)
}

// GetFutureBars passes through to the store
func (c *CalendarCache) GetFutureBars(ctx context.Context, q model.FuturesQuery) ([]model.FutureBar, error) {
	return c.inner.GetFutureBars(ctx, q)
}

// cached looks a value up in Redis, falling back to the store and writing
// back on a miss. Store errors are never cached.
func cached[T any](ctx context.Context, c *CalendarCache, key string, fetch func() ([]T, error)) ([]T, error) {
	if c.rdb == nil {
		return fetch()
	}

	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out []T
		if err := json.Unmarshal(b, &out); err == nil {
			return out, nil
		}
		// Drop the corrupted entry and fall through to the store
		_ = c.rdb.Del(ctx, key).Err()
	}

	out, err := fetch()
	if err != nil {
		return nil, err
	}

	if b, err := json.Marshal(out); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
	}

	return out, nil
}

func key(parts ...string) string {
	for i, p := range parts {
		parts[i] = strings.ReplaceAll(strings.ToLower(p), ":", "_")
	}
	return fmt.Sprintf("calendar:%s", strings.Join(parts, ":"))
}
