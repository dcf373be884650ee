package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nljewellers/ledger/internal/infra/gateway/goldapi"
	"github.com/nljewellers/ledger/pkg/logger"
)

const (
	// DefaultRateTTL keeps spot rates fresh without hammering the API.
	DefaultRateTTL = 5 * time.Minute

	// StaleRateTTL is the fallback window when the price API is down.
	StaleRateTTL = 24 * time.Hour

	rateKey      = "goldrate:inr"
	staleRateKey = "goldrate:inr:stale"
)

// RateCache is a Redis-backed cache for metal spot rates.
type RateCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *logger.Logger
}

// NewRateCache creates a new rate cache.
func NewRateCache(client *redis.Client, log *logger.Logger) *RateCache {
	return &RateCache{
		client: client,
		ttl:    DefaultRateTTL,
		logger: log.WithField("component", "ratecache"),
	}
}

// Get retrieves the cached rates.
func (c *RateCache) Get(ctx context.Context) (*goldapi.Rates, bool, error) {
	return c.get(ctx, rateKey)
}

// GetStale retrieves rates from the stale fallback window.
func (c *RateCache) GetStale(ctx context.Context) (*goldapi.Rates, bool, error) {
	return c.get(ctx, staleRateKey)
}

func (c *RateCache) get(ctx context.Context, key string) (*goldapi.Rates, bool, error) {
	val, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		c.logger.Debug("rate cache miss", "key", key)
		return nil, false, nil
	}
	if err != nil {
		c.logger.Error("rate cache error", "operation", "get", "key", key, "error", err)
		return nil, false, fmt.Errorf("failed to get cached rates: %w", err)
	}

	var rates goldapi.Rates
	if err := json.Unmarshal([]byte(val), &rates); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal cached rates: %w", err)
	}

	return &rates, true, nil
}

// Set stores the rates in both the fresh and stale windows.
func (c *RateCache) Set(ctx context.Context, rates *goldapi.Rates) error {
	data, err := json.Marshal(rates)
	if err != nil {
		return fmt.Errorf("failed to marshal rates: %w", err)
	}

	if err := c.client.Set(ctx, rateKey, data, c.ttl).Err(); err != nil {
		c.logger.Error("rate cache error", "operation", "set", "error", err)
		return fmt.Errorf("failed to set cached rates: %w", err)
	}
	if err := c.client.Set(ctx, staleRateKey, data, StaleRateTTL).Err(); err != nil {
		return fmt.Errorf("failed to set stale cached rates: %w", err)
	}

	return nil
}
