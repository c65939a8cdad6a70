package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/krishisakhi/backend/internal/domain"
	"github.com/krishisakhi/backend/internal/reliability/retry"
)

const forecastPrefix = "forecast:"

// Client wraps the Redis client and implements domain.ForecastCache
type Client struct {
	rdb    *redis.Client
	logger *slog.Logger
}

// NewClient parses url and pings the server, retrying while it starts up.
func NewClient(ctx context.Context, url string, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	rdb := redis.NewClient(opts)

	_, err = retry.Do(ctx, retry.DefaultConfig(), logger, "redis ping", func(ctx context.Context) (struct{}, error) {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return struct{}{}, rdb.Ping(pingCtx).Err()
	})
	if err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Client{rdb: rdb, logger: logger}, nil
}

// GetForecast returns the cached forecast for key. A miss is (nil, false, nil).
func (c *Client) GetForecast(ctx context.Context, key string) (*domain.Forecast, bool, error) {
	raw, err := c.rdb.Get(ctx, forecastPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read forecast: %w", err)
	}

	var f domain.Forecast
	if err := json.Unmarshal(raw, &f); err != nil {
		c.logger.Warn("dropping undecodable cached forecast",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		c.rdb.Del(ctx, forecastPrefix+key)
		return nil, false, nil
	}
	return &f, true, nil
}

// SetForecast stores f as JSON under key for ttl
func (c *Client) SetForecast(ctx context.Context, key string, f *domain.Forecast, ttl time.Duration) error {
	raw, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("failed to encode forecast: %w", err)
	}
	if err := c.rdb.Set(ctx, forecastPrefix+key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store forecast: %w", err)
	}
	return nil
}

// Ping checks connectivity
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}
