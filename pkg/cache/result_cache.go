package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/aiwolfdial/aiwolf-nlp-log-picker/internal/export"
)

// ErrNotFound is returned when no cached result exists for a key.
var ErrNotFound = errors.New("optimization result not found in cache")

// ResultCacheService handles caching for optimization result reports.
type ResultCacheService struct {
	client *redis.Client
	logger *logrus.Logger
}

// NewResultCacheService creates a new result cache service.
func NewResultCacheService(client *redis.Client, logger *logrus.Logger) *ResultCacheService {
	return &ResultCacheService{
		client: client,
		logger: logger,
	}
}

// SetResult stores an optimization report in cache.
func (c *ResultCacheService) SetResult(ctx context.Context, key string, report *export.Report, expiration time.Duration) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal optimization report: %w", err)
	}

	fullKey := fmt.Sprintf("optimization:%s", key)
	if err := c.client.Set(ctx, fullKey, data, expiration).Err(); err != nil {
		return fmt.Errorf("failed to set optimization report in cache: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"cache_key":  fullKey,
		"expiration": expiration,
		"selected":   report.TotalMatchesSelected,
	}).Debug("Cached optimization report")

	return nil
}

// GetResult retrieves an optimization report from cache.
func (c *ResultCacheService) GetResult(ctx context.Context, key string) (*export.Report, error) {
	fullKey := fmt.Sprintf("optimization:%s", key)
	data, err := c.client.Get(ctx, fullKey).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get optimization report from cache: %w", err)
	}

	var report export.Report
	if err := json.Unmarshal([]byte(data), &report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal optimization report: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"cache_key": fullKey,
		"selected":  report.TotalMatchesSelected,
	}).Debug("Retrieved optimization report from cache")

	return &report, nil
}

// DeleteResult removes an optimization report from cache.
func (c *ResultCacheService) DeleteResult(ctx context.Context, key string) error {
	fullKey := fmt.Sprintf("optimization:%s", key)
	if err := c.client.Del(ctx, fullKey).Err(); err != nil {
		return fmt.Errorf("failed to delete optimization report from cache: %w", err)
	}

	c.logger.WithField("cache_key", fullKey).Debug("Deleted optimization report from cache")
	return nil
}

// GetStatus returns cache statistics.
func (c *ResultCacheService) GetStatus(ctx context.Context) map[string]interface{} {
	dbSize := c.client.DBSize(ctx)

	status := map[string]interface{}{
		"service":   "result-cache",
		"timestamp": time.Now(),
		"connected": true,
	}

	if dbSize.Err() == nil {
		status["db_size"] = dbSize.Val()
	}

	keys, err := c.client.Keys(ctx, "optimization:*").Result()
	if err == nil {
		status["optimization_keys"] = len(keys)
	}

	return status
}

// Flush clears all optimization reports from cache.
func (c *ResultCacheService) Flush(ctx context.Context) error {
	keys, err := c.client.Keys(ctx, "optimization:*").Result()
	if err != nil {
		return fmt.Errorf("failed to get optimization keys: %w", err)
	}

	if len(keys) > 0 {
		if err := c.client.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("failed to delete optimization keys: %w", err)
		}
	}

	c.logger.WithField("deleted_keys", len(keys)).Info("Flushed optimization cache")
	return nil
}
