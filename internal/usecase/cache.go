package usecase

import (
	"context"
	"encoding/json"
	"time"

	"github.com/audioguide-discovery/internal/domain/repository"
	"github.com/audioguide-discovery/internal/pkg/metrics"
	"go.uber.org/zap"
)

// guidesCacheVersion names the counter the play worker bumps after applying plays
const guidesCacheVersion = "guides"

// loadCached reads key from cache, falling back to load and storing its result.
// Cache failures are logged and never fail the request.
func loadCached[T any](
	ctx context.Context,
	cache repository.CacheRepository,
	logger *zap.Logger,
	operation, key string,
	ttl time.Duration,
	load func(context.Context) (T, error),
) (T, error) {
	data, err := cache.Get(ctx, key)
	if err != nil {
		logger.Warn("Cache read failed", zap.String("key", key), zap.Error(err))
	} else if data != nil {
		var cached T
		if err := json.Unmarshal(data, &cached); err == nil {
			metrics.CacheHits.WithLabelValues(operation).Inc()
			return cached, nil
		}
		logger.Warn("Dropping undecodable cache entry", zap.String("key", key))
	}
	metrics.CacheMisses.WithLabelValues(operation).Inc()

	value, err := load(ctx)
	if err != nil {
		return value, err
	}

	if encoded, err := json.Marshal(value); err == nil {
		if err := cache.Set(ctx, key, encoded, ttl); err != nil {
			logger.Warn("Cache write failed", zap.String("key", key), zap.Error(err))
		}
	}

	return value, nil
}
