package cache

import (
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/audioguide-discovery/internal/config"
)

// NewRedisStreams creates a dedicated client for stream consumers.
// XREADGROUP blocks a pooled connection, so consumers get their own pool
// with a read timeout longer than the block interval.
func NewRedisStreams(cfg *config.RedisConfig, blockFor time.Duration, logger *zap.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr(),
		Password:    cfg.Password,
		DB:          cfg.DB,
		ReadTimeout: blockFor + 2*time.Second,
	})

	if err := ping(client); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis streams: %w", err)
	}

	logger.Info("Redis Streams connected",
		zap.String("addr", cfg.Addr()),
		zap.Duration("block", blockFor),
	)

	return client, nil
}
