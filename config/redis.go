package config

import (
	"context"
	"fmt"

	"github.com/Modeva-Ecommerce/modeva-commerce-backend/logger"
	"github.com/redis/go-redis/v9"
)

// ConnectRedis returns a connected client, or nil when REDIS_URL is not set.
func ConnectRedis(ctx context.Context, cfg RedisConfig, log *logger.Logger) (*redis.Client, error) {
	if cfg.URL == "" {
		log.Warnw("REDIS_URL not set, rate limiting disabled")
		return nil, nil
	}

	opt, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}

	client := redis.NewClient(opt)
	res, err := client.Ping(ctx).Result()
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	log.Infow("connected to redis", "ping", res)
	return client, nil
}
