package database

import (
	"context"

	"github.com/go-redis/redis/v8"
	"github.com/ibanking/backend/internal/config"
	"go.uber.org/zap"
)

// InitRedis connects to Redis. It returns nil when Redis is disabled or
// unreachable; callers then run without the user cache.
func InitRedis(ctx context.Context, cfg config.RedisConfig, log *zap.Logger) *redis.Client {
	if !cfg.Enabled {
		log.Info("Redis disabled, continuing without user cache")
		return nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Host + ":" + cfg.Port,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn("Redis connection failed, continuing without Redis", zap.Error(err))
		rdb.Close()
		return nil
	}

	log.Info("Redis connection established", zap.String("addr", cfg.Host+":"+cfg.Port))
	return rdb
}
