package config

import (
	"github.com/go-redis/redis"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

func initRedis(cfg *Config, logger *zap.Logger) (*redis.Client, error) {
	if cfg.Redis.Addr == "" {
		logger.Info("redis addr empty, skipping redis init")
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		DB:       cfg.Redis.DB,
		Password: cfg.Redis.Password,
	})
	if _, err := client.Ping().Result(); err != nil {
		client.Close()
		return nil, errors.Wrapf(err, "ping redis %s", cfg.Redis.Addr)
	}

	logger.Info("Redis initialized", zap.String("addr", cfg.Redis.Addr))
	return client, nil
}
