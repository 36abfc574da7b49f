package config

import (
	"github.com/go-redis/redis"
	"github.com/hashicorp/go-multierror"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Resources holds the shared clients opened once at start-up. Any of them
// may be nil when the corresponding section is not configured.
type Resources struct {
	DB            *gorm.DB
	Redis         *redis.Client
	RabbitConn    *amqp.Connection
	RabbitChannel *amqp.Channel
	Queue         string
}

// Connect 依次初始化 MySQL、Redis、RabbitMQ，失败时关闭已打开的连接
func Connect(cfg *Config, logger *zap.Logger) (*Resources, error) {
	res := &Resources{}

	db, err := initDB(cfg, logger)
	if err != nil {
		return nil, err
	}
	res.DB = db

	rdb, err := initRedis(cfg, logger)
	if err != nil {
		res.Close()
		return nil, err
	}
	res.Redis = rdb

	conn, ch, queue, err := initRabbit(cfg, logger)
	if err != nil {
		res.Close()
		return nil, err
	}
	res.RabbitConn, res.RabbitChannel, res.Queue = conn, ch, queue

	return res, nil
}

func (r *Resources) Close() error {
	var result *multierror.Error
	if r.RabbitChannel != nil {
		if err := r.RabbitChannel.Close(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	if r.RabbitConn != nil {
		if err := r.RabbitConn.Close(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	if r.Redis != nil {
		if err := r.Redis.Close(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	if r.DB != nil {
		if sqlDB, err := r.DB.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				result = multierror.Append(result, err)
			}
		}
	}
	return result.ErrorOrNil()
}
