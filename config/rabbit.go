package config

import (
	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const defaultQueue = "feedback.queue"

func initRabbit(cfg *Config, logger *zap.Logger) (*amqp.Connection, *amqp.Channel, string, error) {
	url := cfg.RabbitMQ.Url
	if url == "" {
		logger.Info("rabbitmq url empty, skipping rabbit init")
		return nil, nil, "", nil
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, "", errors.Wrap(err, "connect to rabbitmq")
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, "", errors.Wrap(err, "open rabbitmq channel")
	}

	// declare queue
	qname := cfg.RabbitMQ.Queue
	if qname == "" {
		qname = defaultQueue
	}
	if _, err := ch.QueueDeclare(qname, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, nil, "", errors.Wrapf(err, "declare rabbitmq queue %s", qname)
	}

	logger.Info("RabbitMQ initialized", zap.String("queue", qname))
	return conn, ch, qname, nil
}
