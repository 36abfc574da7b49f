package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const DefaultRetryDelay = time.Second

// FeedbackConsumer 消费评价队列并写入 MySQL
type FeedbackConsumer struct {
	ch     *amqp.Channel
	queue  string
	store  FeedbackStore
	logger *zap.Logger

	// RetryDelay 重投递的消息再次写库失败时，重新入队前的等待时间
	RetryDelay time.Duration
}

func NewFeedbackConsumer(ch *amqp.Channel, queue string, store FeedbackStore, logger *zap.Logger) *FeedbackConsumer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeedbackConsumer{ch: ch, queue: queue, store: store, logger: logger, RetryDelay: DefaultRetryDelay}
}

// Run consumes until ctx is done or the broker closes the delivery channel.
func (c *FeedbackConsumer) Run(ctx context.Context) error {
	deliveries, err := c.ch.ConsumeWithContext(ctx, c.queue, "", false, false, false, false, nil)
	if err != nil {
		return errors.Wrapf(err, "consume %s", c.queue)
	}
	c.logger.Info("feedback consumer started", zap.String("queue", c.queue))
	return c.consume(ctx, deliveries)
}

func (c *FeedbackConsumer) consume(ctx context.Context, deliveries <-chan amqp.Delivery) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return errors.New("delivery channel closed")
			}
			c.handle(ctx, d)
		}
	}
}

func (c *FeedbackConsumer) handle(ctx context.Context, d amqp.Delivery) {
	var ev FeedbackEvent
	if err := json.Unmarshal(d.Body, &ev); err != nil {
		// 无法解析的消息直接丢弃，避免反复投递
		c.logger.Error("drop malformed feedback event", zap.Uint64("tag", d.DeliveryTag), zap.Error(err))
		if err := d.Nack(false, false); err != nil {
			c.logger.Error("nack failed", zap.Error(err))
		}
		return
	}

	if err := c.store.Save(ctx, ev.Model()); err != nil {
		if d.Redelivered {
			// 数据库持续不可用时放慢重投节奏
			c.logger.Warn("save feedback failed again, delaying requeue",
				zap.String("course", ev.Course), zap.Duration("delay", c.RetryDelay), zap.Error(err))
			c.wait(ctx)
		} else {
			c.logger.Error("save feedback failed, requeueing", zap.String("course", ev.Course), zap.Error(err))
		}
		if err := d.Nack(false, true); err != nil {
			c.logger.Error("nack failed", zap.Error(err))
		}
		return
	}

	if err := d.Ack(false); err != nil {
		c.logger.Error("ack failed", zap.Error(err))
	}
}

func (c *FeedbackConsumer) wait(ctx context.Context) {
	if c.RetryDelay <= 0 {
		return
	}
	timer := time.NewTimer(c.RetryDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
