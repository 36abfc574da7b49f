package services

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/go-redis/redis"
	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"coursefaq/models"
)

const (
	feedbackRankKey = "rank:course:feedback"
	DefaultTopN     = 10
)

var (
	ErrInvalidVote      = errors.New("vote must be 1 or -1")
	ErrFeedbackDisabled = errors.New("feedback counters are not configured")
)

// FeedbackEvent 通过 MQ 异步落库的评价消息
type FeedbackEvent struct {
	Course   string `json:"course"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Vote     int    `json:"vote"`
}

func (e FeedbackEvent) Model() *models.Feedback {
	return &models.Feedback{Course: e.Course, Question: e.Question, Answer: e.Answer, Vote: e.Vote}
}

type FeedbackCounter interface {
	Record(course string, vote int) (models.FeedbackStats, error)
	Stats(course string) (models.FeedbackStats, error)
	Top(n int) ([]models.CourseRank, error)
}

type FeedbackStore interface {
	Save(ctx context.Context, fb *models.Feedback) error
}

type FeedbackPublisher interface {
	Publish(ctx context.Context, ev FeedbackEvent) error
}

// RedisCounter keeps per-course like/dislike counters and a ranking ZSET.
type RedisCounter struct {
	client *redis.Client
}

func NewRedisCounter(client *redis.Client) *RedisCounter {
	return &RedisCounter{client: client}
}

func feedbackKeys(course string) (likes, dislikes string) {
	return "feedback:" + course + ":likes", "feedback:" + course + ":dislikes"
}

func (r *RedisCounter) Record(course string, vote int) (models.FeedbackStats, error) {
	likeKey, dislikeKey := feedbackKeys(course)
	var likeDelta, dislikeDelta int64
	if vote > 0 {
		likeDelta = 1
	} else {
		dislikeDelta = 1
	}

	// 使用 pipeline 同步执行 INCRBY + ZINCRBY；增量为 0 的那一项用于读取当前值
	pipe := r.client.TxPipeline()
	likes := pipe.IncrBy(likeKey, likeDelta)
	dislikes := pipe.IncrBy(dislikeKey, dislikeDelta)
	pipe.ZIncrBy(feedbackRankKey, float64(vote), course)
	if _, err := pipe.Exec(); err != nil {
		return models.FeedbackStats{}, errors.Wrap(err, "update feedback counters")
	}
	return models.FeedbackStats{Likes: likes.Val(), Dislikes: dislikes.Val()}, nil
}

func (r *RedisCounter) Stats(course string) (models.FeedbackStats, error) {
	likeKey, dislikeKey := feedbackKeys(course)
	vals, err := r.client.MGet(likeKey, dislikeKey).Result()
	if err != nil {
		return models.FeedbackStats{}, errors.Wrap(err, "read feedback counters")
	}
	return models.FeedbackStats{Likes: parseCount(vals[0]), Dislikes: parseCount(vals[1])}, nil
}

// Top 按净得分从高到低返回前 n 个课程
func (r *RedisCounter) Top(n int) ([]models.CourseRank, error) {
	zres, err := r.client.ZRevRangeWithScores(feedbackRankKey, 0, int64(n-1)).Result()
	if err != nil && err != redis.Nil {
		return nil, errors.Wrap(err, "read feedback ranking")
	}
	list := make([]models.CourseRank, 0, len(zres))
	for idx, z := range zres {
		member, _ := z.Member.(string)
		list = append(list, models.CourseRank{
			Course: member,
			Label:  models.Course(member).Label(),
			Score:  int64(z.Score),
			Rank:   idx + 1,
		})
	}
	return list, nil
}

func parseCount(v interface{}) int64 {
	s, ok := v.(string)
	if !ok {
		return 0
	}
	n, _ := strconv.ParseInt(s, 10, 64)
	return n
}

// GormFeedbackStore writes feedback rows to MySQL.
type GormFeedbackStore struct {
	db *gorm.DB
}

func NewGormFeedbackStore(db *gorm.DB) *GormFeedbackStore {
	return &GormFeedbackStore{db: db}
}

func (s *GormFeedbackStore) Save(ctx context.Context, fb *models.Feedback) error {
	if err := s.db.WithContext(ctx).Create(fb).Error; err != nil {
		return errors.Wrap(err, "insert feedback")
	}
	return nil
}

// AMQPPublisher is the part of *amqp.Channel the publisher needs.
type AMQPPublisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// RabbitPublisher sends feedback events to a durable queue on the default exchange.
type RabbitPublisher struct {
	ch    AMQPPublisher
	queue string
}

func NewRabbitPublisher(ch AMQPPublisher, queue string) *RabbitPublisher {
	return &RabbitPublisher{ch: ch, queue: queue}
}

func (p *RabbitPublisher) Publish(ctx context.Context, ev FeedbackEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return errors.Wrap(err, "encode feedback event")
	}
	err = p.ch.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Body:         body,
	})
	return errors.Wrapf(err, "publish to %s", p.queue)
}

// FeedbackResult 计数结果，Persisted 表示记录是否已入库或入队
type FeedbackResult struct {
	models.FeedbackStats
	Persisted bool `json:"persisted"`
}

// FeedbackService 记录用户对回答的评价：Redis 计数 + MySQL 记录（有 MQ 时走 MQ 异步落库）
type FeedbackService struct {
	counter   FeedbackCounter
	store     FeedbackStore
	publisher FeedbackPublisher
	logger    *zap.Logger
}

// NewFeedbackService wires the counter with an optional store and publisher.
// When a publisher is given the store is only used by the queue consumer.
func NewFeedbackService(counter FeedbackCounter, store FeedbackStore, publisher FeedbackPublisher, logger *zap.Logger) *FeedbackService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeedbackService{counter: counter, store: store, publisher: publisher, logger: logger}
}

func (s *FeedbackService) Submit(ctx context.Context, ev FeedbackEvent) (FeedbackResult, error) {
	if ev.Vote != models.VoteUp && ev.Vote != models.VoteDown {
		return FeedbackResult{}, ErrInvalidVote
	}
	if _, err := models.ParseCourse(ev.Course); err != nil {
		return FeedbackResult{}, err
	}
	if s.counter == nil {
		return FeedbackResult{}, ErrFeedbackDisabled
	}

	stats, err := s.counter.Record(ev.Course, ev.Vote)
	if err != nil {
		return FeedbackResult{}, err
	}
	result := FeedbackResult{FeedbackStats: stats}

	// 记录失败不影响主流程
	switch {
	case s.publisher != nil:
		if err := s.publisher.Publish(ctx, ev); err != nil {
			s.logger.Warn("publish feedback failed", zap.String("course", ev.Course), zap.Error(err))
			return result, nil
		}
		result.Persisted = true
	case s.store != nil:
		if err := s.store.Save(ctx, ev.Model()); err != nil {
			s.logger.Warn("save feedback failed", zap.String("course", ev.Course), zap.Error(err))
			return result, nil
		}
		result.Persisted = true
	}
	return result, nil
}

func (s *FeedbackService) Stats(course models.Course) (models.FeedbackStats, error) {
	if s.counter == nil {
		return models.FeedbackStats{}, ErrFeedbackDisabled
	}
	return s.counter.Stats(course.String())
}

// Top 返回评价排行，n < 1 时取 DefaultTopN
func (s *FeedbackService) Top(n int) ([]models.CourseRank, error) {
	if s.counter == nil {
		return nil, ErrFeedbackDisabled
	}
	if n < 1 {
		n = DefaultTopN
	}
	return s.counter.Top(n)
}
