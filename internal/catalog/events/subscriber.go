package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"
	kafka "github.com/segmentio/kafka-go"
	"github.com/zeromicro/go-zero/core/logx"
)

// Handler receives decoded change events. Returning an error leaves the
// message unacknowledged.
type Handler func(ctx context.Context, c Change) error

// Subscriber reads change events from a broker until its context ends.
type Subscriber interface {
	Run(ctx context.Context, h Handler) error
	Close() error
}

// SubscriberConfig names the consumer group and where a new group starts.
type SubscriberConfig struct {
	Group    string
	Consumer string
	// From is the stream id a new Redis group starts at: "$" for new events only, "0" for the whole stream.
	From string
}

// NewSubscriber builds a Subscriber for the publisher settings in c.
func NewSubscriber(c Config, sc SubscriberConfig) (Subscriber, error) {
	if sc.Group == "" {
		sc.Group = "tabletop-tail"
	}
	if sc.Consumer == "" {
		sc.Consumer = fmt.Sprintf("c-%d", time.Now().UnixNano())
	}
	switch strings.ToLower(strings.TrimSpace(c.Driver)) {
	case "redis":
		url := c.RedisURL
		if url == "" {
			url = "redis://localhost:6379/0"
		}
		return NewRedisSubscriber(url, c.Stream, sc)
	case "kafka":
		if len(c.KafkaBrokers) == 0 {
			return nil, errors.New("kafka subscriber requires brokers")
		}
		return NewKafkaSubscriber(c.KafkaBrokers, c.KafkaTopic, sc.Group), nil
	default:
		return nil, fmt.Errorf("driver %q has nothing to subscribe to", c.Driver)
	}
}

func decodeChange(data string) (Change, error) {
	var c Change
	if strings.TrimSpace(data) == "" {
		return c, errors.New("empty payload")
	}
	if err := json.Unmarshal([]byte(data), &c); err != nil {
		return c, err
	}
	if c.Type == "" || c.ID == "" {
		return c, fmt.Errorf("incomplete change %q", data)
	}
	return c, nil
}

type redisSubscriber struct {
	rdb    *redis.Client
	stream string
	cfg    SubscriberConfig
	block  time.Duration
}

func NewRedisSubscriber(url, stream string, sc SubscriberConfig) (Subscriber, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis: %w", err)
	}
	if stream == "" {
		stream = "catalog:changes"
	}
	if sc.From == "" {
		sc.From = "$"
	}
	return &redisSubscriber{rdb: redis.NewClient(opt), stream: stream, cfg: sc, block: 2 * time.Second}, nil
}

func (s *redisSubscriber) Close() error { return s.rdb.Close() }

func (s *redisSubscriber) Run(ctx context.Context, h Handler) error {
	err := s.rdb.XGroupCreateMkStream(ctx, s.stream, s.cfg.Group, s.cfg.From).Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("create group %s: %w", s.cfg.Group, err)
	}
	for {
		if ctx.Err() != nil {
			return nil
		}
		res, err := s.rdb.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    s.cfg.Group,
			Consumer: s.cfg.Consumer,
			Streams:  []string{s.stream, ">"},
			Count:    100,
			Block:    s.block,
		}).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			if ctx.Err() != nil {
				return nil
			}
			logx.WithContext(ctx).Errorf("[catalog-events] xreadgroup: %v", err)
			time.Sleep(200 * time.Millisecond)
			continue
		}
		for _, str := range res {
			for _, msg := range str.Messages {
				data, _ := msg.Values["data"].(string)
				c, err := decodeChange(data)
				if err != nil {
					logx.WithContext(ctx).Infof("[catalog-events] skip %s: %v", msg.ID, err)
					_ = s.rdb.XAck(ctx, str.Stream, s.cfg.Group, msg.ID).Err()
					continue
				}
				if err := h(ctx, c); err != nil {
					logx.WithContext(ctx).Errorf("[catalog-events] handle %s: %v", msg.ID, err)
					continue
				}
				_ = s.rdb.XAck(ctx, str.Stream, s.cfg.Group, msg.ID).Err()
			}
		}
	}
}

type kafkaSubscriber struct {
	r *kafka.Reader
}

func NewKafkaSubscriber(brokers []string, topic, group string) Subscriber {
	if topic == "" {
		topic = "catalog.changes"
	}
	return &kafkaSubscriber{r: kafka.NewReader(kafka.ReaderConfig{
		Brokers: brokers,
		Topic:   topic,
		GroupID: group,
		MaxWait: 2 * time.Second,
	})}
}

func (s *kafkaSubscriber) Close() error { return s.r.Close() }

func (s *kafkaSubscriber) Run(ctx context.Context, h Handler) error {
	for {
		m, err := s.r.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("kafka fetch: %w", err)
		}
		c, err := decodeChange(string(m.Value))
		if err != nil {
			logx.WithContext(ctx).Infof("[catalog-events] skip offset %d: %v", m.Offset, err)
		} else if err := h(ctx, c); err != nil {
			logx.WithContext(ctx).Errorf("[catalog-events] handle offset %d: %v", m.Offset, err)
			continue
		}
		if err := s.r.CommitMessages(ctx, m); err != nil && ctx.Err() == nil {
			logx.WithContext(ctx).Errorf("[catalog-events] commit offset %d: %v", m.Offset, err)
		}
	}
}
