package events

import (
	"context"
	"encoding/json"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/zeromicro/go-zero/core/logx"
)

type redisPublisher struct {
	cli          *redis.Client
	stream       string
	maxLen       int64
	maxLenApprox bool
}

func NewRedis(url, stream string, maxLen int64, approx bool) Publisher {
	opt, err := redis.ParseURL(url)
	if err != nil {
		logx.Errorf("[catalog-events] redis parse url: %v", err)
		return NewNoop()
	}
	if stream == "" {
		stream = "catalog:changes"
	}
	return &redisPublisher{cli: redis.NewClient(opt), stream: stream, maxLen: maxLen, maxLenApprox: approx}
}

func (p *redisPublisher) Close() error { return p.cli.Close() }

func (p *redisPublisher) Publish(ctx context.Context, c Change) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	// single 'data' field with the JSON body keeps consumers schema-agnostic
	b, err := json.Marshal(c)
	if err != nil {
		return err
	}
	args := &redis.XAddArgs{Stream: p.stream, Values: map[string]any{"type": c.Type, "data": string(b)}}
	if p.maxLen > 0 {
		args.MaxLen = p.maxLen
		args.Approx = p.maxLenApprox
	}
	return p.cli.XAdd(ctx, args).Err()
}
