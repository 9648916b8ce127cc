package sinks

import (
	"context"
	"fmt"

	"github.com/joeydtaylor/steeze-relay/pkg/manifest"
	"github.com/redis/go-redis/v9"
)

// headerFieldPrefix namespaces forwarded headers among the stream entry fields.
const headerFieldPrefix = "header:"

type redisBroker struct {
	cfg manifest.Redis
}

func newRedisBroker(cfg manifest.Redis) *redisBroker { return &redisBroker{cfg: cfg} }

func (b *redisBroker) Driver() manifest.QueueDriver { return manifest.DriverRedis }

func (b *redisBroker) Open(ctx context.Context) (brokerSession, error) {
	opt, err := redis.ParseURL(b.cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}
	return &redisSession{client: client, maxLen: b.cfg.MaxLen}, nil
}

type redisSession struct {
	client *redis.Client
	maxLen int64
}

// Declare is a no-op: XADD creates the stream on first write.
func (s *redisSession) Declare(context.Context, string) error { return nil }

func (s *redisSession) Publish(ctx context.Context, stream string, msg Message) error {
	args := &redis.XAddArgs{
		Stream: stream,
		Values: redisFields(msg),
	}
	if s.maxLen > 0 {
		args.MaxLen = s.maxLen
		args.Approx = true
	}
	return s.client.XAdd(ctx, args).Err()
}

func redisFields(msg Message) map[string]any {
	fields := map[string]any{
		"id":           msg.MessageID,
		"content_type": msg.ContentType,
		"body":         msg.Body,
	}
	for k, v := range msg.Headers {
		fields[headerFieldPrefix+k] = v
	}
	return fields
}

func (s *redisSession) Close() error { return s.client.Close() }
