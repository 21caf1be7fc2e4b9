package gateways

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ochairo/pkggate/internal/domain/interfaces/gateways"
)

type redisPublisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// RedisNotifier publishes notifications as JSON on a redis pub/sub channel
type RedisNotifier struct {
	client  redisPublisher
	channel string
	now     func() time.Time
}

// NewRedisNotifier creates a notifier publishing to channel
func NewRedisNotifier(client *redis.Client, channel string) *RedisNotifier {
	return &RedisNotifier{client: client, channel: channel, now: time.Now}
}

var _ gateways.Notifier = (*RedisNotifier)(nil)

type redisMessage struct {
	Subject string    `json:"subject"`
	Body    string    `json:"body"`
	SentAt  time.Time `json:"sent_at"`
}

// Notify publishes msg. Having no subscribers is not an error.
func (n *RedisNotifier) Notify(ctx context.Context, msg gateways.Message) error {
	payload, err := json.Marshal(redisMessage{Subject: msg.Subject, Body: msg.Body, SentAt: n.now().UTC()})
	if err != nil {
		return fmt.Errorf("failed to encode notification: %w", err)
	}

	if err := n.client.Publish(ctx, n.channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish to redis channel %s: %w", n.channel, err)
	}
	return nil
}
