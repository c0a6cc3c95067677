package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const SecurityChannel = "security:events"

func UserChannel(userID string) string {
	return fmt.Sprintf("user:%s:events", userID)
}

// ChannelEvent is the wire shape every subscriber receives. Payloads carry
// enough identity and location data for a dashboard to render without a
// follow-up query.
type ChannelEvent struct {
	Event     string      `json:"event"`
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

// RedisPublisher implements the engine's Publisher capability on redis
// pub/sub. The websocket bridge subscribes to the same channels.
type RedisPublisher struct {
	Client *redis.Client
	Logger *zap.Logger
}

func NewRedisPublisher(redisURL string, logger *zap.Logger) (*RedisPublisher, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %v", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %v", err)
	}

	return &RedisPublisher{Client: client, Logger: logger}, nil
}

func (p *RedisPublisher) PublishToSecurity(ctx context.Context, event string, payload interface{}) error {
	return p.publish(ctx, SecurityChannel, event, payload)
}

func (p *RedisPublisher) PublishToUser(ctx context.Context, userID string, event string, payload interface{}) error {
	return p.publish(ctx, UserChannel(userID), event, payload)
}

func (p *RedisPublisher) publish(ctx context.Context, channel, event string, payload interface{}) error {
	data, err := json.Marshal(ChannelEvent{
		Event:     event,
		Payload:   payload,
		Timestamp: time.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", event, err)
	}

	if err := p.Client.Publish(ctx, channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish %s to %s: %w", event, channel, err)
	}

	p.Logger.Debug("published channel event",
		zap.String("channel", channel),
		zap.String("event", event))
	return nil
}

// Subscribe opens a pub/sub subscription for the websocket bridge.
func (p *RedisPublisher) Subscribe(ctx context.Context, channels ...string) *redis.PubSub {
	return p.Client.Subscribe(ctx, channels...)
}
