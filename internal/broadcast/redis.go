package broadcast

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"dahabiya-site/internal/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// envelope tags relayed events with the publishing instance.
type envelope struct {
	Origin string `json:"origin"`
	Event  Event  `json:"event"`
}

// RedisRelay shares events between instances over a Redis pub/sub channel.
type RedisRelay struct {
	client  *redis.Client
	channel string
	origin  string
	log     logger.Logger
}

// NewRedisRelay connects to the Redis server at url (e.g. redis://localhost:6379/0).
func NewRedisRelay(ctx context.Context, url, channel string, log logger.Logger) (*RedisRelay, error) {
	if url == "" {
		return nil, errors.New("redis URL is required")
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return newRedisRelay(client, channel, log), nil
}

func newRedisRelay(client *redis.Client, channel string, log logger.Logger) *RedisRelay {
	return &RedisRelay{client: client, channel: channel, origin: uuid.NewString(), log: log}
}

// Publish sends e to the channel.
func (r *RedisRelay) Publish(ctx context.Context, e Event) error {
	payload, err := json.Marshal(envelope{Origin: r.origin, Event: e})
	if err != nil {
		return err
	}
	if err := r.client.Publish(ctx, r.channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to relay event: %w", err)
	}
	return nil
}

// Run hands events published by other instances to hub until ctx is done.
func (r *RedisRelay) Run(ctx context.Context, hub *Hub) {
	sub := r.client.Subscribe(ctx, r.channel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var env envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				r.log.Error(err, "dropping malformed relay message")
				continue
			}
			if env.Origin == r.origin {
				continue
			}
			hub.Receive(ctx, env.Event)
		}
	}
}

// Close closes the Redis connection.
func (r *RedisRelay) Close() error {
	return r.client.Close()
}
