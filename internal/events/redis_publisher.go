package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisPublisher forwards events to a Redis pub/sub channel so other
// processes can follow ticket activity.
type RedisPublisher struct {
	client  *redis.Client
	channel string
}

// NewRedisPublisher builds a publisher for channel.
func NewRedisPublisher(client *redis.Client, channel string) *RedisPublisher {
	return &RedisPublisher{client: client, channel: channel}
}

// Handle is an EventHandler that publishes the JSON encoded event.
func (p *RedisPublisher) Handle(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	return p.client.Publish(ctx, p.channel, body).Err()
}

// Register subscribes the publisher to every ticket event.
func (p *RedisPublisher) Register(dispatcher Dispatcher) {
	for _, eventType := range AllTicketEvents {
		dispatcher.Subscribe(eventType, p.Handle)
	}
}
