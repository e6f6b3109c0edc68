// internal/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jason-s-yu/pinaki/internal/game"
	"github.com/redis/go-redis/v9"
)

// ChannelPrefix prefixes the pub/sub channel of every room.
const ChannelPrefix = "pinaki:room:"

// Channel returns the pub/sub channel carrying a room's events.
func Channel(roomID string) string { return ChannelPrefix + roomID }

// Publisher fans room events out to external observers. Nothing is stored.
type Publisher interface {
	Publish(ctx context.Context, ev game.RoomEvent) error
	Close() error
}

// RedisPublisher PUBLISHes events on Redis channels.
type RedisPublisher struct {
	Rdb *redis.Client
}

// ConnectRedis opens a client for addr/db and checks it with a PING.
func ConnectRedis(addr string, db int) (*RedisPublisher, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return &RedisPublisher{Rdb: rdb}, nil
}

// Publish serializes the event to JSON and publishes it on the room channel.
func (p *RedisPublisher) Publish(ctx context.Context, ev game.RoomEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal RoomEvent: %w", err)
	}
	if err := p.Rdb.Publish(ctx, Channel(ev.RoomID), data).Err(); err != nil {
		return fmt.Errorf("failed to publish to '%s': %w", Channel(ev.RoomID), err)
	}
	return nil
}

func (p *RedisPublisher) Close() error { return p.Rdb.Close() }

// Subscribe returns a subscription to a room's channel, for observers and tests.
func (p *RedisPublisher) Subscribe(ctx context.Context, roomID string) *redis.PubSub {
	return p.Rdb.Subscribe(ctx, Channel(roomID))
}

// NopPublisher drops every event; used when Redis is not configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, game.RoomEvent) error { return nil }
func (NopPublisher) Close() error                                  { return nil }
