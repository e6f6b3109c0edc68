package cache

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/jason-s-yu/pinaki/internal/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannel(t *testing.T) {
	assert.Equal(t, "pinaki:room:masa", Channel("masa"))
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	assert.NoError(t, p.Publish(context.Background(), game.RoomEvent{Type: game.EventChat}))
	assert.NoError(t, p.Close())
}

// TestRedisPublishSubscribe needs a live server at REDIS_TEST_ADDR.
func TestRedisPublishSubscribe(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}
	p, err := ConnectRedis(addr, 0)
	require.NoError(t, err)
	defer p.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	sub := p.Subscribe(ctx, "pubsub-test")
	defer sub.Close()
	_, err = sub.Receive(ctx)
	require.NoError(t, err)

	require.NoError(t, p.Publish(ctx, game.RoomEvent{Type: game.EventChat, RoomID: "pubsub-test"}))

	msg, err := sub.ReceiveMessage(ctx)
	require.NoError(t, err)
	var ev game.RoomEvent
	require.NoError(t, json.Unmarshal([]byte(msg.Payload), &ev))
	assert.Equal(t, game.EventChat, ev.Type)
}
