package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"flowtrack/internal/logger"
)

// RedisBus publishes events on a Redis channel so every instance's Hub sees
// them. Run forwards the channel into the local Hub.
type RedisBus struct {
	log     *logger.Logger
	rdb     *goredis.Client
	channel string
	hub     *Hub
}

func NewRedisBus(addr, channel string, hub *Hub, log *logger.Logger) (*RedisBus, error) {
	if hub == nil {
		return nil, fmt.Errorf("hub required")
	}
	if channel == "" {
		channel = "flowtrack.events"
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &RedisBus{
		log:     log.With("service", "RedisBus"),
		rdb:     rdb,
		channel: channel,
		hub:     hub,
	}, nil
}

func (b *RedisBus) Publish(ctx context.Context, ev Event) error {
	raw, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, b.channel, raw).Err()
}

// Run blocks until ctx is done.
func (b *RedisBus) Run(ctx context.Context) error {
	sub := b.rdb.Subscribe(ctx, b.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("redis subscribe: %w", err)
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var ev Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				b.log.Warn("dropping malformed event", "error", err)
				continue
			}
			b.hub.Broadcast(ev)
		}
	}
}

func (b *RedisBus) Close() error {
	return b.rdb.Close()
}
