package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
)

// RedisEventBus implements EventBus using Redis Pub/Sub
type RedisEventBus struct {
	client   *redis.Client
	resolver ChannelResolver
	pubsub   *redis.PubSub
	mu       sync.RWMutex
	handlers []func(channel string, payload []byte)
	ctx      context.Context
	cancel   context.CancelFunc
	running  bool
}

func NewRedisEventBus(client *redis.Client, resolver ChannelResolver) *RedisEventBus {
	ctx, cancel := context.WithCancel(context.Background())
	return &RedisEventBus{
		client:   client,
		resolver: resolver,
		ctx:      ctx,
		cancel:   cancel,
	}
}

func (b *RedisEventBus) Start() error {
	b.running = true
	b.pubsub = b.client.PSubscribe(b.ctx, "workspace:*")
	go b.listen()
	return nil
}

func (b *RedisEventBus) Stop() error {
	b.cancel()
	b.running = false
	if b.pubsub != nil {
		b.pubsub.Close()
	}
	return nil
}

func (b *RedisEventBus) Publish(ctx context.Context, event Event) error {
	channels := b.resolver.ResolveChannels(event)
	if len(channels) == 0 {
		return nil
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	for _, channel := range channels {
		if err := b.client.Publish(ctx, channel, data).Err(); err != nil {
			return err
		}
	}
	return nil
}

// OnMessage registers a raw subscriber; the websocket bridge uses this to
// forward workspace channel traffic to connected clients.
func (b *RedisEventBus) OnMessage(fn func(channel string, payload []byte)) {
	b.mu.Lock()
	b.handlers = append(b.handlers, fn)
	b.mu.Unlock()
}

func (b *RedisEventBus) listen() {
	ch := b.pubsub.Channel()
	for {
		select {
		case <-b.ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			b.mu.RLock()
			handlers := b.handlers
			b.mu.RUnlock()
			for _, fn := range handlers {
				fn(msg.Channel, []byte(msg.Payload))
			}
		}
	}
}
