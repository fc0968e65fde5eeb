package websocket

import (
	"socialflow/internal/events"
)

// RedisBridge forwards workspace pub/sub traffic into the hub, so every
// API instance delivers events regardless of which instance published
// them.
type RedisBridge struct {
	bus *events.RedisEventBus
	hub *Hub
}

func NewRedisBridge(bus *events.RedisEventBus, hub *Hub) *RedisBridge {
	return &RedisBridge{bus: bus, hub: hub}
}

// Attach registers the forwarding hook. The bus must be started
// separately.
func (b *RedisBridge) Attach() {
	b.bus.OnMessage(func(channel string, payload []byte) {
		b.hub.Broadcast(channel, payload)
	})
}
