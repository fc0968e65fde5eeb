package events

import (
	"context"
)

// EventBus fans events out to live subscribers (the websocket bridge).
// Delivery is best-effort; durable side effects go through the job queue,
// never through the bus.
type EventBus interface {
	Publish(ctx context.Context, event Event) error
}

type EventHandler func(event Event)

// ChannelResolver maps an event to the pub/sub channels it belongs on.
type ChannelResolver interface {
	ResolveChannels(event Event) []string
}

// WorkspaceChannelResolver routes every event to its workspace channel.
// The workspace is the tenant boundary, so fanout never crosses it.
type WorkspaceChannelResolver struct{}

func (WorkspaceChannelResolver) ResolveChannels(event Event) []string {
	id := event.WorkspaceID()
	if id.String() == "00000000-0000-0000-0000-000000000000" {
		return nil
	}
	return []string{"workspace:" + id.String()}
}

// NopBus discards events; used where live fanout is not wired (tests,
// the worker process without redis).
type NopBus struct{}

func (NopBus) Publish(ctx context.Context, event Event) error { return nil }
