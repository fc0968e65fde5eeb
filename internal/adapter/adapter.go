package adapter

import (
	"time"

	"socialflow/internal/domain/account"
	"socialflow/internal/domain/inbox"
	flow_errors "socialflow/pkg/errors"
)

// NormalizedEvent is the platform-independent ingestion record produced by
// an adapter from a raw webhook payload.
type NormalizedEvent struct {
	PlatformItemID   string
	PlatformPostID   string
	ConversationKey  string
	ItemType         inbox.ItemType
	AuthorExternalID string
	AuthorName       string
	AuthorUsername   string
	AuthorProfileURL string
	ContentText      string
	OccurredAt       time.Time
}

// PlatformAdapter translates one platform's raw webhook payload into
// normalized events. Adapters fail with ErrUnsupportedPayload when
// required fields are absent; the pipeline logs and drops, never crashes.
type PlatformAdapter interface {
	Platform() account.Platform
	Normalize(raw []byte) ([]NormalizedEvent, error)
}

// Registry selects an adapter by platform. New platforms register a new
// adapter variant instead of adding pipeline branches.
type Registry struct {
	adapters map[account.Platform]PlatformAdapter
}

func NewRegistry(adapters ...PlatformAdapter) *Registry {
	r := &Registry{adapters: make(map[account.Platform]PlatformAdapter)}
	for _, a := range adapters {
		r.Register(a)
	}
	return r
}

// DefaultRegistry returns a registry with all supported platforms wired.
func DefaultRegistry() *Registry {
	return NewRegistry(
		NewFacebookAdapter(),
		NewInstagramAdapter(),
		NewTwitterAdapter(),
		NewLinkedInAdapter(),
	)
}

func (r *Registry) Register(a PlatformAdapter) {
	r.adapters[a.Platform()] = a
}

func (r *Registry) Get(platform account.Platform) (PlatformAdapter, error) {
	a, ok := r.adapters[platform]
	if !ok {
		return nil, flow_errors.ErrUnsupportedPayload
	}
	return a, nil
}
