package ingest

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"socialflow/internal/adapter"
	"socialflow/internal/domain/account"
	"socialflow/internal/domain/inbox"
	"socialflow/internal/domain/job"
	"socialflow/internal/events"
	"socialflow/internal/repository"
	flow_errors "socialflow/pkg/errors"
	"socialflow/pkg/logger"

	"github.com/google/uuid"
)

// Pipeline turns normalized events into inbox items. It owns the dedup
// invariant: for any (social_account_id, platform_item_id) pair there is
// exactly one item row, no matter how often a webhook is redelivered or
// how many deliveries race.
type Pipeline struct {
	items   repository.InboxItemRepository
	convs   repository.ConversationRepository
	collab  repository.CollabRepository
	metrics repository.MetricsRepository
	jobs    repository.JobRepository
	bus     events.EventBus
	log     *logger.Logger
}

func NewPipeline(
	items repository.InboxItemRepository,
	convs repository.ConversationRepository,
	collab repository.CollabRepository,
	metrics repository.MetricsRepository,
	jobs repository.JobRepository,
	bus events.EventBus,
	log *logger.Logger,
) *Pipeline {
	if bus == nil {
		bus = events.NopBus{}
	}
	return &Pipeline{
		items:   items,
		convs:   convs,
		collab:  collab,
		metrics: metrics,
		jobs:    jobs,
		bus:     bus,
		log:     log,
	}
}

// evaluatePayload is the body of an automation.evaluate job.
type evaluatePayload struct {
	ItemID uuid.UUID `json:"item_id"`
}

// Ingest persists one normalized event for the given account. The second
// return value reports whether a new item was created; duplicate delivery
// returns the existing item with created=false and no error.
func (p *Pipeline) Ingest(ctx context.Context, acct account.SocialAccount, ev adapter.NormalizedEvent) (inbox.InboxItem, bool, error) {
	// Duplicate delivery fast path.
	existing, err := p.items.GetByDedupKey(ctx, acct.ID, ev.PlatformItemID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, flow_errors.ErrNotFound) {
		return inbox.InboxItem{}, false, err
	}

	conv, err := p.resolveConversation(ctx, acct, ev)
	if err != nil {
		return inbox.InboxItem{}, false, err
	}

	now := time.Now()
	item := inbox.InboxItem{
		ID:                uuid.New(),
		WorkspaceID:       acct.WorkspaceID,
		SocialAccountID:   acct.ID,
		PlatformItemID:    ev.PlatformItemID,
		ConversationID:    uuid.NullUUID{UUID: conv.ID, Valid: true},
		ItemType:          ev.ItemType,
		Status:            inbox.StatusUnread,
		PlatformPostID:    nullString(ev.PlatformPostID),
		AuthorExternalID:  nullString(ev.AuthorExternalID),
		AuthorName:        ev.AuthorName,
		AuthorUsername:    nullString(ev.AuthorUsername),
		AuthorProfileURL:  nullString(ev.AuthorProfileURL),
		ContentText:       ev.ContentText,
		PlatformCreatedAt: ev.OccurredAt,
		Metadata:          "{}",
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if ev.PlatformPostID != "" {
		if target, err := p.metrics.GetPostTargetByPlatformPostID(ctx, acct.ID, ev.PlatformPostID); err == nil {
			item.PostTargetID = uuid.NullUUID{UUID: target.ID, Valid: true}
		}
	}

	if err := p.items.Create(ctx, &item); err != nil {
		if errors.Is(err, flow_errors.ErrAlreadyExists) {
			// Lost the insert race on the dedup key. First successful
			// insert wins; read back the winning row.
			winner, err := p.items.GetByDedupKey(ctx, acct.ID, ev.PlatformItemID)
			if err != nil {
				return inbox.InboxItem{}, false, err
			}
			return winner, false, nil
		}
		return inbox.InboxItem{}, false, err
	}

	if err := p.convs.AppendMessage(ctx, conv.ID, ev.OccurredAt); err != nil {
		p.log.Errorf("append to conversation %s failed: %v", conv.ID, err)
	}

	p.upsertContact(ctx, acct, ev)
	p.enqueueEvaluation(ctx, item)

	if err := p.bus.Publish(ctx, events.NewItemEvent(
		events.EventItemCreated, item.WorkspaceID, item.ID, acct.ID,
		string(item.Status), string(item.ItemType),
	)); err != nil {
		p.log.Errorf("publish item.created for %s failed: %v", item.ID, err)
	}

	return item, true, nil
}

// resolveConversation finds or lazily creates the conversation for the
// event's thread key, absorbing the create race the same way item
// creation does.
func (p *Pipeline) resolveConversation(ctx context.Context, acct account.SocialAccount, ev adapter.NormalizedEvent) (inbox.InboxConversation, error) {
	conv, err := p.convs.GetByKey(ctx, acct.ID, ev.ConversationKey)
	if err == nil {
		return conv, nil
	}
	if !errors.Is(err, flow_errors.ErrNotFound) {
		return inbox.InboxConversation{}, err
	}

	now := time.Now()
	conv = inbox.InboxConversation{
		ID:                    uuid.New(),
		WorkspaceID:           acct.WorkspaceID,
		SocialAccountID:       acct.ID,
		ConversationKey:       ev.ConversationKey,
		ParticipantExternalID: nullString(ev.AuthorExternalID),
		ParticipantName:       ev.AuthorName,
		Status:                inbox.ConversationActive,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	if err := p.convs.Create(ctx, &conv); err != nil {
		if errors.Is(err, flow_errors.ErrAlreadyExists) {
			return p.convs.GetByKey(ctx, acct.ID, ev.ConversationKey)
		}
		return inbox.InboxConversation{}, err
	}
	return conv, nil
}

func (p *Pipeline) upsertContact(ctx context.Context, acct account.SocialAccount, ev adapter.NormalizedEvent) {
	if ev.AuthorExternalID == "" {
		return
	}
	contact := inbox.InboxContact{
		ID:          uuid.New(),
		WorkspaceID: acct.WorkspaceID,
		Platform:    string(acct.Platform),
		ExternalID:  ev.AuthorExternalID,
		Name:        ev.AuthorName,
		Username:    nullString(ev.AuthorUsername),
		ProfileURL:  nullString(ev.AuthorProfileURL),
	}
	if err := p.collab.UpsertContact(ctx, &contact); err != nil {
		p.log.Errorf("contact upsert for %s/%s failed: %v", acct.Platform, ev.AuthorExternalID, err)
	}
}

// enqueueEvaluation hands the item to the automation engine via the job
// queue. Ingestion never blocks on automation; enqueue failure is logged
// and the item stands.
func (p *Pipeline) enqueueEvaluation(ctx context.Context, item inbox.InboxItem) {
	payload, err := json.Marshal(evaluatePayload{ItemID: item.ID})
	if err != nil {
		p.log.Errorf("marshal evaluate payload for %s failed: %v", item.ID, err)
		return
	}
	if err := p.jobs.Enqueue(ctx, &job.Job{
		JobType:     job.TypeAutomationEvaluate,
		WorkspaceID: item.WorkspaceID,
		AggregateID: item.ID.String(),
		Payload:     payload,
	}); err != nil {
		p.log.Errorf("enqueue automation for %s failed: %v", item.ID, err)
	}
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
