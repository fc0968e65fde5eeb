package services

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"socialflow/internal/adapter"
	"socialflow/internal/domain/inbox"
	"socialflow/internal/domain/job"
	"socialflow/internal/domain/notification"
	"socialflow/internal/events"
	"socialflow/internal/repository"
	flow_errors "socialflow/pkg/errors"
	"socialflow/pkg/logger"

	"github.com/google/uuid"
)

// ReplyService creates outbound replies and dispatches them to the
// platforms. Create is synchronous and cheap; the actual platform call
// happens in Dispatch, driven by the job queue.
type ReplyService struct {
	replies  repository.ReplyRepository
	items    repository.InboxItemRepository
	accounts repository.AccountRepository
	notifs   repository.NotificationRepository
	jobs     repository.JobRepository
	senders  *adapter.ReplyRegistry
	bus      events.EventBus
	log      *logger.Logger

	// Hard ceiling on one platform call. A dispatch that exceeds it is
	// recorded as failed rather than left in limbo.
	dispatchTimeout time.Duration
}

func NewReplyService(
	replies repository.ReplyRepository,
	items repository.InboxItemRepository,
	accounts repository.AccountRepository,
	notifs repository.NotificationRepository,
	jobs repository.JobRepository,
	senders *adapter.ReplyRegistry,
	bus events.EventBus,
	log *logger.Logger,
	dispatchTimeout time.Duration,
) *ReplyService {
	if bus == nil {
		bus = events.NopBus{}
	}
	if dispatchTimeout <= 0 {
		dispatchTimeout = 10 * time.Second
	}
	return &ReplyService{
		replies:         replies,
		items:           items,
		accounts:        accounts,
		notifs:          notifs,
		jobs:            jobs,
		senders:         senders,
		bus:             bus,
		log:             log,
		dispatchTimeout: dispatchTimeout,
	}
}

// Create validates the reply against the item and its account, persists
// the reply row, and enqueues dispatch. The returned reply is not yet
// sent; clients observe the outcome via the sent/failed fields.
func (s *ReplyService) Create(ctx context.Context, workspaceID, itemID, userID uuid.UUID, content string) (inbox.InboxReply, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return inbox.InboxReply{}, flow_errors.ErrInvalidInput
	}

	item, err := s.items.GetByID(ctx, workspaceID, itemID)
	if err != nil {
		return inbox.InboxReply{}, err
	}
	if !item.ItemType.Replyable() {
		return inbox.InboxReply{}, flow_errors.ErrNotReplyable
	}

	acct, err := s.accounts.GetForWorkspace(ctx, workspaceID, item.SocialAccountID)
	if err != nil {
		return inbox.InboxReply{}, err
	}
	if !acct.HasUsableToken() {
		return inbox.InboxReply{}, flow_errors.ErrMissingCredential
	}

	now := time.Now()
	reply := inbox.InboxReply{
		ID:          uuid.New(),
		WorkspaceID: workspaceID,
		InboxItemID: itemID,
		UserID:      userID,
		Content:     content,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.replies.Create(ctx, &reply); err != nil {
		return inbox.InboxReply{}, err
	}

	payload, err := json.Marshal(map[string]string{"reply_id": reply.ID.String()})
	if err != nil {
		return inbox.InboxReply{}, err
	}
	if err := s.jobs.Enqueue(ctx, &job.Job{
		JobType:     job.TypeReplyDispatch,
		WorkspaceID: workspaceID,
		AggregateID: reply.ID.String(),
		Payload:     payload,
	}); err != nil {
		return inbox.InboxReply{}, err
	}
	return reply, nil
}

func (s *ReplyService) Get(ctx context.Context, workspaceID, id uuid.UUID) (inbox.InboxReply, error) {
	return s.replies.GetByID(ctx, workspaceID, id)
}

func (s *ReplyService) ListByItem(ctx context.Context, workspaceID, itemID uuid.UUID) ([]inbox.InboxReply, error) {
	return s.replies.ListByItem(ctx, workspaceID, itemID)
}

// Dispatch performs the platform call for a pending reply. It is
// idempotent: a reply already marked sent is skipped, so at-least-once
// job delivery never double-posts.
//
// The returned error reflects infrastructure failures only. A platform
// rejection or missing credential is a terminal outcome recorded on the
// reply row, not an error, so the job is not retried for it.
func (s *ReplyService) Dispatch(ctx context.Context, workspaceID, replyID uuid.UUID) error {
	reply, err := s.replies.GetByID(ctx, workspaceID, replyID)
	if err != nil {
		return err
	}
	if reply.Sent() {
		return nil
	}

	item, err := s.items.GetByID(ctx, workspaceID, reply.InboxItemID)
	if err != nil {
		return err
	}
	acct, err := s.accounts.GetForWorkspace(ctx, workspaceID, item.SocialAccountID)
	if err != nil {
		return err
	}
	if !acct.HasUsableToken() {
		return s.recordFailure(ctx, reply, item, flow_errors.ErrMissingCredential.Error())
	}

	sender, err := s.senders.Get(acct.Platform)
	if err != nil {
		return s.recordFailure(ctx, reply, item, "no sender for platform "+string(acct.Platform))
	}

	callCtx, cancel := context.WithTimeout(ctx, s.dispatchTimeout)
	defer cancel()

	platformReplyID, err := sender.SendReply(callCtx, acct, item.PlatformItemID, reply.Content)
	if err != nil {
		return s.recordFailure(ctx, reply, item, err.Error())
	}

	if err := s.replies.MarkSent(ctx, reply.ID, platformReplyID); err != nil {
		return err
	}
	if err := s.bus.Publish(ctx, events.ReplyEvent{
		BaseEvent:       events.NewBaseEvent(events.EventReplySent, workspaceID),
		ReplyID:         reply.ID,
		ItemID:          item.ID,
		PlatformReplyID: platformReplyID,
	}); err != nil {
		s.log.Errorf("publish reply.sent for %s failed: %v", reply.ID, err)
	}
	return nil
}

func (s *ReplyService) recordFailure(ctx context.Context, reply inbox.InboxReply, item inbox.InboxItem, reason string) error {
	if err := s.replies.MarkFailed(ctx, reply.ID, reason); err != nil {
		return err
	}
	n := &notification.Notification{
		ID:          uuid.New(),
		WorkspaceID: reply.WorkspaceID,
		UserID:      reply.UserID,
		Type:        notification.TypeReplyFailed,
		Title:       "Reply could not be delivered",
		Message:     reason,
		CreatedAt:   time.Now(),
	}
	if err := s.notifs.Create(ctx, n); err != nil {
		s.log.Errorf("reply failure notification for %s failed: %v", reply.ID, err)
	}
	if err := s.bus.Publish(ctx, events.ReplyEvent{
		BaseEvent:     events.NewBaseEvent(events.EventReplyFailed, reply.WorkspaceID),
		ReplyID:       reply.ID,
		ItemID:        item.ID,
		FailureReason: reason,
	}); err != nil {
		s.log.Errorf("publish reply.failed for %s failed: %v", reply.ID, err)
	}
	return nil
}
