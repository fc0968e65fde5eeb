package services

import (
	"context"
	"time"

	"socialflow/internal/domain/inbox"
	"socialflow/internal/domain/notification"
	"socialflow/internal/events"
	"socialflow/internal/repository"
	"socialflow/pkg/logger"

	"github.com/google/uuid"
)

// InboxService owns the item state machine. Every mutation is
// workspace-scoped; an item belonging to another workspace surfaces as
// ErrNotFound, never ErrForbidden, so cross-tenant probing cannot
// distinguish "missing" from "not yours".
type InboxService struct {
	items  repository.InboxItemRepository
	convs  repository.ConversationRepository
	notifs repository.NotificationRepository
	bus    events.EventBus
	log    *logger.Logger
}

func NewInboxService(
	items repository.InboxItemRepository,
	convs repository.ConversationRepository,
	notifs repository.NotificationRepository,
	bus events.EventBus,
	log *logger.Logger,
) *InboxService {
	if bus == nil {
		bus = events.NopBus{}
	}
	return &InboxService{items: items, convs: convs, notifs: notifs, bus: bus, log: log}
}

func (s *InboxService) Get(ctx context.Context, workspaceID, id uuid.UUID) (inbox.InboxItem, error) {
	return s.items.GetByID(ctx, workspaceID, id)
}

func (s *InboxService) List(ctx context.Context, workspaceID uuid.UUID, f repository.ItemFilter) ([]inbox.InboxItem, int64, error) {
	return s.items.List(ctx, workspaceID, f)
}

func (s *InboxService) CountByStatus(ctx context.Context, workspaceID uuid.UUID, status inbox.Status) (int64, error) {
	return s.items.CountByStatus(ctx, workspaceID, status)
}

// MarkAsRead moves UNREAD → READ. Marking an already-read item is a
// no-op, not an error, so clients can mark-on-open without checking.
func (s *InboxService) MarkAsRead(ctx context.Context, workspaceID, id uuid.UUID) (inbox.InboxItem, error) {
	item, err := s.items.GetByID(ctx, workspaceID, id)
	if err != nil {
		return inbox.InboxItem{}, err
	}
	if !item.MarkRead(time.Now()) {
		return item, nil
	}
	if err := s.items.Update(ctx, item); err != nil {
		return inbox.InboxItem{}, err
	}
	s.publishStatus(ctx, item)
	return item, nil
}

// Resolve moves READ → RESOLVED, stamping who resolved and when. An
// item that cannot resolve from its current state is returned unchanged;
// callers inspect the status.
func (s *InboxService) Resolve(ctx context.Context, workspaceID, id, userID uuid.UUID) (inbox.InboxItem, error) {
	item, err := s.items.GetByID(ctx, workspaceID, id)
	if err != nil {
		return inbox.InboxItem{}, err
	}
	if !item.Resolve(time.Now(), uuid.NullUUID{UUID: userID, Valid: true}) {
		return item, nil
	}
	if err := s.items.Update(ctx, item); err != nil {
		return inbox.InboxItem{}, err
	}
	s.notifyAssignee(ctx, item, userID, notification.TypeItemResolved, "Inbox item resolved")
	s.publishStatus(ctx, item)
	return item, nil
}

// Reopen moves RESOLVED → READ and clears the resolution stamp.
func (s *InboxService) Reopen(ctx context.Context, workspaceID, id uuid.UUID) (inbox.InboxItem, error) {
	item, err := s.items.GetByID(ctx, workspaceID, id)
	if err != nil {
		return inbox.InboxItem{}, err
	}
	if !item.Reopen(time.Now()) {
		return item, nil
	}
	if err := s.items.Update(ctx, item); err != nil {
		return inbox.InboxItem{}, err
	}
	s.publishStatus(ctx, item)
	return item, nil
}

// Archive moves RESOLVED → ARCHIVED. Archived items are terminal.
func (s *InboxService) Archive(ctx context.Context, workspaceID, id uuid.UUID) (inbox.InboxItem, error) {
	item, err := s.items.GetByID(ctx, workspaceID, id)
	if err != nil {
		return inbox.InboxItem{}, err
	}
	if !item.Archive(time.Now()) {
		return item, nil
	}
	if err := s.items.Update(ctx, item); err != nil {
		return inbox.InboxItem{}, err
	}
	s.publishStatus(ctx, item)
	return item, nil
}

// Assign sets the assignee and records an assignment notification for
// them. Assignment does not touch status.
func (s *InboxService) Assign(ctx context.Context, workspaceID, id, assigneeID uuid.UUID) (inbox.InboxItem, error) {
	item, err := s.items.GetByID(ctx, workspaceID, id)
	if err != nil {
		return inbox.InboxItem{}, err
	}
	item.AssignTo(assigneeID, time.Now())
	if err := s.items.Update(ctx, item); err != nil {
		return inbox.InboxItem{}, err
	}
	n := &notification.Notification{
		ID:          uuid.New(),
		WorkspaceID: item.WorkspaceID,
		UserID:      assigneeID,
		Type:        notification.TypeItemAssigned,
		Title:       "Inbox item assigned to you",
		Message:     item.ContentText,
		CreatedAt:   time.Now(),
	}
	if err := s.notifs.Create(ctx, n); err != nil {
		s.log.Errorf("assignment notification for item %s failed: %v", item.ID, err)
	}
	if err := s.bus.Publish(ctx, events.ItemAssignedEvent{
		BaseEvent:        events.NewBaseEvent(events.EventItemAssigned, item.WorkspaceID),
		ItemID:           item.ID,
		AssignedToUserID: assigneeID,
	}); err != nil {
		s.log.Errorf("publish item.assigned for %s failed: %v", item.ID, err)
	}
	return item, nil
}

// Unassign clears the assignee.
func (s *InboxService) Unassign(ctx context.Context, workspaceID, id uuid.UUID) (inbox.InboxItem, error) {
	item, err := s.items.GetByID(ctx, workspaceID, id)
	if err != nil {
		return inbox.InboxItem{}, err
	}
	item.Unassign(time.Now())
	if err := s.items.Update(ctx, item); err != nil {
		return inbox.InboxItem{}, err
	}
	return item, nil
}

// BulkResolve resolves every listed item that is currently resolvable
// and reports how many actually changed. Items in other workspaces are
// silently absent from the fetch, so they count as skipped.
func (s *InboxService) BulkResolve(ctx context.Context, workspaceID uuid.UUID, ids []uuid.UUID, userID uuid.UUID) (int, error) {
	return s.bulkTransition(ctx, workspaceID, ids, func(item *inbox.InboxItem, now time.Time) bool {
		return item.Resolve(now, uuid.NullUUID{UUID: userID, Valid: true})
	})
}

// BulkMarkRead marks every listed UNREAD item as read.
func (s *InboxService) BulkMarkRead(ctx context.Context, workspaceID uuid.UUID, ids []uuid.UUID) (int, error) {
	return s.bulkTransition(ctx, workspaceID, ids, func(item *inbox.InboxItem, now time.Time) bool {
		return item.MarkRead(now)
	})
}

// BulkArchive archives every listed RESOLVED item.
func (s *InboxService) BulkArchive(ctx context.Context, workspaceID uuid.UUID, ids []uuid.UUID) (int, error) {
	return s.bulkTransition(ctx, workspaceID, ids, func(item *inbox.InboxItem, now time.Time) bool {
		return item.Archive(now)
	})
}

func (s *InboxService) bulkTransition(ctx context.Context, workspaceID uuid.UUID, ids []uuid.UUID, apply func(*inbox.InboxItem, time.Time) bool) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	items, err := s.items.GetByIDs(ctx, workspaceID, ids)
	if err != nil {
		return 0, err
	}
	now := time.Now()
	mutated := 0
	for i := range items {
		if !apply(&items[i], now) {
			continue
		}
		if err := s.items.Update(ctx, items[i]); err != nil {
			s.log.Errorf("bulk transition update for item %s failed: %v", items[i].ID, err)
			continue
		}
		s.publishStatus(ctx, items[i])
		mutated++
	}
	return mutated, nil
}

func (s *InboxService) publishStatus(ctx context.Context, item inbox.InboxItem) {
	if err := s.bus.Publish(ctx, events.NewItemEvent(
		events.EventItemUpdated, item.WorkspaceID, item.ID, item.SocialAccountID,
		string(item.Status), string(item.ItemType),
	)); err != nil {
		s.log.Errorf("publish status change for %s failed: %v", item.ID, err)
	}
}

func (s *InboxService) notifyAssignee(ctx context.Context, item inbox.InboxItem, actorID uuid.UUID, notifType, title string) {
	if !item.AssignedToUserID.Valid || item.AssignedToUserID.UUID == actorID {
		return
	}
	n := &notification.Notification{
		ID:          uuid.New(),
		WorkspaceID: item.WorkspaceID,
		UserID:      item.AssignedToUserID.UUID,
		Type:        notifType,
		Title:       title,
		Message:     item.ContentText,
		CreatedAt:   time.Now(),
	}
	if err := s.notifs.Create(ctx, n); err != nil {
		s.log.Errorf("notification for item %s failed: %v", item.ID, err)
	}
}
