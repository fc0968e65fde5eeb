package events

import (
	"time"

	"github.com/google/uuid"
)

// Event type constants, format: domain.action
type EventType string

const (
	EventItemCreated  EventType = "inbox.item.created"
	EventItemUpdated  EventType = "inbox.item.updated"
	EventItemAssigned EventType = "inbox.item.assigned"
	EventItemResolved EventType = "inbox.item.resolved"
	EventReplySent    EventType = "inbox.reply.sent"
	EventReplyFailed  EventType = "inbox.reply.failed"
	EventRuleFired    EventType = "inbox.rule.fired"
)

// Event is anything published on the workspace fanout channels.
type Event interface {
	Type() EventType
	WorkspaceID() uuid.UUID
}

type BaseEvent struct {
	EventTypeVal   EventType `json:"event_type"`
	WorkspaceIDVal uuid.UUID `json:"workspace_id"`
	TimestampVal   time.Time `json:"timestamp"`
}

func (e BaseEvent) Type() EventType        { return e.EventTypeVal }
func (e BaseEvent) WorkspaceID() uuid.UUID { return e.WorkspaceIDVal }

type ItemEvent struct {
	BaseEvent
	ItemID          uuid.UUID `json:"item_id"`
	SocialAccountID uuid.UUID `json:"social_account_id"`
	Status          string    `json:"status"`
	ItemType        string    `json:"item_type"`
}

type ItemAssignedEvent struct {
	BaseEvent
	ItemID           uuid.UUID `json:"item_id"`
	AssignedToUserID uuid.UUID `json:"assigned_to_user_id"`
	AssignedByUserID uuid.UUID `json:"assigned_by_user_id"`
}

type ReplyEvent struct {
	BaseEvent
	ReplyID         uuid.UUID `json:"reply_id"`
	ItemID          uuid.UUID `json:"item_id"`
	PlatformReplyID string    `json:"platform_reply_id,omitempty"`
	FailureReason   string    `json:"failure_reason,omitempty"`
}

type RuleFiredEvent struct {
	BaseEvent
	RuleID uuid.UUID `json:"rule_id"`
	ItemID uuid.UUID `json:"item_id"`
	Action string    `json:"action"`
}

func NewBaseEvent(t EventType, workspaceID uuid.UUID) BaseEvent {
	return BaseEvent{
		EventTypeVal:   t,
		WorkspaceIDVal: workspaceID,
		TimestampVal:   time.Now(),
	}
}

func NewItemEvent(t EventType, workspaceID, itemID, accountID uuid.UUID, status, itemType string) *ItemEvent {
	return &ItemEvent{
		BaseEvent: BaseEvent{
			EventTypeVal:   t,
			WorkspaceIDVal: workspaceID,
			TimestampVal:   time.Now(),
		},
		ItemID:          itemID,
		SocialAccountID: accountID,
		Status:          status,
		ItemType:        itemType,
	}
}
