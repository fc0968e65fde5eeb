package inbox

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

type ConversationStatus string

const (
	ConversationActive   ConversationStatus = "active"
	ConversationResolved ConversationStatus = "resolved"
	ConversationArchived ConversationStatus = "archived"
)

// InboxConversation groups items sharing a platform thread key under one
// social account. message_count and the first/last timestamps are
// maintained monotonically: appends never move last_message_at backward
// nor first_message_at forward.
type InboxConversation struct {
	ID                    uuid.UUID `gorm:"type:uuid;primary_key"`
	WorkspaceID           uuid.UUID `gorm:"type:uuid;not null;index"`
	SocialAccountID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_conversations_key"`
	ConversationKey       string    `gorm:"type:varchar(512);not null;uniqueIndex:idx_conversations_key"`
	ParticipantExternalID sql.NullString
	ParticipantName       string `gorm:"type:varchar(255)"`
	MessageCount          int64  `gorm:"not null;default:0"`
	FirstMessageAt        sql.NullTime
	LastMessageAt         sql.NullTime
	Status                ConversationStatus `gorm:"type:varchar(20);not null;default:'active'"`
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

func (InboxConversation) TableName() string {
	return "inbox_conversations"
}
