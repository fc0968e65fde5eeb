package inbox

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// InboxTag categorizes items within a workspace.
type InboxTag struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key"`
	WorkspaceID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_tags_workspace_name"`
	Name        string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_tags_workspace_name"`
	Color       string    `gorm:"type:varchar(20)"`
	CreatedAt   time.Time
}

// InboxItemTag is the many-to-many join between items and tags.
type InboxItemTag struct {
	InboxItemID uuid.UUID `gorm:"type:uuid;primaryKey"`
	TagID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt   time.Time
}

// SavedReply is a canned response reusable across the workspace.
type SavedReply struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key"`
	WorkspaceID uuid.UUID `gorm:"type:uuid;not null;index"`
	Title       string    `gorm:"type:varchar(255);not null"`
	Content     string    `gorm:"type:text;not null"`
	UseCount    int64     `gorm:"not null;default:0"`
	CreatedBy   uuid.NullUUID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// InboxContact is a lightweight CRM record for a platform author, upserted
// as items arrive.
type InboxContact struct {
	ID                uuid.UUID `gorm:"type:uuid;primary_key"`
	WorkspaceID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_contacts_identity"`
	Platform          string    `gorm:"type:varchar(20);not null;uniqueIndex:idx_contacts_identity"`
	ExternalID        string    `gorm:"type:varchar(255);not null;uniqueIndex:idx_contacts_identity"`
	Name              string    `gorm:"type:varchar(255)"`
	Username          sql.NullString
	ProfileURL        sql.NullString
	InteractionCount  int64 `gorm:"not null;default:0"`
	LastInteractionAt sql.NullTime
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (InboxTag) TableName() string {
	return "inbox_tags"
}

func (InboxItemTag) TableName() string {
	return "inbox_item_tags"
}

func (SavedReply) TableName() string {
	return "saved_replies"
}

func (InboxContact) TableName() string {
	return "inbox_contacts"
}
