package inbox

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// ItemType classifies a platform interaction and determines reply-ability.
type ItemType string

const (
	ItemTypeComment      ItemType = "comment"
	ItemTypeMention      ItemType = "mention"
	ItemTypeMessage      ItemType = "message"
	ItemTypeStoryMention ItemType = "story_mention"
	ItemTypeReview       ItemType = "review"
)

// Replyable reports whether an outbound reply can be sent for this type.
// Story mentions expire on the platform side and cannot be replied to.
func (t ItemType) Replyable() bool {
	switch t {
	case ItemTypeComment, ItemTypeMention, ItemTypeMessage, ItemTypeReview:
		return true
	}
	return false
}

// InboxItem is a single normalized platform interaction.
// (social_account_id, platform_item_id) is the dedup key: re-ingestion of
// the same external event must never create a second row.
type InboxItem struct {
	ID                uuid.UUID `gorm:"type:uuid;primary_key"`
	WorkspaceID       uuid.UUID `gorm:"type:uuid;not null;index"`
	SocialAccountID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_items_dedup"`
	PlatformItemID    string    `gorm:"type:varchar(255);not null;uniqueIndex:idx_items_dedup"`
	ConversationID    uuid.NullUUID
	PostTargetID      uuid.NullUUID
	ItemType          ItemType `gorm:"type:varchar(20);not null"`
	Status            Status   `gorm:"type:varchar(20);not null;default:'UNREAD'"`
	PlatformPostID    sql.NullString
	AuthorExternalID  sql.NullString
	AuthorName        string `gorm:"type:varchar(255)"`
	AuthorUsername    sql.NullString
	AuthorProfileURL  sql.NullString
	ContentText       string    `gorm:"type:text"`
	PlatformCreatedAt time.Time `gorm:"not null;index"`
	AssignedToUserID  uuid.NullUUID
	AssignedAt        sql.NullTime
	ResolvedAt        sql.NullTime
	ResolvedByUserID  uuid.NullUUID
	ArchivedAt        sql.NullTime
	Metadata          string `gorm:"type:jsonb;default:'{}'"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (InboxItem) TableName() string {
	return "inbox_items"
}
