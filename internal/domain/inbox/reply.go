package inbox

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// InboxReply is an outbound reply attempt tied to an item. The row is an
// audit record: it is created before dispatch and kept whether dispatch
// succeeds or fails. A reply is sent iff platform_reply_id is set and
// failed_at is null.
type InboxReply struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key"`
	WorkspaceID     uuid.UUID `gorm:"type:uuid;not null;index"`
	InboxItemID     uuid.UUID `gorm:"type:uuid;not null;index"`
	UserID          uuid.UUID `gorm:"type:uuid;not null"`
	Content         string    `gorm:"type:text;not null"`
	PlatformReplyID sql.NullString
	SentAt          sql.NullTime
	FailedAt        sql.NullTime
	FailureReason   sql.NullString
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Sent reports whether the reply reached the platform.
func (r InboxReply) Sent() bool {
	return r.PlatformReplyID.Valid && !r.FailedAt.Valid
}

// InboxInternalNote is visible only to workspace members. Content is
// immutable once created; notes may only be deleted by the author or an
// admin.
type InboxInternalNote struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key"`
	WorkspaceID uuid.UUID `gorm:"type:uuid;not null;index"`
	InboxItemID uuid.UUID `gorm:"type:uuid;not null;index"`
	UserID      uuid.UUID `gorm:"type:uuid;not null"`
	Content     string    `gorm:"type:text;not null"`
	CreatedAt   time.Time
}

func (InboxReply) TableName() string {
	return "inbox_replies"
}

func (InboxInternalNote) TableName() string {
	return "inbox_internal_notes"
}
