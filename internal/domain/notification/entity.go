package notification

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Notification is an outgoing record consumed by the external delivery
// service. This core writes rows; it never renders or delivers them.
type Notification struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key"`
	WorkspaceID uuid.UUID `gorm:"type:uuid;not null;index"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index"`
	Type        string    `gorm:"type:varchar(50);not null"`
	Title       string    `gorm:"type:varchar(255);not null"`
	Message     string    `gorm:"type:text"`
	Data        string    `gorm:"type:jsonb;default:'{}'"`
	ActionURL   sql.NullString
	ReadAt      sql.NullTime
	CreatedAt   time.Time
}

const (
	TypeItemAssigned = "inbox.item_assigned"
	TypeItemResolved = "inbox.item_resolved"
	TypeRuleMatched  = "inbox.rule_matched"
	TypeReplyFailed  = "inbox.reply_failed"
)

func (Notification) TableName() string {
	return "notifications"
}
