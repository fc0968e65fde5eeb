package metrics

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// PostTarget is a published post on one social account, referenced by
// inbox items that concern our own content.
type PostTarget struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key"`
	WorkspaceID     uuid.UUID `gorm:"type:uuid;not null;index"`
	SocialAccountID uuid.UUID `gorm:"type:uuid;not null;index"`
	PlatformPostID  string    `gorm:"type:varchar(255);not null;index"`
	PublishedAt     sql.NullTime
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// PostMetricSnapshot is one append-only engagement capture for a post
// target. Rows are never mutated after insert except the derived
// engagement_rate backfill.
type PostMetricSnapshot struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key"`
	WorkspaceID    uuid.UUID `gorm:"type:uuid;not null;index"`
	PostTargetID   uuid.UUID `gorm:"type:uuid;not null;index"`
	Likes          int64     `gorm:"not null;default:0"`
	Comments       int64     `gorm:"not null;default:0"`
	Shares         int64     `gorm:"not null;default:0"`
	Impressions    int64     `gorm:"not null;default:0"`
	Reach          int64     `gorm:"not null;default:0"`
	EngagementRate sql.NullFloat64
	CapturedAt     time.Time `gorm:"not null;index"`
	CreatedAt      time.Time
}

func (PostTarget) TableName() string {
	return "post_targets"
}

func (PostMetricSnapshot) TableName() string {
	return "post_metric_snapshots"
}
