package job

import (
	"time"

	"github.com/google/uuid"
)

// Status represents the processing state of a queued job
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusCompleted  Status = "COMPLETED"
	StatusFailed     Status = "FAILED"
)

// Job types executed by the worker pool.
const (
	TypeAutomationEvaluate = "automation.evaluate"
	TypeReplyDispatch      = "reply.dispatch"
	TypeMetricsFetch       = "metrics.fetch"
	TypeArchiveSweep       = "inbox.archive_sweep"
	TypeNotificationCreate = "notification.create"
	TypePayloadArchive     = "webhook.payload_archive"
)

// Job is a durable queue row. Webhook handlers enqueue slow work here so
// ingestion can acknowledge fast; workers poll with at-least-once
// semantics, so every handler must be idempotent.
type Job struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key"`
	JobType     string    `gorm:"type:varchar(50);not null;index"`
	WorkspaceID uuid.UUID `gorm:"type:uuid;not null;index"`
	AggregateID string    `gorm:"type:varchar(36);not null"`
	Payload     []byte    `gorm:"type:jsonb;not null"`
	Status      Status    `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	RetryCount  int       `gorm:"not null;default:0"`
	RunAfter    time.Time `gorm:"not null;index"`
	Error       string    `gorm:"type:text"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
	ProcessedAt *time.Time
}

// TableName returns the database table name
func (Job) TableName() string {
	return "jobs"
}
