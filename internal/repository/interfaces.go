package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"socialflow/internal/domain/account"
	"socialflow/internal/domain/automation"
	"socialflow/internal/domain/inbox"
	"socialflow/internal/domain/job"
	"socialflow/internal/domain/metrics"
	"socialflow/internal/domain/notification"
	"socialflow/internal/domain/workspace"
)

// ItemFilter narrows inbox item listings. Zero values mean "no filter".
type ItemFilter struct {
	Status          inbox.Status
	ItemType        inbox.ItemType
	SocialAccountID uuid.UUID
	AssignedTo      uuid.UUID
	ConversationID  uuid.UUID
	Page            int
	Limit           int
}

type WorkspaceRepository interface {
	Create(ctx context.Context, w *workspace.Workspace) error
	GetByID(ctx context.Context, id uuid.UUID) (workspace.Workspace, error)
	AddMember(ctx context.Context, m *workspace.Member) error
	GetMember(ctx context.Context, workspaceID, userID uuid.UUID) (workspace.Member, error)
	ListMembers(ctx context.Context, workspaceID uuid.UUID) ([]workspace.Member, error)
}

type AccountRepository interface {
	Create(ctx context.Context, a *account.SocialAccount) error
	GetByID(ctx context.Context, id uuid.UUID) (account.SocialAccount, error)
	GetForWorkspace(ctx context.Context, workspaceID, id uuid.UUID) (account.SocialAccount, error)
	ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]account.SocialAccount, error)
	ListConnected(ctx context.Context) ([]account.SocialAccount, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status account.Status) error
}

type InboxItemRepository interface {
	Create(ctx context.Context, item *inbox.InboxItem) error
	GetByDedupKey(ctx context.Context, socialAccountID uuid.UUID, platformItemID string) (inbox.InboxItem, error)
	GetByID(ctx context.Context, workspaceID, id uuid.UUID) (inbox.InboxItem, error)
	Update(ctx context.Context, item inbox.InboxItem) error
	List(ctx context.Context, workspaceID uuid.UUID, f ItemFilter) ([]inbox.InboxItem, int64, error)
	GetByIDs(ctx context.Context, workspaceID uuid.UUID, ids []uuid.UUID) ([]inbox.InboxItem, error)
	ListResolvedBefore(ctx context.Context, cutoff time.Time, limit int) ([]inbox.InboxItem, error)
	CountByStatus(ctx context.Context, workspaceID uuid.UUID, status inbox.Status) (int64, error)
}

type ConversationRepository interface {
	Create(ctx context.Context, c *inbox.InboxConversation) error
	GetByKey(ctx context.Context, socialAccountID uuid.UUID, key string) (inbox.InboxConversation, error)
	GetByID(ctx context.Context, workspaceID, id uuid.UUID) (inbox.InboxConversation, error)
	List(ctx context.Context, workspaceID uuid.UUID, page, limit int) ([]inbox.InboxConversation, int64, error)
	AppendMessage(ctx context.Context, id uuid.UUID, occurredAt time.Time) error
	UpdateStatus(ctx context.Context, workspaceID, id uuid.UUID, status inbox.ConversationStatus) error
}

type ReplyRepository interface {
	Create(ctx context.Context, r *inbox.InboxReply) error
	GetByID(ctx context.Context, workspaceID, id uuid.UUID) (inbox.InboxReply, error)
	ListByItem(ctx context.Context, workspaceID, itemID uuid.UUID) ([]inbox.InboxReply, error)
	MarkSent(ctx context.Context, id uuid.UUID, platformReplyID string) error
	MarkFailed(ctx context.Context, id uuid.UUID, reason string) error
}

type CollabRepository interface {
	CreateNote(ctx context.Context, n *inbox.InboxInternalNote) error
	ListNotes(ctx context.Context, workspaceID, itemID uuid.UUID) ([]inbox.InboxInternalNote, error)
	GetNote(ctx context.Context, workspaceID, id uuid.UUID) (inbox.InboxInternalNote, error)
	DeleteNote(ctx context.Context, workspaceID, id uuid.UUID) error

	CreateTag(ctx context.Context, t *inbox.InboxTag) error
	GetTag(ctx context.Context, workspaceID, id uuid.UUID) (inbox.InboxTag, error)
	ListTags(ctx context.Context, workspaceID uuid.UUID) ([]inbox.InboxTag, error)
	AttachTag(ctx context.Context, itemID, tagID uuid.UUID) error
	DetachTag(ctx context.Context, itemID, tagID uuid.UUID) error
	ListItemTags(ctx context.Context, itemID uuid.UUID) ([]inbox.InboxTag, error)

	CreateSavedReply(ctx context.Context, s *inbox.SavedReply) error
	GetSavedReply(ctx context.Context, workspaceID, id uuid.UUID) (inbox.SavedReply, error)
	ListSavedReplies(ctx context.Context, workspaceID uuid.UUID) ([]inbox.SavedReply, error)
	IncrementSavedReplyUse(ctx context.Context, id uuid.UUID) error

	UpsertContact(ctx context.Context, c *inbox.InboxContact) error
	GetContact(ctx context.Context, workspaceID uuid.UUID, platform, externalID string) (inbox.InboxContact, error)
}

type AutomationRepository interface {
	Create(ctx context.Context, r *automation.Rule) error
	GetByID(ctx context.Context, workspaceID, id uuid.UUID) (automation.Rule, error)
	Update(ctx context.Context, r automation.Rule) error
	Delete(ctx context.Context, workspaceID, id uuid.UUID) error
	List(ctx context.Context, workspaceID uuid.UUID) ([]automation.Rule, error)
	ListActive(ctx context.Context, workspaceID uuid.UUID) ([]automation.Rule, error)
	IncrementExecutionCount(ctx context.Context, id uuid.UUID) error
}

type MetricsRepository interface {
	CreatePostTarget(ctx context.Context, p *metrics.PostTarget) error
	GetPostTarget(ctx context.Context, workspaceID, id uuid.UUID) (metrics.PostTarget, error)
	GetPostTargetByPlatformPostID(ctx context.Context, socialAccountID uuid.UUID, platformPostID string) (metrics.PostTarget, error)
	ListPostTargets(ctx context.Context, workspaceID uuid.UUID) ([]metrics.PostTarget, error)
	CreateSnapshot(ctx context.Context, s *metrics.PostMetricSnapshot) error
	ListSnapshots(ctx context.Context, workspaceID, postTargetID uuid.UUID, since time.Time) ([]metrics.PostMetricSnapshot, error)
	BackfillEngagementRate(ctx context.Context, id uuid.UUID, rate float64) error
}

type NotificationRepository interface {
	Create(ctx context.Context, n *notification.Notification) error
	ListByUser(ctx context.Context, workspaceID, userID uuid.UUID, page, limit int) ([]notification.Notification, int64, error)
}

type JobRepository interface {
	Enqueue(ctx context.Context, j *job.Job) error
	GetPending(ctx context.Context, limit int) ([]job.Job, error)
	MarkProcessing(ctx context.Context, id uuid.UUID) error
	MarkCompleted(ctx context.Context, id uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID, errorMsg string) error
	Reschedule(ctx context.Context, id uuid.UUID, runAfter time.Time) error
}
