package services

import (
	"context"
	"testing"
	"time"

	"socialflow/internal/domain/account"
	"socialflow/internal/domain/inbox"
	"socialflow/internal/domain/job"
	"socialflow/internal/domain/metrics"
	"socialflow/internal/domain/notification"
	"socialflow/internal/repository"
	flow_errors "socialflow/pkg/errors"
	"socialflow/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&account.SocialAccount{},
		&inbox.InboxItem{},
		&inbox.InboxConversation{},
		&inbox.InboxReply{},
		&inbox.InboxContact{},
		&metrics.PostTarget{},
		&metrics.PostMetricSnapshot{},
		&notification.Notification{},
		&job.Job{},
	))
	return db
}

func newInboxService(t *testing.T, db *gorm.DB) *InboxService {
	t.Helper()
	return NewInboxService(
		repository.NewInboxItemRepository(db),
		repository.NewConversationRepository(db),
		repository.NewNotificationRepository(db),
		nil,
		logger.New(logger.DevelopmentMode),
	)
}

func seedItem(t *testing.T, db *gorm.DB, workspaceID uuid.UUID, status inbox.Status) inbox.InboxItem {
	t.Helper()
	item := inbox.InboxItem{
		ID:                uuid.New(),
		WorkspaceID:       workspaceID,
		SocialAccountID:   uuid.New(),
		PlatformItemID:    uuid.NewString(),
		ItemType:          inbox.ItemTypeComment,
		Status:            status,
		ContentText:       "test item",
		PlatformCreatedAt: time.Now(),
		Metadata:          "{}",
	}
	require.NoError(t, db.Create(&item).Error)
	return item
}

func TestResolveReopenRoundTrip(t *testing.T) {
	db := newTestDB(t)
	svc := newInboxService(t, db)
	ctx := context.Background()
	workspaceID := uuid.New()
	userID := uuid.New()
	item := seedItem(t, db, workspaceID, inbox.StatusRead)

	resolved, err := svc.Resolve(ctx, workspaceID, item.ID, userID)
	require.NoError(t, err)
	assert.Equal(t, inbox.StatusResolved, resolved.Status)
	require.True(t, resolved.ResolvedByUserID.Valid)
	assert.Equal(t, userID, resolved.ResolvedByUserID.UUID)

	reopened, err := svc.Reopen(ctx, workspaceID, item.ID)
	require.NoError(t, err)
	assert.Equal(t, inbox.StatusRead, reopened.Status)
	assert.False(t, reopened.ResolvedAt.Valid)
	assert.False(t, reopened.ResolvedByUserID.Valid)
}

func TestResolveOnUnreadIsSilentNoOp(t *testing.T) {
	db := newTestDB(t)
	svc := newInboxService(t, db)
	ctx := context.Background()
	workspaceID := uuid.New()
	item := seedItem(t, db, workspaceID, inbox.StatusUnread)

	got, err := svc.Resolve(ctx, workspaceID, item.ID, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, inbox.StatusUnread, got.Status)

	var stored inbox.InboxItem
	require.NoError(t, db.First(&stored, "id = ?", item.ID).Error)
	assert.Equal(t, inbox.StatusUnread, stored.Status)
}

func TestMarkReadIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	svc := newInboxService(t, db)
	ctx := context.Background()
	workspaceID := uuid.New()
	item := seedItem(t, db, workspaceID, inbox.StatusUnread)

	first, err := svc.MarkAsRead(ctx, workspaceID, item.ID)
	require.NoError(t, err)
	assert.Equal(t, inbox.StatusRead, first.Status)

	second, err := svc.MarkAsRead(ctx, workspaceID, item.ID)
	require.NoError(t, err)
	assert.Equal(t, inbox.StatusRead, second.Status)
}

func TestArchiveOnlyFromResolved(t *testing.T) {
	db := newTestDB(t)
	svc := newInboxService(t, db)
	ctx := context.Background()
	workspaceID := uuid.New()

	read := seedItem(t, db, workspaceID, inbox.StatusRead)
	got, err := svc.Archive(ctx, workspaceID, read.ID)
	require.NoError(t, err)
	assert.Equal(t, inbox.StatusRead, got.Status)

	resolved := seedItem(t, db, workspaceID, inbox.StatusResolved)
	got, err = svc.Archive(ctx, workspaceID, resolved.ID)
	require.NoError(t, err)
	assert.Equal(t, inbox.StatusArchived, got.Status)
	assert.True(t, got.ArchivedAt.Valid)
}

func TestCrossWorkspaceLookupIsNotFound(t *testing.T) {
	db := newTestDB(t)
	svc := newInboxService(t, db)
	ctx := context.Background()
	item := seedItem(t, db, uuid.New(), inbox.StatusRead)

	otherWorkspace := uuid.New()
	_, err := svc.Get(ctx, otherWorkspace, item.ID)
	assert.ErrorIs(t, err, flow_errors.ErrNotFound)

	_, err = svc.Resolve(ctx, otherWorkspace, item.ID, uuid.New())
	assert.ErrorIs(t, err, flow_errors.ErrNotFound)
}

func TestBulkResolveCountsOnlyMutatedItems(t *testing.T) {
	db := newTestDB(t)
	svc := newInboxService(t, db)
	ctx := context.Background()
	workspaceID := uuid.New()

	ids := []uuid.UUID{
		seedItem(t, db, workspaceID, inbox.StatusRead).ID,
		seedItem(t, db, workspaceID, inbox.StatusRead).ID,
		seedItem(t, db, workspaceID, inbox.StatusRead).ID,
		seedItem(t, db, workspaceID, inbox.StatusUnread).ID,
		seedItem(t, db, workspaceID, inbox.StatusArchived).ID,
	}

	mutated, err := svc.BulkResolve(ctx, workspaceID, ids, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, 3, mutated)

	var count int64
	require.NoError(t, db.Model(&inbox.InboxItem{}).Where("status = ?", inbox.StatusResolved).Count(&count).Error)
	assert.Equal(t, int64(3), count)
}

func TestBulkResolveIgnoresForeignWorkspaceItems(t *testing.T) {
	db := newTestDB(t)
	svc := newInboxService(t, db)
	ctx := context.Background()
	workspaceID := uuid.New()

	mine := seedItem(t, db, workspaceID, inbox.StatusRead)
	theirs := seedItem(t, db, uuid.New(), inbox.StatusRead)

	mutated, err := svc.BulkResolve(ctx, workspaceID, []uuid.UUID{mine.ID, theirs.ID}, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, 1, mutated)

	var stored inbox.InboxItem
	require.NoError(t, db.First(&stored, "id = ?", theirs.ID).Error)
	assert.Equal(t, inbox.StatusRead, stored.Status)
}

func TestAssignCreatesNotification(t *testing.T) {
	db := newTestDB(t)
	svc := newInboxService(t, db)
	ctx := context.Background()
	workspaceID := uuid.New()
	assignee := uuid.New()
	item := seedItem(t, db, workspaceID, inbox.StatusUnread)

	got, err := svc.Assign(ctx, workspaceID, item.ID, assignee)
	require.NoError(t, err)
	require.True(t, got.AssignedToUserID.Valid)
	assert.Equal(t, assignee, got.AssignedToUserID.UUID)
	// Status untouched by assignment.
	assert.Equal(t, inbox.StatusUnread, got.Status)

	var notifs []notification.Notification
	require.NoError(t, db.Where("user_id = ?", assignee).Find(&notifs).Error)
	require.Len(t, notifs, 1)
	assert.Equal(t, notification.TypeItemAssigned, notifs[0].Type)

	unassigned, err := svc.Unassign(ctx, workspaceID, item.ID)
	require.NoError(t, err)
	assert.False(t, unassigned.AssignedToUserID.Valid)
}
