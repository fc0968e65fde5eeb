package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"socialflow/internal/adapter"
	"socialflow/internal/domain/account"
	"socialflow/internal/domain/inbox"
	"socialflow/internal/domain/job"
	"socialflow/internal/domain/notification"
	"socialflow/internal/repository"
	flow_errors "socialflow/pkg/errors"
	"socialflow/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeSender struct {
	platform account.Platform
	replyID  string
	err      error
	calls    int
}

func (f *fakeSender) Platform() account.Platform { return f.platform }

func (f *fakeSender) SendReply(ctx context.Context, acct account.SocialAccount, externalItemID, text string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.replyID, nil
}

func newReplyService(t *testing.T, db *gorm.DB, sender *fakeSender) *ReplyService {
	t.Helper()
	return NewReplyService(
		repository.NewReplyRepository(db),
		repository.NewInboxItemRepository(db),
		repository.NewAccountRepository(db),
		repository.NewNotificationRepository(db),
		repository.NewJobRepository(db),
		adapter.NewReplyRegistry(sender),
		nil,
		logger.New(logger.DevelopmentMode),
		5*time.Second,
	)
}

func seedAccount(t *testing.T, db *gorm.DB, workspaceID uuid.UUID, status account.Status, token string) account.SocialAccount {
	t.Helper()
	acct := account.SocialAccount{
		ID:                uuid.New(),
		WorkspaceID:       workspaceID,
		Platform:          account.PlatformFacebook,
		ExternalAccountID: "page-1",
		Status:            status,
		AccessToken:       token,
		WebhookSecret:     "s3cret",
	}
	require.NoError(t, db.Create(&acct).Error)
	return acct
}

func seedReplyableItem(t *testing.T, db *gorm.DB, workspaceID uuid.UUID, acct account.SocialAccount, itemType inbox.ItemType) inbox.InboxItem {
	t.Helper()
	item := inbox.InboxItem{
		ID:                uuid.New(),
		WorkspaceID:       workspaceID,
		SocialAccountID:   acct.ID,
		PlatformItemID:    uuid.NewString(),
		ItemType:          itemType,
		Status:            inbox.StatusRead,
		ContentText:       "customer question",
		PlatformCreatedAt: time.Now(),
		Metadata:          "{}",
	}
	require.NoError(t, db.Create(&item).Error)
	return item
}

func TestCreateReplyValidation(t *testing.T) {
	db := newTestDB(t)
	sender := &fakeSender{platform: account.PlatformFacebook, replyID: "ext-1"}
	svc := newReplyService(t, db, sender)
	ctx := context.Background()
	workspaceID := uuid.New()
	acct := seedAccount(t, db, workspaceID, account.StatusConnected, "tok")

	item := seedReplyableItem(t, db, workspaceID, acct, inbox.ItemTypeComment)
	_, err := svc.Create(ctx, workspaceID, item.ID, uuid.New(), "   ")
	assert.ErrorIs(t, err, flow_errors.ErrInvalidInput)

	story := seedReplyableItem(t, db, workspaceID, acct, inbox.ItemTypeStoryMention)
	_, err = svc.Create(ctx, workspaceID, story.ID, uuid.New(), "hi")
	assert.ErrorIs(t, err, flow_errors.ErrNotReplyable)
}

func TestCreateReplyRequiresUsableToken(t *testing.T) {
	db := newTestDB(t)
	svc := newReplyService(t, db, &fakeSender{platform: account.PlatformFacebook})
	ctx := context.Background()
	workspaceID := uuid.New()
	acct := seedAccount(t, db, workspaceID, account.StatusTokenExpired, "tok")
	item := seedReplyableItem(t, db, workspaceID, acct, inbox.ItemTypeComment)

	_, err := svc.Create(ctx, workspaceID, item.ID, uuid.New(), "hi")
	assert.ErrorIs(t, err, flow_errors.ErrMissingCredential)
}

func TestCreateReplyEnqueuesDispatch(t *testing.T) {
	db := newTestDB(t)
	svc := newReplyService(t, db, &fakeSender{platform: account.PlatformFacebook})
	ctx := context.Background()
	workspaceID := uuid.New()
	acct := seedAccount(t, db, workspaceID, account.StatusConnected, "tok")
	item := seedReplyableItem(t, db, workspaceID, acct, inbox.ItemTypeComment)

	reply, err := svc.Create(ctx, workspaceID, item.ID, uuid.New(), "on it!")
	require.NoError(t, err)
	assert.False(t, reply.Sent())

	var jobs []job.Job
	require.NoError(t, db.Where("job_type = ?", job.TypeReplyDispatch).Find(&jobs).Error)
	require.Len(t, jobs, 1)
	assert.Equal(t, reply.ID.String(), jobs[0].AggregateID)
}

func TestDispatchMarksSentAndIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	sender := &fakeSender{platform: account.PlatformFacebook, replyID: "ext-9"}
	svc := newReplyService(t, db, sender)
	ctx := context.Background()
	workspaceID := uuid.New()
	acct := seedAccount(t, db, workspaceID, account.StatusConnected, "tok")
	item := seedReplyableItem(t, db, workspaceID, acct, inbox.ItemTypeComment)

	reply, err := svc.Create(ctx, workspaceID, item.ID, uuid.New(), "on it!")
	require.NoError(t, err)

	require.NoError(t, svc.Dispatch(ctx, workspaceID, reply.ID))
	got, err := svc.Get(ctx, workspaceID, reply.ID)
	require.NoError(t, err)
	assert.True(t, got.Sent())
	assert.Equal(t, "ext-9", got.PlatformReplyID.String)

	// Redelivered job must not double-post.
	require.NoError(t, svc.Dispatch(ctx, workspaceID, reply.ID))
	assert.Equal(t, 1, sender.calls)
}

func TestDispatchRecordsPlatformRejection(t *testing.T) {
	db := newTestDB(t)
	sender := &fakeSender{platform: account.PlatformFacebook, err: errors.New("platform rejected the request: status 400")}
	svc := newReplyService(t, db, sender)
	ctx := context.Background()
	workspaceID := uuid.New()
	acct := seedAccount(t, db, workspaceID, account.StatusConnected, "tok")
	item := seedReplyableItem(t, db, workspaceID, acct, inbox.ItemTypeComment)
	userID := uuid.New()

	reply, err := svc.Create(ctx, workspaceID, item.ID, userID, "on it!")
	require.NoError(t, err)

	// Terminal outcome, not an infrastructure error: the job must not retry.
	require.NoError(t, svc.Dispatch(ctx, workspaceID, reply.ID))

	got, err := svc.Get(ctx, workspaceID, reply.ID)
	require.NoError(t, err)
	assert.False(t, got.Sent())
	require.True(t, got.FailedAt.Valid)
	assert.Contains(t, got.FailureReason.String, "rejected")

	var notifs []notification.Notification
	require.NoError(t, db.Where("user_id = ? AND type = ?", userID, notification.TypeReplyFailed).Find(&notifs).Error)
	assert.Len(t, notifs, 1)
}

func TestDispatchRecordsCredentialLoss(t *testing.T) {
	db := newTestDB(t)
	sender := &fakeSender{platform: account.PlatformFacebook, replyID: "ext-9"}
	svc := newReplyService(t, db, sender)
	ctx := context.Background()
	workspaceID := uuid.New()
	acct := seedAccount(t, db, workspaceID, account.StatusConnected, "tok")
	item := seedReplyableItem(t, db, workspaceID, acct, inbox.ItemTypeComment)

	reply, err := svc.Create(ctx, workspaceID, item.ID, uuid.New(), "on it!")
	require.NoError(t, err)

	// Token revoked between create and dispatch.
	require.NoError(t, db.Model(&account.SocialAccount{}).Where("id = ?", acct.ID).Update("status", account.StatusRevoked).Error)

	require.NoError(t, svc.Dispatch(ctx, workspaceID, reply.ID))
	got, err := svc.Get(ctx, workspaceID, reply.ID)
	require.NoError(t, err)
	require.True(t, got.FailedAt.Valid)
	assert.Zero(t, sender.calls)
}
