package inbox

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from    Status
		to      Status
		allowed bool
	}{
		{StatusUnread, StatusRead, true},
		{StatusUnread, StatusResolved, false},
		{StatusUnread, StatusArchived, false},
		{StatusRead, StatusResolved, true},
		{StatusRead, StatusUnread, false},
		{StatusRead, StatusArchived, false},
		{StatusResolved, StatusRead, true},
		{StatusResolved, StatusArchived, true},
		{StatusResolved, StatusUnread, false},
		{StatusArchived, StatusRead, false},
		{StatusArchived, StatusResolved, false},
		{StatusArchived, StatusUnread, false},
	}

	for _, tt := range tests {
		got := CanTransition(tt.from, tt.to)
		assert.Equal(t, tt.allowed, got, "%s -> %s", tt.from, tt.to)
	}
}

func TestResolveOnUnreadIsNoOp(t *testing.T) {
	item := InboxItem{Status: StatusUnread}
	now := time.Now()

	ok := item.Resolve(now, uuid.NullUUID{UUID: uuid.New(), Valid: true})

	assert.False(t, ok)
	assert.Equal(t, StatusUnread, item.Status)
	assert.False(t, item.ResolvedAt.Valid)
	assert.False(t, item.ResolvedByUserID.Valid)
}

func TestResolveStampsResolutionFields(t *testing.T) {
	userID := uuid.New()
	item := InboxItem{Status: StatusRead}
	now := time.Now()

	require.True(t, item.Resolve(now, uuid.NullUUID{UUID: userID, Valid: true}))

	assert.Equal(t, StatusResolved, item.Status)
	assert.True(t, item.ResolvedAt.Valid)
	assert.Equal(t, userID, item.ResolvedByUserID.UUID)
}

func TestReopenClearsResolutionFields(t *testing.T) {
	item := InboxItem{Status: StatusRead}
	now := time.Now()
	require.True(t, item.Resolve(now, uuid.NullUUID{UUID: uuid.New(), Valid: true}))

	require.True(t, item.Reopen(now.Add(time.Minute)))

	assert.Equal(t, StatusRead, item.Status)
	assert.False(t, item.ResolvedAt.Valid)
	assert.False(t, item.ResolvedByUserID.Valid)
}

func TestArchiveRequiresResolved(t *testing.T) {
	now := time.Now()

	unread := InboxItem{Status: StatusUnread}
	assert.False(t, unread.Archive(now))

	read := InboxItem{Status: StatusRead}
	assert.False(t, read.Archive(now))

	resolved := InboxItem{Status: StatusResolved}
	require.True(t, resolved.Archive(now))
	assert.Equal(t, StatusArchived, resolved.Status)
	assert.True(t, resolved.ArchivedAt.Valid)
}

func TestArchivedIsTerminal(t *testing.T) {
	item := InboxItem{Status: StatusArchived}
	now := time.Now()

	assert.False(t, item.MarkRead(now))
	assert.False(t, item.Resolve(now, uuid.NullUUID{}))
	assert.False(t, item.Reopen(now))
	assert.False(t, item.Archive(now))
	assert.Equal(t, StatusArchived, item.Status)
}

func TestAssignmentIsOrthogonalToStatus(t *testing.T) {
	userID := uuid.New()
	now := time.Now()

	for _, status := range []Status{StatusUnread, StatusRead, StatusResolved, StatusArchived} {
		item := InboxItem{Status: status}
		item.AssignTo(userID, now)
		assert.Equal(t, status, item.Status)
		assert.Equal(t, userID, item.AssignedToUserID.UUID)
		assert.True(t, item.AssignedAt.Valid)

		item.Unassign(now)
		assert.False(t, item.AssignedToUserID.Valid)
		assert.False(t, item.AssignedAt.Valid)
	}
}

func TestReplyable(t *testing.T) {
	assert.True(t, ItemTypeComment.Replyable())
	assert.True(t, ItemTypeMention.Replyable())
	assert.True(t, ItemTypeMessage.Replyable())
	assert.True(t, ItemTypeReview.Replyable())
	assert.False(t, ItemTypeStoryMention.Replyable())
}
