package inbox

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Transition methods consult the transition table and mutate the item in
// place. An illegal transition is a no-op returning false; callers check
// the result (or the resulting status) instead of handling an error.

// MarkRead moves UNREAD → READ.
func (i *InboxItem) MarkRead(now time.Time) bool {
	if !i.Status.CanTransitionTo(StatusRead) {
		return false
	}
	i.Status = StatusRead
	i.UpdatedAt = now
	return true
}

// Resolve moves READ → RESOLVED and stamps the resolution fields.
// resolvedBy may be invalid for system actors (automation, sweeps).
func (i *InboxItem) Resolve(now time.Time, resolvedBy uuid.NullUUID) bool {
	if !i.Status.CanTransitionTo(StatusResolved) {
		return false
	}
	i.Status = StatusResolved
	i.ResolvedAt = sql.NullTime{Time: now, Valid: true}
	i.ResolvedByUserID = resolvedBy
	i.UpdatedAt = now
	return true
}

// Reopen moves RESOLVED → READ and clears the resolution fields.
func (i *InboxItem) Reopen(now time.Time) bool {
	if i.Status != StatusResolved || !i.Status.CanTransitionTo(StatusRead) {
		return false
	}
	i.Status = StatusRead
	i.ResolvedAt = sql.NullTime{}
	i.ResolvedByUserID = uuid.NullUUID{}
	i.UpdatedAt = now
	return true
}

// Archive moves RESOLVED → ARCHIVED. The table alone enforces the
// prior-resolution requirement.
func (i *InboxItem) Archive(now time.Time) bool {
	if !i.Status.CanTransitionTo(StatusArchived) {
		return false
	}
	i.Status = StatusArchived
	i.ArchivedAt = sql.NullTime{Time: now, Valid: true}
	i.UpdatedAt = now
	return true
}

// AssignTo sets the assignee. Assignment is orthogonal to status and is
// legal in any state.
func (i *InboxItem) AssignTo(userID uuid.UUID, now time.Time) {
	i.AssignedToUserID = uuid.NullUUID{UUID: userID, Valid: true}
	i.AssignedAt = sql.NullTime{Time: now, Valid: true}
	i.UpdatedAt = now
}

// Unassign clears the assignee.
func (i *InboxItem) Unassign(now time.Time) {
	i.AssignedToUserID = uuid.NullUUID{}
	i.AssignedAt = sql.NullTime{}
	i.UpdatedAt = now
}
