package inbox

// Status is the lifecycle state of an InboxItem.
type Status string

const (
	StatusUnread   Status = "UNREAD"
	StatusRead     Status = "READ"
	StatusResolved Status = "RESOLVED"
	StatusArchived Status = "ARCHIVED"
)

// transitions is the single source of truth for lifecycle legality.
// ARCHIVED is terminal and reachable only from RESOLVED.
var transitions = map[Status][]Status{
	StatusUnread:   {StatusRead},
	StatusRead:     {StatusResolved},
	StatusResolved: {StatusRead, StatusArchived},
	StatusArchived: {},
}

// CanTransition reports whether moving from one status to another is legal.
func CanTransition(from, to Status) bool {
	for _, t := range transitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

// CanTransitionTo reports whether the item may move to the target status.
func (s Status) CanTransitionTo(target Status) bool {
	return CanTransition(s, target)
}
