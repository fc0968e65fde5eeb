package automation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	rule "socialflow/internal/domain/automation"
	"socialflow/internal/domain/inbox"
	"socialflow/internal/domain/job"
	"socialflow/internal/domain/notification"
	"socialflow/internal/repository"
	flow_errors "socialflow/pkg/errors"
	"socialflow/pkg/logger"

	"github.com/google/uuid"
)

// Engine evaluates workspace automation rules against a newly ingested
// item. All dependencies are passed in at construction so evaluation is
// deterministic and testable in isolation.
type Engine struct {
	rules   repository.AutomationRepository
	items   repository.InboxItemRepository
	collab  repository.CollabRepository
	replies repository.ReplyRepository
	notifs  repository.NotificationRepository
	jobs    repository.JobRepository
	log     *logger.Logger
	now     func() time.Time
}

func NewEngine(
	rules repository.AutomationRepository,
	items repository.InboxItemRepository,
	collab repository.CollabRepository,
	replies repository.ReplyRepository,
	notifs repository.NotificationRepository,
	jobs repository.JobRepository,
	log *logger.Logger,
) *Engine {
	return &Engine{
		rules:   rules,
		items:   items,
		collab:  collab,
		replies: replies,
		notifs:  notifs,
		jobs:    jobs,
		log:     log,
		now:     time.Now,
	}
}

// WithClock overrides the engine clock, for tests.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// Evaluate runs all active rules for the item's workspace in
// (priority DESC, created_at ASC, id ASC) order and returns the ids of
// the rules that fired, in execution order.
//
// Every matching rule fires: priority governs order, not exclusivity, so
// a high-priority auto-resolve runs before a low-priority rule that
// inspects the post-resolve state. A failing action is logged and skipped
// without aborting its siblings. Actions that mutate the item do not
// re-trigger evaluation within the pass.
func (e *Engine) Evaluate(ctx context.Context, item inbox.InboxItem) ([]uuid.UUID, error) {
	active, err := e.rules.ListActive(ctx, item.WorkspaceID)
	if err != nil {
		return nil, err
	}

	var fired []uuid.UUID
	for _, r := range active {
		matched, err := e.matches(r, item)
		if err != nil {
			e.log.Errorf("rule %s has invalid conditions: %v", r.ID, err)
			continue
		}
		if !matched {
			continue
		}
		if err := e.execute(ctx, r, &item); err != nil {
			e.log.Errorf("rule %s action %s failed on item %s: %v", r.ID, r.ActionType, item.ID, err)
			continue
		}
		if err := e.rules.IncrementExecutionCount(ctx, r.ID); err != nil {
			e.log.Errorf("execution count bump for rule %s failed: %v", r.ID, err)
		}
		fired = append(fired, r.ID)
	}
	return fired, nil
}

// DryRun reports which active rules would fire for the item without
// executing any action or touching counters. Backs the manual
// rule-testing endpoint.
func (e *Engine) DryRun(ctx context.Context, item inbox.InboxItem) ([]uuid.UUID, error) {
	active, err := e.rules.ListActive(ctx, item.WorkspaceID)
	if err != nil {
		return nil, err
	}
	var matchedIDs []uuid.UUID
	for _, r := range active {
		matched, err := e.matches(r, item)
		if err != nil {
			continue
		}
		if matched {
			matchedIDs = append(matchedIDs, r.ID)
		}
	}
	return matchedIDs, nil
}

// matches checks the rule trigger against the item. The trigger type
// narrows which items are candidates; the condition list must then match
// in full.
func (e *Engine) matches(r rule.Rule, item inbox.InboxItem) (bool, error) {
	conds, err := r.Conditions()
	if err != nil {
		return false, err
	}
	switch r.TriggerType {
	case rule.TriggerItemCreated:
		// Fires for every ingested item, subject to conditions.
	case rule.TriggerKeywordMatch, rule.TriggerSenderMatch, rule.TriggerItemType:
		if len(conds) == 0 {
			return false, fmt.Errorf("trigger %s requires conditions", r.TriggerType)
		}
	default:
		return false, fmt.Errorf("unknown trigger type %q", r.TriggerType)
	}

	for _, cond := range conds {
		ok, err := matchCondition(cond, item)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func matchCondition(cond rule.Condition, item inbox.InboxItem) (bool, error) {
	value, err := fieldValue(cond.Field, item)
	if err != nil {
		return false, err
	}
	switch cond.Operator {
	case rule.OpEquals:
		return strings.EqualFold(value, cond.Value), nil
	case rule.OpContains:
		return strings.Contains(strings.ToLower(value), strings.ToLower(cond.Value)), nil
	case rule.OpRegex:
		re, err := regexp.Compile(cond.Value)
		if err != nil {
			return false, fmt.Errorf("invalid regex %q: %w", cond.Value, err)
		}
		return re.MatchString(value), nil
	}
	return false, fmt.Errorf("unknown operator %q", cond.Operator)
}

func fieldValue(field string, item inbox.InboxItem) (string, error) {
	switch field {
	case "content_text":
		return item.ContentText, nil
	case "item_type":
		return string(item.ItemType), nil
	case "author_name":
		return item.AuthorName, nil
	case "author_username":
		return item.AuthorUsername.String, nil
	case "author_external_id":
		return item.AuthorExternalID.String, nil
	}
	return "", fmt.Errorf("unknown condition field %q", field)
}

func (e *Engine) execute(ctx context.Context, r rule.Rule, item *inbox.InboxItem) error {
	params, err := r.Params()
	if err != nil {
		return err
	}
	switch r.ActionType {
	case rule.ActionAssign:
		return e.executeAssign(ctx, params, item)
	case rule.ActionTag:
		return e.executeTag(ctx, params, item)
	case rule.ActionReply:
		return e.executeReply(ctx, params, item)
	case rule.ActionResolve:
		return e.executeResolve(ctx, item)
	case rule.ActionNotify:
		return e.executeNotify(ctx, r, params, item)
	}
	return fmt.Errorf("unknown action type %q", r.ActionType)
}

func (e *Engine) executeAssign(ctx context.Context, params rule.ActionParams, item *inbox.InboxItem) error {
	if params.AssignToUserID == nil {
		return errors.New("assign action missing assign_to_user_id")
	}
	item.AssignTo(*params.AssignToUserID, e.now())
	if err := e.items.Update(ctx, *item); err != nil {
		return err
	}
	n := &notification.Notification{
		ID:          uuid.New(),
		WorkspaceID: item.WorkspaceID,
		UserID:      *params.AssignToUserID,
		Type:        notification.TypeItemAssigned,
		Title:       "New inbox item assigned to you",
		Message:     item.ContentText,
		Data:        fmt.Sprintf(`{"item_id":%q}`, item.ID),
		CreatedAt:   e.now(),
	}
	if err := e.notifs.Create(ctx, n); err != nil {
		e.log.Errorf("assignment notification for item %s failed: %v", item.ID, err)
	}
	return nil
}

func (e *Engine) executeTag(ctx context.Context, params rule.ActionParams, item *inbox.InboxItem) error {
	if params.TagID == nil {
		return errors.New("tag action missing tag_id")
	}
	// The tag must still exist in the item's workspace; a rule referencing
	// a deleted tag fails here and is skipped.
	if _, err := e.collab.GetTag(ctx, item.WorkspaceID, *params.TagID); err != nil {
		return err
	}
	return e.collab.AttachTag(ctx, item.ID, *params.TagID)
}

func (e *Engine) executeReply(ctx context.Context, params rule.ActionParams, item *inbox.InboxItem) error {
	if params.SavedReplyID == nil {
		return errors.New("reply action missing saved_reply_id")
	}
	if !item.ItemType.Replyable() {
		return flow_errors.ErrNotReplyable
	}
	saved, err := e.collab.GetSavedReply(ctx, item.WorkspaceID, *params.SavedReplyID)
	if err != nil {
		return err
	}

	now := e.now()
	reply := &inbox.InboxReply{
		ID:          uuid.New(),
		WorkspaceID: item.WorkspaceID,
		InboxItemID: item.ID,
		UserID:      saved.CreatedBy.UUID,
		Content:     saved.Content,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := e.replies.Create(ctx, reply); err != nil {
		return err
	}
	if err := e.collab.IncrementSavedReplyUse(ctx, saved.ID); err != nil {
		e.log.Errorf("use count bump for saved reply %s failed: %v", saved.ID, err)
	}

	payload, err := json.Marshal(map[string]string{"reply_id": reply.ID.String()})
	if err != nil {
		return err
	}
	return e.jobs.Enqueue(ctx, &job.Job{
		JobType:     job.TypeReplyDispatch,
		WorkspaceID: item.WorkspaceID,
		AggregateID: reply.ID.String(),
		Payload:     payload,
	})
}

// executeResolve walks the item through READ when it is still UNREAD so
// the resolve uses legal transitions only. An item already resolved or
// archived by an earlier rule is left alone; the rule still counts as
// fired and bumps its execution count, the same contract as a tag rule
// whose tag is already attached.
func (e *Engine) executeResolve(ctx context.Context, item *inbox.InboxItem) error {
	now := e.now()
	if item.Status == inbox.StatusUnread {
		item.MarkRead(now)
	}
	if !item.Resolve(now, uuid.NullUUID{}) {
		return nil
	}
	return e.items.Update(ctx, *item)
}

// executeNotify queues the notification rather than writing it inline,
// so delivery survives a crash between rule execution and commit.
func (e *Engine) executeNotify(ctx context.Context, r rule.Rule, params rule.ActionParams, item *inbox.InboxItem) error {
	if params.NotifyUserID == nil {
		return errors.New("notify action missing notify_user_id")
	}
	payload, err := json.Marshal(map[string]string{
		"user_id": params.NotifyUserID.String(),
		"type":    notification.TypeRuleMatched,
		"title":   "Automation rule matched: " + r.Name,
		"message": item.ContentText,
		"data":    fmt.Sprintf(`{"item_id":%q,"rule_id":%q}`, item.ID, r.ID),
	})
	if err != nil {
		return err
	}
	return e.jobs.Enqueue(ctx, &job.Job{
		JobType:     job.TypeNotificationCreate,
		WorkspaceID: item.WorkspaceID,
		AggregateID: item.ID.String(),
		Payload:     payload,
	})
}
