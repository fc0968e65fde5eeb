package automation

import (
	"context"
	"fmt"
	"testing"
	"time"

	rule "socialflow/internal/domain/automation"
	"socialflow/internal/domain/inbox"
	"socialflow/internal/domain/job"
	"socialflow/internal/domain/notification"
	"socialflow/internal/repository"
	"socialflow/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type engineFixture struct {
	engine *Engine
	db     *gorm.DB
	rules  repository.AutomationRepository
}

func setupEngine(t *testing.T) *engineFixture {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&rule.Rule{},
		&inbox.InboxItem{},
		&inbox.InboxTag{},
		&inbox.InboxItemTag{},
		&inbox.SavedReply{},
		&inbox.InboxReply{},
		&notification.Notification{},
		&job.Job{},
	))

	rules := repository.NewAutomationRepository(db)
	e := NewEngine(
		rules,
		repository.NewInboxItemRepository(db),
		repository.NewCollabRepository(db),
		repository.NewReplyRepository(db),
		repository.NewNotificationRepository(db),
		repository.NewJobRepository(db),
		logger.New(logger.DevelopmentMode),
	)
	return &engineFixture{engine: e, db: db, rules: rules}
}

func (f *engineFixture) seedItem(t *testing.T, workspaceID uuid.UUID, itemType inbox.ItemType, content string) inbox.InboxItem {
	t.Helper()
	item := inbox.InboxItem{
		ID:                uuid.New(),
		WorkspaceID:       workspaceID,
		SocialAccountID:   uuid.New(),
		PlatformItemID:    uuid.NewString(),
		ItemType:          itemType,
		Status:            inbox.StatusUnread,
		AuthorName:        "Jamie",
		ContentText:       content,
		PlatformCreatedAt: time.Now(),
		Metadata:          "{}",
	}
	require.NoError(t, f.db.Create(&item).Error)
	return item
}

func (f *engineFixture) seedRule(t *testing.T, r rule.Rule) rule.Rule {
	t.Helper()
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.TriggerConditions == "" {
		r.TriggerConditions = "[]"
	}
	if r.ActionParams == "" {
		r.ActionParams = "{}"
	}
	r.IsActive = true
	require.NoError(t, f.db.Create(&r).Error)
	return r
}

func (f *engineFixture) seedTag(t *testing.T, workspaceID uuid.UUID, name string) inbox.InboxTag {
	t.Helper()
	tag := inbox.InboxTag{ID: uuid.New(), WorkspaceID: workspaceID, Name: name}
	require.NoError(t, f.db.Create(&tag).Error)
	return tag
}

func TestEvaluateFiresAllMatchingRulesInPriorityOrder(t *testing.T) {
	f := setupEngine(t)
	workspaceID := uuid.New()
	item := f.seedItem(t, workspaceID, inbox.ItemTypeComment, "need help")

	tagA := f.seedTag(t, workspaceID, "urgent")
	tagB := f.seedTag(t, workspaceID, "support")

	low := f.seedRule(t, rule.Rule{
		WorkspaceID:  workspaceID,
		Name:         "low",
		TriggerType:  rule.TriggerItemCreated,
		ActionType:   rule.ActionTag,
		ActionParams: fmt.Sprintf(`{"tag_id":%q}`, tagB.ID),
		Priority:     1,
	})
	high := f.seedRule(t, rule.Rule{
		WorkspaceID:  workspaceID,
		Name:         "high",
		TriggerType:  rule.TriggerItemCreated,
		ActionType:   rule.ActionTag,
		ActionParams: fmt.Sprintf(`{"tag_id":%q}`, tagA.ID),
		Priority:     10,
	})

	fired, err := f.engine.Evaluate(context.Background(), item)
	require.NoError(t, err)
	require.Equal(t, []uuid.UUID{high.ID, low.ID}, fired)

	var tagged []inbox.InboxItemTag
	require.NoError(t, f.db.Where("inbox_item_id = ?", item.ID).Find(&tagged).Error)
	assert.Len(t, tagged, 2)

	for _, id := range []uuid.UUID{high.ID, low.ID} {
		got, err := f.rules.GetByID(context.Background(), workspaceID, id)
		require.NoError(t, err)
		assert.Equal(t, int64(1), got.ExecutionCount)
	}
}

func TestEvaluateAutoResolveUsesLegalTransitions(t *testing.T) {
	f := setupEngine(t)
	workspaceID := uuid.New()
	item := f.seedItem(t, workspaceID, inbox.ItemTypeComment, "thanks, all sorted")

	resolve := f.seedRule(t, rule.Rule{
		WorkspaceID:       workspaceID,
		Name:              "auto-resolve thanks",
		TriggerType:       rule.TriggerKeywordMatch,
		TriggerConditions: `[{"field":"content_text","operator":"contains","value":"thanks"}]`,
		ActionType:        rule.ActionResolve,
		Priority:          5,
	})

	fired, err := f.engine.Evaluate(context.Background(), item)
	require.NoError(t, err)
	require.Equal(t, []uuid.UUID{resolve.ID}, fired)

	var got inbox.InboxItem
	require.NoError(t, f.db.First(&got, "id = ?", item.ID).Error)
	assert.Equal(t, inbox.StatusResolved, got.Status)
	assert.True(t, got.ResolvedAt.Valid)
	// System resolution carries no user.
	assert.False(t, got.ResolvedByUserID.Valid)
}

func TestEvaluateResolveCountsMatchEvenWhenAlreadyResolved(t *testing.T) {
	f := setupEngine(t)
	workspaceID := uuid.New()
	item := f.seedItem(t, workspaceID, inbox.ItemTypeComment, "thanks again")

	first := f.seedRule(t, rule.Rule{
		WorkspaceID:       workspaceID,
		Name:              "resolve first",
		TriggerType:       rule.TriggerKeywordMatch,
		TriggerConditions: `[{"field":"content_text","operator":"contains","value":"thanks"}]`,
		ActionType:        rule.ActionResolve,
		Priority:          10,
	})
	second := f.seedRule(t, rule.Rule{
		WorkspaceID:       workspaceID,
		Name:              "resolve second",
		TriggerType:       rule.TriggerKeywordMatch,
		TriggerConditions: `[{"field":"content_text","operator":"contains","value":"thanks"}]`,
		ActionType:        rule.ActionResolve,
		Priority:          1,
	})

	fired, err := f.engine.Evaluate(context.Background(), item)
	require.NoError(t, err)
	// The second rule's resolve is a no-op, but the match still fires.
	require.Equal(t, []uuid.UUID{first.ID, second.ID}, fired)

	for _, id := range []uuid.UUID{first.ID, second.ID} {
		got, err := f.rules.GetByID(context.Background(), workspaceID, id)
		require.NoError(t, err)
		assert.Equal(t, int64(1), got.ExecutionCount)
	}

	var got inbox.InboxItem
	require.NoError(t, f.db.First(&got, "id = ?", item.ID).Error)
	assert.Equal(t, inbox.StatusResolved, got.Status)
}

func TestEvaluateSkipsFailingRuleAndContinues(t *testing.T) {
	f := setupEngine(t)
	workspaceID := uuid.New()
	item := f.seedItem(t, workspaceID, inbox.ItemTypeComment, "hello")

	// References a tag that does not exist, so the action fails.
	broken := f.seedRule(t, rule.Rule{
		WorkspaceID:  workspaceID,
		Name:         "broken",
		TriggerType:  rule.TriggerItemCreated,
		ActionType:   rule.ActionTag,
		ActionParams: fmt.Sprintf(`{"tag_id":%q}`, uuid.New()),
		Priority:     10,
	})
	notifyUser := uuid.New()
	working := f.seedRule(t, rule.Rule{
		WorkspaceID:  workspaceID,
		Name:         "working",
		TriggerType:  rule.TriggerItemCreated,
		ActionType:   rule.ActionNotify,
		ActionParams: fmt.Sprintf(`{"notify_user_id":%q}`, notifyUser),
		Priority:     1,
	})

	fired, err := f.engine.Evaluate(context.Background(), item)
	require.NoError(t, err)
	require.Equal(t, []uuid.UUID{working.ID}, fired)

	got, err := f.rules.GetByID(context.Background(), workspaceID, broken.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), got.ExecutionCount)

	var jobs []job.Job
	require.NoError(t, f.db.Where("job_type = ?", job.TypeNotificationCreate).Find(&jobs).Error)
	assert.Len(t, jobs, 1)
}

func TestEvaluateConditionOperators(t *testing.T) {
	f := setupEngine(t)
	workspaceID := uuid.New()
	item := f.seedItem(t, workspaceID, inbox.ItemTypeReview, "Great REFUND experience")

	notifyUser := uuid.New()
	params := fmt.Sprintf(`{"notify_user_id":%q}`, notifyUser)

	equals := f.seedRule(t, rule.Rule{
		WorkspaceID:       workspaceID,
		Name:              "equals",
		TriggerType:       rule.TriggerItemType,
		TriggerConditions: `[{"field":"item_type","operator":"equals","value":"REVIEW"}]`,
		ActionType:        rule.ActionNotify,
		ActionParams:      params,
		Priority:          30,
	})
	contains := f.seedRule(t, rule.Rule{
		WorkspaceID:       workspaceID,
		Name:              "contains",
		TriggerType:       rule.TriggerKeywordMatch,
		TriggerConditions: `[{"field":"content_text","operator":"contains","value":"refund"}]`,
		ActionType:        rule.ActionNotify,
		ActionParams:      params,
		Priority:          20,
	})
	regex := f.seedRule(t, rule.Rule{
		WorkspaceID:       workspaceID,
		Name:              "regex",
		TriggerType:       rule.TriggerKeywordMatch,
		TriggerConditions: `[{"field":"content_text","operator":"regex","value":"^Great"}]`,
		ActionType:        rule.ActionNotify,
		ActionParams:      params,
		Priority:          10,
	})
	f.seedRule(t, rule.Rule{
		WorkspaceID:       workspaceID,
		Name:              "no match",
		TriggerType:       rule.TriggerSenderMatch,
		TriggerConditions: `[{"field":"author_name","operator":"equals","value":"someone else"}]`,
		ActionType:        rule.ActionNotify,
		ActionParams:      params,
		Priority:          5,
	})

	fired, err := f.engine.Evaluate(context.Background(), item)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{equals.ID, contains.ID, regex.ID}, fired)
}

func TestEvaluateIgnoresInactiveRules(t *testing.T) {
	f := setupEngine(t)
	workspaceID := uuid.New()
	item := f.seedItem(t, workspaceID, inbox.ItemTypeComment, "hello")

	inactive := f.seedRule(t, rule.Rule{
		WorkspaceID:  workspaceID,
		Name:         "inactive",
		TriggerType:  rule.TriggerItemCreated,
		ActionType:   rule.ActionNotify,
		ActionParams: fmt.Sprintf(`{"notify_user_id":%q}`, uuid.New()),
	})
	require.NoError(t, f.db.Model(&rule.Rule{}).Where("id = ?", inactive.ID).Update("is_active", false).Error)

	fired, err := f.engine.Evaluate(context.Background(), item)
	require.NoError(t, err)
	assert.Empty(t, fired)
}

func TestEvaluateAssignAction(t *testing.T) {
	f := setupEngine(t)
	workspaceID := uuid.New()
	assignee := uuid.New()
	item := f.seedItem(t, workspaceID, inbox.ItemTypeComment, "assign me")

	f.seedRule(t, rule.Rule{
		WorkspaceID:  workspaceID,
		Name:         "route to agent",
		TriggerType:  rule.TriggerItemCreated,
		ActionType:   rule.ActionAssign,
		ActionParams: fmt.Sprintf(`{"assign_to_user_id":%q}`, assignee),
	})

	_, err := f.engine.Evaluate(context.Background(), item)
	require.NoError(t, err)

	var got inbox.InboxItem
	require.NoError(t, f.db.First(&got, "id = ?", item.ID).Error)
	require.True(t, got.AssignedToUserID.Valid)
	assert.Equal(t, assignee, got.AssignedToUserID.UUID)

	var notifs []notification.Notification
	require.NoError(t, f.db.Where("user_id = ?", assignee).Find(&notifs).Error)
	require.Len(t, notifs, 1)
	assert.Equal(t, notification.TypeItemAssigned, notifs[0].Type)
}

func TestEvaluateReplyAction(t *testing.T) {
	f := setupEngine(t)
	workspaceID := uuid.New()
	item := f.seedItem(t, workspaceID, inbox.ItemTypeComment, "how much is shipping?")

	author := uuid.New()
	saved := inbox.SavedReply{
		ID:          uuid.New(),
		WorkspaceID: workspaceID,
		Title:       "shipping",
		Content:     "Shipping is free over $50!",
		CreatedBy:   uuid.NullUUID{UUID: author, Valid: true},
	}
	require.NoError(t, f.db.Create(&saved).Error)

	f.seedRule(t, rule.Rule{
		WorkspaceID:       workspaceID,
		Name:              "auto shipping answer",
		TriggerType:       rule.TriggerKeywordMatch,
		TriggerConditions: `[{"field":"content_text","operator":"contains","value":"shipping"}]`,
		ActionType:        rule.ActionReply,
		ActionParams:      fmt.Sprintf(`{"saved_reply_id":%q}`, saved.ID),
	})

	_, err := f.engine.Evaluate(context.Background(), item)
	require.NoError(t, err)

	var replies []inbox.InboxReply
	require.NoError(t, f.db.Where("inbox_item_id = ?", item.ID).Find(&replies).Error)
	require.Len(t, replies, 1)
	assert.Equal(t, saved.Content, replies[0].Content)
	assert.False(t, replies[0].Sent())

	var jobs []job.Job
	require.NoError(t, f.db.Where("job_type = ?", job.TypeReplyDispatch).Find(&jobs).Error)
	require.Len(t, jobs, 1)
	assert.Equal(t, replies[0].ID.String(), jobs[0].AggregateID)

	var gotSaved inbox.SavedReply
	require.NoError(t, f.db.First(&gotSaved, "id = ?", saved.ID).Error)
	assert.Equal(t, int64(1), gotSaved.UseCount)
}

func TestEvaluateReplyActionSkipsNonReplyable(t *testing.T) {
	f := setupEngine(t)
	workspaceID := uuid.New()
	item := f.seedItem(t, workspaceID, inbox.ItemTypeStoryMention, "story shoutout")

	saved := inbox.SavedReply{ID: uuid.New(), WorkspaceID: workspaceID, Title: "x", Content: "y"}
	require.NoError(t, f.db.Create(&saved).Error)

	f.seedRule(t, rule.Rule{
		WorkspaceID:  workspaceID,
		Name:         "reply to everything",
		TriggerType:  rule.TriggerItemCreated,
		ActionType:   rule.ActionReply,
		ActionParams: fmt.Sprintf(`{"saved_reply_id":%q}`, saved.ID),
	})

	fired, err := f.engine.Evaluate(context.Background(), item)
	require.NoError(t, err)
	assert.Empty(t, fired)

	var count int64
	require.NoError(t, f.db.Model(&inbox.InboxReply{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestDryRunExecutesNothing(t *testing.T) {
	f := setupEngine(t)
	workspaceID := uuid.New()
	item := f.seedItem(t, workspaceID, inbox.ItemTypeComment, "thanks")

	matched := f.seedRule(t, rule.Rule{
		WorkspaceID:       workspaceID,
		Name:              "auto-resolve",
		TriggerType:       rule.TriggerKeywordMatch,
		TriggerConditions: `[{"field":"content_text","operator":"contains","value":"thanks"}]`,
		ActionType:        rule.ActionResolve,
	})

	ids, err := f.engine.DryRun(context.Background(), item)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{matched.ID}, ids)

	var got inbox.InboxItem
	require.NoError(t, f.db.First(&got, "id = ?", item.ID).Error)
	assert.Equal(t, inbox.StatusUnread, got.Status)

	gotRule, err := f.rules.GetByID(context.Background(), workspaceID, matched.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), gotRule.ExecutionCount)
}
