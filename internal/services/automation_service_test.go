package services

import (
	"context"
	"fmt"
	"testing"

	rule "socialflow/internal/domain/automation"
	"socialflow/internal/repository"
	flow_errors "socialflow/pkg/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAutomationService(t *testing.T) (*AutomationService, uuid.UUID) {
	t.Helper()
	db := newTestDB(t)
	require.NoError(t, db.AutoMigrate(&rule.Rule{}))
	return NewAutomationService(repository.NewAutomationRepository(db)), uuid.New()
}

func validInput() RuleInput {
	return RuleInput{
		Name:         "route to support",
		TriggerType:  rule.TriggerItemCreated,
		ActionType:   rule.ActionAssign,
		ActionParams: fmt.Sprintf(`{"assign_to_user_id":%q}`, uuid.New()),
		Priority:     5,
		IsActive:     true,
	}
}

func TestCreateRule(t *testing.T) {
	svc, workspaceID := newAutomationService(t)
	ctx := context.Background()

	r, err := svc.Create(ctx, workspaceID, validInput())
	require.NoError(t, err)
	assert.Equal(t, "route to support", r.Name)
	assert.Equal(t, "[]", r.TriggerConditions)
	assert.True(t, r.IsActive)

	got, err := svc.Get(ctx, workspaceID, r.ID)
	require.NoError(t, err)
	assert.Equal(t, r.ID, got.ID)
}

func TestCreateRuleValidation(t *testing.T) {
	svc, workspaceID := newAutomationService(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*RuleInput)
	}{
		{"empty name", func(in *RuleInput) { in.Name = " " }},
		{"unknown trigger", func(in *RuleInput) { in.TriggerType = "on_full_moon" }},
		{"unknown action", func(in *RuleInput) { in.ActionType = "explode" }},
		{"assign without target", func(in *RuleInput) { in.ActionParams = "{}" }},
		{"undecodable conditions", func(in *RuleInput) { in.TriggerConditions = "not json" }},
		{"keyword trigger without conditions", func(in *RuleInput) { in.TriggerType = rule.TriggerKeywordMatch }},
		{"bad operator", func(in *RuleInput) {
			in.TriggerConditions = `[{"field":"content_text","operator":"sounds_like","value":"x"}]`
		}},
		{"bad regex", func(in *RuleInput) {
			in.TriggerConditions = `[{"field":"content_text","operator":"regex","value":"("}]`
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)
			_, err := svc.Create(ctx, workspaceID, in)
			assert.ErrorIs(t, err, flow_errors.ErrInvalidInput)
		})
	}
}

func TestResolveActionNeedsNoParams(t *testing.T) {
	svc, workspaceID := newAutomationService(t)

	in := validInput()
	in.ActionType = rule.ActionResolve
	in.ActionParams = ""
	in.TriggerType = rule.TriggerKeywordMatch
	in.TriggerConditions = `[{"field":"content_text","operator":"contains","value":"thanks"}]`

	_, err := svc.Create(context.Background(), workspaceID, in)
	assert.NoError(t, err)
}

func TestUpdateRuleRevalidates(t *testing.T) {
	svc, workspaceID := newAutomationService(t)
	ctx := context.Background()

	r, err := svc.Create(ctx, workspaceID, validInput())
	require.NoError(t, err)

	in := validInput()
	in.ActionParams = "{}"
	_, err = svc.Update(ctx, workspaceID, r.ID, in)
	assert.ErrorIs(t, err, flow_errors.ErrInvalidInput)

	in = validInput()
	in.Name = "renamed"
	updated, err := svc.Update(ctx, workspaceID, r.ID, in)
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Name)
}

func TestRuleLifecycleIsWorkspaceScoped(t *testing.T) {
	svc, workspaceID := newAutomationService(t)
	ctx := context.Background()

	r, err := svc.Create(ctx, workspaceID, validInput())
	require.NoError(t, err)

	other := uuid.New()
	_, err = svc.Get(ctx, other, r.ID)
	assert.ErrorIs(t, err, flow_errors.ErrNotFound)
	err = svc.Delete(ctx, other, r.ID)
	assert.ErrorIs(t, err, flow_errors.ErrNotFound)

	require.NoError(t, svc.Delete(ctx, workspaceID, r.ID))
	_, err = svc.Get(ctx, workspaceID, r.ID)
	assert.ErrorIs(t, err, flow_errors.ErrNotFound)
}

func TestSetActiveTogglesRule(t *testing.T) {
	svc, workspaceID := newAutomationService(t)
	ctx := context.Background()

	r, err := svc.Create(ctx, workspaceID, validInput())
	require.NoError(t, err)

	off, err := svc.SetActive(ctx, workspaceID, r.ID, false)
	require.NoError(t, err)
	assert.False(t, off.IsActive)

	on, err := svc.SetActive(ctx, workspaceID, r.ID, true)
	require.NoError(t, err)
	assert.True(t, on.IsActive)
}
