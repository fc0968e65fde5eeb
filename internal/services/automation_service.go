package services

import (
	"context"
	"regexp"
	"strings"
	"time"

	rule "socialflow/internal/domain/automation"
	"socialflow/internal/repository"
	flow_errors "socialflow/pkg/errors"

	"github.com/google/uuid"
)

// AutomationService manages the rule catalog. Evaluation itself lives in
// the automation engine; this service only guards what gets stored.
type AutomationService struct {
	rules repository.AutomationRepository
}

func NewAutomationService(rules repository.AutomationRepository) *AutomationService {
	return &AutomationService{rules: rules}
}

type RuleInput struct {
	Name              string
	TriggerType       rule.TriggerType
	TriggerConditions string
	ActionType        rule.ActionType
	ActionParams      string
	Priority          int
	IsActive          bool
}

func (s *AutomationService) Create(ctx context.Context, workspaceID uuid.UUID, in RuleInput) (rule.Rule, error) {
	r := rule.Rule{
		ID:                uuid.New(),
		WorkspaceID:       workspaceID,
		Name:              strings.TrimSpace(in.Name),
		TriggerType:       in.TriggerType,
		TriggerConditions: defaultJSON(in.TriggerConditions, "[]"),
		ActionType:        in.ActionType,
		ActionParams:      defaultJSON(in.ActionParams, "{}"),
		Priority:          in.Priority,
		IsActive:          in.IsActive,
		CreatedAt:         time.Now(),
		UpdatedAt:         time.Now(),
	}
	if err := validateRule(r); err != nil {
		return rule.Rule{}, err
	}
	if err := s.rules.Create(ctx, &r); err != nil {
		return rule.Rule{}, err
	}
	return r, nil
}

func (s *AutomationService) Update(ctx context.Context, workspaceID, id uuid.UUID, in RuleInput) (rule.Rule, error) {
	r, err := s.rules.GetByID(ctx, workspaceID, id)
	if err != nil {
		return rule.Rule{}, err
	}
	r.Name = strings.TrimSpace(in.Name)
	r.TriggerType = in.TriggerType
	r.TriggerConditions = defaultJSON(in.TriggerConditions, "[]")
	r.ActionType = in.ActionType
	r.ActionParams = defaultJSON(in.ActionParams, "{}")
	r.Priority = in.Priority
	r.IsActive = in.IsActive
	r.UpdatedAt = time.Now()
	if err := validateRule(r); err != nil {
		return rule.Rule{}, err
	}
	if err := s.rules.Update(ctx, r); err != nil {
		return rule.Rule{}, err
	}
	return r, nil
}

func (s *AutomationService) Get(ctx context.Context, workspaceID, id uuid.UUID) (rule.Rule, error) {
	return s.rules.GetByID(ctx, workspaceID, id)
}

func (s *AutomationService) List(ctx context.Context, workspaceID uuid.UUID) ([]rule.Rule, error) {
	return s.rules.List(ctx, workspaceID)
}

func (s *AutomationService) Delete(ctx context.Context, workspaceID, id uuid.UUID) error {
	return s.rules.Delete(ctx, workspaceID, id)
}

// SetActive flips a rule without touching the rest of its definition.
func (s *AutomationService) SetActive(ctx context.Context, workspaceID, id uuid.UUID, active bool) (rule.Rule, error) {
	r, err := s.rules.GetByID(ctx, workspaceID, id)
	if err != nil {
		return rule.Rule{}, err
	}
	r.IsActive = active
	r.UpdatedAt = time.Now()
	if err := s.rules.Update(ctx, r); err != nil {
		return rule.Rule{}, err
	}
	return r, nil
}

// validateRule rejects definitions the engine could never execute:
// unknown trigger or action types, undecodable JSON, conditions with
// bad operators or regexes, and actions missing their target.
func validateRule(r rule.Rule) error {
	if r.Name == "" {
		return flow_errors.ErrInvalidInput
	}
	switch r.TriggerType {
	case rule.TriggerItemCreated, rule.TriggerKeywordMatch, rule.TriggerSenderMatch, rule.TriggerItemType:
	default:
		return flow_errors.ErrInvalidInput
	}

	conds, err := r.Conditions()
	if err != nil {
		return flow_errors.ErrInvalidInput
	}
	if r.TriggerType != rule.TriggerItemCreated && len(conds) == 0 {
		return flow_errors.ErrInvalidInput
	}
	for _, c := range conds {
		switch c.Operator {
		case rule.OpEquals, rule.OpContains:
		case rule.OpRegex:
			if _, err := regexp.Compile(c.Value); err != nil {
				return flow_errors.ErrInvalidInput
			}
		default:
			return flow_errors.ErrInvalidInput
		}
	}

	params, err := r.Params()
	if err != nil {
		return flow_errors.ErrInvalidInput
	}
	switch r.ActionType {
	case rule.ActionAssign:
		if params.AssignToUserID == nil {
			return flow_errors.ErrInvalidInput
		}
	case rule.ActionTag:
		if params.TagID == nil {
			return flow_errors.ErrInvalidInput
		}
	case rule.ActionReply:
		if params.SavedReplyID == nil {
			return flow_errors.ErrInvalidInput
		}
	case rule.ActionNotify:
		if params.NotifyUserID == nil {
			return flow_errors.ErrInvalidInput
		}
	case rule.ActionResolve:
	default:
		return flow_errors.ErrInvalidInput
	}
	return nil
}

func defaultJSON(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
