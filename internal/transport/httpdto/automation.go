package httpdto

import (
	"time"

	rule "socialflow/internal/domain/automation"
)

type RuleRequest struct {
	Name              string `json:"name" binding:"required"`
	TriggerType       string `json:"trigger_type" binding:"required"`
	TriggerConditions string `json:"trigger_conditions"`
	ActionType        string `json:"action_type" binding:"required"`
	ActionParams      string `json:"action_params"`
	Priority          int    `json:"priority"`
	IsActive          *bool  `json:"is_active"`
}

type RuleResponse struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	TriggerType       string    `json:"trigger_type"`
	TriggerConditions string    `json:"trigger_conditions"`
	ActionType        string    `json:"action_type"`
	ActionParams      string    `json:"action_params"`
	Priority          int       `json:"priority"`
	IsActive          bool      `json:"is_active"`
	ExecutionCount    int64     `json:"execution_count"`
	CreatedAt         time.Time `json:"created_at"`
}

func FromRule(r rule.Rule) RuleResponse {
	return RuleResponse{
		ID:                r.ID.String(),
		Name:              r.Name,
		TriggerType:       string(r.TriggerType),
		TriggerConditions: r.TriggerConditions,
		ActionType:        string(r.ActionType),
		ActionParams:      r.ActionParams,
		Priority:          r.Priority,
		IsActive:          r.IsActive,
		ExecutionCount:    r.ExecutionCount,
		CreatedAt:         r.CreatedAt,
	}
}

func FromRuleSlice(rules []rule.Rule) []RuleResponse {
	out := make([]RuleResponse, 0, len(rules))
	for _, r := range rules {
		out = append(out, FromRule(r))
	}
	return out
}
