package automation

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type TriggerType string

const (
	TriggerItemCreated  TriggerType = "item_created"
	TriggerKeywordMatch TriggerType = "keyword_match"
	TriggerSenderMatch  TriggerType = "sender_match"
	TriggerItemType     TriggerType = "item_type"
)

type ActionType string

const (
	ActionAssign  ActionType = "assign"
	ActionTag     ActionType = "tag"
	ActionReply   ActionType = "reply"
	ActionResolve ActionType = "resolve"
	ActionNotify  ActionType = "notify"
)

// Operator applies a predicate to an item field.
type Operator string

const (
	OpEquals   Operator = "equals"
	OpContains Operator = "contains"
	OpRegex    Operator = "regex"
)

// Condition is one field/operator/value predicate inside a rule trigger.
// All conditions of a rule must match.
type Condition struct {
	Field    string   `json:"field"`
	Operator Operator `json:"operator"`
	Value    string   `json:"value"`
}

// ActionParams carries the target of a rule action. Only the field
// relevant to the action type is set.
type ActionParams struct {
	AssignToUserID *uuid.UUID `json:"assign_to_user_id,omitempty"`
	TagID          *uuid.UUID `json:"tag_id,omitempty"`
	SavedReplyID   *uuid.UUID `json:"saved_reply_id,omitempty"`
	NotifyUserID   *uuid.UUID `json:"notify_user_id,omitempty"`
}

// Rule is a workspace-scoped trigger→action mapping evaluated on item
// ingestion. Rules are ordered by (priority DESC, created_at ASC, id ASC)
// so evaluation order is a deterministic total order.
type Rule struct {
	ID                uuid.UUID   `gorm:"type:uuid;primary_key"`
	WorkspaceID       uuid.UUID   `gorm:"type:uuid;not null;index"`
	Name              string      `gorm:"type:varchar(255);not null"`
	TriggerType       TriggerType `gorm:"type:varchar(30);not null"`
	TriggerConditions string      `gorm:"type:jsonb;default:'[]'"`
	ActionType        ActionType  `gorm:"type:varchar(30);not null"`
	ActionParams      string      `gorm:"type:jsonb;default:'{}'"`
	Priority          int         `gorm:"not null;default:0"`
	IsActive          bool        `gorm:"not null;default:true"`
	ExecutionCount    int64       `gorm:"not null;default:0"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Conditions decodes the stored trigger predicate list.
func (r Rule) Conditions() ([]Condition, error) {
	if r.TriggerConditions == "" {
		return nil, nil
	}
	var conds []Condition
	if err := json.Unmarshal([]byte(r.TriggerConditions), &conds); err != nil {
		return nil, err
	}
	return conds, nil
}

// Params decodes the stored action parameters.
func (r Rule) Params() (ActionParams, error) {
	var p ActionParams
	if r.ActionParams == "" {
		return p, nil
	}
	err := json.Unmarshal([]byte(r.ActionParams), &p)
	return p, err
}

func (Rule) TableName() string {
	return "inbox_automation_rules"
}
