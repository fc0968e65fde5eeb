package repository

import (
	"context"
	"errors"
	"time"

	"socialflow/internal/domain/automation"
	flow_errors "socialflow/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostgresAutomationRepository struct {
	db *gorm.DB
}

func NewAutomationRepository(db *gorm.DB) AutomationRepository {
	return &PostgresAutomationRepository{db: db}
}

func (r *PostgresAutomationRepository) Create(ctx context.Context, rule *automation.Rule) error {
	res := r.db.WithContext(ctx).Create(rule)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return flow_errors.ErrAlreadyExists
		}
		return res.Error
	}
	return nil
}

func (r *PostgresAutomationRepository) GetByID(ctx context.Context, workspaceID, id uuid.UUID) (automation.Rule, error) {
	var rule automation.Rule
	err := r.db.WithContext(ctx).
		Where("workspace_id = ? AND id = ?", workspaceID, id).
		First(&rule).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return automation.Rule{}, flow_errors.ErrNotFound
		}
		return automation.Rule{}, err
	}
	return rule, nil
}

func (r *PostgresAutomationRepository) Update(ctx context.Context, rule automation.Rule) error {
	res := r.db.WithContext(ctx).Save(&rule)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return flow_errors.ErrNotFound
	}
	return nil
}

func (r *PostgresAutomationRepository) Delete(ctx context.Context, workspaceID, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Delete(&automation.Rule{}, "workspace_id = ? AND id = ?", workspaceID, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return flow_errors.ErrNotFound
	}
	return nil
}

func (r *PostgresAutomationRepository) List(ctx context.Context, workspaceID uuid.UUID) ([]automation.Rule, error) {
	var rules []automation.Rule
	err := r.db.WithContext(ctx).
		Where("workspace_id = ?", workspaceID).
		Order("priority DESC, created_at ASC, id ASC").
		Find(&rules).Error
	if err != nil {
		return nil, err
	}
	return rules, nil
}

// ListActive returns active rules in evaluation order. The ordering is a
// deterministic total order: priority DESC, then created_at ASC, then id
// ASC as the stable tie-break.
func (r *PostgresAutomationRepository) ListActive(ctx context.Context, workspaceID uuid.UUID) ([]automation.Rule, error) {
	var rules []automation.Rule
	err := r.db.WithContext(ctx).
		Where("workspace_id = ? AND is_active = ?", workspaceID, true).
		Order("priority DESC, created_at ASC, id ASC").
		Find(&rules).Error
	if err != nil {
		return nil, err
	}
	return rules, nil
}

func (r *PostgresAutomationRepository) IncrementExecutionCount(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Model(&automation.Rule{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"execution_count": gorm.Expr("execution_count + 1"),
			"updated_at":      time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return flow_errors.ErrNotFound
	}
	return nil
}
