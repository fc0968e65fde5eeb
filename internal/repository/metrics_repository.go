package repository

import (
	"context"
	"errors"
	"time"

	"socialflow/internal/domain/metrics"
	flow_errors "socialflow/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostgresMetricsRepository struct {
	db *gorm.DB
}

func NewMetricsRepository(db *gorm.DB) MetricsRepository {
	return &PostgresMetricsRepository{db: db}
}

func (r *PostgresMetricsRepository) CreatePostTarget(ctx context.Context, p *metrics.PostTarget) error {
	res := r.db.WithContext(ctx).Create(p)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return flow_errors.ErrAlreadyExists
		}
		return res.Error
	}
	return nil
}

func (r *PostgresMetricsRepository) GetPostTarget(ctx context.Context, workspaceID, id uuid.UUID) (metrics.PostTarget, error) {
	var p metrics.PostTarget
	err := r.db.WithContext(ctx).
		Where("workspace_id = ? AND id = ?", workspaceID, id).
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return metrics.PostTarget{}, flow_errors.ErrNotFound
		}
		return metrics.PostTarget{}, err
	}
	return p, nil
}

func (r *PostgresMetricsRepository) GetPostTargetByPlatformPostID(ctx context.Context, socialAccountID uuid.UUID, platformPostID string) (metrics.PostTarget, error) {
	var p metrics.PostTarget
	err := r.db.WithContext(ctx).
		Where("social_account_id = ? AND platform_post_id = ?", socialAccountID, platformPostID).
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return metrics.PostTarget{}, flow_errors.ErrNotFound
		}
		return metrics.PostTarget{}, err
	}
	return p, nil
}

func (r *PostgresMetricsRepository) ListPostTargets(ctx context.Context, workspaceID uuid.UUID) ([]metrics.PostTarget, error) {
	var targets []metrics.PostTarget
	err := r.db.WithContext(ctx).
		Where("workspace_id = ?", workspaceID).
		Find(&targets).Error
	if err != nil {
		return nil, err
	}
	return targets, nil
}

func (r *PostgresMetricsRepository) CreateSnapshot(ctx context.Context, s *metrics.PostMetricSnapshot) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *PostgresMetricsRepository) ListSnapshots(ctx context.Context, workspaceID, postTargetID uuid.UUID, since time.Time) ([]metrics.PostMetricSnapshot, error) {
	var snapshots []metrics.PostMetricSnapshot
	q := r.db.WithContext(ctx).
		Where("workspace_id = ? AND post_target_id = ?", workspaceID, postTargetID)
	if !since.IsZero() {
		q = q.Where("captured_at >= ?", since)
	}
	err := q.Order("captured_at ASC").Find(&snapshots).Error
	if err != nil {
		return nil, err
	}
	return snapshots, nil
}

// BackfillEngagementRate is the only permitted mutation of a snapshot row.
func (r *PostgresMetricsRepository) BackfillEngagementRate(ctx context.Context, id uuid.UUID, rate float64) error {
	res := r.db.WithContext(ctx).
		Model(&metrics.PostMetricSnapshot{}).
		Where("id = ?", id).
		Update("engagement_rate", rate)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return flow_errors.ErrNotFound
	}
	return nil
}
