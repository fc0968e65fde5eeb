package repository

import (
	"context"
	"time"

	"socialflow/internal/domain/job"
	flow_errors "socialflow/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostgresJobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) JobRepository {
	return &PostgresJobRepository{db: db}
}

func (r *PostgresJobRepository) Enqueue(ctx context.Context, j *job.Job) error {
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	now := time.Now()
	if j.RunAfter.IsZero() {
		j.RunAfter = now
	}
	j.Status = job.StatusPending
	j.CreatedAt = now
	j.UpdatedAt = now
	return r.db.WithContext(ctx).Create(j).Error
}

func (r *PostgresJobRepository) GetPending(ctx context.Context, limit int) ([]job.Job, error) {
	var jobs []job.Job
	err := r.db.WithContext(ctx).
		Where("status = ? AND run_after <= ?", job.StatusPending, time.Now()).
		Order("run_after ASC, created_at ASC").
		Limit(limit).
		Find(&jobs).Error
	if err != nil {
		return nil, err
	}
	return jobs, nil
}

// MarkProcessing claims a job. The status guard makes the claim atomic:
// two workers racing on the same row see exactly one RowsAffected=1.
func (r *PostgresJobRepository) MarkProcessing(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Model(&job.Job{}).
		Where("id = ? AND status = ?", id, job.StatusPending).
		Updates(map[string]interface{}{
			"status":     job.StatusProcessing,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return flow_errors.ErrConflict
	}
	return nil
}

func (r *PostgresJobRepository) MarkCompleted(ctx context.Context, id uuid.UUID) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&job.Job{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       job.StatusCompleted,
			"processed_at": now,
			"updated_at":   now,
		}).Error
}

func (r *PostgresJobRepository) MarkFailed(ctx context.Context, id uuid.UUID, errorMsg string) error {
	return r.db.WithContext(ctx).
		Model(&job.Job{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     job.StatusFailed,
			"error":      errorMsg,
			"updated_at": time.Now(),
		}).Error
}

// Reschedule returns a job to the queue with a backoff delay and bumps the
// retry counter.
func (r *PostgresJobRepository) Reschedule(ctx context.Context, id uuid.UUID, runAfter time.Time) error {
	return r.db.WithContext(ctx).
		Model(&job.Job{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":      job.StatusPending,
			"retry_count": gorm.Expr("retry_count + 1"),
			"run_after":   runAfter,
			"updated_at":  time.Now(),
		}).Error
}
