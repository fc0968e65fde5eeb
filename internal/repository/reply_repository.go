package repository

import (
	"context"
	"errors"
	"time"

	"socialflow/internal/domain/inbox"
	flow_errors "socialflow/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostgresReplyRepository struct {
	db *gorm.DB
}

func NewReplyRepository(db *gorm.DB) ReplyRepository {
	return &PostgresReplyRepository{db: db}
}

func (r *PostgresReplyRepository) Create(ctx context.Context, reply *inbox.InboxReply) error {
	res := r.db.WithContext(ctx).Create(reply)
	if res.Error != nil {
		return res.Error
	}
	return nil
}

func (r *PostgresReplyRepository) GetByID(ctx context.Context, workspaceID, id uuid.UUID) (inbox.InboxReply, error) {
	var reply inbox.InboxReply
	err := r.db.WithContext(ctx).
		Where("workspace_id = ? AND id = ?", workspaceID, id).
		First(&reply).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return inbox.InboxReply{}, flow_errors.ErrNotFound
		}
		return inbox.InboxReply{}, err
	}
	return reply, nil
}

func (r *PostgresReplyRepository) ListByItem(ctx context.Context, workspaceID, itemID uuid.UUID) ([]inbox.InboxReply, error) {
	var replies []inbox.InboxReply
	err := r.db.WithContext(ctx).
		Where("workspace_id = ? AND inbox_item_id = ?", workspaceID, itemID).
		Order("created_at ASC").
		Find(&replies).Error
	if err != nil {
		return nil, err
	}
	return replies, nil
}

// MarkSent and MarkFailed are mutually exclusive outcomes: a successful
// send clears any failure fields and vice versa, so a reply row is never
// both sent and failed.
func (r *PostgresReplyRepository) MarkSent(ctx context.Context, id uuid.UUID, platformReplyID string) error {
	now := time.Now()
	res := r.db.WithContext(ctx).
		Model(&inbox.InboxReply{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"platform_reply_id": platformReplyID,
			"sent_at":           now,
			"failed_at":         nil,
			"failure_reason":    nil,
			"updated_at":        now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return flow_errors.ErrNotFound
	}
	return nil
}

func (r *PostgresReplyRepository) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	now := time.Now()
	res := r.db.WithContext(ctx).
		Model(&inbox.InboxReply{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"platform_reply_id": nil,
			"sent_at":           nil,
			"failed_at":         now,
			"failure_reason":    reason,
			"updated_at":        now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return flow_errors.ErrNotFound
	}
	return nil
}
