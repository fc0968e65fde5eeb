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

type PostgresInboxItemRepository struct {
	db *gorm.DB
}

func NewInboxItemRepository(db *gorm.DB) InboxItemRepository {
	return &PostgresInboxItemRepository{db: db}
}

func (r *PostgresInboxItemRepository) Create(ctx context.Context, item *inbox.InboxItem) error {
	res := r.db.WithContext(ctx).Create(item)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return flow_errors.ErrAlreadyExists
		}
		return res.Error
	}
	return nil
}

func (r *PostgresInboxItemRepository) GetByDedupKey(ctx context.Context, socialAccountID uuid.UUID, platformItemID string) (inbox.InboxItem, error) {
	var item inbox.InboxItem
	err := r.db.WithContext(ctx).
		Where("social_account_id = ? AND platform_item_id = ?", socialAccountID, platformItemID).
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return inbox.InboxItem{}, flow_errors.ErrNotFound
		}
		return inbox.InboxItem{}, err
	}
	return item, nil
}

func (r *PostgresInboxItemRepository) GetByID(ctx context.Context, workspaceID, id uuid.UUID) (inbox.InboxItem, error) {
	var item inbox.InboxItem
	err := r.db.WithContext(ctx).
		Where("workspace_id = ? AND id = ?", workspaceID, id).
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return inbox.InboxItem{}, flow_errors.ErrNotFound
		}
		return inbox.InboxItem{}, err
	}
	return item, nil
}

func (r *PostgresInboxItemRepository) Update(ctx context.Context, item inbox.InboxItem) error {
	res := r.db.WithContext(ctx).Save(&item)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return flow_errors.ErrNotFound
	}
	return nil
}

func (r *PostgresInboxItemRepository) List(ctx context.Context, workspaceID uuid.UUID, f ItemFilter) ([]inbox.InboxItem, int64, error) {
	var items []inbox.InboxItem
	var total int64

	q := r.db.WithContext(ctx).
		Model(&inbox.InboxItem{}).
		Where("workspace_id = ?", workspaceID)

	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.ItemType != "" {
		q = q.Where("item_type = ?", f.ItemType)
	}
	if f.SocialAccountID != uuid.Nil {
		q = q.Where("social_account_id = ?", f.SocialAccountID)
	}
	if f.AssignedTo != uuid.Nil {
		q = q.Where("assigned_to_user_id = ?", f.AssignedTo)
	}
	if f.ConversationID != uuid.Nil {
		q = q.Where("conversation_id = ?", f.ConversationID)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := f.Page
	if page < 1 {
		page = 1
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := (page - 1) * limit
	if err := q.Order("platform_created_at DESC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *PostgresInboxItemRepository) GetByIDs(ctx context.Context, workspaceID uuid.UUID, ids []uuid.UUID) ([]inbox.InboxItem, error) {
	var items []inbox.InboxItem
	err := r.db.WithContext(ctx).
		Where("workspace_id = ? AND id IN (?)", workspaceID, ids).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *PostgresInboxItemRepository) ListResolvedBefore(ctx context.Context, cutoff time.Time, limit int) ([]inbox.InboxItem, error) {
	var items []inbox.InboxItem
	err := r.db.WithContext(ctx).
		Where("status = ? AND resolved_at < ?", inbox.StatusResolved, cutoff).
		Order("resolved_at ASC").
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *PostgresInboxItemRepository) CountByStatus(ctx context.Context, workspaceID uuid.UUID, status inbox.Status) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&inbox.InboxItem{}).
		Where("workspace_id = ? AND status = ?", workspaceID, status).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
