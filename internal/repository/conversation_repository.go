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

type PostgresConversationRepository struct {
	db *gorm.DB
}

func NewConversationRepository(db *gorm.DB) ConversationRepository {
	return &PostgresConversationRepository{db: db}
}

func (r *PostgresConversationRepository) Create(ctx context.Context, c *inbox.InboxConversation) error {
	res := r.db.WithContext(ctx).Create(c)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return flow_errors.ErrAlreadyExists
		}
		return res.Error
	}
	return nil
}

func (r *PostgresConversationRepository) GetByKey(ctx context.Context, socialAccountID uuid.UUID, key string) (inbox.InboxConversation, error) {
	var c inbox.InboxConversation
	err := r.db.WithContext(ctx).
		Where("social_account_id = ? AND conversation_key = ?", socialAccountID, key).
		First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return inbox.InboxConversation{}, flow_errors.ErrNotFound
		}
		return inbox.InboxConversation{}, err
	}
	return c, nil
}

func (r *PostgresConversationRepository) GetByID(ctx context.Context, workspaceID, id uuid.UUID) (inbox.InboxConversation, error) {
	var c inbox.InboxConversation
	err := r.db.WithContext(ctx).
		Where("workspace_id = ? AND id = ?", workspaceID, id).
		First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return inbox.InboxConversation{}, flow_errors.ErrNotFound
		}
		return inbox.InboxConversation{}, err
	}
	return c, nil
}

func (r *PostgresConversationRepository) List(ctx context.Context, workspaceID uuid.UUID, page, limit int) ([]inbox.InboxConversation, int64, error) {
	var convs []inbox.InboxConversation
	var total int64

	q := r.db.WithContext(ctx).
		Model(&inbox.InboxConversation{}).
		Where("workspace_id = ?", workspaceID)

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = 50
	}
	offset := (page - 1) * limit
	if err := q.Order("last_message_at DESC").Offset(offset).Limit(limit).Find(&convs).Error; err != nil {
		return nil, 0, err
	}
	return convs, total, nil
}

// AppendMessage maintains the conversation aggregates with a single atomic
// update so concurrent ingestion into the same conversation never loses a
// count and the first/last timestamps stay monotonic.
func (r *PostgresConversationRepository) AppendMessage(ctx context.Context, id uuid.UUID, occurredAt time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&inbox.InboxConversation{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"message_count":    gorm.Expr("message_count + 1"),
			"first_message_at": gorm.Expr("CASE WHEN first_message_at IS NULL OR first_message_at > ? THEN ? ELSE first_message_at END", occurredAt, occurredAt),
			"last_message_at":  gorm.Expr("CASE WHEN last_message_at IS NULL OR last_message_at < ? THEN ? ELSE last_message_at END", occurredAt, occurredAt),
			"updated_at":       time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return flow_errors.ErrNotFound
	}
	return nil
}

func (r *PostgresConversationRepository) UpdateStatus(ctx context.Context, workspaceID, id uuid.UUID, status inbox.ConversationStatus) error {
	res := r.db.WithContext(ctx).
		Model(&inbox.InboxConversation{}).
		Where("workspace_id = ? AND id = ?", workspaceID, id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return flow_errors.ErrNotFound
	}
	return nil
}
