package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"socialflow/internal/domain/inbox"
	flow_errors "socialflow/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostgresCollabRepository struct {
	db *gorm.DB
}

func NewCollabRepository(db *gorm.DB) CollabRepository {
	return &PostgresCollabRepository{db: db}
}

func (r *PostgresCollabRepository) CreateNote(ctx context.Context, n *inbox.InboxInternalNote) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *PostgresCollabRepository) ListNotes(ctx context.Context, workspaceID, itemID uuid.UUID) ([]inbox.InboxInternalNote, error) {
	var notes []inbox.InboxInternalNote
	err := r.db.WithContext(ctx).
		Where("workspace_id = ? AND inbox_item_id = ?", workspaceID, itemID).
		Order("created_at ASC").
		Find(&notes).Error
	if err != nil {
		return nil, err
	}
	return notes, nil
}

func (r *PostgresCollabRepository) GetNote(ctx context.Context, workspaceID, id uuid.UUID) (inbox.InboxInternalNote, error) {
	var note inbox.InboxInternalNote
	err := r.db.WithContext(ctx).
		Where("workspace_id = ? AND id = ?", workspaceID, id).
		First(&note).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return inbox.InboxInternalNote{}, flow_errors.ErrNotFound
		}
		return inbox.InboxInternalNote{}, err
	}
	return note, nil
}

func (r *PostgresCollabRepository) DeleteNote(ctx context.Context, workspaceID, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Delete(&inbox.InboxInternalNote{}, "workspace_id = ? AND id = ?", workspaceID, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return flow_errors.ErrNotFound
	}
	return nil
}

func (r *PostgresCollabRepository) CreateTag(ctx context.Context, t *inbox.InboxTag) error {
	res := r.db.WithContext(ctx).Create(t)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return flow_errors.ErrAlreadyExists
		}
		return res.Error
	}
	return nil
}

func (r *PostgresCollabRepository) GetTag(ctx context.Context, workspaceID, id uuid.UUID) (inbox.InboxTag, error) {
	var tag inbox.InboxTag
	err := r.db.WithContext(ctx).
		Where("workspace_id = ? AND id = ?", workspaceID, id).
		First(&tag).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return inbox.InboxTag{}, flow_errors.ErrNotFound
		}
		return inbox.InboxTag{}, err
	}
	return tag, nil
}

func (r *PostgresCollabRepository) ListTags(ctx context.Context, workspaceID uuid.UUID) ([]inbox.InboxTag, error) {
	var tags []inbox.InboxTag
	err := r.db.WithContext(ctx).
		Where("workspace_id = ?", workspaceID).
		Order("name ASC").
		Find(&tags).Error
	if err != nil {
		return nil, err
	}
	return tags, nil
}

func (r *PostgresCollabRepository) AttachTag(ctx context.Context, itemID, tagID uuid.UUID) error {
	link := &inbox.InboxItemTag{InboxItemID: itemID, TagID: tagID, CreatedAt: time.Now()}
	res := r.db.WithContext(ctx).Create(link)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			// Attaching an already attached tag is a no-op.
			return nil
		}
		return res.Error
	}
	return nil
}

func (r *PostgresCollabRepository) DetachTag(ctx context.Context, itemID, tagID uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Delete(&inbox.InboxItemTag{}, "inbox_item_id = ? AND tag_id = ?", itemID, tagID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return flow_errors.ErrNotFound
	}
	return nil
}

func (r *PostgresCollabRepository) ListItemTags(ctx context.Context, itemID uuid.UUID) ([]inbox.InboxTag, error) {
	var tags []inbox.InboxTag

	subQuery := r.db.Model(&inbox.InboxItemTag{}).
		Select("tag_id").
		Where("inbox_item_id = ?", itemID)

	err := r.db.WithContext(ctx).
		Where("id IN (?)", subQuery).
		Find(&tags).Error
	if err != nil {
		return nil, err
	}
	return tags, nil
}

func (r *PostgresCollabRepository) CreateSavedReply(ctx context.Context, s *inbox.SavedReply) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *PostgresCollabRepository) GetSavedReply(ctx context.Context, workspaceID, id uuid.UUID) (inbox.SavedReply, error) {
	var s inbox.SavedReply
	err := r.db.WithContext(ctx).
		Where("workspace_id = ? AND id = ?", workspaceID, id).
		First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return inbox.SavedReply{}, flow_errors.ErrNotFound
		}
		return inbox.SavedReply{}, err
	}
	return s, nil
}

func (r *PostgresCollabRepository) ListSavedReplies(ctx context.Context, workspaceID uuid.UUID) ([]inbox.SavedReply, error) {
	var replies []inbox.SavedReply
	err := r.db.WithContext(ctx).
		Where("workspace_id = ?", workspaceID).
		Order("title ASC").
		Find(&replies).Error
	if err != nil {
		return nil, err
	}
	return replies, nil
}

func (r *PostgresCollabRepository) IncrementSavedReplyUse(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&inbox.SavedReply{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"use_count":  gorm.Expr("use_count + 1"),
			"updated_at": time.Now(),
		}).Error
}

// UpsertContact creates the contact on first sight and bumps the
// interaction counters on every subsequent item from the same author.
func (r *PostgresCollabRepository) UpsertContact(ctx context.Context, c *inbox.InboxContact) error {
	now := time.Now()
	res := r.db.WithContext(ctx).
		Model(&inbox.InboxContact{}).
		Where("workspace_id = ? AND platform = ? AND external_id = ?", c.WorkspaceID, c.Platform, c.ExternalID).
		Updates(map[string]interface{}{
			"name":                c.Name,
			"username":            c.Username,
			"profile_url":         c.ProfileURL,
			"interaction_count":   gorm.Expr("interaction_count + 1"),
			"last_interaction_at": now,
			"updated_at":          now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	c.InteractionCount = 1
	c.LastInteractionAt = sql.NullTime{Time: now, Valid: true}
	c.CreatedAt = now
	c.UpdatedAt = now
	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Concurrent first-sight insert; the other writer won.
			return nil
		}
		return err
	}
	return nil
}

func (r *PostgresCollabRepository) GetContact(ctx context.Context, workspaceID uuid.UUID, platform, externalID string) (inbox.InboxContact, error) {
	var c inbox.InboxContact
	err := r.db.WithContext(ctx).
		Where("workspace_id = ? AND platform = ? AND external_id = ?", workspaceID, platform, externalID).
		First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return inbox.InboxContact{}, flow_errors.ErrNotFound
		}
		return inbox.InboxContact{}, err
	}
	return c, nil
}
