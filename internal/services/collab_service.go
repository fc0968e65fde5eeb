package services

import (
	"context"
	"strings"
	"time"

	"socialflow/internal/domain/inbox"
	"socialflow/internal/domain/workspace"
	"socialflow/internal/repository"
	flow_errors "socialflow/pkg/errors"

	"github.com/google/uuid"
)

// CollabService covers the team layer around items: internal notes,
// tags, and saved replies.
type CollabService struct {
	collab     repository.CollabRepository
	items      repository.InboxItemRepository
	workspaces repository.WorkspaceRepository
}

func NewCollabService(
	collab repository.CollabRepository,
	items repository.InboxItemRepository,
	workspaces repository.WorkspaceRepository,
) *CollabService {
	return &CollabService{collab: collab, items: items, workspaces: workspaces}
}

// AddNote appends an internal note to an item. Notes are immutable once
// written.
func (s *CollabService) AddNote(ctx context.Context, workspaceID, itemID, userID uuid.UUID, content string) (inbox.InboxInternalNote, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return inbox.InboxInternalNote{}, flow_errors.ErrInvalidInput
	}
	if _, err := s.items.GetByID(ctx, workspaceID, itemID); err != nil {
		return inbox.InboxInternalNote{}, err
	}
	note := inbox.InboxInternalNote{
		ID:          uuid.New(),
		WorkspaceID: workspaceID,
		InboxItemID: itemID,
		UserID:      userID,
		Content:     content,
		CreatedAt:   time.Now(),
	}
	if err := s.collab.CreateNote(ctx, &note); err != nil {
		return inbox.InboxInternalNote{}, err
	}
	return note, nil
}

func (s *CollabService) ListNotes(ctx context.Context, workspaceID, itemID uuid.UUID) ([]inbox.InboxInternalNote, error) {
	return s.collab.ListNotes(ctx, workspaceID, itemID)
}

// DeleteNote removes a note. Only the author or a workspace owner/admin
// may delete; anyone else gets ErrForbidden.
func (s *CollabService) DeleteNote(ctx context.Context, workspaceID, noteID, userID uuid.UUID) error {
	note, err := s.collab.GetNote(ctx, workspaceID, noteID)
	if err != nil {
		return err
	}
	if note.UserID != userID {
		member, err := s.workspaces.GetMember(ctx, workspaceID, userID)
		if err != nil {
			return flow_errors.ErrForbidden
		}
		if member.Role != workspace.RoleOwner && member.Role != workspace.RoleAdmin {
			return flow_errors.ErrForbidden
		}
	}
	return s.collab.DeleteNote(ctx, workspaceID, noteID)
}

func (s *CollabService) CreateTag(ctx context.Context, workspaceID uuid.UUID, name, color string) (inbox.InboxTag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return inbox.InboxTag{}, flow_errors.ErrInvalidInput
	}
	tag := inbox.InboxTag{
		ID:          uuid.New(),
		WorkspaceID: workspaceID,
		Name:        name,
		Color:       color,
		CreatedAt:   time.Now(),
	}
	if err := s.collab.CreateTag(ctx, &tag); err != nil {
		return inbox.InboxTag{}, err
	}
	return tag, nil
}

func (s *CollabService) ListTags(ctx context.Context, workspaceID uuid.UUID) ([]inbox.InboxTag, error) {
	return s.collab.ListTags(ctx, workspaceID)
}

// TagItem attaches a tag to an item. Attaching an already-attached tag
// is a no-op.
func (s *CollabService) TagItem(ctx context.Context, workspaceID, itemID, tagID uuid.UUID) error {
	if _, err := s.items.GetByID(ctx, workspaceID, itemID); err != nil {
		return err
	}
	if _, err := s.collab.GetTag(ctx, workspaceID, tagID); err != nil {
		return err
	}
	return s.collab.AttachTag(ctx, itemID, tagID)
}

func (s *CollabService) UntagItem(ctx context.Context, workspaceID, itemID, tagID uuid.UUID) error {
	if _, err := s.items.GetByID(ctx, workspaceID, itemID); err != nil {
		return err
	}
	return s.collab.DetachTag(ctx, itemID, tagID)
}

func (s *CollabService) ListItemTags(ctx context.Context, workspaceID, itemID uuid.UUID) ([]inbox.InboxTag, error) {
	if _, err := s.items.GetByID(ctx, workspaceID, itemID); err != nil {
		return nil, err
	}
	return s.collab.ListItemTags(ctx, itemID)
}

func (s *CollabService) CreateSavedReply(ctx context.Context, workspaceID, userID uuid.UUID, title, content string) (inbox.SavedReply, error) {
	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)
	if title == "" || content == "" {
		return inbox.SavedReply{}, flow_errors.ErrInvalidInput
	}
	now := time.Now()
	saved := inbox.SavedReply{
		ID:          uuid.New(),
		WorkspaceID: workspaceID,
		Title:       title,
		Content:     content,
		CreatedBy:   uuid.NullUUID{UUID: userID, Valid: true},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.collab.CreateSavedReply(ctx, &saved); err != nil {
		return inbox.SavedReply{}, err
	}
	return saved, nil
}

func (s *CollabService) ListSavedReplies(ctx context.Context, workspaceID uuid.UUID) ([]inbox.SavedReply, error) {
	return s.collab.ListSavedReplies(ctx, workspaceID)
}

// UseSavedReply returns the canned content and bumps its use counter.
func (s *CollabService) UseSavedReply(ctx context.Context, workspaceID, id uuid.UUID) (inbox.SavedReply, error) {
	saved, err := s.collab.GetSavedReply(ctx, workspaceID, id)
	if err != nil {
		return inbox.SavedReply{}, err
	}
	if err := s.collab.IncrementSavedReplyUse(ctx, saved.ID); err != nil {
		return inbox.SavedReply{}, err
	}
	saved.UseCount++
	return saved, nil
}

func (s *CollabService) GetContact(ctx context.Context, workspaceID uuid.UUID, platform, externalID string) (inbox.InboxContact, error) {
	return s.collab.GetContact(ctx, workspaceID, platform, externalID)
}
