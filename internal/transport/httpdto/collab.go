package httpdto

import (
	"time"

	"socialflow/internal/domain/inbox"
)

type CreateNoteRequest struct {
	Content string `json:"content" binding:"required"`
}

type NoteResponse struct {
	ID          string    `json:"id"`
	InboxItemID string    `json:"inbox_item_id"`
	UserID      string    `json:"user_id"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"created_at"`
}

func FromNote(n inbox.InboxInternalNote) NoteResponse {
	return NoteResponse{
		ID:          n.ID.String(),
		InboxItemID: n.InboxItemID.String(),
		UserID:      n.UserID.String(),
		Content:     n.Content,
		CreatedAt:   n.CreatedAt,
	}
}

func FromNoteSlice(notes []inbox.InboxInternalNote) []NoteResponse {
	out := make([]NoteResponse, 0, len(notes))
	for _, n := range notes {
		out = append(out, FromNote(n))
	}
	return out
}

type CreateTagRequest struct {
	Name  string `json:"name" binding:"required"`
	Color string `json:"color"`
}

type TagResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

func FromTag(t inbox.InboxTag) TagResponse {
	return TagResponse{ID: t.ID.String(), Name: t.Name, Color: t.Color}
}

func FromTagSlice(tags []inbox.InboxTag) []TagResponse {
	out := make([]TagResponse, 0, len(tags))
	for _, t := range tags {
		out = append(out, FromTag(t))
	}
	return out
}

type CreateSavedReplyRequest struct {
	Title   string `json:"title" binding:"required"`
	Content string `json:"content" binding:"required"`
}

type SavedReplyResponse struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	UseCount int64  `json:"use_count"`
}

func FromSavedReply(s inbox.SavedReply) SavedReplyResponse {
	return SavedReplyResponse{
		ID:       s.ID.String(),
		Title:    s.Title,
		Content:  s.Content,
		UseCount: s.UseCount,
	}
}

func FromSavedReplySlice(saved []inbox.SavedReply) []SavedReplyResponse {
	out := make([]SavedReplyResponse, 0, len(saved))
	for _, s := range saved {
		out = append(out, FromSavedReply(s))
	}
	return out
}
