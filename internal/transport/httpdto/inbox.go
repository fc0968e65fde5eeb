package httpdto

import (
	"time"

	"socialflow/internal/domain/inbox"
)

type InboxItemResponse struct {
	ID                string     `json:"id"`
	SocialAccountID   string     `json:"social_account_id"`
	ConversationID    string     `json:"conversation_id,omitempty"`
	PlatformItemID    string     `json:"platform_item_id"`
	ItemType          string     `json:"item_type"`
	Status            string     `json:"status"`
	PlatformPostID    string     `json:"platform_post_id,omitempty"`
	AuthorName        string     `json:"author_name,omitempty"`
	AuthorUsername    string     `json:"author_username,omitempty"`
	ContentText       string     `json:"content_text"`
	PlatformCreatedAt time.Time  `json:"platform_created_at"`
	AssignedToUserID  string     `json:"assigned_to_user_id,omitempty"`
	ResolvedAt        *time.Time `json:"resolved_at,omitempty"`
	ResolvedByUserID  string     `json:"resolved_by_user_id,omitempty"`
	ArchivedAt        *time.Time `json:"archived_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

func FromInboxItem(item inbox.InboxItem) InboxItemResponse {
	res := InboxItemResponse{
		ID:                item.ID.String(),
		SocialAccountID:   item.SocialAccountID.String(),
		PlatformItemID:    item.PlatformItemID,
		ItemType:          string(item.ItemType),
		Status:            string(item.Status),
		PlatformPostID:    item.PlatformPostID.String,
		AuthorName:        item.AuthorName,
		AuthorUsername:    item.AuthorUsername.String,
		ContentText:       item.ContentText,
		PlatformCreatedAt: item.PlatformCreatedAt,
		CreatedAt:         item.CreatedAt,
	}
	if item.ConversationID.Valid {
		res.ConversationID = item.ConversationID.UUID.String()
	}
	if item.AssignedToUserID.Valid {
		res.AssignedToUserID = item.AssignedToUserID.UUID.String()
	}
	if item.ResolvedAt.Valid {
		t := item.ResolvedAt.Time
		res.ResolvedAt = &t
	}
	if item.ResolvedByUserID.Valid {
		res.ResolvedByUserID = item.ResolvedByUserID.UUID.String()
	}
	if item.ArchivedAt.Valid {
		t := item.ArchivedAt.Time
		res.ArchivedAt = &t
	}
	return res
}

func FromInboxItemSlice(items []inbox.InboxItem) []InboxItemResponse {
	out := make([]InboxItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, FromInboxItem(item))
	}
	return out
}

type ListItemsResponse struct {
	Items []InboxItemResponse `json:"items"`
	Total int64               `json:"total"`
}

type AssignRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

type BulkActionRequest struct {
	IDs []string `json:"ids" binding:"required"`
}

type BulkActionResponse struct {
	Requested int `json:"requested"`
	Mutated   int `json:"mutated"`
}

type ConversationResponse struct {
	ID              string     `json:"id"`
	SocialAccountID string     `json:"social_account_id"`
	ConversationKey string     `json:"conversation_key"`
	ParticipantName string     `json:"participant_name,omitempty"`
	Status          string     `json:"status"`
	MessageCount    int64      `json:"message_count"`
	FirstMessageAt  *time.Time `json:"first_message_at,omitempty"`
	LastMessageAt   *time.Time `json:"last_message_at,omitempty"`
}

func FromConversation(c inbox.InboxConversation) ConversationResponse {
	res := ConversationResponse{
		ID:              c.ID.String(),
		SocialAccountID: c.SocialAccountID.String(),
		ConversationKey: c.ConversationKey,
		ParticipantName: c.ParticipantName,
		Status:          string(c.Status),
		MessageCount:    c.MessageCount,
	}
	if c.FirstMessageAt.Valid {
		t := c.FirstMessageAt.Time
		res.FirstMessageAt = &t
	}
	if c.LastMessageAt.Valid {
		t := c.LastMessageAt.Time
		res.LastMessageAt = &t
	}
	return res
}

func FromConversationSlice(convs []inbox.InboxConversation) []ConversationResponse {
	out := make([]ConversationResponse, 0, len(convs))
	for _, c := range convs {
		out = append(out, FromConversation(c))
	}
	return out
}

type ListConversationsResponse struct {
	Conversations []ConversationResponse `json:"conversations"`
	Total         int64                  `json:"total"`
}
