package httpdto

import (
	"time"

	"socialflow/internal/domain/inbox"
)

type CreateReplyRequest struct {
	Content string `json:"content" binding:"required"`
}

type ReplyResponse struct {
	ID              string     `json:"id"`
	InboxItemID     string     `json:"inbox_item_id"`
	UserID          string     `json:"user_id"`
	Content         string     `json:"content"`
	Sent            bool       `json:"sent"`
	PlatformReplyID string     `json:"platform_reply_id,omitempty"`
	SentAt          *time.Time `json:"sent_at,omitempty"`
	FailedAt        *time.Time `json:"failed_at,omitempty"`
	FailureReason   string     `json:"failure_reason,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

func FromReply(r inbox.InboxReply) ReplyResponse {
	res := ReplyResponse{
		ID:              r.ID.String(),
		InboxItemID:     r.InboxItemID.String(),
		UserID:          r.UserID.String(),
		Content:         r.Content,
		Sent:            r.Sent(),
		PlatformReplyID: r.PlatformReplyID.String,
		FailureReason:   r.FailureReason.String,
		CreatedAt:       r.CreatedAt,
	}
	if r.SentAt.Valid {
		t := r.SentAt.Time
		res.SentAt = &t
	}
	if r.FailedAt.Valid {
		t := r.FailedAt.Time
		res.FailedAt = &t
	}
	return res
}

func FromReplySlice(replies []inbox.InboxReply) []ReplyResponse {
	out := make([]ReplyResponse, 0, len(replies))
	for _, r := range replies {
		out = append(out, FromReply(r))
	}
	return out
}
