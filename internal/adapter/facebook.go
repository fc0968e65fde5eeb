package adapter

import (
	"encoding/json"
	"fmt"
	"time"

	"socialflow/internal/domain/account"
	"socialflow/internal/domain/inbox"
	flow_errors "socialflow/pkg/errors"
)

// facebookPayload mirrors the Graph API webhook envelope:
// entry[].changes[].value carries the actual change.
type facebookPayload struct {
	Object string `json:"object"`
	Entry  []struct {
		ID      string `json:"id"`
		Time    int64  `json:"time"`
		Changes []struct {
			Field string              `json:"field"`
			Value facebookChangeValue `json:"value"`
		} `json:"changes"`
	} `json:"entry"`
}

type facebookChangeValue struct {
	Item        string `json:"item"`
	Verb        string `json:"verb"`
	CommentID   string `json:"comment_id"`
	PostID      string `json:"post_id"`
	Message     string `json:"message"`
	CreatedTime int64  `json:"created_time"`
	From        struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"from"`
}

type FacebookAdapter struct{}

func NewFacebookAdapter() *FacebookAdapter {
	return &FacebookAdapter{}
}

func (a *FacebookAdapter) Platform() account.Platform {
	return account.PlatformFacebook
}

func (a *FacebookAdapter) Normalize(raw []byte) ([]NormalizedEvent, error) {
	var payload facebookPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, flow_errors.ErrUnsupportedPayload
	}
	if len(payload.Entry) == 0 {
		return nil, flow_errors.ErrUnsupportedPayload
	}

	var events []NormalizedEvent
	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			if change.Field != "feed" {
				continue
			}
			v := change.Value
			// Only additions produce inbox items; edits and removes are
			// platform-side bookkeeping.
			if v.Verb != "" && v.Verb != "add" {
				continue
			}
			itemType, ok := facebookItemType(v.Item)
			if !ok {
				continue
			}
			if v.CommentID == "" || v.From.ID == "" {
				return nil, flow_errors.ErrUnsupportedPayload
			}
			occurred := time.Unix(v.CreatedTime, 0).UTC()
			if v.CreatedTime == 0 {
				occurred = time.Unix(entry.Time, 0).UTC()
			}
			events = append(events, NormalizedEvent{
				PlatformItemID:   v.CommentID,
				PlatformPostID:   v.PostID,
				ConversationKey:  fmt.Sprintf("fb:%s:%s", v.PostID, v.From.ID),
				ItemType:         itemType,
				AuthorExternalID: v.From.ID,
				AuthorName:       v.From.Name,
				AuthorProfileURL: "https://facebook.com/" + v.From.ID,
				ContentText:      v.Message,
				OccurredAt:       occurred,
			})
		}
	}
	if len(events) == 0 {
		return nil, flow_errors.ErrUnsupportedPayload
	}
	return events, nil
}

func facebookItemType(item string) (inbox.ItemType, bool) {
	switch item {
	case "comment":
		return inbox.ItemTypeComment, true
	case "mention":
		return inbox.ItemTypeMention, true
	case "review", "rating":
		return inbox.ItemTypeReview, true
	}
	return "", false
}
