package adapter

import (
	"encoding/json"
	"fmt"
	"time"

	"socialflow/internal/domain/account"
	"socialflow/internal/domain/inbox"
	flow_errors "socialflow/pkg/errors"
)

// Instagram shares the Graph API envelope with Facebook but the change
// value uses different field names (text instead of message, media
// instead of post_id).
type instagramPayload struct {
	Object string `json:"object"`
	Entry  []struct {
		ID      string `json:"id"`
		Time    int64  `json:"time"`
		Changes []struct {
			Field string               `json:"field"`
			Value instagramChangeValue `json:"value"`
		} `json:"changes"`
	} `json:"entry"`
}

type instagramChangeValue struct {
	ID    string `json:"id"`
	Text  string `json:"text"`
	Media struct {
		ID string `json:"id"`
	} `json:"media"`
	From struct {
		ID       string `json:"id"`
		Username string `json:"username"`
	} `json:"from"`
}

type InstagramAdapter struct{}

func NewInstagramAdapter() *InstagramAdapter {
	return &InstagramAdapter{}
}

func (a *InstagramAdapter) Platform() account.Platform {
	return account.PlatformInstagram
}

func (a *InstagramAdapter) Normalize(raw []byte) ([]NormalizedEvent, error) {
	var payload instagramPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, flow_errors.ErrUnsupportedPayload
	}
	if len(payload.Entry) == 0 {
		return nil, flow_errors.ErrUnsupportedPayload
	}

	var events []NormalizedEvent
	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			var itemType inbox.ItemType
			switch change.Field {
			case "comments":
				itemType = inbox.ItemTypeComment
			case "mentions":
				itemType = inbox.ItemTypeMention
			case "story_insights", "story_mentions":
				itemType = inbox.ItemTypeStoryMention
			default:
				continue
			}
			v := change.Value
			if v.ID == "" || v.From.ID == "" {
				return nil, flow_errors.ErrUnsupportedPayload
			}
			events = append(events, NormalizedEvent{
				PlatformItemID:   v.ID,
				PlatformPostID:   v.Media.ID,
				ConversationKey:  fmt.Sprintf("ig:%s:%s", v.Media.ID, v.From.ID),
				ItemType:         itemType,
				AuthorExternalID: v.From.ID,
				AuthorName:       v.From.Username,
				AuthorUsername:   v.From.Username,
				AuthorProfileURL: "https://instagram.com/" + v.From.Username,
				ContentText:      v.Text,
				OccurredAt:       time.Unix(entry.Time, 0).UTC(),
			})
		}
	}
	if len(events) == 0 {
		return nil, flow_errors.ErrUnsupportedPayload
	}
	return events, nil
}
