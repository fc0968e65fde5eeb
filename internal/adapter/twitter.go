package adapter

import (
	"encoding/json"
	"time"

	"socialflow/internal/domain/account"
	"socialflow/internal/domain/inbox"
	flow_errors "socialflow/pkg/errors"
)

// twitterPayload mirrors the Account Activity API envelope.
type twitterPayload struct {
	ForUserID         string `json:"for_user_id"`
	TweetCreateEvents []struct {
		IDStr     string `json:"id_str"`
		Text      string `json:"text"`
		CreatedAt string `json:"created_at"`
		InReplyTo string `json:"in_reply_to_status_id_str"`
		User      struct {
			IDStr      string `json:"id_str"`
			Name       string `json:"name"`
			ScreenName string `json:"screen_name"`
		} `json:"user"`
	} `json:"tweet_create_events"`
	DirectMessageEvents []struct {
		ID               string `json:"id"`
		CreatedTimestamp string `json:"created_timestamp"`
		MessageCreate    struct {
			SenderID    string `json:"sender_id"`
			MessageData struct {
				Text string `json:"text"`
			} `json:"message_data"`
		} `json:"message_create"`
	} `json:"direct_message_events"`
}

// Twitter's legacy created_at format.
const twitterTimeLayout = "Mon Jan 2 15:04:05 -0700 2006"

type TwitterAdapter struct{}

func NewTwitterAdapter() *TwitterAdapter {
	return &TwitterAdapter{}
}

func (a *TwitterAdapter) Platform() account.Platform {
	return account.PlatformTwitter
}

func (a *TwitterAdapter) Normalize(raw []byte) ([]NormalizedEvent, error) {
	var payload twitterPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, flow_errors.ErrUnsupportedPayload
	}

	var events []NormalizedEvent
	for _, t := range payload.TweetCreateEvents {
		if t.IDStr == "" || t.User.IDStr == "" {
			return nil, flow_errors.ErrUnsupportedPayload
		}
		occurred, err := time.Parse(twitterTimeLayout, t.CreatedAt)
		if err != nil {
			occurred = time.Now().UTC()
		}
		// Thread on the replied-to tweet when present so a back-and-forth
		// lands in one conversation.
		threadRoot := t.InReplyTo
		if threadRoot == "" {
			threadRoot = t.IDStr
		}
		events = append(events, NormalizedEvent{
			PlatformItemID:   t.IDStr,
			PlatformPostID:   t.InReplyTo,
			ConversationKey:  "tw:" + threadRoot + ":" + t.User.IDStr,
			ItemType:         inbox.ItemTypeMention,
			AuthorExternalID: t.User.IDStr,
			AuthorName:       t.User.Name,
			AuthorUsername:   t.User.ScreenName,
			AuthorProfileURL: "https://twitter.com/" + t.User.ScreenName,
			ContentText:      t.Text,
			OccurredAt:       occurred.UTC(),
		})
	}
	for _, dm := range payload.DirectMessageEvents {
		if dm.ID == "" || dm.MessageCreate.SenderID == "" {
			return nil, flow_errors.ErrUnsupportedPayload
		}
		occurred := time.Now().UTC()
		if ts := dm.CreatedTimestamp; ts != "" {
			var ms int64
			if err := json.Unmarshal([]byte(ts), &ms); err == nil && ms > 0 {
				occurred = time.UnixMilli(ms).UTC()
			}
		}
		events = append(events, NormalizedEvent{
			PlatformItemID:   dm.ID,
			ConversationKey:  "tw:dm:" + dm.MessageCreate.SenderID,
			ItemType:         inbox.ItemTypeMessage,
			AuthorExternalID: dm.MessageCreate.SenderID,
			AuthorName:       dm.MessageCreate.SenderID,
			ContentText:      dm.MessageCreate.MessageData.Text,
			OccurredAt:       occurred,
		})
	}
	if len(events) == 0 {
		return nil, flow_errors.ErrUnsupportedPayload
	}
	return events, nil
}
