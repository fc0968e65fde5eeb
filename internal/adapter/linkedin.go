package adapter

import (
	"encoding/json"
	"time"

	"socialflow/internal/domain/account"
	"socialflow/internal/domain/inbox"
	flow_errors "socialflow/pkg/errors"
)

type linkedinPayload struct {
	Events []struct {
		EventType string `json:"eventType"`
		CommentID string `json:"commentId"`
		ObjectURN string `json:"objectUrn"`
		CreatedAt int64  `json:"createdAt"`
		Actor     struct {
			ID         string `json:"id"`
			Name       string `json:"name"`
			ProfileURL string `json:"profileUrl"`
		} `json:"actor"`
		Message struct {
			Text string `json:"text"`
		} `json:"message"`
	} `json:"events"`
}

type LinkedInAdapter struct{}

func NewLinkedInAdapter() *LinkedInAdapter {
	return &LinkedInAdapter{}
}

func (a *LinkedInAdapter) Platform() account.Platform {
	return account.PlatformLinkedIn
}

func (a *LinkedInAdapter) Normalize(raw []byte) ([]NormalizedEvent, error) {
	var payload linkedinPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, flow_errors.ErrUnsupportedPayload
	}
	if len(payload.Events) == 0 {
		return nil, flow_errors.ErrUnsupportedPayload
	}

	var events []NormalizedEvent
	for _, e := range payload.Events {
		var itemType inbox.ItemType
		switch e.EventType {
		case "COMMENT":
			itemType = inbox.ItemTypeComment
		case "MENTION":
			itemType = inbox.ItemTypeMention
		default:
			continue
		}
		if e.CommentID == "" || e.Actor.ID == "" {
			return nil, flow_errors.ErrUnsupportedPayload
		}
		events = append(events, NormalizedEvent{
			PlatformItemID:   e.CommentID,
			PlatformPostID:   e.ObjectURN,
			ConversationKey:  "li:" + e.ObjectURN + ":" + e.Actor.ID,
			ItemType:         itemType,
			AuthorExternalID: e.Actor.ID,
			AuthorName:       e.Actor.Name,
			AuthorProfileURL: e.Actor.ProfileURL,
			ContentText:      e.Message.Text,
			OccurredAt:       time.UnixMilli(e.CreatedAt).UTC(),
		})
	}
	if len(events) == 0 {
		return nil, flow_errors.ErrUnsupportedPayload
	}
	return events, nil
}
