package adapter

import (
	"testing"
	"time"

	"socialflow/internal/domain/account"
	"socialflow/internal/domain/inbox"
	flow_errors "socialflow/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFacebookNormalizeComment(t *testing.T) {
	raw := []byte(`{
		"object": "page",
		"entry": [{
			"id": "page-1",
			"time": 1700000100,
			"changes": [{
				"field": "feed",
				"value": {
					"item": "comment",
					"verb": "add",
					"comment_id": "c1",
					"post_id": "p1",
					"message": "love this product",
					"created_time": 1700000000,
					"from": {"id": "u1", "name": "Jamie"}
				}
			}]
		}]
	}`)

	events, err := NewFacebookAdapter().Normalize(raw)
	require.NoError(t, err)
	require.Len(t, events, 1)

	ev := events[0]
	assert.Equal(t, "c1", ev.PlatformItemID)
	assert.Equal(t, "p1", ev.PlatformPostID)
	assert.Equal(t, "fb:p1:u1", ev.ConversationKey)
	assert.Equal(t, inbox.ItemTypeComment, ev.ItemType)
	assert.Equal(t, "u1", ev.AuthorExternalID)
	assert.Equal(t, "Jamie", ev.AuthorName)
	assert.Equal(t, "love this product", ev.ContentText)
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), ev.OccurredAt)
}

func TestFacebookNormalizeSkipsEditsAndRemoves(t *testing.T) {
	raw := []byte(`{
		"entry": [{
			"id": "page-1",
			"changes": [{
				"field": "feed",
				"value": {
					"item": "comment",
					"verb": "edited",
					"comment_id": "c1",
					"post_id": "p1",
					"from": {"id": "u1", "name": "Jamie"}
				}
			}]
		}]
	}`)

	_, err := NewFacebookAdapter().Normalize(raw)
	assert.ErrorIs(t, err, flow_errors.ErrUnsupportedPayload)
}

func TestFacebookNormalizeRejectsMissingFields(t *testing.T) {
	raw := []byte(`{
		"entry": [{
			"id": "page-1",
			"changes": [{
				"field": "feed",
				"value": {"item": "comment", "verb": "add", "post_id": "p1"}
			}]
		}]
	}`)

	_, err := NewFacebookAdapter().Normalize(raw)
	assert.ErrorIs(t, err, flow_errors.ErrUnsupportedPayload)
}

func TestFacebookNormalizeRejectsGarbage(t *testing.T) {
	_, err := NewFacebookAdapter().Normalize([]byte("not json"))
	assert.ErrorIs(t, err, flow_errors.ErrUnsupportedPayload)

	_, err = NewFacebookAdapter().Normalize([]byte(`{"entry": []}`))
	assert.ErrorIs(t, err, flow_errors.ErrUnsupportedPayload)
}

func TestTwitterNormalizeMentionAndDM(t *testing.T) {
	raw := []byte(`{
		"for_user_id": "acct-1",
		"tweet_create_events": [{
			"id_str": "t1",
			"text": "@brand great support",
			"created_at": "Wed Nov 15 10:00:00 +0000 2023",
			"in_reply_to_status_id_str": "t0",
			"user": {"id_str": "u9", "name": "Sam", "screen_name": "samtweets"}
		}],
		"direct_message_events": [{
			"id": "dm1",
			"created_timestamp": "1700000000000",
			"message_create": {
				"sender_id": "u9",
				"message_data": {"text": "hello"}
			}
		}]
	}`)

	events, err := NewTwitterAdapter().Normalize(raw)
	require.NoError(t, err)
	require.Len(t, events, 2)

	mention := events[0]
	assert.Equal(t, "t1", mention.PlatformItemID)
	assert.Equal(t, inbox.ItemTypeMention, mention.ItemType)
	assert.Equal(t, "tw:t0:u9", mention.ConversationKey)
	assert.Equal(t, "samtweets", mention.AuthorUsername)

	dm := events[1]
	assert.Equal(t, "dm1", dm.PlatformItemID)
	assert.Equal(t, inbox.ItemTypeMessage, dm.ItemType)
	assert.Equal(t, "tw:dm:u9", dm.ConversationKey)
	assert.Equal(t, time.UnixMilli(1700000000000).UTC(), dm.OccurredAt)
}

func TestRegistrySelectsByPlatform(t *testing.T) {
	reg := DefaultRegistry()

	for _, p := range []account.Platform{
		account.PlatformFacebook,
		account.PlatformInstagram,
		account.PlatformTwitter,
		account.PlatformLinkedIn,
	} {
		a, err := reg.Get(p)
		require.NoError(t, err)
		assert.Equal(t, p, a.Platform())
	}

	_, err := reg.Get(account.Platform("myspace"))
	assert.ErrorIs(t, err, flow_errors.ErrUnsupportedPayload)
}
