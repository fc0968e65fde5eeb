package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"socialflow/internal/domain/account"
	flow_errors "socialflow/pkg/errors"
)

// ReplySender posts an outbound reply to one platform. Implementations
// must honor ctx cancellation; callers wrap dispatch in a hard timeout so
// a hung platform call is recorded as failed, never left unknown.
type ReplySender interface {
	Platform() account.Platform
	SendReply(ctx context.Context, acct account.SocialAccount, externalItemID, text string) (string, error)
}

// ReplyRegistry selects a sender by platform.
type ReplyRegistry struct {
	senders map[account.Platform]ReplySender
}

func NewReplyRegistry(senders ...ReplySender) *ReplyRegistry {
	r := &ReplyRegistry{senders: make(map[account.Platform]ReplySender)}
	for _, s := range senders {
		r.senders[s.Platform()] = s
	}
	return r
}

// DefaultReplyRegistry wires HTTP senders for all supported platforms.
func DefaultReplyRegistry(timeout time.Duration) *ReplyRegistry {
	client := &http.Client{Timeout: timeout}
	return NewReplyRegistry(
		&FacebookReplySender{Client: client, BaseURL: "https://graph.facebook.com/v19.0"},
		&InstagramReplySender{Client: client, BaseURL: "https://graph.facebook.com/v19.0"},
		&TwitterReplySender{Client: client, BaseURL: "https://api.twitter.com/2"},
		&LinkedInReplySender{Client: client, BaseURL: "https://api.linkedin.com/v2"},
	)
}

func (r *ReplyRegistry) Get(platform account.Platform) (ReplySender, error) {
	s, ok := r.senders[platform]
	if !ok {
		return nil, flow_errors.ErrPlatformRejected
	}
	return s, nil
}

// FacebookReplySender posts a comment under an existing comment via the
// Graph API.
type FacebookReplySender struct {
	Client  *http.Client
	BaseURL string
}

func (s *FacebookReplySender) Platform() account.Platform {
	return account.PlatformFacebook
}

func (s *FacebookReplySender) SendReply(ctx context.Context, acct account.SocialAccount, externalItemID, text string) (string, error) {
	form := url.Values{}
	form.Set("message", text)
	form.Set("access_token", acct.AccessToken)
	endpoint := fmt.Sprintf("%s/%s/comments", s.BaseURL, externalItemID)
	return postForID(ctx, s.Client, endpoint, "application/x-www-form-urlencoded", strings.NewReader(form.Encode()), "")
}

// InstagramReplySender posts to the comment replies edge.
type InstagramReplySender struct {
	Client  *http.Client
	BaseURL string
}

func (s *InstagramReplySender) Platform() account.Platform {
	return account.PlatformInstagram
}

func (s *InstagramReplySender) SendReply(ctx context.Context, acct account.SocialAccount, externalItemID, text string) (string, error) {
	form := url.Values{}
	form.Set("message", text)
	form.Set("access_token", acct.AccessToken)
	endpoint := fmt.Sprintf("%s/%s/replies", s.BaseURL, externalItemID)
	return postForID(ctx, s.Client, endpoint, "application/x-www-form-urlencoded", strings.NewReader(form.Encode()), "")
}

// TwitterReplySender creates a reply tweet.
type TwitterReplySender struct {
	Client  *http.Client
	BaseURL string
}

func (s *TwitterReplySender) Platform() account.Platform {
	return account.PlatformTwitter
}

func (s *TwitterReplySender) SendReply(ctx context.Context, acct account.SocialAccount, externalItemID, text string) (string, error) {
	body, err := json.Marshal(map[string]interface{}{
		"text":  text,
		"reply": map[string]string{"in_reply_to_tweet_id": externalItemID},
	})
	if err != nil {
		return "", err
	}
	return postForID(ctx, s.Client, s.BaseURL+"/tweets", "application/json", strings.NewReader(string(body)), acct.AccessToken)
}

// LinkedInReplySender posts a comment on a social action URN.
type LinkedInReplySender struct {
	Client  *http.Client
	BaseURL string
}

func (s *LinkedInReplySender) Platform() account.Platform {
	return account.PlatformLinkedIn
}

func (s *LinkedInReplySender) SendReply(ctx context.Context, acct account.SocialAccount, externalItemID, text string) (string, error) {
	body, err := json.Marshal(map[string]interface{}{
		"message": map[string]string{"text": text},
	})
	if err != nil {
		return "", err
	}
	endpoint := fmt.Sprintf("%s/socialActions/%s/comments", s.BaseURL, url.PathEscape(externalItemID))
	return postForID(ctx, s.Client, endpoint, "application/json", strings.NewReader(string(body)), acct.AccessToken)
}

// postForID executes the request and extracts the created object id from
// the response body ("id" or "data.id").
func postForID(ctx context.Context, client *http.Client, endpoint, contentType string, body io.Reader, bearer string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", contentType)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: status %d: %s", flow_errors.ErrPlatformRejected, resp.StatusCode, truncate(string(raw), 256))
	}

	var parsed struct {
		ID   string `json:"id"`
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("%w: unparseable response", flow_errors.ErrPlatformRejected)
	}
	if parsed.ID != "" {
		return parsed.ID, nil
	}
	if parsed.Data.ID != "" {
		return parsed.Data.ID, nil
	}
	return "", fmt.Errorf("%w: response missing id", flow_errors.ErrPlatformRejected)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
