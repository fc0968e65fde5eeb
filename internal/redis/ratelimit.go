package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Rate limiting key patterns:
// - ratelimit:webhook:{account_id} - per-account webhook delivery limit
// - ratelimit:api:{user_id}        - per-user API request limit

type RateLimitConfig struct {
	WebhookLimit  int
	WebhookWindow time.Duration
	APILimit      int
	APIWindow     time.Duration
}

func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		WebhookLimit:  600,
		WebhookWindow: 60 * time.Second,
		APILimit:      240,
		APIWindow:     60 * time.Second,
	}
}

// RateLimiter implements fixed-window counting in Redis.
type RateLimiter struct {
	client *goredis.Client
	config RateLimitConfig
}

// RateLimitResult contains the result of a rate limit check.
type RateLimitResult struct {
	Allowed   bool
	Remaining int
	ResetIn   time.Duration
	Limit     int
}

func NewRateLimiter(client *goredis.Client, config RateLimitConfig) *RateLimiter {
	return &RateLimiter{client: client, config: config}
}

// AllowWebhook checks the delivery budget for one social account.
func (r *RateLimiter) AllowWebhook(ctx context.Context, accountID string) (*RateLimitResult, error) {
	key := fmt.Sprintf("ratelimit:webhook:%s", accountID)
	return r.allow(ctx, key, r.config.WebhookLimit, r.config.WebhookWindow)
}

// AllowAPI checks the request budget for one authenticated user.
func (r *RateLimiter) AllowAPI(ctx context.Context, userID string) (*RateLimitResult, error) {
	key := fmt.Sprintf("ratelimit:api:%s", userID)
	return r.allow(ctx, key, r.config.APILimit, r.config.APIWindow)
}

// allow increments the window counter and compares against the limit.
// The first hit in a window sets the TTL; later hits inherit it, so the
// window is fixed, not sliding.
func (r *RateLimiter) allow(ctx context.Context, key string, limit int, window time.Duration) (*RateLimitResult, error) {
	pipe := r.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, window)
	ttl := pipe.TTL(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}

	count := int(incr.Val())
	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}
	resetIn := ttl.Val()
	if resetIn < 0 {
		resetIn = window
	}

	return &RateLimitResult{
		Allowed:   count <= limit,
		Remaining: remaining,
		ResetIn:   resetIn,
		Limit:     limit,
	}, nil
}
