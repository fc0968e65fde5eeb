package httpdto

import (
	"time"

	"socialflow/internal/domain/metrics"
)

type CreatePostTargetRequest struct {
	SocialAccountID string     `json:"social_account_id" binding:"required"`
	PlatformPostID  string     `json:"platform_post_id" binding:"required"`
	PublishedAt     *time.Time `json:"published_at"`
}

type PostTargetResponse struct {
	ID              string     `json:"id"`
	SocialAccountID string     `json:"social_account_id"`
	PlatformPostID  string     `json:"platform_post_id"`
	PublishedAt     *time.Time `json:"published_at,omitempty"`
}

func FromPostTarget(t metrics.PostTarget) PostTargetResponse {
	res := PostTargetResponse{
		ID:              t.ID.String(),
		SocialAccountID: t.SocialAccountID.String(),
		PlatformPostID:  t.PlatformPostID,
	}
	if t.PublishedAt.Valid {
		at := t.PublishedAt.Time
		res.PublishedAt = &at
	}
	return res
}

func FromPostTargetSlice(targets []metrics.PostTarget) []PostTargetResponse {
	out := make([]PostTargetResponse, 0, len(targets))
	for _, t := range targets {
		out = append(out, FromPostTarget(t))
	}
	return out
}

type RecordSnapshotRequest struct {
	Likes       int64      `json:"likes"`
	Comments    int64      `json:"comments"`
	Shares      int64      `json:"shares"`
	Impressions int64      `json:"impressions"`
	Reach       int64      `json:"reach"`
	CapturedAt  *time.Time `json:"captured_at"`
}

type SnapshotResponse struct {
	ID             string    `json:"id"`
	PostTargetID   string    `json:"post_target_id"`
	Likes          int64     `json:"likes"`
	Comments       int64     `json:"comments"`
	Shares         int64     `json:"shares"`
	Impressions    int64     `json:"impressions"`
	Reach          int64     `json:"reach"`
	EngagementRate *float64  `json:"engagement_rate,omitempty"`
	CapturedAt     time.Time `json:"captured_at"`
}

func FromSnapshot(s metrics.PostMetricSnapshot) SnapshotResponse {
	res := SnapshotResponse{
		ID:           s.ID.String(),
		PostTargetID: s.PostTargetID.String(),
		Likes:        s.Likes,
		Comments:     s.Comments,
		Shares:       s.Shares,
		Impressions:  s.Impressions,
		Reach:        s.Reach,
		CapturedAt:   s.CapturedAt,
	}
	if s.EngagementRate.Valid {
		rate := s.EngagementRate.Float64
		res.EngagementRate = &rate
	}
	return res
}

func FromSnapshotSlice(snaps []metrics.PostMetricSnapshot) []SnapshotResponse {
	out := make([]SnapshotResponse, 0, len(snaps))
	for _, s := range snaps {
		out = append(out, FromSnapshot(s))
	}
	return out
}
