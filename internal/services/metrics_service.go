package services

import (
	"context"
	"time"

	"socialflow/internal/domain/metrics"
	"socialflow/internal/repository"
	flow_errors "socialflow/pkg/errors"
	"socialflow/pkg/logger"

	"github.com/google/uuid"
)

// MetricsService records append-only engagement snapshots for post
// targets. Snapshots are immutable after insert; the only write-back is
// the derived engagement_rate, filled in once impressions are known.
type MetricsService struct {
	metrics repository.MetricsRepository
	log     *logger.Logger
}

func NewMetricsService(metrics repository.MetricsRepository, log *logger.Logger) *MetricsService {
	return &MetricsService{metrics: metrics, log: log}
}

type SnapshotInput struct {
	Likes       int64
	Comments    int64
	Shares      int64
	Impressions int64
	Reach       int64
	CapturedAt  time.Time
}

// RecordSnapshot appends one capture for the target. engagement_rate is
// computed immediately when impressions are present; otherwise the row
// is inserted without it and backfilled by a later capture that has
// impression data.
func (s *MetricsService) RecordSnapshot(ctx context.Context, workspaceID, postTargetID uuid.UUID, in SnapshotInput) (metrics.PostMetricSnapshot, error) {
	if in.Likes < 0 || in.Comments < 0 || in.Shares < 0 || in.Impressions < 0 || in.Reach < 0 {
		return metrics.PostMetricSnapshot{}, flow_errors.ErrInvalidInput
	}
	target, err := s.metrics.GetPostTarget(ctx, workspaceID, postTargetID)
	if err != nil {
		return metrics.PostMetricSnapshot{}, err
	}

	capturedAt := in.CapturedAt
	if capturedAt.IsZero() {
		capturedAt = time.Now()
	}
	snap := metrics.PostMetricSnapshot{
		ID:           uuid.New(),
		WorkspaceID:  workspaceID,
		PostTargetID: target.ID,
		Likes:        in.Likes,
		Comments:     in.Comments,
		Shares:       in.Shares,
		Impressions:  in.Impressions,
		Reach:        in.Reach,
		CapturedAt:   capturedAt,
		CreatedAt:    time.Now(),
	}
	if in.Impressions > 0 {
		snap.EngagementRate.Float64 = engagementRate(in)
		snap.EngagementRate.Valid = true
	}
	if err := s.metrics.CreateSnapshot(ctx, &snap); err != nil {
		return metrics.PostMetricSnapshot{}, err
	}
	return snap, nil
}

// BackfillRates fills engagement_rate on earlier snapshots of the target
// using the given impression count, for platforms that report engagement
// counts before impressions.
func (s *MetricsService) BackfillRates(ctx context.Context, workspaceID, postTargetID uuid.UUID, impressions int64) error {
	if impressions <= 0 {
		return flow_errors.ErrInvalidInput
	}
	snaps, err := s.metrics.ListSnapshots(ctx, workspaceID, postTargetID, time.Time{})
	if err != nil {
		return err
	}
	for _, snap := range snaps {
		if snap.EngagementRate.Valid {
			continue
		}
		rate := float64(snap.Likes+snap.Comments+snap.Shares) / float64(impressions)
		if err := s.metrics.BackfillEngagementRate(ctx, snap.ID, rate); err != nil {
			s.log.Errorf("engagement backfill for snapshot %s failed: %v", snap.ID, err)
		}
	}
	return nil
}

func (s *MetricsService) CreatePostTarget(ctx context.Context, workspaceID, socialAccountID uuid.UUID, platformPostID string, publishedAt time.Time) (metrics.PostTarget, error) {
	if platformPostID == "" {
		return metrics.PostTarget{}, flow_errors.ErrInvalidInput
	}
	now := time.Now()
	target := metrics.PostTarget{
		ID:              uuid.New(),
		WorkspaceID:     workspaceID,
		SocialAccountID: socialAccountID,
		PlatformPostID:  platformPostID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if !publishedAt.IsZero() {
		target.PublishedAt.Time = publishedAt
		target.PublishedAt.Valid = true
	}
	if err := s.metrics.CreatePostTarget(ctx, &target); err != nil {
		return metrics.PostTarget{}, err
	}
	return target, nil
}

func (s *MetricsService) ListPostTargets(ctx context.Context, workspaceID uuid.UUID) ([]metrics.PostTarget, error) {
	return s.metrics.ListPostTargets(ctx, workspaceID)
}

func (s *MetricsService) ListSnapshots(ctx context.Context, workspaceID, postTargetID uuid.UUID, since time.Time) ([]metrics.PostMetricSnapshot, error) {
	if _, err := s.metrics.GetPostTarget(ctx, workspaceID, postTargetID); err != nil {
		return nil, err
	}
	return s.metrics.ListSnapshots(ctx, workspaceID, postTargetID, since)
}

func engagementRate(in SnapshotInput) float64 {
	return float64(in.Likes+in.Comments+in.Shares) / float64(in.Impressions)
}
