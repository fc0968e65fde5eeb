package services

import (
	"context"
	"testing"
	"time"

	"socialflow/internal/domain/metrics"
	"socialflow/internal/repository"
	flow_errors "socialflow/pkg/errors"
	"socialflow/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newMetricsService(t *testing.T, db *gorm.DB) *MetricsService {
	t.Helper()
	return NewMetricsService(repository.NewMetricsRepository(db), logger.New(logger.DevelopmentMode))
}

func seedTarget(t *testing.T, svc *MetricsService, workspaceID uuid.UUID) metrics.PostTarget {
	t.Helper()
	target, err := svc.CreatePostTarget(context.Background(), workspaceID, uuid.New(), "post-1", time.Now())
	require.NoError(t, err)
	return target
}

func TestCreatePostTargetRequiresPlatformPostID(t *testing.T) {
	svc := newMetricsService(t, newTestDB(t))

	_, err := svc.CreatePostTarget(context.Background(), uuid.New(), uuid.New(), "", time.Now())
	assert.ErrorIs(t, err, flow_errors.ErrInvalidInput)
}

func TestRecordSnapshotComputesEngagementRate(t *testing.T) {
	db := newTestDB(t)
	svc := newMetricsService(t, db)
	workspaceID := uuid.New()
	target := seedTarget(t, svc, workspaceID)

	snap, err := svc.RecordSnapshot(context.Background(), workspaceID, target.ID, SnapshotInput{
		Likes: 10, Comments: 4, Shares: 6, Impressions: 200, Reach: 150,
	})
	require.NoError(t, err)
	require.True(t, snap.EngagementRate.Valid)
	assert.InDelta(t, 0.1, snap.EngagementRate.Float64, 1e-9)
	assert.False(t, snap.CapturedAt.IsZero())
}

func TestRecordSnapshotWithoutImpressionsLeavesRateUnset(t *testing.T) {
	db := newTestDB(t)
	svc := newMetricsService(t, db)
	workspaceID := uuid.New()
	target := seedTarget(t, svc, workspaceID)

	snap, err := svc.RecordSnapshot(context.Background(), workspaceID, target.ID, SnapshotInput{
		Likes: 3, Comments: 1,
	})
	require.NoError(t, err)
	assert.False(t, snap.EngagementRate.Valid)
}

func TestRecordSnapshotRejectsNegativeCounts(t *testing.T) {
	db := newTestDB(t)
	svc := newMetricsService(t, db)
	workspaceID := uuid.New()
	target := seedTarget(t, svc, workspaceID)

	_, err := svc.RecordSnapshot(context.Background(), workspaceID, target.ID, SnapshotInput{Likes: -1})
	assert.ErrorIs(t, err, flow_errors.ErrInvalidInput)
}

func TestRecordSnapshotUnknownTarget(t *testing.T) {
	db := newTestDB(t)
	svc := newMetricsService(t, db)

	_, err := svc.RecordSnapshot(context.Background(), uuid.New(), uuid.New(), SnapshotInput{Likes: 1})
	assert.ErrorIs(t, err, flow_errors.ErrNotFound)
}

func TestRecordSnapshotIsWorkspaceScoped(t *testing.T) {
	db := newTestDB(t)
	svc := newMetricsService(t, db)
	target := seedTarget(t, svc, uuid.New())

	_, err := svc.RecordSnapshot(context.Background(), uuid.New(), target.ID, SnapshotInput{Likes: 1})
	assert.ErrorIs(t, err, flow_errors.ErrNotFound)
}

func TestBackfillRatesFillsOnlyMissingRates(t *testing.T) {
	db := newTestDB(t)
	svc := newMetricsService(t, db)
	ctx := context.Background()
	workspaceID := uuid.New()
	target := seedTarget(t, svc, workspaceID)

	early, err := svc.RecordSnapshot(ctx, workspaceID, target.ID, SnapshotInput{
		Likes: 5, Comments: 5, CapturedAt: time.Now().Add(-2 * time.Hour),
	})
	require.NoError(t, err)
	withRate, err := svc.RecordSnapshot(ctx, workspaceID, target.ID, SnapshotInput{
		Likes: 10, Impressions: 400, CapturedAt: time.Now().Add(-time.Hour),
	})
	require.NoError(t, err)

	require.NoError(t, svc.BackfillRates(ctx, workspaceID, target.ID, 100))

	var backfilled metrics.PostMetricSnapshot
	require.NoError(t, db.First(&backfilled, "id = ?", early.ID).Error)
	require.True(t, backfilled.EngagementRate.Valid)
	assert.InDelta(t, 0.1, backfilled.EngagementRate.Float64, 1e-9)

	var untouched metrics.PostMetricSnapshot
	require.NoError(t, db.First(&untouched, "id = ?", withRate.ID).Error)
	assert.InDelta(t, 0.025, untouched.EngagementRate.Float64, 1e-9)
}

func TestBackfillRatesRejectsNonPositiveImpressions(t *testing.T) {
	db := newTestDB(t)
	svc := newMetricsService(t, db)

	err := svc.BackfillRates(context.Background(), uuid.New(), uuid.New(), 0)
	assert.ErrorIs(t, err, flow_errors.ErrInvalidInput)
}

func TestListSnapshotsUnknownTarget(t *testing.T) {
	db := newTestDB(t)
	svc := newMetricsService(t, db)

	_, err := svc.ListSnapshots(context.Background(), uuid.New(), uuid.New(), time.Time{})
	assert.ErrorIs(t, err, flow_errors.ErrNotFound)
}

func TestListSnapshotsSinceFilter(t *testing.T) {
	db := newTestDB(t)
	svc := newMetricsService(t, db)
	ctx := context.Background()
	workspaceID := uuid.New()
	target := seedTarget(t, svc, workspaceID)

	_, err := svc.RecordSnapshot(ctx, workspaceID, target.ID, SnapshotInput{
		Likes: 1, CapturedAt: time.Now().Add(-48 * time.Hour),
	})
	require.NoError(t, err)
	recent, err := svc.RecordSnapshot(ctx, workspaceID, target.ID, SnapshotInput{
		Likes: 2, CapturedAt: time.Now().Add(-time.Hour),
	})
	require.NoError(t, err)

	snaps, err := svc.ListSnapshots(ctx, workspaceID, target.ID, time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.Equal(t, recent.ID, snaps[0].ID)
}
