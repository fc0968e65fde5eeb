package workers

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"socialflow/internal/automation"
	"socialflow/internal/domain/job"
	"socialflow/internal/domain/notification"
	"socialflow/internal/repository"
	"socialflow/internal/services"
	"socialflow/internal/storage"
	flow_errors "socialflow/pkg/errors"
	"socialflow/pkg/logger"

	"github.com/google/uuid"
)

// Handler payload shapes. These mirror what the enqueueing side writes;
// both sides evolve together because the queue is internal.

type evaluatePayload struct {
	ItemID uuid.UUID `json:"item_id"`
}

type replyDispatchPayload struct {
	ReplyID uuid.UUID `json:"reply_id"`
}

type metricsFetchPayload struct {
	PostTargetID uuid.UUID `json:"post_target_id"`
	Likes        int64     `json:"likes"`
	Comments     int64     `json:"comments"`
	Shares       int64     `json:"shares"`
	Impressions  int64     `json:"impressions"`
	Reach        int64     `json:"reach"`
	CapturedAt   time.Time `json:"captured_at"`
}

type notificationPayload struct {
	UserID  uuid.UUID `json:"user_id"`
	Type    string    `json:"type"`
	Title   string    `json:"title"`
	Message string    `json:"message"`
	Data    string    `json:"data"`
}

type payloadArchivePayload struct {
	AccountID uuid.UUID `json:"account_id"`
	Platform  string    `json:"platform"`
	Body      []byte    `json:"body"`
}

// NewAutomationHandler evaluates rules against a freshly ingested item.
// An item deleted between enqueue and execution completes the job; the
// work is moot, not failed.
func NewAutomationHandler(engine *automation.Engine, items repository.InboxItemRepository, log *logger.Logger) HandlerFunc {
	return func(ctx context.Context, j job.Job) error {
		var p evaluatePayload
		if err := json.Unmarshal(j.Payload, &p); err != nil {
			return err
		}
		item, err := items.GetByID(ctx, j.WorkspaceID, p.ItemID)
		if err != nil {
			if errors.Is(err, flow_errors.ErrNotFound) {
				return nil
			}
			return err
		}
		fired, err := engine.Evaluate(ctx, item)
		if err != nil {
			return err
		}
		if len(fired) > 0 {
			log.Infof("item %s matched %d automation rule(s)", item.ID, len(fired))
		}
		return nil
	}
}

// NewReplyDispatchHandler performs the platform call for a queued reply.
func NewReplyDispatchHandler(replies *services.ReplyService) HandlerFunc {
	return func(ctx context.Context, j job.Job) error {
		var p replyDispatchPayload
		if err := json.Unmarshal(j.Payload, &p); err != nil {
			return err
		}
		err := replies.Dispatch(ctx, j.WorkspaceID, p.ReplyID)
		if errors.Is(err, flow_errors.ErrNotFound) {
			return nil
		}
		return err
	}
}

// NewMetricsHandler records an engagement snapshot delivered by the
// platform polling collaborator.
func NewMetricsHandler(metrics *services.MetricsService) HandlerFunc {
	return func(ctx context.Context, j job.Job) error {
		var p metricsFetchPayload
		if err := json.Unmarshal(j.Payload, &p); err != nil {
			return err
		}
		_, err := metrics.RecordSnapshot(ctx, j.WorkspaceID, p.PostTargetID, services.SnapshotInput{
			Likes:       p.Likes,
			Comments:    p.Comments,
			Shares:      p.Shares,
			Impressions: p.Impressions,
			Reach:       p.Reach,
			CapturedAt:  p.CapturedAt,
		})
		if errors.Is(err, flow_errors.ErrNotFound) {
			return nil
		}
		return err
	}
}

// NewArchiveSweepHandler archives resolved items older than the
// retention window. One run processes a bounded batch; the scheduler
// enqueues sweeps often enough that the backlog drains.
func NewArchiveSweepHandler(items repository.InboxItemRepository, retention time.Duration, batchSize int, log *logger.Logger) HandlerFunc {
	return func(ctx context.Context, j job.Job) error {
		cutoff := time.Now().Add(-retention)
		stale, err := items.ListResolvedBefore(ctx, cutoff, batchSize)
		if err != nil {
			return err
		}
		archived := 0
		now := time.Now()
		for i := range stale {
			if !stale[i].Archive(now) {
				continue
			}
			if err := items.Update(ctx, stale[i]); err != nil {
				log.Errorf("archive of item %s failed: %v", stale[i].ID, err)
				continue
			}
			archived++
		}
		if archived > 0 {
			log.Infof("archive sweep closed %d item(s)", archived)
		}
		return nil
	}
}

// NewNotificationHandler materializes a queued notification row.
func NewNotificationHandler(notifs repository.NotificationRepository) HandlerFunc {
	return func(ctx context.Context, j job.Job) error {
		var p notificationPayload
		if err := json.Unmarshal(j.Payload, &p); err != nil {
			return err
		}
		data := p.Data
		if data == "" {
			data = "{}"
		}
		return notifs.Create(ctx, &notification.Notification{
			ID:          uuid.New(),
			WorkspaceID: j.WorkspaceID,
			UserID:      p.UserID,
			Type:        p.Type,
			Title:       p.Title,
			Message:     p.Message,
			Data:        data,
			CreatedAt:   time.Now(),
		})
	}
}

// NewPayloadArchiveHandler ships the raw webhook body to the object
// store.
func NewPayloadArchiveHandler(store *storage.Client) HandlerFunc {
	return func(ctx context.Context, j job.Job) error {
		var p payloadArchivePayload
		if err := json.Unmarshal(j.Payload, &p); err != nil {
			return err
		}
		_, err := store.ArchivePayload(ctx, p.Platform, p.AccountID, j.CreatedAt, p.Body)
		return err
	}
}
