package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"socialflow/internal/adapter"
	"socialflow/internal/domain/account"
	"socialflow/internal/domain/inbox"
	"socialflow/internal/ingest"
	"socialflow/internal/repository"
	flow_errors "socialflow/pkg/errors"
	"socialflow/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newWebhookService(t *testing.T, db *gorm.DB) *WebhookService {
	t.Helper()
	log := logger.New(logger.DevelopmentMode)
	pipeline := ingest.NewPipeline(
		repository.NewInboxItemRepository(db),
		repository.NewConversationRepository(db),
		repository.NewCollabRepository(db),
		repository.NewMetricsRepository(db),
		repository.NewJobRepository(db),
		nil,
		log,
	)
	return NewWebhookService(
		repository.NewAccountRepository(db),
		repository.NewJobRepository(db),
		adapter.DefaultRegistry(),
		pipeline,
		log,
		false,
	)
}

func sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	db := newTestDB(t)
	svc := newWebhookService(t, db)
	acct := account.SocialAccount{WebhookSecret: "s3cret"}
	body := []byte(`{"entry":[]}`)

	assert.NoError(t, svc.VerifySignature(acct, body, sign("s3cret", body)))

	assert.ErrorIs(t, svc.VerifySignature(acct, body, sign("wrong", body)),
		flow_errors.ErrInvalidSignature)

	tampered := []byte(`{"entry":[{}]}`)
	assert.ErrorIs(t, svc.VerifySignature(acct, tampered, sign("s3cret", body)),
		flow_errors.ErrInvalidSignature)

	assert.ErrorIs(t, svc.VerifySignature(acct, body, "sha256=nothex"),
		flow_errors.ErrInvalidSignature)

	assert.ErrorIs(t, svc.VerifySignature(acct, body, ""),
		flow_errors.ErrInvalidSignature)

	noSecret := account.SocialAccount{}
	assert.ErrorIs(t, svc.VerifySignature(noSecret, body, sign("", body)),
		flow_errors.ErrInvalidSignature)
}

func TestIngestAcknowledgesUnsupportedPayload(t *testing.T) {
	db := newTestDB(t)
	svc := newWebhookService(t, db)
	acct := seedAccount(t, db, uuid.New(), account.StatusConnected, "tok")

	res, err := svc.Ingest(context.Background(), acct, []byte(`{"unrelated": true}`))
	require.NoError(t, err)
	assert.Zero(t, res.Received)
	assert.Zero(t, res.Created)

	var count int64
	require.NoError(t, db.Model(&inbox.InboxItem{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestIngestCountsCreatedAndSkipped(t *testing.T) {
	db := newTestDB(t)
	svc := newWebhookService(t, db)
	acct := seedAccount(t, db, uuid.New(), account.StatusConnected, "tok")

	body := []byte(`{
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
					"message": "hello",
					"created_time": 1700000000,
					"from": {"id": "u1", "name": "Jamie"}
				}
			}]
		}]
	}`)

	res, err := svc.Ingest(context.Background(), acct, body)
	require.NoError(t, err)
	assert.Equal(t, IngestResult{Received: 1, Created: 1}, res)

	// Redelivery of the same payload dedups.
	res, err = svc.Ingest(context.Background(), acct, body)
	require.NoError(t, err)
	assert.Equal(t, IngestResult{Received: 1, Skipped: 1}, res)
}
