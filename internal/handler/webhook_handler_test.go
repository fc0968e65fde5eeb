package handler

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"socialflow/internal/adapter"
	"socialflow/internal/domain/account"
	"socialflow/internal/domain/inbox"
	"socialflow/internal/domain/job"
	"socialflow/internal/domain/metrics"
	"socialflow/internal/ingest"
	"socialflow/internal/repository"
	"socialflow/internal/services"
	"socialflow/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const facebookCommentBody = `{
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
}`

func setupWebhookRouter(t *testing.T) (*gin.Engine, *gorm.DB, account.SocialAccount) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&account.SocialAccount{},
		&inbox.InboxItem{},
		&inbox.InboxConversation{},
		&inbox.InboxContact{},
		&metrics.PostTarget{},
		&job.Job{},
	))

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
	svc := services.NewWebhookService(
		repository.NewAccountRepository(db),
		repository.NewJobRepository(db),
		adapter.DefaultRegistry(),
		pipeline,
		log,
		false,
	)
	h := NewWebhookHandler(svc, log)

	r := gin.New()
	r.GET("/v1/webhooks/:platform/:accountID", h.Verify)
	r.POST("/v1/webhooks/:platform/:accountID", h.Receive)

	acct := account.SocialAccount{
		ID:                uuid.New(),
		WorkspaceID:       uuid.New(),
		Platform:          account.PlatformFacebook,
		ExternalAccountID: "page-1",
		Status:            account.StatusConnected,
		AccessToken:       "tok",
		WebhookSecret:     "s3cret",
	}
	require.NoError(t, db.Create(&acct).Error)
	return r, db, acct
}

func signBody(secret, body string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(body))
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

func TestWebhookVerifyChallenge(t *testing.T) {
	r, _, acct := setupWebhookRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet,
		"/v1/webhooks/facebook/"+acct.ID.String()+"?hub.mode=subscribe&hub.challenge=echo-me", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "echo-me", w.Body.String())
}

func TestWebhookVerifyRejectsWrongMode(t *testing.T) {
	r, _, acct := setupWebhookRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet,
		"/v1/webhooks/facebook/"+acct.ID.String()+"?hub.mode=unsubscribe&hub.challenge=x", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWebhookReceiveValidSignature(t *testing.T) {
	r, db, acct := setupWebhookRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost,
		"/v1/webhooks/facebook/"+acct.ID.String(), strings.NewReader(facebookCommentBody))
	req.Header.Set("X-Hub-Signature-256", signBody("s3cret", facebookCommentBody))
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var count int64
	require.NoError(t, db.Model(&inbox.InboxItem{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestWebhookReceiveInvalidSignature(t *testing.T) {
	r, db, acct := setupWebhookRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost,
		"/v1/webhooks/facebook/"+acct.ID.String(), strings.NewReader(facebookCommentBody))
	req.Header.Set("X-Hub-Signature-256", signBody("wrong-secret", facebookCommentBody))
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)

	var count int64
	require.NoError(t, db.Model(&inbox.InboxItem{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestWebhookReceiveMissingSignature(t *testing.T) {
	r, _, acct := setupWebhookRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost,
		"/v1/webhooks/facebook/"+acct.ID.String(), strings.NewReader(facebookCommentBody))
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestWebhookReceiveUnknownAccount(t *testing.T) {
	r, _, _ := setupWebhookRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost,
		"/v1/webhooks/facebook/"+uuid.NewString(), strings.NewReader(facebookCommentBody))
	req.Header.Set("X-Hub-Signature-256", signBody("s3cret", facebookCommentBody))
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestWebhookReceiveMalformedPayloadIsAcknowledged(t *testing.T) {
	r, db, acct := setupWebhookRouter(t)

	body := `{"surprise": true}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost,
		"/v1/webhooks/facebook/"+acct.ID.String(), strings.NewReader(body))
	req.Header.Set("X-Hub-Signature-256", signBody("s3cret", body))
	r.ServeHTTP(w, req)

	// Authentic but unparseable: 200 so the platform stops redelivering.
	assert.Equal(t, http.StatusOK, w.Code)

	var count int64
	require.NoError(t, db.Model(&inbox.InboxItem{}).Count(&count).Error)
	assert.Zero(t, count)
}
