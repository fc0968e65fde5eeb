package handler

import (
	"io"
	"net/http"

	"socialflow/internal/services"
	"socialflow/internal/transport/httpdto"
	"socialflow/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const maxWebhookBody = 1 << 20

// WebhookHandler is the unauthenticated ingress. The HMAC signature is
// the only authentication; everything else about the request is treated
// as hostile until it passes.
type WebhookHandler struct {
	service *services.WebhookService
	log     *logger.Logger
}

func NewWebhookHandler(service *services.WebhookService, log *logger.Logger) *WebhookHandler {
	return &WebhookHandler{service: service, log: log}
}

// Verify answers the platform subscription handshake by echoing the
// challenge token.
func (h *WebhookHandler) Verify(c *gin.Context) {
	if c.Query("hub.mode") != "subscribe" {
		c.Status(http.StatusBadRequest)
		return
	}
	challenge := c.Query("hub.challenge")
	if challenge == "" {
		c.Status(http.StatusBadRequest)
		return
	}
	c.String(http.StatusOK, challenge)
}

// Receive processes one delivery. Signature failures are 403; payloads
// the adapter cannot make sense of are acknowledged with 200 so the
// platform stops redelivering them.
func (h *WebhookHandler) Receive(c *gin.Context) {
	accountID, err := uuid.Parse(c.Param("accountID"))
	if err != nil {
		c.JSON(http.StatusNotFound, httpdto.NewErrorResponse("unknown account", "NOT_FOUND"))
		return
	}

	acct, err := h.service.GetAccount(c.Request.Context(), accountID)
	if err != nil {
		c.JSON(http.StatusNotFound, httpdto.NewErrorResponse("unknown account", "NOT_FOUND"))
		return
	}

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("unreadable body", "INVALID_INPUT"))
		return
	}

	signature := c.GetHeader("X-Hub-Signature-256")
	if err := h.service.VerifySignature(acct, body, signature); err != nil {
		c.JSON(http.StatusForbidden, httpdto.NewErrorResponse("invalid signature", "INVALID_SIGNATURE"))
		return
	}

	res, err := h.service.Ingest(c.Request.Context(), acct, body)
	if err != nil {
		// The delivery was authentic; failing it would only trigger a
		// redelivery storm. Log and acknowledge.
		h.log.Errorf("webhook ingest for account %s failed: %v", acct.ID, err)
		c.JSON(http.StatusOK, httpdto.NewSuccessResponse(services.IngestResult{}))
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(res))
}
