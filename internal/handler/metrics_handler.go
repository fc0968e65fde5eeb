package handler

import (
	"net/http"
	"time"

	"socialflow/internal/services"
	"socialflow/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type MetricsHandler struct {
	service *services.MetricsService
}

func NewMetricsHandler(service *services.MetricsService) *MetricsHandler {
	return &MetricsHandler{service: service}
}

func (h *MetricsHandler) CreatePostTarget(c *gin.Context) {
	id, ok := services.IdentityFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}
	var req httpdto.CreatePostTargetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_INPUT"))
		return
	}
	accountID, err := uuid.Parse(req.SocialAccountID)
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid account id", "INVALID_INPUT"))
		return
	}
	var publishedAt time.Time
	if req.PublishedAt != nil {
		publishedAt = *req.PublishedAt
	}
	target, err := h.service.CreatePostTarget(c.Request.Context(), id.WorkspaceID, accountID, req.PlatformPostID, publishedAt)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, httpdto.NewSuccessResponse(httpdto.FromPostTarget(target)))
}

func (h *MetricsHandler) ListPostTargets(c *gin.Context) {
	id, ok := services.IdentityFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}
	targets, err := h.service.ListPostTargets(c.Request.Context(), id.WorkspaceID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.FromPostTargetSlice(targets)))
}

func (h *MetricsHandler) RecordSnapshot(c *gin.Context) {
	id, targetID, ok := identityAndID(c, "targetID", "invalid post target id")
	if !ok {
		return
	}
	var req httpdto.RecordSnapshotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_INPUT"))
		return
	}
	in := services.SnapshotInput{
		Likes:       req.Likes,
		Comments:    req.Comments,
		Shares:      req.Shares,
		Impressions: req.Impressions,
		Reach:       req.Reach,
	}
	if req.CapturedAt != nil {
		in.CapturedAt = *req.CapturedAt
	}
	snap, err := h.service.RecordSnapshot(c.Request.Context(), id.WorkspaceID, targetID, in)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, httpdto.NewSuccessResponse(httpdto.FromSnapshot(snap)))
}

func (h *MetricsHandler) ListSnapshots(c *gin.Context) {
	id, targetID, ok := identityAndID(c, "targetID", "invalid post target id")
	if !ok {
		return
	}
	var since time.Time
	if v := c.Query("since"); v != "" {
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid since timestamp", "INVALID_INPUT"))
			return
		}
		since = parsed
	}
	snaps, err := h.service.ListSnapshots(c.Request.Context(), id.WorkspaceID, targetID, since)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.FromSnapshotSlice(snaps)))
}
