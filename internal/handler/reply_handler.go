package handler

import (
	"net/http"

	"socialflow/internal/services"
	"socialflow/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ReplyHandler struct {
	service *services.ReplyService
}

func NewReplyHandler(service *services.ReplyService) *ReplyHandler {
	return &ReplyHandler{service: service}
}

func (h *ReplyHandler) Create(c *gin.Context) {
	id, ok := services.IdentityFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}
	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid item id", "INVALID_INPUT"))
		return
	}
	var req httpdto.CreateReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_INPUT"))
		return
	}
	reply, err := h.service.Create(c.Request.Context(), id.WorkspaceID, itemID, id.UserID, req.Content)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusAccepted, httpdto.NewSuccessResponse(httpdto.FromReply(reply)))
}

func (h *ReplyHandler) ListByItem(c *gin.Context) {
	id, ok := services.IdentityFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}
	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid item id", "INVALID_INPUT"))
		return
	}
	replies, err := h.service.ListByItem(c.Request.Context(), id.WorkspaceID, itemID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.FromReplySlice(replies)))
}
