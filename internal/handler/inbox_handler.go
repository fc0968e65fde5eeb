package handler

import (
	"net/http"
	"strconv"

	"socialflow/internal/domain/inbox"
	"socialflow/internal/repository"
	"socialflow/internal/services"
	"socialflow/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type InboxHandler struct {
	service *services.InboxService
}

func NewInboxHandler(service *services.InboxService) *InboxHandler {
	return &InboxHandler{service: service}
}

func (h *InboxHandler) List(c *gin.Context) {
	id, ok := services.IdentityFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	f := repository.ItemFilter{
		Status:   inbox.Status(c.Query("status")),
		ItemType: inbox.ItemType(c.Query("item_type")),
	}
	if v := c.Query("social_account_id"); v != "" {
		if parsed, err := uuid.Parse(v); err == nil {
			f.SocialAccountID = parsed
		}
	}
	if v := c.Query("assigned_to"); v != "" {
		if parsed, err := uuid.Parse(v); err == nil {
			f.AssignedTo = parsed
		}
	}
	if v := c.Query("conversation_id"); v != "" {
		if parsed, err := uuid.Parse(v); err == nil {
			f.ConversationID = parsed
		}
	}
	f.Page, _ = strconv.Atoi(c.Query("page"))
	f.Limit, _ = strconv.Atoi(c.Query("limit"))

	items, total, err := h.service.List(c.Request.Context(), id.WorkspaceID, f)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.ListItemsResponse{
		Items: httpdto.FromInboxItemSlice(items),
		Total: total,
	}))
}

func (h *InboxHandler) Get(c *gin.Context) {
	h.withItem(c, func(id services.Identity, itemID uuid.UUID) (inbox.InboxItem, error) {
		return h.service.Get(c.Request.Context(), id.WorkspaceID, itemID)
	})
}

func (h *InboxHandler) MarkRead(c *gin.Context) {
	h.withItem(c, func(id services.Identity, itemID uuid.UUID) (inbox.InboxItem, error) {
		return h.service.MarkAsRead(c.Request.Context(), id.WorkspaceID, itemID)
	})
}

func (h *InboxHandler) Resolve(c *gin.Context) {
	h.withItem(c, func(id services.Identity, itemID uuid.UUID) (inbox.InboxItem, error) {
		return h.service.Resolve(c.Request.Context(), id.WorkspaceID, itemID, id.UserID)
	})
}

func (h *InboxHandler) Reopen(c *gin.Context) {
	h.withItem(c, func(id services.Identity, itemID uuid.UUID) (inbox.InboxItem, error) {
		return h.service.Reopen(c.Request.Context(), id.WorkspaceID, itemID)
	})
}

func (h *InboxHandler) Archive(c *gin.Context) {
	h.withItem(c, func(id services.Identity, itemID uuid.UUID) (inbox.InboxItem, error) {
		return h.service.Archive(c.Request.Context(), id.WorkspaceID, itemID)
	})
}

func (h *InboxHandler) Assign(c *gin.Context) {
	var req httpdto.AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_INPUT"))
		return
	}
	assigneeID, err := uuid.Parse(req.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid user id", "INVALID_INPUT"))
		return
	}
	h.withItem(c, func(id services.Identity, itemID uuid.UUID) (inbox.InboxItem, error) {
		return h.service.Assign(c.Request.Context(), id.WorkspaceID, itemID, assigneeID)
	})
}

func (h *InboxHandler) Unassign(c *gin.Context) {
	h.withItem(c, func(id services.Identity, itemID uuid.UUID) (inbox.InboxItem, error) {
		return h.service.Unassign(c.Request.Context(), id.WorkspaceID, itemID)
	})
}

func (h *InboxHandler) BulkResolve(c *gin.Context) {
	h.bulk(c, func(id services.Identity, ids []uuid.UUID) (int, error) {
		return h.service.BulkResolve(c.Request.Context(), id.WorkspaceID, ids, id.UserID)
	})
}

func (h *InboxHandler) BulkMarkRead(c *gin.Context) {
	h.bulk(c, func(id services.Identity, ids []uuid.UUID) (int, error) {
		return h.service.BulkMarkRead(c.Request.Context(), id.WorkspaceID, ids)
	})
}

func (h *InboxHandler) BulkArchive(c *gin.Context) {
	h.bulk(c, func(id services.Identity, ids []uuid.UUID) (int, error) {
		return h.service.BulkArchive(c.Request.Context(), id.WorkspaceID, ids)
	})
}

func (h *InboxHandler) withItem(c *gin.Context, fn func(services.Identity, uuid.UUID) (inbox.InboxItem, error)) {
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
	item, err := fn(id, itemID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.FromInboxItem(item)))
}

func (h *InboxHandler) bulk(c *gin.Context, fn func(services.Identity, []uuid.UUID) (int, error)) {
	id, ok := services.IdentityFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}
	var req httpdto.BulkActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_INPUT"))
		return
	}
	ids := make([]uuid.UUID, 0, len(req.IDs))
	for _, raw := range req.IDs {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid item id", "INVALID_INPUT"))
			return
		}
		ids = append(ids, parsed)
	}
	mutated, err := fn(id, ids)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.BulkActionResponse{
		Requested: len(ids),
		Mutated:   mutated,
	}))
}
