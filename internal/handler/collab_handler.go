package handler

import (
	"net/http"

	"socialflow/internal/services"
	"socialflow/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CollabHandler struct {
	service *services.CollabService
}

func NewCollabHandler(service *services.CollabService) *CollabHandler {
	return &CollabHandler{service: service}
}

func (h *CollabHandler) AddNote(c *gin.Context) {
	id, itemID, ok := identityAndID(c, "id", "invalid item id")
	if !ok {
		return
	}
	var req httpdto.CreateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_INPUT"))
		return
	}
	note, err := h.service.AddNote(c.Request.Context(), id.WorkspaceID, itemID, id.UserID, req.Content)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, httpdto.NewSuccessResponse(httpdto.FromNote(note)))
}

func (h *CollabHandler) ListNotes(c *gin.Context) {
	id, itemID, ok := identityAndID(c, "id", "invalid item id")
	if !ok {
		return
	}
	notes, err := h.service.ListNotes(c.Request.Context(), id.WorkspaceID, itemID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.FromNoteSlice(notes)))
}

func (h *CollabHandler) DeleteNote(c *gin.Context) {
	id, noteID, ok := identityAndID(c, "noteID", "invalid note id")
	if !ok {
		return
	}
	if err := h.service.DeleteNote(c.Request.Context(), id.WorkspaceID, noteID, id.UserID); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CollabHandler) CreateTag(c *gin.Context) {
	id, ok := services.IdentityFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}
	var req httpdto.CreateTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_INPUT"))
		return
	}
	tag, err := h.service.CreateTag(c.Request.Context(), id.WorkspaceID, req.Name, req.Color)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, httpdto.NewSuccessResponse(httpdto.FromTag(tag)))
}

func (h *CollabHandler) ListTags(c *gin.Context) {
	id, ok := services.IdentityFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}
	tags, err := h.service.ListTags(c.Request.Context(), id.WorkspaceID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.FromTagSlice(tags)))
}

func (h *CollabHandler) AttachTag(c *gin.Context) {
	id, itemID, ok := identityAndID(c, "id", "invalid item id")
	if !ok {
		return
	}
	tagID, err := uuid.Parse(c.Param("tagID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid tag id", "INVALID_INPUT"))
		return
	}
	if err := h.service.TagItem(c.Request.Context(), id.WorkspaceID, itemID, tagID); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CollabHandler) DetachTag(c *gin.Context) {
	id, itemID, ok := identityAndID(c, "id", "invalid item id")
	if !ok {
		return
	}
	tagID, err := uuid.Parse(c.Param("tagID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid tag id", "INVALID_INPUT"))
		return
	}
	if err := h.service.UntagItem(c.Request.Context(), id.WorkspaceID, itemID, tagID); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CollabHandler) ListItemTags(c *gin.Context) {
	id, itemID, ok := identityAndID(c, "id", "invalid item id")
	if !ok {
		return
	}
	tags, err := h.service.ListItemTags(c.Request.Context(), id.WorkspaceID, itemID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.FromTagSlice(tags)))
}

func (h *CollabHandler) CreateSavedReply(c *gin.Context) {
	id, ok := services.IdentityFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}
	var req httpdto.CreateSavedReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_INPUT"))
		return
	}
	saved, err := h.service.CreateSavedReply(c.Request.Context(), id.WorkspaceID, id.UserID, req.Title, req.Content)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, httpdto.NewSuccessResponse(httpdto.FromSavedReply(saved)))
}

func (h *CollabHandler) ListSavedReplies(c *gin.Context) {
	id, ok := services.IdentityFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}
	saved, err := h.service.ListSavedReplies(c.Request.Context(), id.WorkspaceID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.FromSavedReplySlice(saved)))
}

func (h *CollabHandler) UseSavedReply(c *gin.Context) {
	id, savedID, ok := identityAndID(c, "savedReplyID", "invalid saved reply id")
	if !ok {
		return
	}
	saved, err := h.service.UseSavedReply(c.Request.Context(), id.WorkspaceID, savedID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.FromSavedReply(saved)))
}

// identityAndID pulls the caller identity and one uuid path param, the
// common prologue for item-scoped routes.
func identityAndID(c *gin.Context, param, badMsg string) (services.Identity, uuid.UUID, bool) {
	id, ok := services.IdentityFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return services.Identity{}, uuid.Nil, false
	}
	parsed, err := uuid.Parse(c.Param(param))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse(badMsg, "INVALID_INPUT"))
		return services.Identity{}, uuid.Nil, false
	}
	return id, parsed, true
}
