package websocket

import (
	"context"
	"net/http"
	"time"

	"socialflow/internal/repository"
	"socialflow/internal/services"
	"socialflow/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

type Handler struct {
	workspaces repository.WorkspaceRepository
	hub        *Hub
	jwtSecret  []byte
}

func NewHandler(workspaces repository.WorkspaceRepository, hub *Hub, jwtSecret []byte) *Handler {
	return &Handler{workspaces: workspaces, hub: hub, jwtSecret: jwtSecret}
}

// Connect upgrades the request after checking the caller's token and
// workspace membership. The token rides a query param because browsers
// cannot set headers on websocket upgrades.
func (h *Handler) Connect(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}
	claims, err := services.ParseAccessToken(token, h.jwtSecret)
	if err != nil {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}
	workspaceID, err := uuid.Parse(c.Param("workspaceID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid workspace id", "INVALID_INPUT"))
		return
	}
	if _, err := h.workspaces.GetMember(c.Request.Context(), workspaceID, userID); err != nil {
		c.JSON(http.StatusForbidden, httpdto.NewErrorResponse("not a workspace member", "FORBIDDEN"))
		return
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	client := NewClient(conn, userID.String(), workspaceID.String())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h.hub.Register(client)
	go client.WriteLoop(ctx)

	conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	}

	h.hub.Unregister(client)
}
