package middleware

import (
	"net/http"
	"strings"

	"socialflow/internal/repository"
	"socialflow/internal/services"
	"socialflow/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AuthMiddleware validates the bearer token and binds the caller to the
// workspace named in the route. A valid token for a workspace the user
// is not a member of gets 403; everything inside the workspace then
// reports missing resources as 404 regardless of whether they exist
// elsewhere.
func AuthMiddleware(workspaces repository.WorkspaceRepository, jwtSecret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearer(c)
		claims, err := services.ParseAccessToken(token, jwtSecret)
		if err != nil {
			c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
			c.Abort()
			return
		}

		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
			c.Abort()
			return
		}

		workspaceID, err := uuid.Parse(c.Param("workspaceID"))
		if err != nil {
			c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid workspace id", "INVALID_INPUT"))
			c.Abort()
			return
		}

		member, err := workspaces.GetMember(c.Request.Context(), workspaceID, userID)
		if err != nil {
			c.JSON(http.StatusForbidden, httpdto.NewErrorResponse("not a workspace member", "FORBIDDEN"))
			c.Abort()
			return
		}

		ctx := services.WithIdentity(c.Request.Context(), services.Identity{
			UserID:      userID,
			WorkspaceID: workspaceID,
			Role:        string(member.Role),
		})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func extractBearer(c *gin.Context) string {
	value := c.GetHeader("Authorization")
	parts := strings.SplitN(value, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
