package middleware

import (
	"errors"
	"net/http"

	"socialflow/internal/transport/httpdto"
	flow_errors "socialflow/pkg/errors"
	"socialflow/pkg/logger"

	"github.com/gin-gonic/gin"
)

// ErrorHandler maps sentinel errors collected on the gin context to a
// response envelope. Handlers call c.Error(err) and return; the mapping
// lives here so status codes stay consistent across the API.
func ErrorHandler(l *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		if l != nil {
			l.Errorf("request error: %s", err.Error())
		}

		status, code := mapError(err)
		c.JSON(status, httpdto.NewErrorResponse(err.Error(), code))
	}
}

func mapError(err error) (int, string) {
	switch {
	case errors.Is(err, flow_errors.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, flow_errors.ErrForbidden):
		return http.StatusForbidden, "FORBIDDEN"
	case errors.Is(err, flow_errors.ErrUnauthorized):
		return http.StatusUnauthorized, "UNAUTHORIZED"
	case errors.Is(err, flow_errors.ErrInvalidInput):
		return http.StatusBadRequest, "INVALID_INPUT"
	case errors.Is(err, flow_errors.ErrInvalidTransition):
		return http.StatusConflict, "INVALID_TRANSITION"
	case errors.Is(err, flow_errors.ErrAlreadyExists), errors.Is(err, flow_errors.ErrConflict):
		return http.StatusConflict, "CONFLICT"
	case errors.Is(err, flow_errors.ErrNotReplyable):
		return http.StatusUnprocessableEntity, "NOT_REPLYABLE"
	case errors.Is(err, flow_errors.ErrMissingCredential), errors.Is(err, flow_errors.ErrAccountInactive):
		return http.StatusUnprocessableEntity, "ACCOUNT_UNUSABLE"
	case errors.Is(err, flow_errors.ErrInvalidSignature):
		return http.StatusForbidden, "INVALID_SIGNATURE"
	case errors.Is(err, flow_errors.ErrPlatformRejected):
		return http.StatusBadGateway, "PLATFORM_REJECTED"
	case errors.Is(err, flow_errors.ErrRateLimited):
		return http.StatusTooManyRequests, "RATE_LIMITED"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}
