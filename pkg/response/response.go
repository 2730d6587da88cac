package response

import (
	"errors"
	"fmt"
	"net/http"

	"anoa.com/devconnector/pkg/apperror"
	"anoa.com/devconnector/pkg/logger"
	"anoa.com/devconnector/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UserIDKey is where the auth middleware stores the caller's id.
const UserIDKey = "user_id"

// GetUserID retrieves the authenticated user ID from the context
func GetUserID(c *gin.Context) (uuid.UUID, error) {
	raw, exists := c.Get(UserIDKey)
	if !exists {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	switch v := raw.(type) {
	case uuid.UUID:
		return v, nil
	case string:
		userID, err := uuid.Parse(v)
		if err != nil {
			return uuid.Nil, apperror.ErrUnauthorized
		}
		return userID, nil
	default:
		return uuid.Nil, apperror.ErrUnauthorized
	}
}

// Error writes err as {"msg": ...}, or as {"errors": [...]} for field errors. Server-side failures are logged and
// answered with a generic message.
func Error(c *gin.Context, log logger.Logger, err error) {
	var fieldErrs validator.Errors
	if errors.As(err, &fieldErrs) {
		ValidationError(c, err)
		return
	}

	code := apperror.MapErrorToStatus(err)

	if code >= http.StatusInternalServerError && code != http.StatusServiceUnavailable {
		if log != nil {
			log.Error("request failed", err,
				zap.String("method", c.Request.Method),
				zap.String("path", c.FullPath()),
			)
		}
		c.JSON(code, gin.H{"msg": "Server Error"})
		return
	}

	c.JSON(code, gin.H{"msg": apperror.PublicMessage(err)})
}

// ValidationError writes a binding failure as {"errors": [...]}.
func ValidationError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"errors": validator.FormatValidationErrors(err)})
}

// Errors writes a single message using the list shape of validation errors.
func Errors(c *gin.Context, code int, msg string) {
	c.JSON(code, gin.H{"errors": validator.Single(msg)})
}

// RetryAfter sets the Retry-After header in whole seconds.
func RetryAfter(c *gin.Context, seconds float64) {
	c.Header("Retry-After", fmt.Sprintf("%.0f", seconds))
}
