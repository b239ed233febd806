package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lpdswing/mineru-web/pkg/errors"
)

// UserIDHeader carries the caller identity. Authentication itself happens
// upstream; this service only scopes data by the forwarded identifier.
const UserIDHeader = "X-User-Id"

const userIDKey = "user_id"

// IdentityMiddleware requires the identity header on every request and stores
// it in the request context.
func IdentityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader(UserIDHeader)
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errors.ErrorResponse{
				Error:   errors.ErrUnauthorized.Code,
				Message: "Missing " + UserIDHeader + " header",
			})
			return
		}
		c.Set(userIDKey, userID)
		c.Next()
	}
}

// UserID returns the identity stored by IdentityMiddleware.
func UserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}
