package auth

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/studiodesk/studio-backend/internal/logger"
)

// OptionalUser takes the caller from X-User-Id / X-User-Name headers without
// verifying anything. Use this ONLY for development/testing.
// Requests without headers run as the system actor.
func OptionalUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := strings.TrimSpace(c.GetHeader("X-User-Id"))
		name := DisplayName(c.GetHeader("X-User-Name"), c.GetHeader("X-User-Email"), uid)
		if name != "" {
			c.Set(CtxFirebaseUID, uid)
			c.Set(CtxEmail, strings.TrimSpace(c.GetHeader("X-User-Email")))
			c.Set(CtxUserName, name)
			c.Request = c.Request.WithContext(logger.WithUser(c.Request.Context(), name))
		}
		c.Next()
	}
}
