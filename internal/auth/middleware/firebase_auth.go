package middleware

import (
	"context"
	"net/http"
	"strings"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"

	"github.com/studiodesk/studio-backend/internal/auth"
	"github.com/studiodesk/studio-backend/internal/logger"
)

// TokenVerifier checks Firebase ID tokens. *fbauth.Client satisfies it.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error)
}

// FirebaseAuthMiddleware validates Firebase ID tokens and extracts user info.
// The caller's display name becomes the request's user for logs and
// workspace history.
func FirebaseAuthMiddleware(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "missing authorization token"})
			c.Abort()
			return
		}

		decodedToken, err := verifier.VerifyIDToken(c.Request.Context(), token)
		if err != nil {
			logger.FromContext(c.Request.Context()).Warn("token rejected", "error", err)
			c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "invalid token"})
			c.Abort()
			return
		}

		email, _ := decodedToken.Claims["email"].(string)
		name, _ := decodedToken.Claims["name"].(string)
		display := auth.DisplayName(name, email, decodedToken.UID)

		c.Set(auth.CtxFirebaseUID, decodedToken.UID)
		c.Set(auth.CtxEmail, email)
		c.Set(auth.CtxUserName, display)
		c.Set("firebase_token", decodedToken)
		c.Request = c.Request.WithContext(logger.WithUser(c.Request.Context(), display))

		c.Next()
	}
}

// extractToken extracts the Bearer token from the Authorization header
func extractToken(c *gin.Context) string {
	bearerToken := c.GetHeader("Authorization")
	if len(bearerToken) > 7 && strings.HasPrefix(bearerToken, "Bearer ") {
		return strings.TrimSpace(bearerToken[7:])
	}
	return ""
}
