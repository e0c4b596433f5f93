package auth

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	CtxFirebaseUID = "firebase_uid"
	CtxEmail       = "email"
	CtxUserName    = "user_name"
)

// Identity is the authenticated caller as seen by handlers.
type Identity struct {
	UID   string `json:"uid"`
	Email string `json:"email,omitempty"`
	Name  string `json:"name"`
}

// UserFirebaseUID extracts the Firebase UID from the Gin context.
// This is set by FirebaseAuthMiddleware or OptionalUser.
func UserFirebaseUID(c *gin.Context) string {
	return strings.TrimSpace(c.GetString(CtxFirebaseUID))
}

// CurrentIdentity returns the caller stored on c.
func CurrentIdentity(c *gin.Context) Identity {
	return Identity{
		UID:   UserFirebaseUID(c),
		Email: c.GetString(CtxEmail),
		Name:  c.GetString(CtxUserName),
	}
}

// DisplayName picks the name recorded as the actor of workspace changes.
func DisplayName(name, email, uid string) string {
	for _, v := range []string{name, email, uid} {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
