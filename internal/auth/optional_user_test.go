package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/studiodesk/studio-backend/internal/logger"
)

func TestOptionalUser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(OptionalUser())
	r.GET("/who", func(c *gin.Context) {
		c.String(http.StatusOK, logger.User(c.Request.Context())+"|"+UserFirebaseUID(c))
	})

	req := httptest.NewRequest(http.MethodGet, "/who", nil)
	req.Header.Set("X-User-Id", "u1")
	req.Header.Set("X-User-Name", "Anvar")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "Anvar|u1", w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/who", nil))
	assert.Equal(t, "|", w.Body.String())
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Anvar", DisplayName(" Anvar ", "a@x", "u"))
	assert.Equal(t, "a@x", DisplayName("", "a@x", "u"))
	assert.Equal(t, "u", DisplayName("", " ", "u"))
	assert.Empty(t, DisplayName("", "", ""))
}
