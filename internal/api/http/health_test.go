package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthCheck(t *testing.T) {
	gin.SetMode(gin.TestMode)
	up := PingFunc(func(context.Context) error { return nil })
	down := PingFunc(func(context.Context) error { return errors.New("refused") })

	cases := []struct {
		name  string
		db    Pinger
		redis Pinger
		code  int
		want  HealthResponse
	}{
		{"all up", up, up, http.StatusOK, HealthResponse{Status: "healthy", DB: "up", Redis: "up"}},
		{"no database", nil, up, http.StatusOK, HealthResponse{Status: "healthy", DB: "disabled", Redis: "up"}},
		{"redis down", up, down, http.StatusServiceUnavailable, HealthResponse{Status: "degraded", DB: "up", Redis: "down"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := gin.New()
			NewHealthHandler("studio", "test", tc.db, tc.redis).RegisterRoutes(r)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
			assert.Equal(t, tc.code, w.Code)

			var got HealthResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
			assert.Equal(t, tc.want.Status, got.Status)
			assert.Equal(t, tc.want.DB, got.DB)
			assert.Equal(t, tc.want.Redis, got.Redis)
			assert.Equal(t, "studio", got.Service)
		})
	}
}
