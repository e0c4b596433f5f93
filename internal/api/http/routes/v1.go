package routes

import (
	"github.com/gin-gonic/gin"

	authhttp "github.com/studiodesk/studio-backend/internal/auth/http"
	workspacehttp "github.com/studiodesk/studio-backend/internal/workspace/http"
	"github.com/studiodesk/studio-backend/internal/workspace/service"
)

type V1Deps struct {
	Workspace *service.Service
	// Auth identifies the caller. It is either the Firebase token middleware
	// or the development header fallback.
	Auth gin.HandlerFunc
}

func RegisterV1(r *gin.Engine, dep V1Deps) {
	api := r.Group("/api/v1")
	if dep.Auth != nil {
		api.Use(dep.Auth)
	}

	authhttp.New().Register(api.Group("/auth"))
	workspacehttp.New(dep.Workspace).Register(api.Group("/workspace"))
}
