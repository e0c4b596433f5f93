package bootstrap

import (
	"context"
	"database/sql"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"

	httpapi "github.com/studiodesk/studio-backend/internal/api/http"
	"github.com/studiodesk/studio-backend/internal/api/http/middleware"
	"github.com/studiodesk/studio-backend/internal/api/http/routes"
	projecthttp "github.com/studiodesk/studio-backend/internal/projectstore/http"
	"github.com/studiodesk/studio-backend/internal/workspace/service"
)

type RouterDeps struct {
	ServiceName string
	Version     string
	CORSOrigins []string
	DB          *sql.DB
	Redis       *goredis.Client
	Workspace   *service.Service
	Auth        gin.HandlerFunc
	// ProjectServer is mounted under /api when set.
	ProjectServer *projecthttp.Handler
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowHeaders = append(cfg.AllowHeaders, "Authorization", "X-Request-Id", "X-User-Id", "X-User-Name", "X-User-Email")
	cfg.ExposeHeaders = []string{"X-Request-Id"}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(cors.New(corsConfig(dep.CORSOrigins)))

	var db, rdb httpapi.Pinger
	if dep.DB != nil {
		db = dep.DB
	}
	if dep.Redis != nil {
		rdb = httpapi.PingFunc(func(ctx context.Context) error { return dep.Redis.Ping(ctx).Err() })
	}
	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, db, rdb)
	healthHandler.RegisterRoutes(r)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if dep.ProjectServer != nil {
		dep.ProjectServer.Register(r.Group("/api"))
	}

	routes.RegisterV1(r, routes.V1Deps{
		Workspace: dep.Workspace,
		Auth:      dep.Auth,
	})

	return r
}
