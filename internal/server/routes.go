// Package server configures the HTTP server and routes.
package server

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fleveque/market-radar/internal/config"
	"github.com/fleveque/market-radar/internal/handler"
	"github.com/fleveque/market-radar/internal/middleware"
	"github.com/fleveque/market-radar/internal/service"
	"github.com/fleveque/market-radar/internal/storage"
)

// Deps are the collaborators the handlers need. Dependencies are passed
// explicitly, with no DI container.
type Deps struct {
	Session *service.Session
	Calls   storage.GenerationCallRepository
}

// RegisterRoutes sets up all HTTP routes on the Gin engine.
func RegisterRoutes(r *gin.Engine, cfg *config.Config, deps Deps, logger *zap.Logger) {
	healthHandler := handler.NewHealthHandler(deps.Session)
	analysisHandler := handler.NewAnalysisHandler(deps.Session, logger)
	adminHandler := handler.NewAdminHandler(deps.Calls, logger)

	// Public endpoints (no auth)
	r.GET("/healthz", healthHandler.Healthz)

	api := r.Group("/api/v1")
	api.Use(middleware.CORS(cfg.CORS.AllowedOrigins))
	// Preflights only reach group middleware through a matching route.
	api.OPTIONS("/*path", func(c *gin.Context) {})

	authed := api.Group("")
	authed.Use(middleware.APIKeyAuth(cfg.Auth.APIKeys))
	{
		authed.GET("/analysis", analysisHandler.Current)
		authed.GET("/analysis/chart", analysisHandler.Chart)
		authed.GET("/analysis/chart.png", analysisHandler.ChartImage)
		authed.GET("/analysis/events", analysisHandler.Events)
	}

	// Starting an analysis costs a generation call, so only these are rate limited.
	triggers := authed.Group("")
	triggers.Use(middleware.RateLimit(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst))
	{
		triggers.POST("/analysis", analysisHandler.Start)
		triggers.POST("/analysis/retry", analysisHandler.Retry)
	}

	admin := api.Group("/admin")
	admin.Use(middleware.AdminKeyAuth(cfg.Auth.AdminKeys))
	{
		admin.GET("/stats", adminHandler.Stats)
		admin.GET("/calls", adminHandler.Calls)
	}
}
