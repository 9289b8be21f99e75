// Package server configures the HTTP server and routes.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Chrojoh/dog-collage-generator/internal/config"
	"github.com/Chrojoh/dog-collage-generator/internal/enhance"
	"github.com/Chrojoh/dog-collage-generator/internal/generation"
	"github.com/Chrojoh/dog-collage-generator/internal/handler"
	"github.com/Chrojoh/dog-collage-generator/internal/ingest"
	"github.com/Chrojoh/dog-collage-generator/internal/middleware"
	"github.com/Chrojoh/dog-collage-generator/internal/session"
	"github.com/Chrojoh/dog-collage-generator/internal/storage"
)

// Deps bundles everything the routes need. In Go, we pass dependencies
// explicitly — no DI container, no magic. Each handler gets exactly the
// dependencies it needs.
type Deps struct {
	Store     *session.Store
	Ingestor  *ingest.Ingestor
	Generator generation.Generator
	Enhancer  *enhance.Enhancer // nil when disabled
	Calls     storage.CallRepository
}

// RegisterRoutes sets up all HTTP routes on the Gin engine.
func RegisterRoutes(r *gin.Engine, cfg *config.Config, deps Deps, logger *zap.Logger) {
	healthHandler := handler.NewHealthHandler()
	catalogHandler := handler.NewCatalogHandler()
	generateHandler := handler.NewGenerateHandler(deps.Generator, deps.Calls, logger)
	sessionHandler := handler.NewSessionHandler(deps.Store, deps.Ingestor, deps.Generator, deps.Enhancer, deps.Calls, logger)
	adminHandler := handler.NewAdminHandler(deps.Store, deps.Calls, logger)

	// The contract requires 405 (not gin's default 404) for wrong methods on
	// registered paths.
	r.HandleMethodNotAllowed = true
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method not allowed"})
	})

	// Public endpoint (no middleware)
	r.GET("/healthz", healthHandler.Healthz)

	// The generate proxy keeps the original flat path so existing clients
	// keep working. Request bodies are bounded; image payloads can be large.
	api := r.Group("/api")
	api.Use(middleware.CORS(cfg.CORS.AllowedOrigins))
	api.Use(middleware.RateLimit(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst))
	{
		api.POST("/generate", middleware.BodySizeLimit(cfg.Server.MaxBodyBytes()), generateHandler.Generate)
	}

	v1 := api.Group("/v1")
	{
		v1.GET("/catalog", catalogHandler.Catalog)

		sessions := v1.Group("/sessions")
		sessions.POST("", sessionHandler.Create)
		sessions.GET("/:id", sessionHandler.Get)
		sessions.PATCH("/:id", sessionHandler.Update)
		sessions.DELETE("/:id", sessionHandler.Delete)

		sessions.POST("/:id/stats", sessionHandler.AddStat)
		sessions.PATCH("/:id/stats/:statID", sessionHandler.UpdateStat)
		sessions.DELETE("/:id/stats/:statID", sessionHandler.RemoveStat)

		sessions.POST("/:id/styles/:styleID/toggle", sessionHandler.ToggleStyle)
		sessions.PUT("/:id/size/:sizeID", sessionHandler.SelectSize)

		sessions.POST("/:id/images", middleware.BodySizeLimit(cfg.Server.MaxBodyBytes()), sessionHandler.UploadImages)
		sessions.GET("/:id/images/:index/preview", sessionHandler.ImagePreview)
		sessions.DELETE("/:id/images/:index", sessionHandler.RemoveImage)

		sessions.POST("/:id/generate", sessionHandler.Generate)
		sessions.GET("/:id/result", sessionHandler.Result)
		sessions.GET("/:id/result/file", sessionHandler.ResultFile)
	}

	// Operational endpoints exist only when admin keys are configured.
	if len(cfg.Admin.APIKeys) > 0 {
		admin := v1.Group("/admin")
		admin.Use(middleware.AdminKeyAuth(cfg.Admin.APIKeys))
		{
			admin.GET("/stats", adminHandler.Stats)
		}
	}
}
