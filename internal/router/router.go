package router

import (
	"github.com/gin-gonic/gin"

	"filewise/internal/domain"
	"filewise/internal/handler"
	"filewise/internal/logger"
	"filewise/internal/middleware"
	"filewise/internal/service"
)

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	Health     *handler.HealthHandler
	Batch      *handler.BatchHandler
	Item       *handler.ItemHandler
	Correction *handler.CorrectionHandler
	Cache      *handler.CacheHandler
	Export     *handler.ExportHandler
	Naming     *handler.NamingHandler
}

// Setup configures the Gin engine with all routes and middleware.
func Setup(authSvc service.AuthService, h Handlers, allowedOrigins []string, log *logger.Logger) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(log))
	r.Use(middleware.Recovery(log))
	r.Use(middleware.CORS(allowedOrigins))

	// Health checks
	r.GET("/healthz", h.Health.Liveness)
	r.GET("/readyz", h.Health.Readiness)

	v1 := r.Group("/api/v1")
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(authSvc))
	admin := middleware.RequireRole(domain.RoleAdmin)

	// Bulk upload batches
	batches := protected.Group("/bulk-uploads")
	batches.POST("", h.Batch.Create)
	batches.GET("", h.Batch.List)
	batches.GET("/:id", h.Batch.Get)
	batches.POST("/:id/files", h.Batch.Upload)
	batches.POST("/:id/abort", h.Batch.Abort)
	batches.POST("/:id/resume", h.Batch.Resume)
	batches.GET("/:id/items", h.Batch.ListItems)
	batches.GET("/:id/events", h.Batch.Events)

	// Bulk upload items
	items := protected.Group("/bulk-items")
	items.GET("/:id", h.Item.Get)
	items.POST("/:id/retry", h.Item.Retry)
	items.POST("/:id/file", h.Item.File)

	// Corrections
	corrections := protected.Group("/corrections")
	corrections.POST("", h.Correction.Capture)
	corrections.GET("/relevant", h.Correction.Relevant)
	corrections.POST("/targeted", h.Correction.Targeted)
	corrections.GET("/rules", h.Correction.Rules)
	corrections.GET("/stats", h.Correction.Stats)
	corrections.GET("/stats/report", admin, h.Correction.StatsReport)
	corrections.GET("/:id", h.Correction.Get)

	// Classification cache
	cache := protected.Group("/classification-cache")
	cache.GET("/stats", h.Cache.Stats)
	cache.POST("", h.Cache.Store)
	cache.POST("/invalidate", admin, h.Cache.Invalidate)
	cache.POST("/entries/:id/hit", h.Cache.RecordHit)
	cache.GET("/:hash", h.Cache.Check)
	cache.DELETE("/:hash", admin, h.Cache.InvalidateByHash)

	// Training exports
	exports := protected.Group("/training-exports")
	exports.Use(admin)
	exports.POST("", h.Export.Create)
	exports.GET("", h.Export.List)
	exports.GET("/:id", h.Export.Get)

	// Naming
	nm := protected.Group("/naming")
	nm.POST("/generate", h.Naming.Generate)
	nm.GET("/parse", h.Naming.Parse)
	nm.POST("/next-version", h.Naming.NextVersion)
	nm.POST("/fingerprint", h.Naming.Fingerprint)

	return r
}
