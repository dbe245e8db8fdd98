package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "mediaflow/docs"
	"mediaflow/internal/config"
	"mediaflow/internal/domain"
	"mediaflow/internal/handler"
	"mediaflow/internal/middleware"
	"mediaflow/internal/service"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	cfg *config.Config,
	authSvc service.AuthService,
	authH *handler.AuthHandler,
	assetH *handler.AssetHandler,
	runH *handler.RunHandler,
	reportH *handler.ReportHandler,
	userH *handler.UserHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	// API documentation
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")

	// Public auth routes
	auth := v1.Group("/auth")
	auth.POST("/login", authH.Login)
	auth.POST("/refresh", authH.RefreshToken)

	// Protected routes - require valid JWT
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(authSvc))

	protected.GET("/auth/me", authH.Me)

	// Asset routes
	assets := protected.Group("/assets")
	assets.POST("/upload", assetH.Upload)
	assets.GET("", assetH.List)
	assets.GET("/:id", assetH.GetByID)
	assets.DELETE("/:id", middleware.RequireRole(domain.RoleAdmin), assetH.Delete)

	// Deployment runs
	assets.POST("/:id/deploy", runH.Deploy)
	assets.GET("/:id/runs", runH.ListByAsset)

	runs := protected.Group("/runs")
	runs.GET("", runH.List)
	runs.GET("/:id", runH.GetByID)

	// Reports
	reports := protected.Group("/reports")
	reports.GET("/runs", reportH.Summary)
	reports.GET("/runs/export", reportH.Export)

	// User management
	users := protected.Group("/users")
	users.POST("", middleware.RequireRole(domain.RoleAdmin), userH.Create)
	users.GET("", middleware.RequireRole(domain.RoleAdmin), userH.List)
	users.GET("/:id", userH.GetByID)
	users.PUT("/:id", middleware.RequireRole(domain.RoleAdmin), userH.Update)
	users.DELETE("/:id", middleware.RequireRole(domain.RoleAdmin), userH.Delete)

	return r
}
