package api

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/nfl-dfs-optimizer/internal/api/handlers"
	"github.com/stitts-dev/nfl-dfs-optimizer/internal/api/middleware"
	"github.com/stitts-dev/nfl-dfs-optimizer/internal/services"
	"github.com/stitts-dev/nfl-dfs-optimizer/internal/websocket"
	"github.com/stitts-dev/nfl-dfs-optimizer/pkg/config"
	"github.com/stitts-dev/nfl-dfs-optimizer/pkg/database"
	"github.com/stitts-dev/nfl-dfs-optimizer/pkg/metrics"
)

// Dependencies are the long-lived services the HTTP layer is built on.
type Dependencies struct {
	Config      *config.Config
	DB          *database.DB
	Store       *services.SlateStore
	Analyzer    *services.NewsAnalyzer
	Refresher   *services.NewsRefreshScheduler
	Cache       *services.ResultCache
	Hub         *websocket.Hub
	RateLimiter *middleware.RateLimiter
	Logger      *logrus.Logger
}

// NewRouter builds the engine with middleware, health, metrics, websocket and API routes.
func NewRouter(deps Dependencies) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(deps.Logger))
	router.Use(middleware.Metrics())
	router.Use(middleware.CORS(deps.Config.CorsOrigins))

	health := handlers.NewHealthHandler(deps.DB, deps.Cache)
	router.GET("/health", health.GetHealth)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	if deps.Hub != nil {
		router.GET("/ws/optimizations/:id", deps.Hub.HandleWebSocket)
	}

	apiV1 := router.Group("/api/v1")
	if deps.RateLimiter != nil {
		apiV1.Use(deps.RateLimiter.Middleware())
	}
	SetupRoutes(apiV1, deps)

	return router
}

// SetupRoutes configures all API routes on the given router group.
func SetupRoutes(group *gin.RouterGroup, deps Dependencies) {
	var publisher handlers.ProgressPublisher
	if deps.Hub != nil {
		publisher = deps.Hub
	}

	slateHandler := handlers.NewSlateHandler(deps.Store, deps.Analyzer, deps.Refresher, deps.Logger)
	optimizerHandler := handlers.NewOptimizerHandler(deps.Store, deps.Analyzer, deps.Cache, publisher, deps.Config, deps.Logger)
	exportHandler := handlers.NewExportHandler()

	group.POST("/slates", slateHandler.CreateSlate)
	group.GET("/slates", slateHandler.ListSlates)
	group.GET("/slates/:id", slateHandler.GetSlate)
	group.DELETE("/slates/:id", slateHandler.DeleteSlate)
	group.PATCH("/slates/:id/players/:playerId", slateHandler.UpdatePlayer)
	group.POST("/slates/:id/news", slateHandler.RefreshNews)

	group.POST("/optimize", optimizerHandler.OptimizeLineups)
	group.POST("/optimize/validate", optimizerHandler.ValidateOptimization)

	group.POST("/export", exportHandler.ExportLineups)
}
