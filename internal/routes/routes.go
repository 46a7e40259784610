// internal/routes/routes.go
package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"digitizer-service/internal/config"
	"digitizer-service/internal/database"
	"digitizer-service/internal/handler"
	"digitizer-service/internal/metrics"
	"digitizer-service/internal/middleware"
	"digitizer-service/internal/service"
	"digitizer-service/internal/utils"
)

// Router holds all dependencies for routing
type Router struct {
	config             *config.Config
	logger             *zap.Logger
	db                 *database.DB
	metrics            *metrics.Metrics
	eventBus           *handler.EventBus
	acquisitionService *service.AcquisitionService
	discoveryService   *service.DiscoveryService
}

// NewRouter creates a new router instance. db is nil when the database is
// disabled and m is nil when metrics are off.
func NewRouter(
	config *config.Config,
	logger *zap.Logger,
	db *database.DB,
	m *metrics.Metrics,
	eventBus *handler.EventBus,
	acquisitionService *service.AcquisitionService,
	discoveryService *service.DiscoveryService,
) *Router {
	return &Router{
		config:             config,
		logger:             logger,
		db:                 db,
		metrics:            m,
		eventBus:           eventBus,
		acquisitionService: acquisitionService,
		discoveryService:   discoveryService,
	}
}

// SetupRouter creates and configures the Gin router
func (r *Router) SetupRouter() *gin.Engine {
	if r.config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	} else if r.config.IsDebugEnabled() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.TestMode)
	}

	router := gin.New()

	r.addMiddleware(router)
	r.addRoutes(router)

	return router
}

// addMiddleware adds middleware to the router
func (r *Router) addMiddleware(router *gin.Engine) {
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.RecoveryMiddleware(r.logger))

	serviceLogger := utils.NewServiceLogger(r.logger, "http-server")
	router.Use(middleware.LoggingMiddleware(serviceLogger))

	router.Use(middleware.CORSMiddleware(&r.config.Security))

	r.logger.Info("Middleware configured")
}

// addRoutes sets up all application routes
func (r *Router) addRoutes(router *gin.Engine) {
	healthHandler := handler.NewHealthHandler(r.db, r.acquisitionService, r.config, r.logger)
	digitizerHandler := handler.NewDigitizerHandler(r.acquisitionService, r.logger)
	captureHandler := handler.NewCaptureHandler(r.acquisitionService, r.logger)
	discoveryHandler := handler.NewDiscoveryHandler(r.discoveryService, r.logger)
	wsHandler := handler.NewWebSocketHandler(r.acquisitionService, r.eventBus, r.config.Security.AllowedOrigins, r.logger)

	healthHandler.RegisterRoutes(router.Group(""))

	apiV1 := router.Group("/api/v1")
	digitizerHandler.RegisterRoutes(apiV1)
	captureHandler.RegisterRoutes(apiV1)
	discoveryHandler.RegisterRoutes(apiV1)

	wsHandler.RegisterRoutes(router.Group("/ws"))

	r.addMetricsRoutes(router)
	r.addDocumentationRoutes(router)

	r.logger.Info("All routes configured successfully")
}

// addMetricsRoutes exposes the Prometheus registry
func (r *Router) addMetricsRoutes(router *gin.Engine) {
	if r.metrics == nil || !r.config.Metrics.Enabled {
		return
	}
	path := r.config.Metrics.Path
	if path == "" {
		path = "/metrics"
	}
	router.GET(path, gin.WrapH(r.metrics.Handler()))
}

// addDocumentationRoutes sets up documentation routes
func (r *Router) addDocumentationRoutes(router *gin.Engine) {
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))

	router.GET("/docs", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
	})
}
