package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mediahub/internal/core/ports"
	"mediahub/internal/infrastructure/middleware"
	"mediahub/internal/infrastructure/monitoring"
	"mediahub/pkg/config"
	"mediahub/pkg/response"
)

// Dependencies groups what the router needs to serve every route.
type Dependencies struct {
	Config      *config.Config
	Logger      *zap.Logger
	Interceptor *middleware.Interceptor
	Health      *monitoring.HealthChecker
	// Metrics serves /metrics when non-nil.
	Metrics http.Handler

	Auth     ports.AuthService
	Users    ports.UserService
	Roles    ports.RoleService
	Media    ports.MediaService
	Comments ports.CommentService
}

// NewRouter builds the engine with the full middleware chain and all routes.
func NewRouter(deps Dependencies) *gin.Engine {
	cfg := deps.Config
	sugar := deps.Logger.Sugar()
	startTime := time.Now()

	router := gin.New()
	router.Use(middleware.RecoveryMiddleware(sugar))
	router.Use(middleware.RequestIDMiddleware())
	if cfg.Tracing.Enabled {
		router.Use(middleware.TracingMiddleware(cfg.Tracing.ServiceName), middleware.SpanEnrichmentMiddleware())
	}
	router.Use(middleware.AccessLogMiddleware(deps.Logger))
	if cors := middleware.CORSMiddleware(cfg.Server.CORSOrigins); cors != nil {
		router.Use(cors)
	}
	router.Use(middleware.NewHTTPRateLimitMiddleware(cfg))
	router.Use(middleware.ErrorHandlerMiddleware(sugar))

	router.GET("/health", func(c *gin.Context) {
		response.OK(c, gin.H{
			"status":    monitoring.StatusHealthy,
			"timestamp": time.Now().UTC(),
			"uptime":    time.Since(startTime).String(),
		})
	})
	router.GET("/ready", func(c *gin.Context) {
		status := deps.Health.CheckAll(c.Request.Context())
		if status.Status != monitoring.StatusHealthy {
			response.Fail(c, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "not ready", status)
			return
		}
		response.OK(c, status)
	})
	if deps.Metrics != nil {
		router.GET("/metrics", gin.WrapH(deps.Metrics))
	}

	guard := deps.Interceptor
	NewAuthHandler(deps.Auth).SetupRoutes(router, guard, middleware.NewAuthRateLimitMiddleware(cfg))
	NewUserHandler(deps.Users).SetupRoutes(router, guard)
	NewRoleHandler(deps.Roles).SetupRoutes(router, guard)
	NewMessageHandler(deps.Media).SetupRoutes(router, guard)
	NewCommentHandler(deps.Comments).SetupRoutes(router, guard)

	return router
}
