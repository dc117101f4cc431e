package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"mediahub/internal/core/services"
	httphandlers "mediahub/internal/handlers/http"
	"mediahub/internal/infrastructure/middleware"
	"mediahub/internal/infrastructure/monitoring"
	repositories "mediahub/internal/infrastructure/repositories"
	"mediahub/internal/infrastructure/sweeper"
	"mediahub/pkg/config"
	"mediahub/pkg/distributed"
	"mediahub/pkg/logger"
	"mediahub/pkg/tracing"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to the YAML configuration")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		// The logger is configured from cfg, so fall back to stderr here.
		fmt.Fprintf(os.Stderr, "mediahub: %v\n", err)
		os.Exit(1)
	}

	zapLogger, err := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "mediahub: %v\n", err)
		os.Exit(1)
	}
	defer zapLogger.Sync()

	log := zapLogger.Sugar()

	tp, err := tracing.Init(tracing.Config{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: cfg.Tracing.ServiceName,
		JaegerURL:   cfg.Tracing.JaegerEndpoint,
		Environment: cfg.Tracing.Environment,
		SampleRate:  cfg.Tracing.SampleRate,
	})
	if err != nil {
		log.Fatalw("failed to initialise tracing", "error", err)
	}

	// Initialize repository factory
	repoFactory, err := repositories.NewRepositoryFactory(cfg, log)
	if err != nil {
		log.Fatalw("failed to create repository factory", "error", err)
	}

	userRepo := repoFactory.CreateUserRepository()
	roleRepo := repoFactory.CreateRoleRepository()
	bindingRepo := repoFactory.CreateBindingRepository()
	tokenRepo := repoFactory.CreateTokenRepository()
	resetRepo := repoFactory.CreatePasswordResetRepository()
	commentRepo := repoFactory.CreateCommentRepository()
	messageRepo := repoFactory.CreateMessageRepository()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := services.Bootstrap(ctx, services.BootstrapConfig{
		AdminName:     cfg.Auth.Admin.Name,
		AdminPassword: cfg.Auth.Admin.Password,
		BcryptCost:    cfg.Auth.BcryptCost,
	}, userRepo, roleRepo, log); err != nil {
		log.Fatalw("failed to bootstrap roles", "error", err)
	}

	// Initialize services
	authService := services.NewAuthService(services.AuthConfig{
		JWTSecret:  cfg.Auth.JWTSecret,
		TokenTTL:   cfg.Auth.TokenTTL,
		ResetTTL:   cfg.Auth.ResetTTL,
		BcryptCost: cfg.Auth.BcryptCost,
	}, userRepo, roleRepo, tokenRepo, resetRepo, services.NewLogResetNotifier(log), log)
	accessService := services.NewAccessService(userRepo, roleRepo, log)
	userService := services.NewUserService(userRepo, roleRepo, bindingRepo, accessService, log)
	roleService := services.NewRoleService(roleRepo, log)
	mediaService := services.NewMediaService(services.MediaConfig{
		ApprovalPoints: cfg.Media.ApprovalPoints,
		MaxTags:        cfg.Media.MaxTags,
	}, messageRepo, commentRepo, userRepo, log)
	commentService := services.NewCommentService(commentRepo, messageRepo, accessService, log)

	// Initialize monitoring
	collector := monitoring.NewPrometheusCollector(nil)
	health := monitoring.NewHealthChecker()
	repoFactory.RegisterHealthChecks(health, cfg.Monitoring.HealthTimeout)
	if !health.IsReady(ctx) {
		log.Warnw("stores not ready at startup", "checks", health.CheckAll(ctx).Checks)
	}

	audit := middleware.NewMultiAuditRecorder(middleware.NewLogAuditRecorder(zapLogger), collector)
	interceptor := middleware.NewInterceptor(authService, accessService, audit, log)

	tokenSweeper := sweeper.NewTokenSweeper(tokenRepo, resetRepo, collector, sweeper.Config{
		Interval: cfg.Auth.SweepInterval,
	}, log)
	if client := repoFactory.RedisClient(); client != nil {
		tokenSweeper.WithLocker(distributed.NewLease(client, "mediahub:lease:sweeper", cfg.Auth.SweepInterval))
	}
	go tokenSweeper.Start(ctx)

	// Configure Gin
	switch cfg.Server.Mode {
	case gin.DebugMode, gin.TestMode:
		gin.SetMode(cfg.Server.Mode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	var metrics http.Handler
	if cfg.Monitoring.PrometheusEnabled {
		metrics = promhttp.Handler()
		log.Info("Prometheus metrics enabled")
	}

	router := httphandlers.NewRouter(httphandlers.Dependencies{
		Config:      cfg,
		Logger:      zapLogger,
		Interceptor: interceptor,
		Health:      health,
		Metrics:     metrics,
		Auth:        authService,
		Users:       userService,
		Roles:       roleService,
		Media:       mediaService,
		Comments:    commentService,
	})

	// Create HTTP server with timeouts
	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Infow("starting mediahub server", "address", cfg.Server.Address)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		log.Errorw("server failed", "error", err)
	case <-ctx.Done():
		log.Info("received shutdown signal")
	}

	shutdown(cfg, srv, tokenSweeper, tp, repoFactory, log)
}

func shutdown(
	cfg *config.Config,
	srv *http.Server,
	tokenSweeper *sweeper.TokenSweeper,
	tp *tracing.TracerProvider,
	repoFactory *repositories.RepositoryFactory,
	log *zap.SugaredLogger,
) {
	log.Info("shutting down mediahub server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("error during server shutdown", "error", err)
		if closeErr := srv.Close(); closeErr != nil {
			log.Errorw("error force closing server", "error", closeErr)
		}
	} else {
		log.Info("server shutdown gracefully")
	}

	tokenSweeper.Stop()

	if err := tp.Shutdown(shutdownCtx); err != nil {
		log.Errorw("error flushing traces", "error", err)
	}
	if err := repoFactory.Close(); err != nil {
		log.Errorw("error closing repository factory", "error", err)
	}

	log.Info("mediahub server stopped")
}
