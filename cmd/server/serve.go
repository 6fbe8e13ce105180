package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"gorm.io/gorm"

	"github.com/EgehanKilicarslan/taskmanager/backend-go/internal/api"
	"github.com/EgehanKilicarslan/taskmanager/backend-go/internal/auth"
	"github.com/EgehanKilicarslan/taskmanager/backend-go/internal/config"
	"github.com/EgehanKilicarslan/taskmanager/backend-go/internal/database"
	"github.com/EgehanKilicarslan/taskmanager/backend-go/internal/database/repository"
	"github.com/EgehanKilicarslan/taskmanager/backend-go/internal/database/service"
	internalgrpc "github.com/EgehanKilicarslan/taskmanager/backend-go/internal/grpc"
	"github.com/EgehanKilicarslan/taskmanager/backend-go/internal/handler"
	"github.com/EgehanKilicarslan/taskmanager/backend-go/internal/logger"
	"github.com/EgehanKilicarslan/taskmanager/backend-go/internal/middleware"
	"github.com/EgehanKilicarslan/taskmanager/backend-go/internal/worker"
)

const (
	healthProbeInterval = 10 * time.Second
	healthProbeTimeout  = 2 * time.Second
)

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API and gRPC health servers",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg := config.LoadConfig()
	appLogger := logger.New(cfg)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return serve(ctx, cfg, appLogger)
}

// app is the wired HTTP router and health service.
type app struct {
	router *gin.Engine
	health *internalgrpc.HealthServer
}

// newApp wires repositories, services and handlers. cache may be nil.
func newApp(cfg *config.Config, db *gorm.DB, cache database.UserCache, appLogger *slog.Logger) (*app, error) {
	// Repositories
	var userRepo repository.UserRepository = repository.NewUserRepository(db)
	if cache != nil {
		userRepo = repository.NewCachedUserRepository(userRepo, cache, appLogger)
	}
	taskRepo := repository.NewTaskRepository(db)

	// Auth primitives
	hasher := auth.NewBcryptHasher(int(cfg.BcryptCost))
	if int64(hasher.Cost()) != cfg.BcryptCost {
		appLogger.Warn("⚠️ [Go] BCRYPT_COST out of range, using default", "configured", cfg.BcryptCost, "bcrypt_cost", hasher.Cost())
	}
	tokens, err := auth.NewJWTService(cfg.JWTSecret, cfg.TokenTTL())
	if err != nil {
		return nil, fmt.Errorf("failed to create token service: %w", err)
	}

	// Services
	userService := service.NewUserService(userRepo, hasher, appLogger)
	authService := service.NewAuthService(userService, userRepo, hasher, tokens, appLogger)
	taskService := service.NewTaskService(userRepo, taskRepo, appLogger)

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	router := api.SetupRouter(
		api.Handlers{
			Auth: handler.NewAuthHandler(authService, appLogger),
			User: handler.NewUserHandler(userService, appLogger),
			Task: handler.NewTaskHandler(taskService, appLogger),
		},
		middleware.NewAuthMiddleware(tokens, userRepo, appLogger),
		middleware.NewMetrics(registry),
		registry,
		appLogger,
	)

	health := internalgrpc.NewHealthServer(func(ctx context.Context) error {
		return database.Ping(ctx, db)
	}, healthProbeTimeout, appLogger)

	return &app{router: router, health: health}, nil
}

func serve(ctx context.Context, cfg *config.Config, appLogger *slog.Logger) error {
	appLogger.Info("🚀 [Go] Starting Task Manager API...",
		"environment", cfg.AppEnv,
		"db_driver", cfg.DBDriver,
	)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		if cfg.JWTSecret == config.DefaultJWTSecret {
			appLogger.Warn("⚠️ [Go] JWT_SECRET is the development default; set a real secret")
		}
	}

	// 1. Database
	db, err := database.Open(ctx, cfg, appLogger)
	if err != nil {
		return err
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}()

	if err := database.Migrate(db, cfg.DBDriver, appLogger); err != nil {
		return err
	}

	// 2. Redis user cache (optional)
	var cache database.UserCache
	redisClient, err := database.NewRedisClient(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Warn("⚠️ [Go] Failed to connect to Redis", "error", err)
		appLogger.Info("💡 [Go] User lookups will go straight to the database (no Redis caching)")
	} else {
		cache = redisClient
		defer redisClient.Close()
	}

	// 3. Wiring
	application, err := newApp(cfg, db, cache, appLogger)
	if err != nil {
		return err
	}

	// 4. Listeners
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.ApiServicePort),
		Handler:           application.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	grpcListener, err := net.Listen("tcp", fmt.Sprintf(":%s", cfg.ApiGrpcPort))
	if err != nil {
		return fmt.Errorf("failed to listen for gRPC: %w", err)
	}
	grpcServer := grpc.NewServer()
	application.health.Register(grpcServer)

	// 5. Run until a signal arrives or a server fails
	shutdownTimeout := time.Duration(cfg.ShutdownTimeout) * time.Second
	pool := worker.NewPool(ctx, appLogger)

	pool.Submit("http", func(ctx context.Context) error {
		appLogger.Info("🌍 [Go] HTTP Server running...", "port", cfg.ApiServicePort)
		errCh := make(chan error, 1)
		go func() {
			errCh <- httpServer.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
			defer cancel()
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				return err
			}
			if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		}
	})

	pool.Submit("grpc", func(ctx context.Context) error {
		appLogger.Info("🔌 [Go] gRPC Server running...", "port", cfg.ApiGrpcPort)
		errCh := make(chan error, 1)
		go func() {
			errCh <- grpcServer.Serve(grpcListener)
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
			application.health.Shutdown()
			grpcServer.GracefulStop()
			return <-errCh
		}
	})

	pool.Every("db-health", healthProbeInterval, application.health.Probe)

	<-pool.Done()
	appLogger.Info("🛑 [Go] Shutdown requested")

	if err := pool.Shutdown(shutdownTimeout + time.Second); err != nil {
		appLogger.Error("❌ [Go] Unclean shutdown", "error", err)
		return err
	}

	appLogger.Info("👋 [Go] Server stopped")
	return nil
}
