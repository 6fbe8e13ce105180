package api

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/EgehanKilicarslan/taskmanager/backend-go/internal/apperr"
	"github.com/EgehanKilicarslan/taskmanager/backend-go/internal/handler"
	"github.com/EgehanKilicarslan/taskmanager/backend-go/internal/middleware"
	"github.com/EgehanKilicarslan/taskmanager/backend-go/internal/response"
)

// Handlers groups the HTTP handlers the router mounts
type Handlers struct {
	Auth *handler.AuthHandler
	User *handler.UserHandler
	Task *handler.TaskHandler
}

func SetupRouter(
	handlers Handlers,
	authMiddleware *middleware.AuthMiddleware,
	metrics *middleware.Metrics,
	gatherer prometheus.Gatherer,
	logger *slog.Logger,
) *gin.Engine {
	handler.RegisterValidations()

	r := gin.New()
	r.SetTrustedProxies(nil)
	r.Use(
		middleware.RequestLogger(logger),
		metrics.Handler(),
		gin.CustomRecovery(func(c *gin.Context, recovered any) {
			logger.Error("💥 [HTTP] Panic recovered", "request_id", middleware.RequestID(c), "panic", recovered)
			response.Abort(c, apperr.Internal(nil))
		}),
	)

	// Public routes
	r.GET("/api/v1/health", func(c *gin.Context) {
		response.OK(c, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	// Auth routes (Public)
	authGroup := r.Group("/api/v1/auth")
	{
		authGroup.POST("/register", handlers.Auth.Register)
		authGroup.POST("/login", handlers.Auth.Login)
	}

	// Protected routes; handlers also check :userId against the caller.
	users := r.Group("/api/v1/users/:userId")
	users.Use(authMiddleware.RequireAuth())
	{
		users.GET("", handlers.User.GetUser)
		users.PUT("/password", handlers.User.UpdatePassword)
		users.POST("/delete", handlers.User.Delete)

		users.GET("/tasks", handlers.Task.ListTasks)
		users.POST("/tasks", handlers.Task.CreateTask)
		users.GET("/tasks/:taskId", handlers.Task.GetTask)
		users.PUT("/tasks/:taskId", handlers.Task.UpdateTask)
		users.DELETE("/tasks/:taskId", handlers.Task.DeleteTask)
	}

	r.NoRoute(func(c *gin.Context) {
		response.Error(c, apperr.New(apperr.KindNoHandlerFound, "no handler for %s %s", c.Request.Method, c.Request.URL.Path))
	})

	return r
}
