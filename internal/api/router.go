package api

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/taskflow/client/internal/api/handler"
	"github.com/taskflow/client/internal/api/middleware"
	"github.com/taskflow/client/internal/api/sandbox"
	"github.com/taskflow/client/internal/core/domain"
)

const (
	apiPrefix = "/api/v1"
	version   = "1.0.0"
)

// NewRouter builds the sandbox API with all routes registered under /api/v1.
func NewRouter(backend *sandbox.Backend, tokens *sandbox.Tokens, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		TargetHeader: echo.HeaderXRequestID,
	}))
	e.Use(requestLogger(log))

	authHandler := handler.NewAuthHandler(backend)
	taskHandler := handler.NewTaskHandler(backend)
	healthHandler := handler.NewHealthHandler(version)
	sandboxHandler := handler.NewSandboxHandler(backend)
	authenticated := middleware.Auth(tokens)

	v1 := e.Group(apiPrefix)

	// --- Public routes ---
	v1.GET("/health", healthHandler.Liveness)
	v1.POST("/auth/login", authHandler.Login)
	v1.POST("/auth/refresh", authHandler.Refresh)
	v1.POST("/auth/register", authHandler.Register)

	// --- Authenticated routes ---
	v1.GET("/auth/me", authHandler.Me, authenticated)
	v1.GET("/users", authHandler.ListUsers, authenticated, middleware.RBAC(domain.RoleAdmin))

	tasks := v1.Group("/tasks", authenticated)
	tasks.GET("", taskHandler.List)
	tasks.POST("", taskHandler.Create)
	tasks.GET("/:id", taskHandler.Get)
	tasks.PUT("/:id", taskHandler.Update)
	tasks.PATCH("/:id/status", taskHandler.UpdateStatus)
	tasks.DELETE("/:id", taskHandler.Delete)

	// --- Token controls (admin only) ---
	controls := v1.Group("/sandbox", authenticated, middleware.RBAC(domain.RoleAdmin))
	controls.POST("/expire-access", sandboxHandler.ExpireAccess)
	controls.POST("/revoke-refresh", sandboxHandler.RevokeRefresh)

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			log.Info().
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
