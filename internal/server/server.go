// Package server exposes the engine over HTTP.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"denuncias/internal/cache"
	"denuncias/internal/config"
	"denuncias/internal/dispatch"
	_ "denuncias/internal/docs" // swagger docs
	"denuncias/internal/middleware"
	"denuncias/internal/models"
	"denuncias/internal/observability"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
)

var (
	promOnce       sync.Once
	promMiddleware *fiberprometheus.FiberPrometheus
)

// httpMetrics registers the HTTP collectors once per process; the default
// registry rejects duplicates.
func httpMetrics() *fiberprometheus.FiberPrometheus {
	promOnce.Do(func() {
		promMiddleware = fiberprometheus.New("denuncias")
	})
	return promMiddleware
}

// Server holds all dependencies and provides handlers
type Server struct {
	config     *config.Config
	dispatcher *dispatch.Dispatcher
	views      *cache.QueryCache
	observer   cache.Observer
	redis      *redis.Client
	app        *fiber.App
	prom       *fiberprometheus.FiberPrometheus
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// The derived views are kept in an in-memory QueryCache after every successful
// mutation and also handed to observer when it is non-nil; redisClient is
// closed on shutdown when set.
func NewServerWithDeps(cfg *config.Config, d *dispatch.Dispatcher, observer cache.Observer, redisClient *redis.Client) *Server {
	views := cache.NewQueryCache()
	observers := cache.Observers{views}
	if observer != nil {
		observers = append(observers, observer)
	}
	s := &Server{
		config:     cfg,
		dispatcher: d,
		views:      views,
		observer:   observers,
		redis:      redisClient,
		prom:       httpMetrics(),
	}
	s.app = fiber.New(fiber.Config{
		AppName:      "Denuncias Backend",
		ErrorHandler: s.handleError,
	})
	s.SetupMiddleware(s.app)
	s.SetupRoutes(s.app)
	return s
}

// App returns the configured fiber app.
func (s *Server) App() *fiber.App {
	return s.app
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.OptionalAuth(s.dispatcher))
	app.Use(middleware.ContextMiddleware())
	app.Use(s.prom.Middleware)
	app.Use(middleware.StructuredLogger())
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	s.prom.RegisterAt(app, "/metrics")

	health := app.Group("/health")
	health.Get("/live", s.LivenessCheck)

	app.Get("/swagger/*", swagger.HandlerDefault)

	backend := app.Group("/__backend__")
	backend.Post("/rpc", s.Dispatch)
	backend.Get("/cache/:key", s.CachedView)

	auth := backend.Group("/auth")
	auth.Post("/sign-in", s.SignIn)
	auth.Post("/sign-up", s.SignUp)
	auth.Post("/sign-out", s.SignOut)

	backend.Group("/testing").Post("/reset", s.Reset)
}

// LivenessCheck handles liveness probe requests
// @Summary Liveness check
// @Description Reports that the process is up
// @Tags health
// @Produce json
// @Success 200 {object} object{status=string,time=string}
// @Router /health/live [get]
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now().UTC(),
	})
}

// handleError renders errors that escape handlers in the response envelope.
func (s *Server) handleError(c *fiber.Ctx, err error) error {
	if fe, ok := err.(*fiber.Error); ok {
		return c.Status(fe.Code).JSON(dispatch.Response{
			Error: &models.ErrorBody{Message: fe.Message},
		})
	}
	appErr := models.AsAppError(err)
	observability.GlobalLogger.ErrorContext(c.UserContext(), "unhandled error", slog.String("error", err.Error()))
	return c.Status(appErr.Status()).JSON(dispatch.Response{Error: appErr.Body()})
}

// Start listens on the configured port until the app is shut down.
func (s *Server) Start() error {
	observability.GlobalLogger.Info("server starting", slog.String("port", s.config.Port))
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.app.ShutdownWithContext(ctx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			return fmt.Errorf("close redis: %w", err)
		}
	}
	observability.GlobalLogger.Info("server shutdown complete")
	return nil
}
