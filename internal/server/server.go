// Package server contains the HTTP handlers for the review API.
package server

import (
	"context"
	"time"

	"brc/internal/bootstrap"
	"brc/internal/config"
	"brc/internal/middleware"
	"brc/internal/notifications"
	"brc/internal/repository"
	"brc/internal/review"
	"brc/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config            *config.Config
	db                *gorm.DB
	redis             *redis.Client
	promMiddleware    *fiberprometheus.FiberPrometheus
	subRepo           repository.SubmissionRepository
	listRepo          repository.ListRepository
	actionRepo        repository.ActionRepository
	notifier          *notifications.Notifier
	dispatcher        *review.Dispatcher
	submissionService *service.SubmissionService
	listService       *service.ListService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, redisClient, err := bootstrap.InitRuntime(cfg, bootstrap.Options{})
	if err != nil {
		return nil, err
	}

	return NewServerWithDeps(cfg, db, redisClient)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	subRepo := repository.NewSubmissionRepository(db)
	listRepo := repository.NewListRepository(db)
	actionRepo := repository.NewActionRepository(db)

	prom := middleware.InitMetrics("brc-api")

	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: prom,
		subRepo:        subRepo,
		listRepo:       listRepo,
		actionRepo:     actionRepo,
	}

	if redisClient != nil {
		server.notifier = notifications.NewNotifier(redisClient)
	}

	httpNotifier := review.NewHTTPNotifier(cfg.WebhookTimeout, cfg.UserAgent())
	server.dispatcher = review.NewDispatcher(
		subRepo, listRepo, actionRepo, httpNotifier, server.notifier, middleware.Logger,
	)
	server.submissionService = service.NewSubmissionService(subRepo)
	server.listService = service.NewListService(listRepo)

	return server, nil
}

// SetDispatcher swaps the review dispatcher. Tests use this to inject a
// dispatcher with a stub webhook notifier.
func (s *Server) SetDispatcher(d *review.Dispatcher) {
	s.dispatcher = d
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Context Middleware to propagate request ID and caller identity
	app.Use(middleware.ContextMiddleware())

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// Distributed tracing
	if s.config.TracingEnabled {
		app.Use(middleware.TracingMiddleware())
	}

	// CORS before middlewares that can short-circuit (e.g. limiter) so
	// browser clients still receive CORS headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-List-ID",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		// Never rate-limit preflight requests; they are handled by CORS.
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)
	api.Get("/", s.HealthCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Bot Review Metrics Dashboard",
	}))

	// Public list catalog
	lists := api.Group("/lists")
	lists.Get("/", s.GetLists)
	lists.Get("/:id", s.GetList)
	// Self-service updates require the list's own secret.
	lists.Patch("/:id", middleware.ListAuth(s.listRepo), s.UpdateList)

	// Submission intake and reads
	bots := api.Group("/bots")
	bots.Get("/", s.GetBots)
	bots.Post("/", middleware.ListAuth(s.listRepo), middleware.RateLimit(
		s.redis, 10, time.Minute, "bot_intake"), s.CreateBot)

	// Queue and audit feed
	api.Get("/queue", s.GetQueue)
	api.Get("/actions", s.GetActions)

	// Resend-mode review endpoints under list-secret auth
	bots.Post("/:id/approve", middleware.ListAuth(s.listRepo), s.ApproveBot)
	bots.Post("/:id/deny", middleware.ListAuth(s.listRepo), s.DenyBot)

	// Reviewer endpoints under JWT auth
	bots.Post("/:id/claim", middleware.ReviewerAuth, s.ClaimBot)
	bots.Post("/:id/unclaim", middleware.ReviewerAuth, s.UnclaimBot)
	bots.Post("/:id/resend", middleware.ReviewerAuth, s.ResendBot)

	// Generic read last so the action routes match first
	bots.Get("/:id", s.GetBot)
}

// Shutdown releases server-held resources.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			return err
		}
	}
	if s.db != nil {
		sqlDB, err := s.db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}
	return nil
}
