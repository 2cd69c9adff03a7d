// Package server contains the HTTP handlers for the application's API
// endpoints and the wiring that connects them to the stores.
package server

import (
	"context"
	"log"
	"time"

	"devconnect/internal/config"
	"devconnect/internal/database"
	"devconnect/internal/middleware"
	"devconnect/internal/repository"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
)

// Server holds all dependencies and provides handlers.
type Server struct {
	config         *config.Config
	mongo          *database.Mongo
	redis          *redis.Client
	promMiddleware *fiberprometheus.FiberPrometheus
	userRepo       repository.UserRepository
	profileRepo    repository.ProfileRepository
	postRepo       repository.PostRepository
}

// NewServer creates a new server instance with all dependencies.
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	mongo, err := database.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		return nil, err
	}

	// Redis only backs the rate limiter; the API runs without it (fail-open).
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisURL})
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		log.Printf("Redis unavailable at %s, rate limiting degraded: %v", cfg.RedisURL, err)
		rdb = nil
	}

	srv := NewServerWithDeps(cfg,
		repository.NewUserRepository(mongo),
		repository.NewProfileRepository(mongo),
		repository.NewPostRepository(mongo),
		rdb,
	)
	srv.mongo = mongo
	return srv, nil
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Used by tests and by any bootstrap layer that owns the connections.
func NewServerWithDeps(
	cfg *config.Config,
	users repository.UserRepository,
	profiles repository.ProfileRepository,
	posts repository.PostRepository,
	rdb *redis.Client,
) *Server {
	return &Server{
		config:         cfg,
		redis:          rdb,
		promMiddleware: middleware.InitMetrics("devconnect-api"),
		userRepo:       users,
		profileRepo:    profiles,
		postRepo:       posts,
	}
}

// SetupMiddleware configures middleware for the Fiber app.
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Propagate request id and user id into the request context for logging
	app.Use(middleware.ContextMiddleware())

	// Prometheus metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	// Structured logging (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS before middlewares that can short-circuit, so browser clients
	// still receive CORS headers on error responses.
	app.Use(cors.New(cors.Config{
		AllowOrigins: s.config.AllowedOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	// Global rate limiting per IP
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"msg": "Too many requests, please try again later",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application.
func (s *Server) SetupRoutes(app *fiber.App) {
	auth := middleware.AuthRequired(s.config.JWTSecret)

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	api := app.Group("/api")

	// Users and auth. Credential endpoints get a tighter Redis-backed limit
	// than the global one.
	api.Post("/users", middleware.RateLimit(s.redis, 10, time.Minute, "register"), s.Register)
	api.Post("/auth", middleware.RateLimit(s.redis, 10, time.Minute, "login"), s.Login)
	api.Get("/auth", auth, s.GetCurrentUser)

	// Profiles
	profile := api.Group("/profile")
	profile.Get("/", s.GetAllProfiles)
	profile.Get("/me", auth, s.GetMyProfile)
	profile.Get("/user/:user_id", s.GetProfileByUser)
	profile.Post("/", auth, s.UpsertProfile)
	profile.Delete("/", auth, s.DeleteAccount)
	profile.Put("/experience", auth, s.AddExperience)
	profile.Delete("/experience/:exp_id", auth, s.DeleteExperience)
	profile.Put("/education", auth, s.AddEducation)
	profile.Delete("/education/:edu_id", auth, s.DeleteEducation)

	// Posts (all authenticated)
	posts := api.Group("/posts", auth)
	posts.Post("/", s.CreatePost)
	posts.Get("/", s.GetPosts)
	posts.Put("/like/:id", s.LikePost)
	posts.Put("/unlike/:id", s.UnlikePost)
	posts.Post("/comment/:id", s.AddComment)
	posts.Delete("/comment/:id/:comment_id", s.DeleteComment)
	posts.Get("/:id", s.GetPost)
	posts.Delete("/:id", s.DeletePost)
}

// Shutdown releases server-owned resources.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			log.Printf("Redis close error: %v", err)
		}
	}
	if s.mongo != nil {
		return s.mongo.Close(ctx)
	}
	return nil
}

// LivenessCheck reports that the process is up.
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// ReadinessCheck reports whether the server can reach its database.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	if s.mongo != nil {
		ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
		defer cancel()
		if err := s.mongo.Ping(ctx); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "degraded",
				"error":  "database unreachable",
			})
		}
	}
	return c.JSON(fiber.Map{"status": "ok"})
}
