// Package server contains HTTP handlers for the application's API endpoints.
package server

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"atelier/internal/cache"
	"atelier/internal/config"
	"atelier/internal/database"
	"atelier/internal/featureflags"
	"atelier/internal/mailer"
	"atelier/internal/middleware"
	"atelier/internal/models"
	"atelier/internal/oauth"
	"atelier/internal/repository"
	"atelier/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	tokenIssuer   = "atelier-api"
	tokenAudience = "atelier-client"
	tokenTTL      = 7 * 24 * time.Hour
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus

	userRepo      repository.UserRepository
	convRepo      repository.ConversationRepository
	blogRepo      repository.BlogRepository
	portfolioRepo repository.PortfolioRepository
	contactRepo   repository.ContactRepository

	userService      *service.UserService
	messageService   *service.MessageService
	blogService      *service.BlogService
	portfolioService *service.PortfolioService
	contactService   *service.ContactService

	mailer         *mailer.Mailer
	oauthProviders map[string]oauth.Provider
	featureFlags   *featureflags.Manager
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)

	return NewServerWithDeps(cfg, db, cache.GetClient())
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("atelier-api"),
		userRepo:       repository.NewUserRepository(db),
		convRepo:       repository.NewConversationRepository(db),
		blogRepo:       repository.NewBlogRepository(db),
		portfolioRepo:  repository.NewPortfolioRepository(db),
		contactRepo:    repository.NewContactRepository(db),
		mailer:         mailer.New(cfg.AMQPURL, cfg.MailFrom),
		oauthProviders: oauth.NewProviders(cfg),
		featureFlags:   featureflags.NewManager(cfg.FeatureFlags),
	}

	server.userService = service.NewUserService(server.userRepo)
	server.messageService = service.NewMessageService(server.convRepo, server.userRepo)
	server.blogService = service.NewBlogService(server.blogRepo)
	server.portfolioService = service.NewPortfolioService(server.portfolioRepo)
	server.contactService = service.NewContactService(server.contactRepo, server.mailer, cfg.AdminEmail)

	return server, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	if s.config.TracingEnabled {
		app.Use(middleware.TracingMiddleware())
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	// CORS must run before middlewares that can short-circuit (e.g. limiter)
	// so browser clients still receive CORS headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Global rate limiting (100 requests per minute per IP)
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
			return c.Status(fiber.StatusTooManyRequests).JSON(models.Envelope{
				Success: false,
				Message: "Too many requests, please try again later.",
				Status:  fiber.StatusTooManyRequests,
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

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Atelier Backend Metrics Dashboard",
	}))

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/signup", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "signup"), s.Signup)
	auth.Post("/login", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "login"), s.Login)
	auth.Post("/verify-otp", middleware.RateLimit(
		s.redis, 10, 10*time.Minute, "verify_otp"), s.VerifyOTP)
	auth.Post("/resend-otp", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "resend_otp"), s.ResendOTP)
	auth.Get("/oauth/:provider", s.OAuthAuthorize)
	auth.Post("/oauth/:provider/callback", s.OAuthCallback)
	auth.Post("/refresh", s.AuthRequired(), s.Refresh)
	auth.Post("/logout", s.AuthRequired(), s.Logout)

	// Public blog routes
	blogs := api.Group("/blogs")
	blogs.Get("/", s.GetBlogs)
	blogs.Get("/tags", s.GetTags)
	blogs.Get("/categories", s.GetCategories)
	blogs.Get("/:id/comments", s.GetComments)
	blogs.Get("/:slug", s.GetBlog)

	// Public portfolio routes
	api.Get("/portfolio", s.GetPortfolio)
	projects := api.Group("/projects")
	projects.Get("/", s.GetProjects)
	projects.Get("/:slug", s.GetProject)
	api.Get("/skills", s.GetSkills)
	api.Get("/experiences", s.GetExperiences)
	api.Get("/education", s.GetEducation)
	api.Get("/testimonials", s.GetTestimonials)

	// Public user profile. The int constraint keeps /users/me out of this
	// wildcard so it reaches the authenticated group below.
	api.Get("/users/:id<int>", s.GetUserProfile)

	// Contact form (anonymous)
	api.Post("/contact", middleware.RateLimit(
		s.redis, 5, 10*time.Minute, "contact"), s.SubmitContact)

	// Protected routes
	protected := api.Group("", s.AuthRequired())

	users := protected.Group("/users")
	users.Get("/me", s.GetMyProfile)
	users.Put("/me", s.UpdateMyProfile)
	users.Get("/", s.AdminRequired(), s.GetAllUsers)
	users.Post("/:id/promote", s.AdminRequired(), s.PromoteToAdmin)
	users.Post("/:id/demote", s.AdminRequired(), s.DemoteFromAdmin)
	users.Delete("/:id", s.AdminRequired(), s.DeleteUser)

	// Messaging routes
	messages := protected.Group("/messages")
	messages.Get("/", s.GetConversations)
	messages.Post("/", middleware.RateLimit(
		s.redis, 15, time.Minute, "send_message"), s.SendMessage)
	messages.Get("/conversations/:id", s.GetThread)
	messages.Post("/conversations/:id", middleware.RateLimit(
		s.redis, 15, time.Minute, "send_message"), s.SendToConversation)
	messages.Post("/conversations/:id/read", s.MarkConversationRead)

	// Protected blog interactions
	authedBlogs := protected.Group("/blogs")
	authedBlogs.Post("/", s.AdminRequired(), s.CreateBlog)
	authedBlogs.Post("/tags", s.AdminRequired(), s.CreateTag)
	authedBlogs.Post("/categories", s.AdminRequired(), s.CreateCategory)
	authedBlogs.Post("/:id/comments", middleware.RateLimit(
		s.redis, 10, time.Minute, "create_comment"), s.CreateComment)
	authedBlogs.Put("/:id/comments/:commentId", s.UpdateComment)
	authedBlogs.Delete("/:id/comments/:commentId", s.DeleteComment)
	authedBlogs.Post("/:id/reactions", s.ReactToBlog)
	authedBlogs.Delete("/:id/reactions", s.RemoveReaction)
	authedBlogs.Put("/:id", s.AdminRequired(), s.UpdateBlog)
	authedBlogs.Delete("/:id", s.AdminRequired(), s.DeleteBlog)

	// Admin portfolio management
	adminProjects := protected.Group("/projects", s.AdminRequired())
	adminProjects.Post("/", s.CreateProject)
	adminProjects.Put("/:id", s.UpdateProject)
	adminProjects.Delete("/:id", s.DeleteProject)

	adminSkills := protected.Group("/skills", s.AdminRequired())
	adminSkills.Post("/", s.CreateSkill)
	adminSkills.Put("/:id", s.UpdateSkill)
	adminSkills.Delete("/:id", s.DeleteSkill)

	adminExperiences := protected.Group("/experiences", s.AdminRequired())
	adminExperiences.Post("/", s.CreateExperience)
	adminExperiences.Put("/:id", s.UpdateExperience)
	adminExperiences.Delete("/:id", s.DeleteExperience)

	adminEducation := protected.Group("/education", s.AdminRequired())
	adminEducation.Post("/", s.CreateEducation)
	adminEducation.Put("/:id", s.UpdateEducation)
	adminEducation.Delete("/:id", s.DeleteEducation)

	adminTestimonials := protected.Group("/testimonials", s.AdminRequired())
	adminTestimonials.Post("/", s.CreateTestimonial)
	adminTestimonials.Post("/:id/approve", s.ApproveTestimonial)
	adminTestimonials.Delete("/:id", s.DeleteTestimonial)

	// Admin contact inbox
	adminContact := protected.Group("/contact", s.AdminRequired())
	adminContact.Get("/", s.GetContactMessages)
	adminContact.Patch("/:id", s.UpdateContactMessage)
	adminContact.Delete("/:id", s.DeleteContactMessage)

	// Admin diagnostics
	admin := protected.Group("/admin", s.AdminRequired())
	admin.Get("/feature-flags", s.GetFeatureFlags)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		// The API degrades without Redis (no cache, no OTP); report it.
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" || redisStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// AdminRequired returns middleware that rejects non-admin users with 403.
// Must be placed after AuthRequired so that userID is available in locals.
func (s *Server) AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Locals("userID").(uint)

		admin, err := s.isAdminByUserID(c.Context(), userID)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusInternalServerError, err)
		}
		if !admin {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewForbiddenError("Admin access required"))
		}

		return c.Next()
	}
}

// AuthRequired returns the authentication middleware
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		tokenString := ""
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}

		if tokenString == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
			}
			return []byte(s.config.JWTSecret), nil
		})
		if err != nil || !token.Valid {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid or expired token"))
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid token claims"))
		}

		if issuer, issuerOk := claims["iss"].(string); !issuerOk || issuer != tokenIssuer {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid token issuer"))
		}
		if audience, audienceOk := claims["aud"].(string); !audienceOk || audience != tokenAudience {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid token audience"))
		}

		sub, ok := claims["sub"].(string)
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid subject claim"))
		}
		userID, err := strconv.ParseUint(sub, 10, 32)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid user ID in token"))
		}

		// Check JTI for revocation
		if jti, exists := claims["jti"].(string); exists && jti != "" {
			if cache.IsTokenBlacklisted(c.Context(), jti) {
				return models.RespondWithError(c, fiber.StatusUnauthorized,
					models.NewUnauthorizedError("Token has been revoked"))
			}
			c.Locals("jti", jti)
		}

		if role, exists := claims["role"].(string); exists {
			c.Locals("role", role)
		}
		if exp, exists := claims["exp"].(float64); exists {
			c.Locals("tokenExp", int64(exp))
		}

		c.Locals("userID", uint(userID))
		// Sync to UserContext for logging and downstream services
		ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, uint(userID))
		c.SetUserContext(ctx)

		return c.Next()
	}
}

// Start starts the server
func (s *Server) Start() error {
	app := fiber.New(fiber.Config{
		AppName: "Atelier API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	log.Printf("Server starting on port %s...", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			log.Printf("error shutting down HTTP server: %v", err)
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Printf("error closing sql DB: %v", cerr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			log.Printf("error closing redis: %v", rerr)
		}
	}

	log.Println("Server shutdown complete")
	return nil
}
