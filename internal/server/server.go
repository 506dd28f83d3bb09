// Package server contains the HTTP handlers for the CrewZ API endpoints.
package server

import (
	"context"
	"errors"
	"strings"
	"time"

	_ "crewz/docs" // swagger docs
	"crewz/internal/config"
	"crewz/internal/database"
	"crewz/internal/featureflags"
	"crewz/internal/media"
	"crewz/internal/middleware"
	"crewz/internal/models"
	"crewz/internal/repository"
	"crewz/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// maxMediaItems bounds the media list of a single post or vehicle.
const maxMediaItems = 10

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	tokens         *middleware.TokenIssuer
	limiter        *middleware.RateLimiter
	featureFlags   *featureflags.Manager

	authService    *service.AuthService
	userService    *service.UserService
	vehicleService *service.VehicleService
	postService    *service.PostService
	feedService    *service.FeedService
	messageService *service.MessageService
	eventService   *service.EventService
	catalogService *service.CatalogService
}

// NewServer creates a Server using already-initialized dependencies. The bootstrap layer owns
// connecting to Postgres and Redis; redisClient may be nil.
func NewServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) *Server {
	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	vehicleRepo := repository.NewVehicleRepository(db)
	likeRepo := repository.NewLikeRepository(db)

	checker := media.NewChecker(media.Limits{
		MaxBytes:     cfg.MediaMaxBytes,
		MaxDimension: cfg.MediaMaxDimension,
		MaxItems:     maxMediaItems,
	})
	tokens := middleware.NewTokenIssuer(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)

	return &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("crewz-api"),
		tokens:         tokens,
		limiter:        middleware.NewRateLimiter(redisClient, cfg.Env),
		featureFlags:   featureflags.NewManager(cfg.FeatureFlags),

		authService:    service.NewAuthService(userRepo, tokens),
		userService:    service.NewUserService(userRepo, repository.NewFollowRepository(db), checker),
		vehicleService: service.NewVehicleService(vehicleRepo, checker),
		postService: service.NewPostService(service.PostServiceDeps{
			Posts:    postRepo,
			Likes:    likeRepo,
			Comments: repository.NewCommentRepository(db),
			Users:    userRepo,
			Vehicles: vehicleRepo,
			Media:    checker,
			StoryTTL: cfg.StoryTTL,
		}),
		feedService:    service.NewFeedService(postRepo, userRepo, vehicleRepo, likeRepo),
		messageService: service.NewMessageService(repository.NewMessageRepository(db), userRepo, checker),
		eventService:   service.NewEventService(repository.NewEventRepository(db), checker),
		catalogService: service.NewCatalogService(repository.NewCatalogRepository(db)),
	}
}

// App builds the Fiber application with middleware and routes installed.
func (s *Server) App() *fiber.App {
	if s.app != nil {
		return s.app
	}
	app := fiber.New(fiber.Config{
		AppName:      "CrewZ API",
		BodyLimit:    s.bodyLimit(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fe *fiber.Error
			if errors.As(err, &fe) && fe.Code < fiber.StatusInternalServerError {
				code := models.CodeValidation
				if fe.Code == fiber.StatusNotFound {
					code = models.CodeNotFound
				}
				return models.RespondWithError(c, fe.Code, &models.AppError{Code: code, Message: fe.Message})
			}
			return mapServiceError(c, models.NewInternalError(err))
		},
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	s.app = app
	return app
}

// bodyLimit leaves room for a handful of base64 media items per request.
func (s *Server) bodyLimit() int {
	limit := 4 * 1024 * 1024
	if s.config.MediaMaxBytes > 0 {
		if l := s.config.MediaMaxBytes * 2 * maxMediaItems; l > limit {
			limit = l
		}
	}
	return limit
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())
	app.Use(middleware.AccessLog(middleware.Logger))

	// CORS runs before the limiter so short-circuited responses still carry CORS headers.
	origins := strings.Join(s.config.Origins(), ",")
	if origins == "" {
		origins = "http://localhost:3000,http://localhost:8081,http://localhost:19006"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		MaxAge:       86400,
	}))

	// Global per-IP limit
	app.Use(limiter.New(limiter.Config{
		Max:        300,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions || s.config.Env == "test"
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(models.ErrorResponse{
				Error: "Too many requests, please try again later.",
				Code:  "RATE_LIMITED",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	api := app.Group("/api")
	api.Get("/swagger/*", swagger.HandlerDefault)

	authLimit := s.limiter.Handler(s.config.RateLimitAuthPerMinute, time.Minute, "auth")
	writeLimit := s.limiter.Handler(s.config.RateLimitWritePerMinute, time.Minute, "write")

	auth := api.Group("/auth")
	auth.Post("/register", authLimit, s.Register)
	auth.Post("/login", authLimit, s.Login)

	protected := api.Group("", middleware.AuthRequired(s.tokens))
	protected.Get("/auth/me", s.Me)
	protected.Get("/feature-flags", s.GetFeatureFlags)

	// Specific routes before generic /:id routes
	users := protected.Group("/users")
	users.Put("/profile", writeLimit, s.UpdateProfile)
	users.Post("/:id/follow", writeLimit, s.ToggleFollow)
	users.Get("/:id", s.GetUserProfile)

	vehicles := protected.Group("/vehicles")
	vehicles.Post("/", writeLimit, s.CreateVehicle)
	vehicles.Get("/my", s.GetMyVehicles)
	vehicles.Get("/user/:userId", s.GetUserVehicles)
	vehicles.Post("/:id/images", writeLimit, s.AddVehicleImage)
	vehicles.Get("/:id", s.GetVehicle)
	vehicles.Put("/:id", writeLimit, s.UpdateVehicle)
	vehicles.Delete("/:id", s.DeleteVehicle)

	posts := protected.Group("/posts")
	posts.Post("/", writeLimit, s.CreatePost)
	posts.Get("/feed", s.GetFeed)
	posts.Get("/user/:userId", s.GetUserPosts)
	posts.Post("/:id/like", s.ToggleLike)
	posts.Post("/:id/comments", writeLimit, s.CreateComment)
	posts.Get("/:id/comments", s.GetComments)
	posts.Delete("/:id/comments/:commentId", s.DeleteComment)
	posts.Delete("/:id", s.DeletePost)

	stories := protected.Group("/stories")
	stories.Post("/", writeLimit, s.createTyped(models.PostTypeStory))
	stories.Get("/", s.listTyped(models.PostTypeStory))

	reels := protected.Group("/reels")
	reels.Post("/", writeLimit, s.createTyped(models.PostTypeReel))
	reels.Get("/", s.listTyped(models.PostTypeReel))

	live := protected.Group("/live", s.featureFlags.Require(featureflags.LiveStreams))
	live.Post("/", writeLimit, s.createTyped(models.PostTypeLive))
	live.Get("/", s.listTyped(models.PostTypeLive))
	live.Post("/:id/end", s.EndLive)

	messages := protected.Group("/messages")
	messages.Post("/send", writeLimit, s.SendMessage)
	messages.Get("/conversations", s.GetConversations)
	messages.Get("/:partnerId", s.GetMessageHistory)

	events := protected.Group("/events")
	events.Post("/", writeLimit, s.CreateEvent)
	events.Get("/", s.GetEvents)
	events.Post("/:id/invite", writeLimit, s.InviteToEvent)
	events.Post("/:id/join", s.JoinEvent)
	events.Post("/:id/leave", s.LeaveEvent)
	events.Get("/:id", s.GetEvent)

	protected.Get("/catalog/vehicles", s.GetCatalog)

	search := protected.Group("/search", s.featureFlags.Require(featureflags.Search))
	search.Get("/users", s.SearchUsers)
	search.Get("/posts", s.SearchPosts)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests. Redis is optional: without it the limiter and
// cache fall back to local behavior, so only a configured but unreachable Redis fails readiness.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if err := database.Ping(ctx, s.db); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "disabled"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
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

// GetFeatureFlags returns configured feature flags and their evaluated state for the caller.
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"raw":       s.featureFlags.Raw(),
		"evaluated": s.featureFlags.Snapshot(middleware.UserID(c)),
	})
}

// Start listens on the configured port. It blocks until the app is shut down.
func (s *Server) Start() error {
	return s.App().Listen(":" + s.config.Port)
}

// Shutdown drains in-flight requests within ctx.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app == nil {
		return nil
	}
	return s.app.ShutdownWithContext(ctx)
}
