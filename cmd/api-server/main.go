package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"reviewhub/database"
	"reviewhub/internal/api/handler"
	"reviewhub/internal/api/middleware"
	"reviewhub/internal/api/repository"
	"reviewhub/internal/api/service"
	"reviewhub/internal/config"
	"reviewhub/internal/mailer"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("could not load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logger := newLogger(cfg)

	db, err := database.ConnectDB(cfg, logger)
	if err != nil {
		log.Fatalf("could not connect to database: %v", err)
	}

	// Redis is optional; without it signup throttling is off.
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("invalid REDIS_URL: %v", err)
		}
		redisClient = redis.NewClient(opts)
	}

	codeMailer := mailer.New(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.FromEmail, logger)

	// Repositories
	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	genreRepo := repository.NewGenreRepository(db)
	workRepo := repository.NewWorkRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	// Services
	throttle := service.NewSignupThrottle(redisClient, cfg.SignupResendAfter)
	authService := service.NewAuthService(userRepo, codeMailer, throttle, service.AuthConfig{
		JWTSecret:       cfg.JWTSecret,
		TokenTTL:        cfg.TokenTTL,
		RotateCodeOnUse: cfg.RotateCodeOnUse,
	})
	userService := service.NewUserService(userRepo)
	categoryService := service.NewCategoryService(categoryRepo)
	genreService := service.NewGenreService(genreRepo)
	workService := service.NewWorkService(workRepo, categoryRepo, genreRepo, reviewRepo, nil)
	reviewService := service.NewReviewService(reviewRepo, workRepo)
	commentService := service.NewCommentService(commentRepo, reviewRepo)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()

	authRequired := middleware.Authenticate(authService, userRepo)

	// Safe methods are public: read routes carry no auth middleware at all,
	// write routes demand a token.
	v1 := r.Group("/api/v1")

	auth := v1.Group("/auth", middleware.RateLimit(cfg.AuthRateLimit, cfg.AuthRateBurst))
	handler.NewAuthHandler(authService).RegisterRoutes(auth)

	handler.NewCategoryHandler(categoryService).RegisterRoutes(v1.Group("/categories"), authRequired)
	handler.NewGenreHandler(genreService).RegisterRoutes(v1.Group("/genres"), authRequired)

	works := v1.Group("/works")
	handler.NewWorkHandler(workService).RegisterRoutes(works, authRequired)
	handler.NewReviewHandler(reviewService).RegisterRoutes(works, authRequired)
	handler.NewCommentHandler(commentService).RegisterRoutes(works, authRequired)

	handler.NewUserHandler(userService).RegisterRoutes(v1.Group("/users"), authRequired)

	addr := fmt.Sprintf(":%d", cfg.HTTPPort)
	logger.Info("reviewhub API listening", "addr", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
