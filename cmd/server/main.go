package main

import (
	"time"

	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/gomodule/redigo/redis"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/upfeed/upfeed/internal/cache"
	"github.com/upfeed/upfeed/internal/config"
	"github.com/upfeed/upfeed/internal/constants"
	"github.com/upfeed/upfeed/internal/database"
	"github.com/upfeed/upfeed/internal/handlers"
	"github.com/upfeed/upfeed/internal/middleware"
	"github.com/upfeed/upfeed/internal/monitoring"
	"github.com/upfeed/upfeed/internal/repository"
	"github.com/upfeed/upfeed/internal/services"
)

func main() {
	logrus.SetFormatter(&logrus.JSONFormatter{})

	// Load configuration
	cfg := config.Load()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		logrus.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		logrus.Fatalf("Failed to run migrations: %v", err)
	}

	// Metrics
	monitoring.Register()

	// Initialize Gin router
	r := gin.Default()

	// Setup session middleware with Redis
	store, err := redisStore.NewStore(
		10,              // Redis pool size
		"tcp",           // network type
		cfg.RedisAddr(), // Redis address from config
		"",              // username (empty for default user)
		"",              // password (empty = no password)
		[]byte(cfg.SessionSecret), // authentication key
	)
	if err != nil {
		logrus.Fatalf("Failed to create Redis store: %v", err)
	}
	isProduction := cfg.GinMode == "release"
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   constants.SessionMaxAge,
		HttpOnly: true,
		Secure:   isProduction, // true in production (HTTPS), false in development
		SameSite: 2,            // SameSite=Lax (1=Strict, 2=Lax, 3=None)
	})
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	// Redis pool shared by the reset-token store
	redisPool := &redis.Pool{
		MaxIdle:     10,
		IdleTimeout: 240 * time.Second,
		Dial: func() (redis.Conn, error) {
			return redis.Dial("tcp", cfg.RedisAddr())
		},
	}

	// Trending-feed cache
	trendingCache, err := cache.New(64)
	if err != nil {
		logrus.Fatalf("Failed to create cache: %v", err)
	}

	// Repositories
	db := database.GetDB()
	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	voteRepo := repository.NewVoteRepository(db)
	tokenRepo := repository.NewResetTokenRepository(redisPool)

	// Services
	mailService := services.NewMailService(cfg)
	authService := services.NewAuthService(userRepo, tokenRepo, mailService, cfg.FrontendURL)
	postService := services.NewPostService(postRepo, voteRepo, trendingCache)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	postHandler := handlers.NewPostHandler(postService)
	voteHandler := handlers.NewVoteHandler(postService)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "upfeed API is running",
		})
	})

	// Prometheus metrics
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API routes
	api := r.Group("/api")
	api.Use(middleware.LoadUser())
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.POST("/forgot-password", authHandler.ForgotPassword)
			auth.POST("/change-password", authHandler.ChangePassword)
			auth.GET("/me", authHandler.Me)
		}

		// Post routes: queries are public, mutations require a session
		posts := api.Group("/posts")
		{
			posts.GET("", postHandler.List)
			posts.GET("/trending", postHandler.Trending)
			posts.GET("/:id", postHandler.Get)

			posts.POST("", middleware.RequireAuth(), postHandler.Create)
			posts.PATCH("/:id", middleware.RequireAuth(), postHandler.Update)
			posts.DELETE("/:id", middleware.RequireAuth(), postHandler.Delete)
			posts.POST("/:id/vote", middleware.RequireAuth(), voteHandler.Vote)
		}
	}

	// Start server
	logrus.Infof("Server starting on :%s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		logrus.Fatalf("Failed to start server: %v", err)
	}
}
