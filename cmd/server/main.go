package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"poolride/internal/config"
	"poolride/internal/handlers"
	"poolride/internal/middleware"
	mongorepo "poolride/internal/repositories/mongodb"
	"poolride/internal/services"
	"poolride/pkg/cache"
	"poolride/pkg/database"
	"poolride/pkg/logger"
	"poolride/routes"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger, err := logger.NewLogger(&logger.Config{
		Level:  logger.LogLevel(cfg.App.LogLevel),
		Format: cfg.App.LogFormat,
		Output: "stdout",
		Colors: cfg.App.Debug,
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	// Connect to MongoDB and apply schema migrations
	mongodb, err := database.NewMongoDB(&database.DatabaseConfig{
		URI:            cfg.Database.URI,
		Database:       cfg.Database.Database,
		MaxPoolSize:    cfg.Database.MaxPoolSize,
		MinPoolSize:    cfg.Database.MinPoolSize,
		ConnectTimeout: cfg.Database.ConnectTimeout,
		SocketTimeout:  cfg.Database.SocketTimeout,
	})
	if err != nil {
		appLogger.Fatal("Failed to connect to MongoDB: ", err)
	}
	defer mongodb.Close()

	migrateCtx, cancelMigrate := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.NewMigrator(mongodb.Database).Up(migrateCtx); err != nil {
		cancelMigrate()
		appLogger.Fatal("Failed to run migrations: ", err)
	}
	cancelMigrate()

	// Connect to Redis
	redisCache, err := cache.NewRedisCache(&cache.RedisConfig{
		Host:         cfg.Redis.Host,
		Port:         cfg.Redis.Port,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})
	if err != nil {
		appLogger.Fatal("Failed to connect to Redis: ", err)
	}
	defer redisCache.Close()

	// Services
	cacheService := services.NewCacheService(redisCache, appLogger)

	// Repositories
	userRepo := mongorepo.NewUserRepository(mongodb.Database, cacheService)
	poolRepo := mongorepo.NewPoolRepository(mongodb.Database, cacheService)
	feedbackRepo := mongorepo.NewFeedbackRepository(mongodb.Database)

	authService := services.NewAuthService(userRepo, cfg.Security.JWTSecret, cfg.Security.BcryptCost, appLogger)
	poolService := services.NewPoolService(poolRepo, userRepo, appLogger)
	feedbackService := services.NewFeedbackService(feedbackRepo, poolRepo, userRepo, appLogger)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	poolHandler := handlers.NewPoolHandler(poolService)
	feedbackHandler := handlers.NewFeedbackHandler(feedbackService)

	// Initialize Gin router
	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware(appLogger))

	// API routes
	v1 := router.Group("/api/v1")
	{
		routes.SetupAuthRoutes(v1, authHandler, cfg.Security.JWTSecret)
		routes.SetupPoolRoutes(v1, poolHandler, cfg.Security.JWTSecret)
		routes.SetupFeedbackRoutes(v1, feedbackHandler, cfg.Security.JWTSecret)
	}

	// Health check
	router.GET("/health", func(c *gin.Context) {
		status := http.StatusOK
		health := gin.H{
			"status":  "healthy",
			"version": cfg.App.Version,
		}

		if err := mongodb.Ping(); err != nil {
			status = http.StatusServiceUnavailable
			health["status"] = "degraded"
			health["mongodb"] = err.Error()
		}
		if err := cacheService.Ping(c.Request.Context()); err != nil {
			status = http.StatusServiceUnavailable
			health["status"] = "degraded"
			health["redis"] = err.Error()
		}

		c.JSON(status, health)
	})

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.App.Port),
		Handler: router,
	}

	go func() {
		appLogger.Info("Starting server on port ", cfg.App.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("Server error: ", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Forced shutdown: ", err)
	}
}
