// File: /cmd/mainservice/main.go
package main

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"afisha-api/config"
	"afisha-api/database"
	"afisha-api/middleware"
	"afisha-api/routes"
	"afisha-api/services"
	"afisha-api/statsclient"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.Initialize(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Run migrations
	if err := database.Migrate(db); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Stats collector client, with an optional Redis cache for view counts
	stats := statsclient.New(cfg.StatsServiceURL, "afisha-main-service")
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatal("Invalid REDIS_URL:", err)
		}
		stats = stats.WithCache(redis.NewClient(opts), time.Duration(cfg.ViewsCacheTTL)*time.Second)
	}

	emailService := services.NewEmailService(cfg)

	// Set Gin mode based on environment
	if cfg.Port == "8080" { // Development
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(routes.SetupCORS())
	router.Use(middleware.RequestID())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.RateLimit(600, 60))

	// Setup routes
	routes.SetupRoutes(router, db, cfg, stats, emailService)

	log.Printf("Starting Afisha main service on port %s", cfg.Port)

	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
