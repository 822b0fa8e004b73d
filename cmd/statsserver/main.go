// File: /cmd/statsserver/main.go
package main

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"

	"afisha-api/config"
	"afisha-api/jobs"
	"afisha-api/middleware"
	"afisha-api/stats"
)

func main() {
	// Load configuration
	cfg := config.LoadStats()

	// Initialize database
	db, err := stats.InitializeDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Run migrations
	if err := stats.Migrate(db); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Optional retention job for old hits
	if cfg.HitRetentionDays > 0 {
		retention := jobs.NewHitRetentionJob(db, cfg.HitRetentionDays, 24*time.Hour)
		retention.Start()
		defer retention.Stop()
	}

	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger())

	stats.SetupRoutes(router, stats.NewService(db))

	log.Printf("Starting Afisha stats service on port %s", cfg.Port)

	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
