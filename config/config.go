// File: /config/config.go
package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port        string
	DatabaseURL string

	// Stats collector
	StatsServiceURL string
	RedisURL        string
	ViewsCacheTTL   int // seconds, 0 disables caching even when Redis is configured

	// Email Configuration
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	FromEmail    string
	FromName     string
}

type StatsConfig struct {
	Port             string
	DatabaseURL      string
	HitRetentionDays int // 0 disables the retention job
}

func Load() *Config {
	smtpPort, _ := strconv.Atoi(getEnv("SMTP_PORT", "2525"))
	cacheTTL, _ := strconv.Atoi(getEnv("VIEWS_CACHE_TTL", "30"))

	return &Config{
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: getEnv("DATABASE_URL", "user:password@tcp(localhost:3306)/afisha?charset=utf8mb4&parseTime=True&loc=Local"),

		StatsServiceURL: getEnv("STATS_SERVICE_URL", "http://localhost:9090"),
		RedisURL:        getEnv("REDIS_URL", ""),
		ViewsCacheTTL:   cacheTTL,

		// Email settings
		SMTPHost:     getEnv("SMTP_HOST", "sandbox.smtp.mailtrap.io"),
		SMTPPort:     smtpPort,
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		FromEmail:    getEnv("FROM_EMAIL", "noreply@afisha.local"),
		FromName:     getEnv("FROM_NAME", "Afisha"),
	}
}

func LoadStats() *StatsConfig {
	retentionDays, _ := strconv.Atoi(getEnv("HIT_RETENTION_DAYS", "0"))

	return &StatsConfig{
		Port:             getEnv("STATS_PORT", "9090"),
		DatabaseURL:      getEnv("STATS_DATABASE_URL", "user:password@tcp(localhost:3306)/afisha_stats?charset=utf8mb4&parseTime=True&loc=Local"),
		HitRetentionDays: retentionDays,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
