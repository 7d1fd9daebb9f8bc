package main

import (
	"os"

	"reservation-backend/internal/config"
	"reservation-backend/pkg/logger"
)

// Config holds the worker-only settings; everything else comes from internal/config.
type Config struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	Concurrency   int
	HealthAddr    string
	Job           config.JobConfig
}

func loadConfig(app *config.Config) *Config {
	cfg := &Config{
		RedisAddr:     app.Redis.Host,
		RedisPassword: app.Redis.Password,
		RedisDB:       app.Redis.DB,
		Concurrency:   10,
		HealthAddr:    getEnv("WORKER_HEALTH_ADDR", ":9999"),
		Job:           app.Job,
	}

	logger.Info("Worker config loaded", map[string]interface{}{
		"redis":       cfg.RedisAddr,
		"concurrency": cfg.Concurrency,
		"sync_cron":   cfg.Job.SyncVirtualAccountsCron,
	})
	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
