package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DBDSN          string
	Environment    string
	Port           string
	RedisAddr      string
	AMQPURL        string
	MigrationsPath string
	SlotCacheTTL   time.Duration
}

// Load reads configuration from a .env file when present, then from the
// environment. DB_DSN is the only required setting; REDIS_ADDR and
// AMQP_URL are optional and disable caching / event publishing when
// empty.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		DBDSN:          os.Getenv("DB_DSN"),
		Environment:    os.Getenv("ENV"),
		Port:           os.Getenv("PORT"),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		AMQPURL:        os.Getenv("AMQP_URL"),
		MigrationsPath: os.Getenv("MIGRATIONS_PATH"),
		SlotCacheTTL:   30 * time.Second,
	}

	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.MigrationsPath == "" {
		cfg.MigrationsPath = "migrations"
	}
	if ttl := os.Getenv("SLOT_CACHE_TTL"); ttl != "" {
		d, err := time.ParseDuration(ttl)
		if err != nil {
			return nil, fmt.Errorf("parse SLOT_CACHE_TTL: %w", err)
		}
		cfg.SlotCacheTTL = d
	}

	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN is required but not set")
	}

	return cfg, nil
}
