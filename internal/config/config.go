// Package config reads process settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	DatabaseDriver string // postgres, mysql, sqlite or memory
	DatabaseURL    string

	SessionSecret string

	MediaRoot      string
	MediaURL       string
	StorageBackend string // local or s3
	AWSRegion      string
	AWSBucket      string
	AWSAccessKey   string
	AWSSecretKey   string

	CacheBackend  string // memory or redis
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	IndexCacheTTL time.Duration

	LogLevel string
	GinMode  string
}

// Load reads .env files (missing files are fine) and then the environment.
func Load(files ...string) (*Config, error) {
	// godotenv 不覆盖已存在的环境变量
	if err := godotenv.Load(files...); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load env file: %w", err)
	}
	return FromEnv()
}

func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:           getenv("PORT", "8080"),
		DatabaseDriver: strings.ToLower(getenv("DATABASE_DRIVER", "postgres")),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		SessionSecret:  getenv("SESSION_SECRET", "secret_key_change_me"),
		MediaRoot:      getenv("MEDIA_ROOT", "./media"),
		MediaURL:       getenv("MEDIA_URL", "/media/"),
		StorageBackend: strings.ToLower(getenv("STORAGE_BACKEND", "local")),
		AWSRegion:      os.Getenv("AWS_REGION"),
		AWSBucket:      os.Getenv("AWS_BUCKET_NAME"),
		AWSAccessKey:   os.Getenv("AWS_ACCESS_KEY_ID"),
		AWSSecretKey:   os.Getenv("AWS_SECRET_ACCESS_KEY"),
		CacheBackend:   strings.ToLower(getenv("CACHE_BACKEND", "memory")),
		RedisAddr:      getenv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		LogLevel:       getenv("LOG_LEVEL", "info"),
		GinMode:        getenv("GIN_MODE", "release"),
	}

	var err error
	if cfg.RedisDB, err = strconv.Atoi(getenv("REDIS_DB", "0")); err != nil {
		return nil, fmt.Errorf("REDIS_DB: %w", err)
	}
	if cfg.IndexCacheTTL, err = time.ParseDuration(getenv("INDEX_CACHE_TTL", "20s")); err != nil {
		return nil, fmt.Errorf("INDEX_CACHE_TTL: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.DatabaseDriver {
	case "postgres", "mysql", "sqlite", "memory":
	default:
		return fmt.Errorf("DATABASE_DRIVER: unsupported value %q", c.DatabaseDriver)
	}
	if c.DatabaseDriver == "mysql" && c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required for mysql")
	}

	switch c.StorageBackend {
	case "local":
	case "s3":
		if c.AWSBucket == "" || c.AWSRegion == "" {
			return fmt.Errorf("AWS_BUCKET_NAME and AWS_REGION are required for s3 storage")
		}
	default:
		return fmt.Errorf("STORAGE_BACKEND: unsupported value %q", c.StorageBackend)
	}

	switch c.CacheBackend {
	case "memory", "redis":
	default:
		return fmt.Errorf("CACHE_BACKEND: unsupported value %q", c.CacheBackend)
	}

	switch c.GinMode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("GIN_MODE: unsupported value %q", c.GinMode)
	}

	if c.IndexCacheTTL <= 0 {
		return fmt.Errorf("INDEX_CACHE_TTL must be positive")
	}
	return nil
}

// Development reports whether gin runs in debug mode.
func (c *Config) Development() bool {
	return c.GinMode == "debug"
}

func getenv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}
