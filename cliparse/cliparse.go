// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Storage and rate limiter backends
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

type Config struct {
	Port             int
	DatabaseURL      string
	DatabaseType     string
	RateLimitBackend string
	RedisAddr        string
	RedisPassword    string
	RedisDB          int
	LogLevel         slog.Level
	ReconcileOnStart bool
}

// ParseFlags validates flags and fills the rest from the environment.
// Variables from the --env file never override ones already set.
func ParseFlags(args []string) (Config, error) {
	var cfg Config
	var envFile, logLevel string
	redisDB := -1

	fs := flag.NewFlagSet("quick-poll", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL or SQLite file path")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (memory, sqlite or postgres)")

	// Rate limiting
	fs.StringVar(&cfg.RateLimitBackend, "rate-limit", "", "Rate limiter backend (memory or redis)")
	fs.StringVar(&cfg.RedisAddr, "redis-addr", "", "Redis address (host:port)")
	fs.IntVar(&redisDB, "redis-db", -1, "Redis database number")

	fs.StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.BoolVar(&cfg.ReconcileOnStart, "reconcile", false, "Recompute vote counts from the ledger at startup")
	fs.StringVar(&envFile, "env", ".env", "Env file to load")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// A missing env file is fine; a broken one is not
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = 3318 // default
		}
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = BackendSQLite
		}
	}
	cfg.DatabaseType = strings.ToLower(cfg.DatabaseType)
	switch cfg.DatabaseType {
	case BackendMemory, BackendSQLite, BackendPostgres:
	default:
		return Config{}, fmt.Errorf("unsupported DATABASE_TYPE %q", cfg.DatabaseType)
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" && cfg.DatabaseType != BackendMemory {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	if cfg.RateLimitBackend == "" {
		cfg.RateLimitBackend = os.Getenv("RATE_LIMIT_BACKEND")
		if cfg.RateLimitBackend == "" {
			cfg.RateLimitBackend = BackendMemory
		}
	}
	cfg.RateLimitBackend = strings.ToLower(cfg.RateLimitBackend)
	switch cfg.RateLimitBackend {
	case BackendMemory, BackendRedis:
	default:
		return Config{}, fmt.Errorf("unsupported RATE_LIMIT_BACKEND %q", cfg.RateLimitBackend)
	}

	// Redis - only needed for the redis limiter
	if cfg.RedisAddr == "" {
		cfg.RedisAddr = os.Getenv("REDIS_ADDR")
	}
	if cfg.RateLimitBackend == BackendRedis && cfg.RedisAddr == "" {
		return Config{}, errors.New("REDIS_ADDR required for the redis rate limiter")
	}
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
	if redisDB < 0 {
		redisDB = 0
		if s := os.Getenv("REDIS_DB"); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil || n < 0 {
				return Config{}, errors.New("invalid REDIS_DB env variable")
			}
			redisDB = n
		}
	}
	cfg.RedisDB = redisDB

	if logLevel == "" {
		logLevel = os.Getenv("LOG_LEVEL")
	}
	if logLevel != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(logLevel)); err != nil {
			return Config{}, fmt.Errorf("invalid log level %q", logLevel)
		}
	}

	if !cfg.ReconcileOnStart {
		if s := os.Getenv("RECONCILE_ON_START"); s != "" {
			v, err := strconv.ParseBool(s)
			if err != nil {
				return Config{}, errors.New("invalid RECONCILE_ON_START env variable")
			}
			cfg.ReconcileOnStart = v
		}
	}

	return cfg, nil
}
