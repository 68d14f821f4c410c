// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/danielhkuo/quick-poll/cliparse"
	"github.com/danielhkuo/quick-poll/db"
	"github.com/danielhkuo/quick-poll/middleware"
	"github.com/danielhkuo/quick-poll/ratelimit"
	"github.com/danielhkuo/quick-poll/router"
	"github.com/danielhkuo/quick-poll/store"
	"github.com/danielhkuo/quick-poll/voting"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel})))

	// Ctrl-C or SIGTERM cancels ctx and starts a graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg)
	stop()
	if err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg cliparse.Config) error {
	ln, err := net.Listen("tcp", ":"+strconv.Itoa(cfg.Port))
	if err != nil {
		return err
	}
	return serve(ctx, cfg, ln)
}

// serve runs the API on ln until ctx is cancelled. In-flight requests are
// drained before the limiters and the store are closed.
func serve(ctx context.Context, cfg cliparse.Config, ln net.Listener) error {
	defer ln.Close()

	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()
	slog.Info("Store ready", "type", cfg.DatabaseType)

	if cfg.ReconcileOnStart {
		if err := s.ReconcileCounts(ctx); err != nil {
			return err
		}
		slog.Info("Vote counts reconciled")
	}

	createLimiter, voteLimiter, closeLimiters, err := newLimiters(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeLimiters()

	// Create router
	mux := router.NewRouter(voting.NewEngine(s), createLimiter, voteLimiter)

	// Create server
	server := http.Server{
		Handler:           middleware.CORS(mux),
		ReadHeaderTimeout: 5 * time.Second,
	}

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Warn("Shutdown incomplete", "error", err)
		}
	}()

	// Start server
	slog.Info("Listening", "addr", ln.Addr().String())
	err = server.Serve(ln)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	// Serve returns as soon as Shutdown begins; wait for the drain
	<-shutdownDone
	slog.Info("Server closed")
	return nil
}

// openStore picks the storage backend named by the configuration
func openStore(cfg cliparse.Config) (store.Store, error) {
	switch cfg.DatabaseType {
	case cliparse.BackendMemory:
		slog.Warn("Using in-memory store; data is lost on exit")
		return store.NewMemory(), nil
	case cliparse.BackendSQLite, cliparse.BackendPostgres:
		dialect, err := db.ParseDialect(cfg.DatabaseType)
		if err != nil {
			return nil, err
		}
		return store.Open(dialect, cfg.DatabaseURL)
	}
	return nil, fmt.Errorf("%w: %q", store.ErrUnknownBackend, cfg.DatabaseType)
}

// newLimiters builds the creation and vote limiters plus a func releasing
// everything they hold
func newLimiters(ctx context.Context, cfg cliparse.Config) (ratelimit.Limiter, ratelimit.Limiter, func(), error) {
	if cfg.RateLimitBackend != cliparse.BackendRedis {
		create := ratelimit.NewMemory(ratelimit.CreatePolicy)
		vote := ratelimit.NewMemory(ratelimit.VotePolicy)
		return create, vote, func() {
			create.Close()
			vote.Close()
		}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, nil, nil, fmt.Errorf("redis ping failed: %w", err)
	}

	create, err := ratelimit.NewRedis(ctx, client, "quick-poll:rl:create:", ratelimit.CreatePolicy)
	if err != nil {
		client.Close()
		return nil, nil, nil, err
	}
	vote, err := ratelimit.NewRedis(ctx, client, "quick-poll:rl:vote:", ratelimit.VotePolicy)
	if err != nil {
		client.Close()
		return nil, nil, nil, err
	}
	slog.Info("Using redis rate limiter", "addr", cfg.RedisAddr)

	return create, vote, func() {
		create.Close()
		vote.Close()
		if err := client.Close(); err != nil {
			slog.Warn("Failed to close redis client", "error", err)
		}
	}, nil
}
