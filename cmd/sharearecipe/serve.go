package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dukerupert/sharearecipe/internal/config"
	"github.com/dukerupert/sharearecipe/internal/database"
	"github.com/dukerupert/sharearecipe/internal/docstore"
	"github.com/dukerupert/sharearecipe/internal/logging"
	"github.com/dukerupert/sharearecipe/internal/server"
)

const (
	shutdownTimeout = 5 * time.Second
	janitorInterval = time.Hour
)

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	notifier, closeNotifier, err := newNotifier(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeNotifier()

	docs := docstore.NewSQLiteStore(db, notifier, logger.With("component", "docstore"))
	srv := server.New(db, docs, cfg.SessionTTL, logger)
	if err := srv.Feed().Listen(ctx); err != nil {
		return fmt.Errorf("start feed: %w", err)
	}
	defer srv.Feed().Stop()

	// No WriteTimeout: /ws connections stay open indefinitely.
	httpServer := &http.Server{
		Addr:        cfg.Addr(),
		Handler:     srv.Router(),
		ReadTimeout: 5 * time.Second,
		IdleTimeout: 120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("sharearecipe running", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		runJanitor(gctx, srv, logger)
		return nil
	})
	return g.Wait()
}

// newNotifier picks Redis fan-out when a URL is configured so several
// processes can share one database file; otherwise changes stay in process.
func newNotifier(ctx context.Context, cfg *config.Config, logger *slog.Logger) (docstore.Notifier, func(), error) {
	if cfg.RedisURL == "" {
		return docstore.NewLocalNotifier(), func() {}, nil
	}
	n, err := docstore.NewRedisNotifier(ctx, cfg.RedisURL, logger.With("component", "redis"))
	if err != nil {
		return nil, nil, fmt.Errorf("connect redis: %w", err)
	}
	logger.Info("using redis change notifier")
	return n, func() {
		if err := n.Close(); err != nil {
			logger.Warn("close redis notifier", "error", err)
		}
	}, nil
}

// runJanitor removes expired sessions and rate limit entries until ctx ends.
func runJanitor(ctx context.Context, srv *server.Server, logger *slog.Logger) {
	ticker := time.NewTicker(janitorInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := srv.Provider().SweepSessions()
			if err != nil {
				logger.Error("sweep sessions", "error", err)
			} else if n > 0 {
				logger.Info("expired sessions removed", "count", n)
			}
			srv.RateLimiter().Cleanup()
		}
	}
}
