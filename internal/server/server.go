// Package server is the peopledesk REST API: chi routes over the SQLite
// document store, with an optional Redis response cache.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/abelbrown/peopledesk/internal/cache"
	"github.com/abelbrown/peopledesk/internal/logging"
	"github.com/abelbrown/peopledesk/internal/store"
)

const shutdownTimeout = 10 * time.Second

// Run serves the API until ctx is cancelled.
func Run(ctx context.Context, cfg Config) error {
	st, err := store.Open(cfg.DB)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	var c *cache.Cache
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer client.Close()
		c = cache.New(client, cfg.CacheTTL)
		if err := c.Ping(ctx); err != nil {
			logging.Warn("redis unreachable, serving uncached", "addr", cfg.RedisAddr, "err", err)
		}
	}

	svc := NewService(st, c)
	if cfg.Seed {
		n, err := SeedIfEmpty(ctx, svc)
		if err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		if n > 0 {
			logging.Info("seeded demo data", "records", n)
		}
	}

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      NewRouter(cfg, svc),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logging.Info("listening", "addr", cfg.Addr, "cache", c.Enabled(), "rate_limit", cfg.RateLimit)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logging.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
