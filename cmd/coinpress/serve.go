package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"coinpress/internal/cache"
	"coinpress/internal/cronjob"
	"coinpress/internal/database"
	"coinpress/internal/handlers"
	"coinpress/internal/middleware"
	"coinpress/internal/router"
	"coinpress/internal/seo"
	"coinpress/internal/session"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.Close()
	cfg := a.cfg

	// Seed development data (no-op if data already exists).
	if cfg.IsDev() {
		if err := database.Seed(a.db); err != nil {
			return err
		}
	}

	valkey, err := a.connectValkey()
	if err != nil {
		return err
	}
	defer valkey.Close()

	sessions := session.NewManager(cfg.JWTSecret, cfg.JWTExpiry, !cfg.IsDev(), session.NewValkeyDenylist(valkey))
	responses := cache.NewResponses(valkey, cache.DefaultTTL)

	registry := a.aiRegistry()
	covers, err := a.storage()
	if err != nil {
		return err
	}
	processor, err := a.processor(registry, covers, responses)
	if err != nil {
		return err
	}

	// A nil *storage.Client must reach the handler as a nil interface.
	var coverStore handlers.CoverStore
	if covers != nil {
		coverStore = covers
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	defer limiter.Stop()

	site := seo.SiteConfig{SiteName: cfg.SiteName, SiteURL: cfg.SiteURL}
	r := router.New(router.Deps{
		Sessions:   sessions,
		Users:      a.users,
		Cache:      responses,
		Limiter:    limiter,
		CronSecret: cfg.CronSecret,

		Auth:       handlers.NewAuth(sessions, a.users, cfg.SiteName),
		UserAdmin:  handlers.NewUsers(a.users),
		Categories: handlers.NewCategories(a.categories, responses),
		Posts:      handlers.NewPosts(a.posts, a.categories, responses),
		Comments:   handlers.NewComments(a.comments, a.posts),
		Topics:     handlers.NewTopics(a.topics, a.categories, registry),
		Generation: handlers.NewGeneration(generationService(a), processor),
		SEO:        handlers.NewSEO(a.posts, a.categories, site, cfg.IsProduction()),
		Uploads:    handlers.NewUploads(coverStore),
	})

	if cfg.CronSchedule != "" {
		trigger, err := cronjob.New(cfg.CronSchedule, processor)
		if err != nil {
			return err
		}
		trigger.Start()
		defer trigger.Stop()
		slog.Info("in-process generation trigger enabled", "schedule", cfg.CronSchedule, "next", trigger.Next())
	}

	// WriteTimeout must accommodate the cron endpoint, which waits on LLM
	// responses for every due schedule.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	slog.Info("server stopped gracefully")
	return nil
}
