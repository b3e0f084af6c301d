package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/redis/go-redis/v9"

	"coinpress/internal/ai"
	"coinpress/internal/cache"
	"coinpress/internal/config"
	"coinpress/internal/database"
	"coinpress/internal/generation"
	"coinpress/internal/models"
	"coinpress/internal/storage"
	"coinpress/internal/store"
)

// app holds the dependencies shared by every command.
type app struct {
	cfg *config.Config
	db  *sql.DB

	users      *store.UserStore
	categories *store.CategoryStore
	posts      *store.PostStore
	comments   *store.CommentStore
	topics     *store.TopicStore
	schedules  *store.ScheduleStore
}

// setupLogger installs the default slog logger: text in development, JSON
// everywhere else.
func setupLogger(cfg *config.Config) {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	var handler slog.Handler
	if cfg.IsDev() {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// bootstrap loads configuration, connects to PostgreSQL and applies
// pending migrations.
func bootstrap() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	setupLogger(cfg)
	slog.Info("configuration loaded", "env", cfg.Env, "addr", cfg.Addr())

	db, err := database.Connect(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := database.Migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	return &app{
		cfg:        cfg,
		db:         db,
		users:      store.NewUserStore(db),
		categories: store.NewCategoryStore(db),
		posts:      store.NewPostStore(db),
		comments:   store.NewCommentStore(db),
		topics:     store.NewTopicStore(db),
		schedules:  store.NewScheduleStore(db),
	}, nil
}

func (a *app) Close() {
	if err := a.db.Close(); err != nil {
		slog.Warn("close database", "error", err)
	}
}

// aiRegistry initialises every provider that has an API key.
func (a *app) aiRegistry() *ai.Registry {
	cfg := a.cfg
	registry := ai.NewRegistry(cfg.AIProvider, map[string]ai.ProviderConfig{
		"openai":  {APIKey: cfg.OpenAIKey, Model: cfg.OpenAIModel, BaseURL: cfg.OpenAIBaseURL},
		"gemini":  {APIKey: cfg.GeminiKey, Model: cfg.GeminiModel, ModelImage: cfg.GeminiImage, BaseURL: cfg.GeminiBaseURL},
		"claude":  {APIKey: cfg.ClaudeKey, Model: cfg.ClaudeModel, BaseURL: cfg.ClaudeBaseURL},
		"mistral": {APIKey: cfg.MistralKey, Model: cfg.MistralModel, BaseURL: cfg.MistralBaseURL},
	})
	slog.Info("ai providers initialized",
		"active", registry.ActiveName(),
		"available", registry.Available(),
	)
	return registry
}

// storage connects to S3-compatible object storage. It returns nil when
// storage is not configured.
func (a *app) storage() (*storage.Client, error) {
	cfg := a.cfg
	if !cfg.StorageEnabled() {
		slog.Warn("s3 storage not configured, cover uploads disabled")
		return nil, nil
	}
	client, err := storage.New(cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3PublicURL)
	if err != nil {
		return nil, fmt.Errorf("init s3 storage: %w", err)
	}
	slog.Info("s3 storage connected", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3Bucket)
	return client, nil
}

// processor builds the due-schedule processor. responses may be nil.
func (a *app) processor(registry *ai.Registry, covers *storage.Client, responses *cache.Responses) (*generation.Processor, error) {
	prompts, err := generation.LoadPrompts(a.cfg.PromptsFile)
	if err != nil {
		return nil, fmt.Errorf("load prompts: %w", err)
	}

	gen := generation.NewGenerator(registry)
	if covers != nil {
		gen = gen.WithCovers(registry, covers)
	}

	p := generation.NewProcessor(generation.ProcessorDeps{
		Schedules:  a.schedules,
		Topics:     a.topics,
		Categories: a.categories,
		Authors:    a.users,
		Posts:      a.posts,
		Generator:  gen,
		Prompts:    prompts,
	})
	p.OnPublished = func(ctx context.Context, _ *models.Post) {
		responses.Invalidate(ctx, cache.SitemapKey, cache.CategoriesKey)
	}
	return p, nil
}

// connectValkey opens the Valkey client used for the token denylist and
// the response cache.
func (a *app) connectValkey() (*redis.Client, error) {
	client, err := cache.ConnectValkey(a.cfg.ValkeyHost, a.cfg.ValkeyPort, a.cfg.ValkeyPassword)
	if err != nil {
		return nil, fmt.Errorf("connect valkey: %w", err)
	}
	return client, nil
}
