package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Veraticus/trash-scanner/internal/assistant"
	"github.com/Veraticus/trash-scanner/internal/common"
	"github.com/Veraticus/trash-scanner/internal/config"
	"github.com/Veraticus/trash-scanner/internal/i18n"
	"github.com/Veraticus/trash-scanner/internal/llm"
	"github.com/Veraticus/trash-scanner/internal/media"
	"github.com/Veraticus/trash-scanner/internal/storage"
)

// initStorage opens the configured backend. SQLite is migrated on open.
func initStorage(ctx context.Context) (storage.Store, error) {
	switch backend := strings.ToLower(viper.GetString("storage.backend")); backend {
	case "", "sqlite":
		dbPath := viper.GetString("database.path")
		if dbPath == "" {
			dbPath = config.DefaultDatabasePath
		}
		store, err := storage.NewSQLiteStorage(config.ExpandPath(dbPath))
		if err != nil {
			return nil, err
		}
		if err := store.Migrate(ctx); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		return store, nil

	case "redis":
		return storage.NewRedisStorage(ctx, storage.RedisOptions{
			Addr:      config.FirstNonEmpty(viper.GetString("redis.addr"), os.Getenv("REDIS_ADDR"), "localhost:6379"),
			Password:  config.FirstNonEmpty(viper.GetString("redis.password"), os.Getenv("REDIS_PASSWORD")),
			Namespace: config.FirstNonEmpty(viper.GetString("redis.namespace"), storage.DefaultRedisNamespace),
			DB:        viper.GetInt("redis.db"),
		})

	default:
		return nil, fmt.Errorf("%w: unsupported storage backend: %s", common.ErrInvalidConfig, backend)
	}
}

// llmConfig builds the provider configuration from viper, falling back to
// the usual environment variables for the API key.
func llmConfig() (llm.Config, error) {
	provider := strings.ToLower(config.FirstNonEmpty(viper.GetString("llm.provider"), "gemini"))

	cfg := llm.Config{
		Provider:    provider,
		Model:       viper.GetString("llm.model"),
		ImageModel:  viper.GetString("llm.image_model"),
		BaseURL:     viper.GetString("llm.base_url"),
		Temperature: viper.GetFloat64("llm.temperature"),
		MaxTokens:   viper.GetInt("llm.max_tokens"),
		RateLimit:   viper.GetInt("llm.rate_limit"),
		CacheTTL:    viper.GetDuration("llm.cache_ttl"),
		Timeout:     viper.GetDuration("llm.timeout"),
	}

	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = time.Hour
	}
	if cfg.RateLimit == 0 {
		cfg.RateLimit = 30 // requests per minute
	}

	switch provider {
	case "gemini", "google":
		cfg.APIKey = config.FirstNonEmpty(viper.GetString("llm.gemini_api_key"), os.Getenv("GEMINI_API_KEY"), os.Getenv("API_KEY"))
		if cfg.APIKey == "" {
			return cfg, fmt.Errorf("%w: gemini API key not found in config or GEMINI_API_KEY environment variable", common.ErrMissingConfig)
		}
		if cfg.Model == "" {
			cfg.Model = "gemini-2.5-flash"
		}
	case "openai":
		cfg.APIKey = config.FirstNonEmpty(viper.GetString("llm.openai_api_key"), os.Getenv("OPENAI_API_KEY"))
		if cfg.APIKey == "" {
			return cfg, fmt.Errorf("%w: OpenAI API key not found in config or OPENAI_API_KEY environment variable", common.ErrMissingConfig)
		}
		if cfg.Model == "" {
			cfg.Model = "gpt-4o-mini"
		}
	case "anthropic":
		cfg.APIKey = config.FirstNonEmpty(viper.GetString("llm.anthropic_api_key"), os.Getenv("ANTHROPIC_API_KEY"))
		if cfg.APIKey == "" {
			return cfg, fmt.Errorf("%w: anthropic API key not found in config or ANTHROPIC_API_KEY environment variable", common.ErrMissingConfig)
		}
		if cfg.Model == "" {
			cfg.Model = "claude-3-5-haiku-latest"
		}
	default:
		return cfg, fmt.Errorf("%w: unsupported LLM provider: %s", common.ErrInvalidConfig, provider)
	}
	return cfg, nil
}

// createLLMService wires the configured provider into the classification
// service shared by every command.
func createLLMService() (*llm.Service, error) {
	cfg, err := llmConfig()
	if err != nil {
		return nil, err
	}
	client, err := llm.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	return llm.NewService(client, cfg, llm.WithServiceLogger(slog.Default())), nil
}

// newLocalizer serves dictionaries from locales.url when set and from the
// embedded copies otherwise.
func newLocalizer() *i18n.Localizer {
	var loader i18n.Loader = i18n.EmbeddedLoader{}
	if url := viper.GetString("locales.url"); url != "" {
		loader = i18n.NewHTTPLoader(url)
	}
	return i18n.New(loader, i18n.WithLogger(slog.Default()))
}

// loadApp opens storage and the model service and loads the saved profile.
// The returned cleanup closes both.
func loadApp(ctx context.Context) (*assistant.App, func(), error) {
	store, err := initStorage(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	ai, err := createLLMService()
	if err != nil {
		_ = store.Close()
		return nil, nil, err
	}
	cleanup := func() {
		ai.Close()
		if err := store.Close(); err != nil {
			slog.Error("Failed to close storage", "error", err)
		}
	}

	app := assistant.NewApp(store, ai, newLocalizer(), assistant.WithLogger(slog.Default()))
	if err := app.Load(ctx); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("failed to load app: %w", err)
	}
	return app, cleanup, nil
}

// openStoreApp loads the app for commands that never call the model.
func openStoreApp(ctx context.Context) (*assistant.App, func(), error) {
	store, err := initStorage(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	cleanup := func() {
		if err := store.Close(); err != nil {
			slog.Error("Failed to close storage", "error", err)
		}
	}
	app := assistant.NewApp(store, nil, newLocalizer(), assistant.WithLogger(slog.Default()))
	if err := app.Load(ctx); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("failed to load app: %w", err)
	}
	return app, cleanup, nil
}

// cameraOpener maps camera.rear and camera.front to frame sources.
func cameraOpener() media.Opener {
	return media.LocationOpener{
		Rear:  viper.GetString("camera.rear"),
		Front: viper.GetString("camera.front"),
	}
}
