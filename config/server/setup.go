package server

import (
	"AuthTokens_Service/config"
	"AuthTokens_Service/internal"
	"AuthTokens_Service/internal/handler"
	"AuthTokens_Service/internal/ports"
	"AuthTokens_Service/internal/repository"
	"context"
	"errors"
	"fmt"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

// LoadEnvFile puts the variables of a .env file into the process
// environment. A missing file is not an error.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil && errors.Is(err, fs.ErrNotExist) == false {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func SetupLogger(env string) *slog.Logger {
	switch env {
	case envProd:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	case envDev:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	default:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}

// SetupStore opens the credential store selected by storage.driver. The
// returned close func releases its connections.
func SetupStore(ctx context.Context, cfg *config.Config) (ports.CredentialStore, func() error, error) {
	switch cfg.Storage.Driver {
	case config.StorageMemory:
		return repository.NewMemoryRepository(), func() error { return nil }, nil

	case config.StoragePostgres:
		database, err := internal.NewDatabaseConnection(ctx, cfg.Database.Driver, cfg.Database.ConnectionString)
		if err != nil {
			return nil, nil, fmt.Errorf("connect database: %w", err)
		}
		if err := database.Migrate(ctx); err != nil {
			_ = database.Close()
			return nil, nil, fmt.Errorf("migrate database: %w", err)
		}
		return repository.NewUserRepository(database), database.Close, nil

	case config.StorageRedis:
		options, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			return nil, nil, fmt.Errorf("parse redis url: %w", err)
		}
		client := redis.NewClient(options)
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("ping redis: %w", err)
		}
		slog.Info("redis_connected", "addr", options.Addr)
		return repository.NewRedisRepository(client, cfg.Redis.Prefix), client.Close, nil
	}

	return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
}

func SetupCookie(cfg config.CookieConfig) handler.CookieConfig {
	cookie := handler.DefaultCookieConfig()
	if cfg.Name != "" {
		cookie.Name = cfg.Name
	}
	if cfg.Path != "" {
		cookie.Path = cfg.Path
	}
	cookie.Domain = cfg.Domain
	cookie.Secure = cfg.Secure
	cookie.SameSite = handler.ParseSameSite(cfg.SameSite)

	return cookie
}

func SetupServer(cfg config.ServerConfig, router http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}
