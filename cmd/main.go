package main

import (
	"AuthTokens_Service/config"
	"AuthTokens_Service/config/server"
	"AuthTokens_Service/internal/clock"
	"AuthTokens_Service/internal/handler"
	"AuthTokens_Service/internal/metrics"
	"AuthTokens_Service/internal/notifier"
	"AuthTokens_Service/internal/security"
	"AuthTokens_Service/internal/service"
	"context"
	"errors"
	"flag"
	"fmt"
	"golang.org/x/sync/errgroup"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

const storeConnectTimeout = 10 * time.Second

func main() {
	configPath := flag.String("config", "", "path to the YAML config file")
	envFile := flag.String("env-file", ".env", "path to an optional .env file")
	flag.Parse()

	if err := run(*configPath, *envFile); err != nil {
		slog.Error("service_failed", "err", err)
		os.Exit(1)
	}
}

func run(configPath string, envFile string) error {
	if err := server.LoadEnvFile(envFile); err != nil {
		return err
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := server.SetupLogger(cfg.Env)
	slog.SetDefault(logger)
	logger.Info("service_starting", "env", cfg.Env, "storage", cfg.Storage.Driver)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	storeCtx, storeCancel := context.WithTimeout(ctx, storeConnectTimeout)
	store, closeStore, err := server.SetupStore(storeCtx, cfg)
	storeCancel()
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Error("store_close_failed", "err", err)
		}
	}()

	tokenConfig := security.TokenConfig{
		AccessSecret:  []byte(cfg.JWT.AccessSecret),
		RenewalSecret: []byte(cfg.JWT.RenewalSecret),
		AccessTTL:     cfg.JWT.AccessTokenTTL,
		RenewalTTL:    cfg.JWT.RenewalTokenTTL,
		Issuer:        cfg.JWT.Issuer,
	}
	issuer, err := security.NewTokenIssuer(tokenConfig, clock.Real{})
	if err != nil {
		return fmt.Errorf("token issuer: %w", err)
	}
	verifier, err := security.NewTokenVerifier(tokenConfig, clock.Real{})
	if err != nil {
		return fmt.Errorf("token verifier: %w", err)
	}

	webhookNotifier := notifier.NewWebhookNotifier(cfg.Webhook.URL, cfg.Webhook.Timeout, clock.Real{}, logger)
	defer webhookNotifier.Close()

	registry, authMetrics := metrics.NewRegistry()

	authenticationService := service.NewAuthenticationService(store, security.NewBcryptHasher(cfg.Auth.BcryptCost), issuer, verifier)
	authenticationService.Notifier = webhookNotifier
	authenticationService.Metrics = authMetrics
	authenticationService.RevokeBindingOnLogout = cfg.Auth.RevokeBindingOnLogout

	authenticationHandler := handler.NewAuthenticationHandler(authenticationService, server.SetupCookie(cfg.Cookie), cfg.Server.RequestTimeout)
	router := handler.NewRouter(authenticationHandler, handler.RouterConfig{
		CORSOrigin: cfg.Server.CORSOrigin,
		Gatherer:   registry,
		Logger:     logger,
	})

	httpServer := server.SetupServer(cfg.Server, router)

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		logger.Info("http_server_started", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && errors.Is(err, http.ErrServerClosed) == false {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()
		logger.Info("http_server_stopping")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		logger.Info("http_server_stopped")
		return nil
	})

	return group.Wait()
}
