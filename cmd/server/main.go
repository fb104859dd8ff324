package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/ravinmor/sky-watcher/internal/api"
	"github.com/ravinmor/sky-watcher/internal/config"
	"github.com/ravinmor/sky-watcher/internal/fetcher"
	"github.com/ravinmor/sky-watcher/internal/metrics"
	"github.com/ravinmor/sky-watcher/internal/ratelimit"
	"github.com/ravinmor/sky-watcher/pkg/logger"
)

func main() {
	var configPath string
	pflag.StringVarP(&configPath, "config", "c", "", "path to a YAML config file")
	pflag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger := logger.New(cfg.Logging.Level)
	appMetrics := metrics.NewMetrics()

	client := fetcher.NewOpenSkyClient(
		cfg.OpenSky.BaseURL,
		cfg.OpenSky.RequestTimeout,
		appLogger,
		appMetrics,
		fetcher.WithRequestOptions(fetcher.RequestOptions{
			Accept:    "application/json",
			UserAgent: cfg.OpenSky.UserAgent,
		}),
	)

	limiter := ratelimit.NewLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.BurstSize)
	apiServer := api.NewServer(appLogger, appMetrics, client, limiter)

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      apiServer.Routes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		appLogger.Info("Starting server on %s (upstream %s)", server.Addr, cfg.OpenSky.BaseURL)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	appLogger.Info("Server stopped")
}
