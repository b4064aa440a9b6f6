package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"jobpulse/internal/api/handlers"
	"jobpulse/internal/api/routes"
	"jobpulse/internal/cache"
	"jobpulse/internal/config"
	"jobpulse/internal/index"
	"jobpulse/internal/logging"
	"jobpulse/internal/search"
	"jobpulse/internal/storage"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig("configs/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logging
	if err := logging.InitializeLogging(cfg.Logging.Level, cfg.AdapterConfigs()); err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}
	defer logging.CloseLogging()

	logger := logging.GetGlobalLogger()
	logger.Info("Starting job search API")

	// Storage, used only for readiness checks on this process
	pool, err := storage.NewPool(context.Background(), cfg.Database.URL)
	if err != nil {
		logger.Fatal("Failed to connect to database", map[string]interface{}{
			"error": err.Error(),
		})
	}
	defer pool.Close()
	store := storage.NewStore(pool)

	// Search index
	esClient, err := index.NewClient(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to Elasticsearch", map[string]interface{}{
			"error": err.Error(),
		})
	}

	planner := search.NewPlanner(esClient, cfg)
	searchCache := cache.NewSearchCache(cfg)
	defer searchCache.Close()

	deps := map[string]handlers.Pinger{
		"postgres":      store,
		"elasticsearch": esClient,
	}
	if cfg.Redis.Enabled {
		deps["redis"] = searchCache
	}

	// Initialize Echo
	e := echo.New()
	e.HideBanner = true
	routes.SetupRoutes(e, cfg, planner, searchCache, deps)

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := e.Shutdown(shutdownCtx); err != nil {
			logger.Error("Error shutting down server", map[string]interface{}{
				"error": err.Error(),
			})
		}

		logger.Info("Server shutdown complete")
	}()

	// Start server
	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("Server starting", map[string]interface{}{"address": address})

	if err := e.Start(address); err != nil {
		logger.Error("Server stopped", map[string]interface{}{"error": err.Error()})
	}
}
