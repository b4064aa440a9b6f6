package main

import (
	"context"
	"flag"
	"log"
	"time"

	"jobpulse/internal/config"
	"jobpulse/internal/index"
	"jobpulse/internal/logging"
	"jobpulse/internal/storage"
)

func main() {
	migrate := flag.Bool("migrate", false, "blue-green copy of the live index under the current mapping instead of a full rebuild from storage")
	timeout := flag.Duration("timeout", time.Hour, "overall operation timeout")
	flag.Parse()

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

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	pool, err := storage.NewPool(ctx, cfg.Database.URL)
	if err != nil {
		logger.Fatal("Failed to connect to database", map[string]interface{}{
			"error": err.Error(),
		})
	}
	defer pool.Close()
	store := storage.NewStore(pool)

	esClient, err := index.NewClient(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to Elasticsearch", map[string]interface{}{
			"error": err.Error(),
		})
	}

	syncer := index.NewSyncer(esClient, store, cfg.Elasticsearch.Alias, cfg.Elasticsearch.PageSize)

	if *migrate {
		logger.Info("Running index migration", map[string]interface{}{
			"alias": cfg.Elasticsearch.Alias,
		})
		if err := syncer.Migrate(ctx); err != nil {
			logger.Fatal("Migration failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
		return
	}

	logger.Info("Running full index rebuild", map[string]interface{}{
		"alias": cfg.Elasticsearch.Alias,
	})
	if err := syncer.Rebuild(ctx); err != nil {
		logger.Fatal("Rebuild failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
