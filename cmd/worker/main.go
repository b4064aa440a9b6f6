package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"jobpulse/internal/config"
	"jobpulse/internal/enrich"
	"jobpulse/internal/index"
	"jobpulse/internal/llm"
	"jobpulse/internal/logging"
	"jobpulse/internal/scheduler"
	"jobpulse/internal/storage"
)

// storeAdapter narrows *storage.Store to the scheduler's Store interface.
type storeAdapter struct {
	*storage.Store
}

func (a storeAdapter) Acquire(ctx context.Context) (scheduler.Session, error) {
	return a.Store.Acquire(ctx)
}

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
	logger.Info("Starting enrichment worker")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Storage
	pool, err := storage.NewPool(ctx, cfg.Database.URL)
	if err != nil {
		logger.Fatal("Failed to connect to database", map[string]interface{}{
			"error": err.Error(),
		})
	}
	defer pool.Close()
	store := storage.NewStore(pool)

	// LLM provider behind the rate-limited call gate
	provider, err := llm.NewProvider(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize LLM provider", map[string]interface{}{
			"error": err.Error(),
		})
	}
	gate := enrich.NewGate(cfg, provider)
	analyzer := enrich.NewAnalyzer(gate)

	// Search index
	esClient, err := index.NewClient(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to Elasticsearch", map[string]interface{}{
			"error": err.Error(),
		})
	}
	syncer := index.NewSyncer(esClient, store, cfg.Elasticsearch.Alias, cfg.Elasticsearch.PageSize)

	// Periodic resync repairs drift between storage and the index
	resyncCron := cron.New()
	if _, err := resyncCron.AddFunc(cfg.Workers.ResyncSpec, func() {
		resyncCtx, cancelResync := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancelResync()
		if err := syncer.Resync(resyncCtx); err != nil {
			logger.Error("Scheduled resync failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}); err != nil {
		logger.Fatal("Invalid resync cron spec", map[string]interface{}{
			"spec":  cfg.Workers.ResyncSpec,
			"error": err.Error(),
		})
	}
	resyncCron.Start()
	defer resyncCron.Stop()

	sched := scheduler.New(storeAdapter{store}, analyzer, syncer, scheduler.NewRegistry(), scheduler.Config{
		Concurrency:  cfg.Workers.Concurrency,
		PollInterval: cfg.Workers.PollInterval,
		TaskTimeout:  cfg.Workers.TaskTimeout,
	})

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down worker...")
		cancel()
	}()

	if err := sched.Run(ctx); err != nil {
		logger.Error("Scheduler stopped with error", map[string]interface{}{
			"error": err.Error(),
		})
	}

	processed, failed := sched.Stats()
	logger.Info("Worker shutdown complete", map[string]interface{}{
		"processed": processed,
		"failed":    failed,
	})
}
