// Package scheduler runs the enrichment work loop: it polls the store for
// eligible jobs, fans them out to a bounded set of worker tasks, and folds
// results back into analysis state transitions.
package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"jobpulse/internal/enrich"
	"jobpulse/internal/logging"
	"jobpulse/internal/storage"
	"jobpulse/pkg/models"
)

// Store is the slice of the storage layer the scheduler needs.
type Store interface {
	FetchEligible(ctx context.Context, limit int) ([]models.Job, error)
	Acquire(ctx context.Context) (Session, error)
	FailProcessing(ctx context.Context, analysisIDs []string) error
}

// Session is one task's private storage handle.
type Session interface {
	Claim(ctx context.Context, jobID string) (string, error)
	Complete(ctx context.Context, analysisID string, result *enrich.Result) error
	Fail(ctx context.Context, analysisID string) error
	Release()
}

// Analyzer produces the structured analysis for one job.
type Analyzer interface {
	Analyze(ctx context.Context, job *models.Job) (*enrich.Result, error)
}

// Publisher pushes a job plus its completed analysis into the search index.
type Publisher interface {
	Publish(ctx context.Context, job *models.Job, analysis *models.Analysis) error
}

// Scheduler coordinates the poll/dispatch loop.
type Scheduler struct {
	store        Store
	analyzer     Analyzer
	publisher    Publisher
	registry     *Registry
	concurrency  int
	pollInterval time.Duration
	taskTimeout  time.Duration
	logger       logging.Logger

	stats struct {
		mu        sync.Mutex
		processed int64
		failed    int64
	}
}

// Config tunes the scheduler loop.
type Config struct {
	Concurrency  int
	PollInterval time.Duration
	TaskTimeout  time.Duration
}

// New creates a scheduler. The registry is injected so tests can run several
// schedulers with independent ownership sets.
func New(store Store, analyzer Analyzer, publisher Publisher, registry *Registry, cfg Config) *Scheduler {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 5
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Minute
	}
	if cfg.TaskTimeout <= 0 {
		cfg.TaskTimeout = 2 * time.Minute
	}
	return &Scheduler{
		store:        store,
		analyzer:     analyzer,
		publisher:    publisher,
		registry:     registry,
		concurrency:  cfg.Concurrency,
		pollInterval: cfg.PollInterval,
		taskTimeout:  cfg.TaskTimeout,
		logger:       logging.GetGlobalLogger(),
	}
}

// Run executes the scheduling loop until ctx is cancelled: fetch up to
// 2×concurrency eligible jobs, dispatch them to worker tasks capped at
// concurrency in flight, wait for the whole batch, repeat. On cancellation,
// in-flight tasks run to their own completion or failure, then every
// still-owned processing analysis is forced to failed.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("Enrichment scheduler started", map[string]interface{}{
		"concurrency":   s.concurrency,
		"poll_interval": s.pollInterval.String(),
	})

	for {
		select {
		case <-ctx.Done():
			return s.shutdown()
		default:
		}

		jobs, err := s.store.FetchEligible(ctx, 2*s.concurrency)
		if err != nil {
			if ctx.Err() != nil {
				return s.shutdown()
			}
			s.logger.Error("Failed to fetch eligible jobs", map[string]interface{}{
				"error": err.Error(),
			})
			if !s.sleep(ctx) {
				return s.shutdown()
			}
			continue
		}

		if len(jobs) == 0 {
			s.logger.Debug("No eligible jobs, waiting")
			if !s.sleep(ctx) {
				return s.shutdown()
			}
			continue
		}

		s.runBatch(jobs)
	}
}

// runBatch dispatches one batch and waits for every task in it before the
// next eligibility query, keeping peak concurrency bounded.
func (s *Scheduler) runBatch(jobs []models.Job) {
	var wg sync.WaitGroup
	sem := make(chan struct{}, s.concurrency)

	for i := range jobs {
		job := jobs[i]
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			s.processJob(job)
		}()
	}

	wg.Wait()
}

// processJob handles one job end to end on its own storage session. Any
// failure is resolved to fail(job) and never aborts sibling tasks.
func (s *Scheduler) processJob(job models.Job) {
	// Tasks get their own context so a shutdown signal does not cut off
	// work already in flight.
	ctx, cancel := context.WithTimeout(context.Background(), s.taskTimeout)
	defer cancel()

	logger := s.logger.WithField("job_id", job.ID)

	sess, err := s.store.Acquire(ctx)
	if err != nil {
		logger.Error("Failed to acquire storage session", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	defer sess.Release()

	analysisID, err := sess.Claim(ctx, job.ID)
	if err != nil {
		if errors.Is(err, storage.ErrNotClaimed) {
			logger.Debug("Job already claimed elsewhere")
		} else {
			logger.Error("Claim failed", map[string]interface{}{"error": err.Error()})
		}
		return
	}

	// Owned from the moment the claim is persisted until a terminal
	// transition is persisted. A panic below leaves the analysis owned so
	// shutdown cleanup can release it.
	s.registry.Add(analysisID)
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Worker task panicked", map[string]interface{}{"panic": r})
			s.resolveFailed(ctx, sess, analysisID)
		}
	}()

	result, err := s.analyzer.Analyze(ctx, &job)
	if err != nil {
		logger.Warn("Enrichment failed", map[string]interface{}{"error": err.Error()})
		s.resolveFailed(ctx, sess, analysisID)
		return
	}

	if err := sess.Complete(ctx, analysisID, result); err != nil {
		logger.Error("Failed to persist analysis", map[string]interface{}{
			"error": err.Error(),
		})
		s.resolveFailed(ctx, sess, analysisID)
		return
	}
	s.registry.Remove(analysisID)

	s.stats.mu.Lock()
	s.stats.processed++
	s.stats.mu.Unlock()

	logger.Info("Job enriched", map[string]interface{}{
		"skill_tags": len(result.SkillTags),
	})

	// Publication failures are logged but do not fail the analysis; the
	// periodic resync sweep repairs the index.
	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, &job, result.ToAnalysis(job.ID)); err != nil {
			logger.Error("Failed to publish document", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}
}

func (s *Scheduler) resolveFailed(ctx context.Context, sess Session, analysisID string) {
	s.stats.mu.Lock()
	s.stats.failed++
	s.stats.mu.Unlock()

	if err := sess.Fail(ctx, analysisID); err != nil {
		// Still owned; shutdown cleanup gets another chance to release it.
		s.logger.Error("Failed to mark analysis failed", map[string]interface{}{
			"analysis_id": analysisID,
			"error":       err.Error(),
		})
		return
	}
	s.registry.Remove(analysisID)
}

// shutdown forces every still-owned processing analysis back to failed so
// it re-enters the eligible pool on the next run.
func (s *Scheduler) shutdown() error {
	owned := s.registry.Drain()
	if len(owned) == 0 {
		s.logger.Info("Scheduler stopped, no owned analyses to release")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.store.FailProcessing(ctx, owned); err != nil {
		s.logger.Error("Shutdown cleanup failed", map[string]interface{}{
			"owned": len(owned),
			"error": err.Error(),
		})
		return err
	}

	s.logger.Info("Scheduler stopped, owned analyses released", map[string]interface{}{
		"released": len(owned),
	})
	return nil
}

// sleep waits one poll interval, returning false if ctx was cancelled.
func (s *Scheduler) sleep(ctx context.Context) bool {
	timer := time.NewTimer(s.pollInterval)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

// Stats reports processed and failed job counts since start.
func (s *Scheduler) Stats() (processed, failed int64) {
	s.stats.mu.Lock()
	defer s.stats.mu.Unlock()
	return s.stats.processed, s.stats.failed
}
