package index

import (
	"context"
	"fmt"
	"time"

	"jobpulse/internal/logging"
	"jobpulse/pkg/models"
	"jobpulse/pkg/utils"
)

// Engine is the slice of the Elasticsearch client the syncer uses. Tests
// substitute an in-memory implementation.
type Engine interface {
	CreateIndex(ctx context.Context, name string) error
	DeleteIndex(ctx context.Context, name string) error
	IndexExists(ctx context.Context, name string) (bool, error)
	DocumentExists(ctx context.Context, target, docID string) (bool, error)
	IndexDocument(ctx context.Context, target string, doc *models.SearchDocument) error
	DeleteDocument(ctx context.Context, target, docID string) error
	Count(ctx context.Context, target string) (int64, error)
	Refresh(ctx context.Context, target string) error
	Reindex(ctx context.Context, src, dst string) error
	PutAlias(ctx context.Context, indexName, alias string) error
	SwapAlias(ctx context.Context, alias, oldIndex, newIndex string) error
	AliasTargets(ctx context.Context, alias string) ([]string, error)
}

// JobSource pages completed jobs out of storage for full rebuilds.
type JobSource interface {
	FetchPage(ctx context.Context, offset, limit int) ([]models.JobWithAnalysis, error)
}

// Syncer keeps the search index in step with storage. Writes during normal
// operation go through the alias; structural changes go through blue-green
// generations so readers never see a half-built index.
type Syncer struct {
	engine   Engine
	source   JobSource
	alias    string
	pageSize int
	logger   logging.Logger
	now      func() time.Time
}

// NewSyncer wires the syncer. pageSize bounds rebuild batches; zero means
// the default of 1000.
func NewSyncer(engine Engine, source JobSource, alias string, pageSize int) *Syncer {
	if pageSize <= 0 {
		pageSize = 1000
	}
	return &Syncer{
		engine:   engine,
		source:   source,
		alias:    alias,
		pageSize: pageSize,
		logger:   logging.GetGlobalLogger(),
		now:      time.Now,
	}
}

// generationName returns a fresh timestamped index name for the alias.
func (s *Syncer) generationName() string {
	return fmt.Sprintf("%s_%s", s.alias, s.now().UTC().Format("20060102_150405"))
}

// Publish upserts one job's document through the alias. The alias must
// already exist; a fresh deployment gets one via Rebuild.
func (s *Syncer) Publish(ctx context.Context, job *models.Job, analysis *models.Analysis) error {
	doc, err := BuildDocument(job, analysis)
	if err != nil {
		return err
	}

	exists, err := s.engine.DocumentExists(ctx, s.alias, doc.ID)
	if err != nil {
		return err
	}

	if err := s.engine.IndexDocument(ctx, s.alias, doc); err != nil {
		return err
	}

	action := "indexed"
	if exists {
		action = "updated"
	}
	s.logger.Debug("Document published", map[string]interface{}{
		"job_id": job.ID,
		"action": action,
	})
	return nil
}

// Remove drops a job's document from the live index.
func (s *Syncer) Remove(ctx context.Context, jobID string) error {
	return s.engine.DeleteDocument(ctx, s.alias, jobID)
}

// Migrate performs a blue-green mapping migration: create a fresh
// generation with the current mapping, copy the live documents into it,
// verify counts, swap the alias and drop the old generation. On any
// failure the new generation is deleted and the alias is left untouched.
func (s *Syncer) Migrate(ctx context.Context) error {
	targets, err := s.engine.AliasTargets(ctx, s.alias)
	if err != nil {
		return utils.NewMigrationError(err.Error())
	}
	if len(targets) == 0 {
		return utils.NewMigrationError(fmt.Sprintf("alias %s has no live index; run a rebuild first", s.alias))
	}
	if len(targets) > 1 {
		return utils.NewMigrationError(fmt.Sprintf("alias %s points at %d indices, expected one", s.alias, len(targets)))
	}
	oldIndex := targets[0]
	newIndex := s.generationName()

	s.logger.Info("Starting index migration", map[string]interface{}{
		"alias": s.alias,
		"from":  oldIndex,
		"to":    newIndex,
	})

	if err := s.engine.CreateIndex(ctx, newIndex); err != nil {
		return utils.NewMigrationError(err.Error())
	}

	if err := s.migrateInto(ctx, oldIndex, newIndex); err != nil {
		s.rollback(ctx, newIndex)
		return utils.NewMigrationError(err.Error())
	}

	if err := s.engine.DeleteIndex(ctx, oldIndex); err != nil {
		// The alias already points at the new generation; the stale index
		// only wastes disk, so log and move on.
		s.logger.Warn("Failed to delete old index generation", map[string]interface{}{
			"index": oldIndex,
			"error": err.Error(),
		})
	}

	s.logger.Info("Index migration complete", map[string]interface{}{
		"alias": s.alias,
		"index": newIndex,
	})
	return nil
}

// migrateInto copies oldIndex into newIndex and swaps the alias once the
// copy is verified.
func (s *Syncer) migrateInto(ctx context.Context, oldIndex, newIndex string) error {
	if err := s.engine.Reindex(ctx, oldIndex, newIndex); err != nil {
		return err
	}
	if err := s.engine.Refresh(ctx, newIndex); err != nil {
		return err
	}

	oldCount, err := s.engine.Count(ctx, oldIndex)
	if err != nil {
		return err
	}
	newCount, err := s.engine.Count(ctx, newIndex)
	if err != nil {
		return err
	}
	if newCount < oldCount {
		return fmt.Errorf("copy verification failed: %s has %d documents, %s has %d", oldIndex, oldCount, newIndex, newCount)
	}

	return s.engine.SwapAlias(ctx, s.alias, oldIndex, newIndex)
}

// rollback removes a half-built generation after a failed migration.
func (s *Syncer) rollback(ctx context.Context, indexName string) {
	if err := s.engine.DeleteIndex(ctx, indexName); err != nil {
		s.logger.Error("Failed to clean up aborted index generation", map[string]interface{}{
			"index": indexName,
			"error": err.Error(),
		})
	}
}

// Rebuild constructs a complete generation from storage and points the
// alias at it. Used for first deployments and for repairing drift between
// storage and the index.
func (s *Syncer) Rebuild(ctx context.Context) error {
	newIndex := s.generationName()
	if err := s.engine.CreateIndex(ctx, newIndex); err != nil {
		return err
	}

	indexed, err := s.fillFromSource(ctx, newIndex)
	if err != nil {
		s.rollback(ctx, newIndex)
		return err
	}

	if err := s.engine.Refresh(ctx, newIndex); err != nil {
		s.rollback(ctx, newIndex)
		return err
	}

	targets, err := s.engine.AliasTargets(ctx, s.alias)
	if err != nil {
		s.rollback(ctx, newIndex)
		return err
	}

	switch len(targets) {
	case 0:
		if err := s.engine.PutAlias(ctx, newIndex, s.alias); err != nil {
			s.rollback(ctx, newIndex)
			return err
		}
	default:
		oldIndex := targets[0]
		if err := s.engine.SwapAlias(ctx, s.alias, oldIndex, newIndex); err != nil {
			s.rollback(ctx, newIndex)
			return err
		}
		if err := s.engine.DeleteIndex(ctx, oldIndex); err != nil {
			s.logger.Warn("Failed to delete old index generation", map[string]interface{}{
				"index": oldIndex,
				"error": err.Error(),
			})
		}
	}

	s.logger.Info("Index rebuild complete", map[string]interface{}{
		"alias":   s.alias,
		"index":   newIndex,
		"indexed": indexed,
	})
	return nil
}

// fillFromSource pages completed jobs out of storage into the target index.
// Jobs whose document cannot be built are skipped, never fatal.
func (s *Syncer) fillFromSource(ctx context.Context, target string) (int, error) {
	indexed := 0
	for offset := 0; ; offset += s.pageSize {
		page, err := s.source.FetchPage(ctx, offset, s.pageSize)
		if err != nil {
			return indexed, err
		}
		if len(page) == 0 {
			return indexed, nil
		}

		for i := range page {
			doc, err := BuildDocument(&page[i].Job, page[i].Analysis)
			if err != nil {
				s.logger.Warn("Skipping job during rebuild", map[string]interface{}{
					"job_id": page[i].Job.ID,
					"error":  err.Error(),
				})
				continue
			}
			if err := s.engine.IndexDocument(ctx, target, doc); err != nil {
				return indexed, err
			}
			indexed++
		}

		if len(page) < s.pageSize {
			return indexed, nil
		}
	}
}

// Resync re-publishes every completed job through the live alias. It is
// cheaper than a rebuild and repairs documents whose publish failed at
// enrichment time.
func (s *Syncer) Resync(ctx context.Context) error {
	exists, err := s.engine.IndexExists(ctx, s.alias)
	if err != nil {
		return err
	}
	if !exists {
		return s.Rebuild(ctx)
	}

	synced := 0
	for offset := 0; ; offset += s.pageSize {
		page, err := s.source.FetchPage(ctx, offset, s.pageSize)
		if err != nil {
			return err
		}
		if len(page) == 0 {
			break
		}

		for i := range page {
			doc, err := BuildDocument(&page[i].Job, page[i].Analysis)
			if err != nil {
				continue
			}
			if err := s.engine.IndexDocument(ctx, s.alias, doc); err != nil {
				return err
			}
			synced++
		}

		if len(page) < s.pageSize {
			break
		}
	}

	s.logger.Info("Index resync complete", map[string]interface{}{
		"alias":  s.alias,
		"synced": synced,
	})
	return nil
}
