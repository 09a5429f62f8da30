package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"fincore-assistant/internal/logger"
	"fincore-assistant/internal/store"
	"fincore-assistant/internal/telemetry"
	"fincore-assistant/models"
)

// EntitySource is the slice of the financial-core client the indexer needs.
type EntitySource interface {
	FetchPage(ctx context.Context, category string, offset, limit int) ([]models.Entity, error)
}

// Embedder converts text into a fixed-length vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// ErrIndexInProgress is returned by IndexNow when a run is already active.
var ErrIndexInProgress = errors.New("index run already in progress")

var indexedCategories = []string{
	models.CategoryAccounts,
	models.CategoryProducts,
	models.CategoryLoans,
}

// Indexer mirrors financial-core entities into the document store. Failure
// is additive: a bad run leaves previously indexed documents untouched.
type Indexer struct {
	source   EntitySource
	embedder Embedder
	store    store.Store
	pageSize int
	metrics  *telemetry.Metrics

	running sync.Mutex
}

func NewIndexer(source EntitySource, embedder Embedder, st store.Store, pageSize int, metrics *telemetry.Metrics) *Indexer {
	if pageSize <= 0 {
		pageSize = 100
	}
	return &Indexer{
		source:   source,
		embedder: embedder,
		store:    st,
		pageSize: pageSize,
		metrics:  metrics,
	}
}

// IndexNow is the manual trigger path. It refuses to overlap with a run
// already started by the scheduler.
func (ix *Indexer) IndexNow(ctx context.Context) (*models.IndexRunReport, error) {
	if !ix.running.TryLock() {
		return nil, ErrIndexInProgress
	}
	defer ix.running.Unlock()
	return ix.indexAll(ctx)
}

// IndexAll runs a full mirror refresh across every tracked category. An
// overlapping invocation waits for the active run to finish first.
func (ix *Indexer) IndexAll(ctx context.Context) (*models.IndexRunReport, error) {
	ix.running.Lock()
	defer ix.running.Unlock()
	return ix.indexAll(ctx)
}

func (ix *Indexer) indexAll(ctx context.Context) (*models.IndexRunReport, error) {
	report := &models.IndexRunReport{StartedAt: time.Now()}

	for _, category := range indexedCategories {
		if err := ix.indexCategory(ctx, category, report); err != nil {
			// One category failing must not prevent the others this run.
			logger.Error("Category index failed", "category", category, "error", err)
			report.FailedCategories = append(report.FailedCategories, category)
		}
	}

	report.Duration = time.Since(report.StartedAt)
	if ix.metrics != nil {
		ix.metrics.RecordIndexRun(report.Duration.Seconds(), report.Indexed, report.Failed)
	}

	logger.Info("Index run finished",
		"indexed", report.Indexed,
		"skipped", report.Skipped,
		"failed", report.Failed,
		"failed_categories", report.FailedCategories,
		"duration", report.Duration.String(),
	)

	if len(report.FailedCategories) == len(indexedCategories) {
		return report, fmt.Errorf("all categories failed to index")
	}
	return report, nil
}

func (ix *Indexer) indexCategory(ctx context.Context, category string, report *models.IndexRunReport) error {
	offset := 0
	for {
		entities, err := ix.source.FetchPage(ctx, category, offset, ix.pageSize)
		if err != nil {
			return err
		}
		if len(entities) == 0 {
			return nil
		}

		for _, entity := range entities {
			if err := ix.indexEntity(ctx, entity); err != nil {
				if errors.Is(err, errNoIdentifier) {
					report.Skipped++
					logger.Warn("Skipping entity without identifier", "category", category)
				} else {
					report.Failed++
					logger.Error("Failed to index entity", "category", category, "id", entity.ID, "error", err)
				}
				continue
			}
			report.Indexed++
		}

		if len(entities) < ix.pageSize {
			return nil
		}
		offset += ix.pageSize
	}
}

var errNoIdentifier = errors.New("entity has no usable identifier")

func (ix *Indexer) indexEntity(ctx context.Context, entity models.Entity) error {
	if entity.ID == "" {
		return errNoIdentifier
	}

	title, content, err := RenderEntity(entity)
	if err != nil {
		return err
	}

	embedding, err := ix.embedder.Embed(ctx, content)
	if err != nil {
		return fmt.Errorf("embed entity %s: %w", entity.ID, err)
	}

	doc := &models.IndexedDocument{
		ExternalID:   entity.ID,
		DocumentType: models.DocTypeForCategory(entity.Category),
		Title:        title,
		Content:      content,
		Metadata:     entity.Raw,
		Embedding:    embedding,
		UpdatedAt:    time.Now(),
	}
	return ix.store.UpsertDocument(ctx, doc)
}

// Stats reports the current state of the mirror.
func (ix *Indexer) Stats(ctx context.Context) (*models.IndexingStats, error) {
	return ix.store.Stats(ctx)
}
