// Package store owns durable persistence for the assistant: the document
// mirror, the query log sink and the shared cache table.
package store

import (
	"context"
	"time"

	"fincore-assistant/models"
)

// Store is the persistence boundary of the pipeline. All operations are
// keyed and idempotent on retry.
type Store interface {
	// UpsertDocument inserts or updates the document identified by its
	// (ExternalID, DocumentType) natural key. Re-indexing the same entity
	// must update in place, never duplicate.
	UpsertDocument(ctx context.Context, doc *models.IndexedDocument) error

	// ListWithEmbeddings returns every document that carries an embedding.
	// Documents without one are invisible to retrieval.
	ListWithEmbeddings(ctx context.Context) ([]models.IndexedDocument, error)

	// AppendQueryLog records an answered query. Append-only.
	AppendQueryLog(ctx context.Context, entry *models.QueryLog) error

	// DeleteExpiredCache removes cache rows whose expiry is before now and
	// returns how many were removed. Best-effort and idempotent.
	DeleteExpiredCache(ctx context.Context, now time.Time) (int64, error)

	// Stats summarizes the state of the mirror.
	Stats(ctx context.Context) (*models.IndexingStats, error)
}
