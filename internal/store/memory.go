package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"fincore-assistant/models"
)

// MemoryStore is an in-memory Store used by tests and local development.
// It mirrors the semantics of MongoStore, including natural-key upserts.
type MemoryStore struct {
	mu        sync.RWMutex
	documents map[string]models.IndexedDocument
	queryLogs []models.QueryLog
	cache     map[string]models.CacheEntry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		documents: make(map[string]models.IndexedDocument),
		cache:     make(map[string]models.CacheEntry),
	}
}

func naturalKey(docType, externalID string) string {
	return docType + ":" + externalID
}

func (s *MemoryStore) UpsertDocument(ctx context.Context, doc *models.IndexedDocument) error {
	if doc.ExternalID == "" || doc.DocumentType == "" {
		return fmt.Errorf("document natural key incomplete")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := naturalKey(doc.DocumentType, doc.ExternalID)
	stored := *doc
	if stored.UpdatedAt.IsZero() {
		stored.UpdatedAt = time.Now()
	}
	if existing, ok := s.documents[key]; ok {
		stored.ID = existing.ID
	} else if stored.ID.IsZero() {
		stored.ID = primitive.NewObjectID()
	}
	s.documents[key] = stored
	return nil
}

func (s *MemoryStore) ListWithEmbeddings(ctx context.Context) ([]models.IndexedDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := make([]models.IndexedDocument, 0, len(s.documents))
	for _, doc := range s.documents {
		if doc.HasEmbedding() {
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

func (s *MemoryStore) AppendQueryLog(ctx context.Context, entry *models.QueryLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	logged := *entry
	if logged.CreatedAt.IsZero() {
		logged.CreatedAt = time.Now()
	}
	s.queryLogs = append(s.queryLogs, logged)
	return nil
}

func (s *MemoryStore) DeleteExpiredCache(ctx context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed int64
	for key, entry := range s.cache {
		if entry.Expired(now) {
			delete(s.cache, key)
			removed++
		}
	}
	return removed, nil
}

func (s *MemoryStore) Stats(ctx context.Context) (*models.IndexingStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &models.IndexingStats{
		ByType: make(map[string]int64),
	}
	for _, doc := range s.documents {
		stats.TotalDocuments++
		if doc.HasEmbedding() {
			stats.WithEmbeddings++
		}
		stats.ByType[doc.DocumentType]++
		if stats.LastIndexed == nil || doc.UpdatedAt.After(*stats.LastIndexed) {
			t := doc.UpdatedAt
			stats.LastIndexed = &t
		}
	}
	return stats, nil
}

// SetCacheEntry seeds a cache row; tests use it to exercise the sweep.
func (s *MemoryStore) SetCacheEntry(entry models.CacheEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache[entry.Key] = entry
}

// CacheLen reports the number of live cache rows.
func (s *MemoryStore) CacheLen() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cache)
}

// QueryLogs returns a copy of the recorded query logs.
func (s *MemoryStore) QueryLogs() []models.QueryLog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.QueryLog, len(s.queryLogs))
	copy(out, s.queryLogs)
	return out
}

// DocumentCount reports the number of mirrored documents.
func (s *MemoryStore) DocumentCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.documents)
}
