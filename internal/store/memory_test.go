package store

import (
	"context"
	"testing"
	"time"

	"fincore-assistant/models"
)

func TestUpsertDocumentNoDuplicates(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	first := &models.IndexedDocument{
		ExternalID:   "42",
		DocumentType: models.DocTypeLoan,
		Title:        "Loan 42",
		Content:      "original",
		Embedding:    []float32{1, 0},
	}
	if err := st.UpsertDocument(ctx, first); err != nil {
		t.Fatalf("first upsert failed: %v", err)
	}

	second := &models.IndexedDocument{
		ExternalID:   "42",
		DocumentType: models.DocTypeLoan,
		Title:        "Loan 42",
		Content:      "updated",
		Embedding:    []float32{0, 1},
	}
	if err := st.UpsertDocument(ctx, second); err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}

	if st.DocumentCount() != 1 {
		t.Fatalf("expected 1 document, got %d", st.DocumentCount())
	}
	docs, err := st.ListWithEmbeddings(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if docs[0].Content != "updated" {
		t.Errorf("content not overwritten: %q", docs[0].Content)
	}
	if docs[0].Embedding[1] != 1 {
		t.Errorf("embedding not overwritten: %v", docs[0].Embedding)
	}
}

func TestUpsertDocumentSameIDDifferentType(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	_ = st.UpsertDocument(ctx, &models.IndexedDocument{
		ExternalID: "7", DocumentType: models.DocTypeAccount, Embedding: []float32{1},
	})
	_ = st.UpsertDocument(ctx, &models.IndexedDocument{
		ExternalID: "7", DocumentType: models.DocTypeLoan, Embedding: []float32{1},
	})

	if st.DocumentCount() != 2 {
		t.Errorf("the natural key is the (id, type) pair; expected 2 documents, got %d", st.DocumentCount())
	}
}

func TestUpsertDocumentRejectsIncompleteKey(t *testing.T) {
	st := NewMemoryStore()
	if err := st.UpsertDocument(context.Background(), &models.IndexedDocument{ExternalID: "x"}); err == nil {
		t.Error("expected error for missing document type")
	}
	if err := st.UpsertDocument(context.Background(), &models.IndexedDocument{DocumentType: models.DocTypeLoan}); err == nil {
		t.Error("expected error for missing external id")
	}
}

func TestListWithEmbeddingsFiltersUnembedded(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	_ = st.UpsertDocument(ctx, &models.IndexedDocument{
		ExternalID: "1", DocumentType: models.DocTypeAccount, Embedding: []float32{1},
	})
	_ = st.UpsertDocument(ctx, &models.IndexedDocument{
		ExternalID: "2", DocumentType: models.DocTypeAccount,
	})

	docs, err := st.ListWithEmbeddings(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(docs) != 1 || docs[0].ExternalID != "1" {
		t.Errorf("expected only the embedded document, got %+v", docs)
	}
}

func TestDeleteExpiredCacheIdempotent(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()
	now := time.Now()

	st.SetCacheEntry(models.CacheEntry{Key: "old", ExpiresAt: now.Add(-time.Minute)})
	st.SetCacheEntry(models.CacheEntry{Key: "new", ExpiresAt: now.Add(time.Minute)})

	removed, err := st.DeleteExpiredCache(ctx, now)
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if removed != 1 {
		t.Errorf("expected 1 removed, got %d", removed)
	}

	removed, err = st.DeleteExpiredCache(ctx, now)
	if err != nil {
		t.Fatalf("second sweep failed: %v", err)
	}
	if removed != 0 {
		t.Errorf("second sweep must be a no-op, removed %d", removed)
	}
	if st.CacheLen() != 1 {
		t.Errorf("unexpired entry must survive, %d entries left", st.CacheLen())
	}
}

func TestStats(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	_ = st.UpsertDocument(ctx, &models.IndexedDocument{
		ExternalID: "1", DocumentType: models.DocTypeAccount, Embedding: []float32{1},
	})
	_ = st.UpsertDocument(ctx, &models.IndexedDocument{
		ExternalID: "2", DocumentType: models.DocTypeLoan,
	})

	stats, err := st.Stats(ctx)
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if stats.TotalDocuments != 2 || stats.WithEmbeddings != 1 {
		t.Errorf("unexpected counts: %+v", stats)
	}
	if stats.ByType[models.DocTypeAccount] != 1 || stats.ByType[models.DocTypeLoan] != 1 {
		t.Errorf("unexpected by-type counts: %v", stats.ByType)
	}
	if stats.LastIndexed == nil {
		t.Error("expected last indexed timestamp")
	}
}
