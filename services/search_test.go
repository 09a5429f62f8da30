package services

import (
	"context"
	"math"
	"testing"

	"fincore-assistant/internal/store"
	"fincore-assistant/models"
)

func TestSearchEmptyCorpus(t *testing.T) {
	st := store.NewMemoryStore()
	engine := NewSearchEngine(&fakeEmbedder{fallback: []float32{1, 0, 0}}, st, 0.7)

	results, err := engine.Search(context.Background(), "anything", 5)
	if err != nil {
		t.Fatalf("expected no error on empty corpus, got %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected empty result, got %d", len(results))
	}
}

func TestSearchRankingAndThreshold(t *testing.T) {
	st := store.NewMemoryStore()
	// Three documents at known angles to the query vector (1,0,0).
	seedDocument(st, "a1", models.DocTypeAccount, "far", []float32{0, 1, 0})        // sim 0
	seedDocument(st, "a2", models.DocTypeAccount, "close", []float32{0.9, 0.1, 0}) // sim ~0.99
	seedDocument(st, "a3", models.DocTypeAccount, "mid", []float32{0.8, 0.6, 0})   // sim 0.8

	embedder := &fakeEmbedder{vectors: map[string][]float32{"query": {1, 0, 0}}}
	engine := NewSearchEngine(embedder, st, 0.7)

	results, err := engine.Search(context.Background(), "query", 5)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results above threshold, got %d", len(results))
	}
	if results[0].Document.ExternalID != "a2" {
		t.Errorf("expected a2 ranked first, got %s", results[0].Document.ExternalID)
	}
	for _, r := range results {
		if r.Score <= 0.7 || r.Score > 1.0+1e-9 {
			t.Errorf("score %f outside (0.7, 1.0]", r.Score)
		}
	}
}

func TestSearchTopKCap(t *testing.T) {
	st := store.NewMemoryStore()
	seedDocument(st, "d1", models.DocTypeLoan, "one", []float32{1, 0, 0})
	seedDocument(st, "d2", models.DocTypeLoan, "two", []float32{0.99, 0.1, 0})
	seedDocument(st, "d3", models.DocTypeLoan, "three", []float32{0.98, 0.2, 0})

	embedder := &fakeEmbedder{vectors: map[string][]float32{"q": {1, 0, 0}}}
	engine := NewSearchEngine(embedder, st, 0.7)

	results, err := engine.Search(context.Background(), "q", 1)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected topK=1 to cap results, got %d", len(results))
	}
	if results[0].Document.ExternalID != "d1" {
		t.Errorf("expected exact-match document first, got %s", results[0].Document.ExternalID)
	}
}

func TestSearchExcludesZeroVector(t *testing.T) {
	st := store.NewMemoryStore()
	seedDocument(st, "z1", models.DocTypeAccount, "degenerate", []float32{0, 0, 0})
	seedDocument(st, "z2", models.DocTypeAccount, "good", []float32{1, 0, 0})

	embedder := &fakeEmbedder{vectors: map[string][]float32{"q": {1, 0, 0}}}
	engine := NewSearchEngine(embedder, st, 0.7)

	results, err := engine.Search(context.Background(), "q", 5)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(results) != 1 || results[0].Document.ExternalID != "z2" {
		t.Fatalf("expected only the non-degenerate document, got %+v", results)
	}
}

func TestSearchSkipsMissingEmbedding(t *testing.T) {
	st := store.NewMemoryStore()
	seedDocument(st, "m1", models.DocTypeAccount, "no vector", nil)
	seedDocument(st, "m2", models.DocTypeAccount, "vector", []float32{1, 0, 0})

	embedder := &fakeEmbedder{vectors: map[string][]float32{"q": {1, 0, 0}}}
	engine := NewSearchEngine(embedder, st, 0.7)

	results, err := engine.Search(context.Background(), "q", 5)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	for _, r := range results {
		if r.Document.ExternalID == "m1" {
			t.Fatalf("document without embedding must never be returned")
		}
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
}

func TestSearchSkipsDimensionMismatch(t *testing.T) {
	st := store.NewMemoryStore()
	seedDocument(st, "x1", models.DocTypeAccount, "old model", []float32{1, 0})
	seedDocument(st, "x2", models.DocTypeAccount, "current", []float32{1, 0, 0})

	embedder := &fakeEmbedder{vectors: map[string][]float32{"q": {1, 0, 0}}}
	engine := NewSearchEngine(embedder, st, 0.7)

	results, err := engine.Search(context.Background(), "q", 5)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(results) != 1 || results[0].Document.ExternalID != "x2" {
		t.Fatalf("expected the mismatched-dimension document to be skipped, got %+v", results)
	}
}

func TestCosineSimilaritySymmetry(t *testing.T) {
	a := []float32{0.3, -0.7, 0.2, 0.5}
	b := []float32{-0.1, 0.4, 0.9, 0.2}

	ab, okAB := cosineSimilarity(a, b)
	ba, okBA := cosineSimilarity(b, a)
	if !okAB || !okBA {
		t.Fatal("expected both similarities to be defined")
	}
	if math.Abs(ab-ba) > 1e-12 {
		t.Errorf("cosine similarity not symmetric: %v vs %v", ab, ba)
	}

	self, ok := cosineSimilarity(a, a)
	if !ok || math.Abs(self-1.0) > 1e-9 {
		t.Errorf("self similarity should be 1.0, got %v", self)
	}
}

func TestCosineSimilarityZeroNorm(t *testing.T) {
	if _, ok := cosineSimilarity([]float32{0, 0, 0}, []float32{1, 2, 3}); ok {
		t.Error("zero-norm vector must yield undefined similarity")
	}
}
