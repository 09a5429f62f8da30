package services

import (
	"context"
	"fmt"
	"math"
	"sort"

	"fincore-assistant/internal/logger"
	"fincore-assistant/internal/store"
	"fincore-assistant/models"
)

// DefaultMinScore is the relevance cutoff below which retrieved documents
// are discarded entirely. Tuned for text-embedding-004; configurable via
// SEARCH_MIN_SCORE.
const DefaultMinScore = 0.7

// SearchEngine ranks the mirrored documents against a query embedding by
// cosine similarity.
type SearchEngine struct {
	embedder Embedder
	store    store.Store
	minScore float64
}

func NewSearchEngine(embedder Embedder, st store.Store, minScore float64) *SearchEngine {
	if minScore <= 0 {
		minScore = DefaultMinScore
	}
	return &SearchEngine{
		embedder: embedder,
		store:    st,
		minScore: minScore,
	}
}

// Search embeds the query, scores every embedded document and returns at
// most topK results above the relevance cutoff, best first. An empty corpus
// yields an empty result, not an error.
func (se *SearchEngine) Search(ctx context.Context, queryText string, topK int) ([]models.SearchResult, error) {
	if topK <= 0 {
		topK = 5
	}

	queryVec, err := se.embedder.Embed(ctx, queryText)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	docs, err := se.store.ListWithEmbeddings(ctx)
	if err != nil {
		return nil, fmt.Errorf("load documents: %w", err)
	}

	results := make([]models.SearchResult, 0, len(docs))
	for _, doc := range docs {
		if len(doc.Embedding) != len(queryVec) {
			// Stale vector from a different embedding model; unusable.
			logger.Warn("Skipping document with mismatched embedding dimension",
				"external_id", doc.ExternalID, "document_type", doc.DocumentType,
				"dim", len(doc.Embedding), "query_dim", len(queryVec))
			continue
		}
		score, ok := cosineSimilarity(queryVec, doc.Embedding)
		if !ok {
			continue
		}
		if score > se.minScore {
			results = append(results, models.SearchResult{Document: doc, Score: score})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// cosineSimilarity returns dot(a,b)/(|a|*|b|). The second return value is
// false when either vector has zero norm, where similarity is undefined.
func cosineSimilarity(a, b []float32) (float64, bool) {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0, false
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), true
}
