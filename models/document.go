package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Document type tags. Together with the external entity ID they form the
// natural key of an indexed document.
const (
	DocTypeAccount     = "account"
	DocTypeLoanProduct = "loan_product"
	DocTypeLoan        = "loan"
)

// IndexedDocument is one mirrored snapshot of a financial-core entity,
// rendered to text and annotated with its embedding vector.
type IndexedDocument struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ExternalID   string             `bson:"external_id" json:"external_id"`
	DocumentType string             `bson:"document_type" json:"document_type"`
	Title        string             `bson:"title" json:"title"`
	Content      string             `bson:"content" json:"content"`
	Metadata     map[string]any     `bson:"metadata,omitempty" json:"metadata,omitempty"`
	Embedding    []float32          `bson:"embedding,omitempty" json:"-"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updated_at"`
}

// HasEmbedding reports whether the document can take part in similarity
// search. Documents without a vector are ignored by retrieval.
func (d *IndexedDocument) HasEmbedding() bool {
	return len(d.Embedding) > 0
}

// SearchResult pairs a document with its cosine similarity to a query.
type SearchResult struct {
	Document IndexedDocument `json:"document"`
	Score    float64         `json:"score"`
}

// IndexingStats summarizes the state of the document mirror.
type IndexingStats struct {
	TotalDocuments int64            `json:"total_documents"`
	WithEmbeddings int64            `json:"with_embeddings"`
	ByType         map[string]int64 `json:"by_type"`
	LastIndexed    *time.Time       `json:"last_indexed,omitempty"`
}
