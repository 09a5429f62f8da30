package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"fincore-assistant/models"
)

// MongoStore is the production Store backed by MongoDB.
type MongoStore struct {
	documents *mongo.Collection
	queryLogs *mongo.Collection
	cache     *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{
		documents: db.Collection("indexed_documents"),
		queryLogs: db.Collection("query_logs"),
		cache:     db.Collection("cache_entries"),
	}
}

func (s *MongoStore) UpsertDocument(ctx context.Context, doc *models.IndexedDocument) error {
	if doc.ExternalID == "" || doc.DocumentType == "" {
		return fmt.Errorf("document natural key incomplete")
	}

	now := doc.UpdatedAt
	if now.IsZero() {
		now = time.Now()
	}

	filter := bson.M{
		"external_id":   doc.ExternalID,
		"document_type": doc.DocumentType,
	}
	update := bson.M{
		"$set": bson.M{
			"title":      doc.Title,
			"content":    doc.Content,
			"metadata":   doc.Metadata,
			"embedding":  doc.Embedding,
			"updated_at": now,
		},
		"$setOnInsert": bson.M{
			"external_id":   doc.ExternalID,
			"document_type": doc.DocumentType,
		},
	}

	_, err := s.documents.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert document %s/%s: %w", doc.DocumentType, doc.ExternalID, err)
	}
	return nil
}

func (s *MongoStore) ListWithEmbeddings(ctx context.Context) ([]models.IndexedDocument, error) {
	filter := bson.M{
		"embedding": bson.M{"$exists": true, "$ne": bson.A{}},
	}

	cursor, err := s.documents.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []models.IndexedDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode documents: %w", err)
	}
	return docs, nil
}

func (s *MongoStore) AppendQueryLog(ctx context.Context, entry *models.QueryLog) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	_, err := s.queryLogs.InsertOne(ctx, entry)
	if err != nil {
		return fmt.Errorf("append query log: %w", err)
	}
	return nil
}

func (s *MongoStore) DeleteExpiredCache(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.cache.DeleteMany(ctx, bson.M{"expires_at": bson.M{"$lt": now}})
	if err != nil {
		return 0, fmt.Errorf("sweep cache: %w", err)
	}
	return res.DeletedCount, nil
}

func (s *MongoStore) Stats(ctx context.Context) (*models.IndexingStats, error) {
	total, err := s.documents.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("count documents: %w", err)
	}

	withEmbeddings, err := s.documents.CountDocuments(ctx, bson.M{
		"embedding": bson.M{"$exists": true, "$ne": bson.A{}},
	})
	if err != nil {
		return nil, fmt.Errorf("count embedded documents: %w", err)
	}

	stats := &models.IndexingStats{
		TotalDocuments: total,
		WithEmbeddings: withEmbeddings,
		ByType:         make(map[string]int64),
	}

	cursor, err := s.documents.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": "$document_type", "count": bson.M{"$sum": 1}}}},
	})
	if err != nil {
		return nil, fmt.Errorf("aggregate by type: %w", err)
	}
	defer cursor.Close(ctx)

	var groups []struct {
		Type  string `bson:"_id"`
		Count int64  `bson:"count"`
	}
	if err := cursor.All(ctx, &groups); err != nil {
		return nil, fmt.Errorf("decode type counts: %w", err)
	}
	for _, g := range groups {
		stats.ByType[g.Type] = g.Count
	}

	// Most recent successful index write, if any.
	opts := options.FindOne().SetSort(bson.D{{Key: "updated_at", Value: -1}})
	var latest models.IndexedDocument
	err = s.documents.FindOne(ctx, bson.M{}, opts).Decode(&latest)
	if err == nil {
		stats.LastIndexed = &latest.UpdatedAt
	} else if err != mongo.ErrNoDocuments {
		return nil, fmt.Errorf("find latest document: %w", err)
	}

	return stats, nil
}
