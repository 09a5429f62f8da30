package config

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func ConnectMongoDB(cfg *Config) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %v", err)
	}

	// Test connection
	err = client.Ping(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %v", err)
	}

	// Create indexes
	err = createIndexes(client, cfg.DBName)
	if err != nil {
		return nil, fmt.Errorf("failed to create indexes: %v", err)
	}

	return client, nil
}

func createIndexes(client *mongo.Client, dbName string) error {
	db := client.Database(dbName)

	// Indexed documents: (external_id, document_type) is the natural key of
	// the mirror; the unique index makes concurrent upserts collision-safe.
	documentsCollection := db.Collection("indexed_documents")
	documentIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "external_id", Value: 1}, {Key: "document_type", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "document_type", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "updated_at", Value: -1}},
		},
	}
	_, err := documentsCollection.Indexes().CreateMany(context.Background(), documentIndexes)
	if err != nil {
		return err
	}

	// Query logs: analytics-only sink, indexed for time-range reads.
	queryLogsCollection := db.Collection("query_logs")
	queryLogIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "user_id", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "created_at", Value: -1}},
		},
	}
	_, err = queryLogsCollection.Indexes().CreateMany(context.Background(), queryLogIndexes)
	if err != nil {
		return err
	}

	// Cache entries: swept hourly by expiry.
	cacheCollection := db.Collection("cache_entries")
	cacheIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "key", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "expires_at", Value: 1}},
		},
	}
	_, err = cacheCollection.Indexes().CreateMany(context.Background(), cacheIndexes)
	if err != nil {
		return err
	}

	return nil
}
