package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// QueryLog is an append-only record of one answered assistant query.
// It is written best-effort and never read back by the pipeline itself.
type QueryLog struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CorrelationID  string             `bson:"correlation_id" json:"correlation_id"`
	UserID         string             `bson:"user_id" json:"user_id"`
	Query          string             `bson:"query" json:"query"`
	LiveData       map[string]any     `bson:"live_data,omitempty" json:"live_data,omitempty"`
	Answer         string             `bson:"answer" json:"answer"`
	ResponseTimeMs int64              `bson:"response_time_ms" json:"response_time_ms"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
}
