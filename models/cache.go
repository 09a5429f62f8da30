package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CacheEntry is a generic ephemeral key/value row. Other subsystems write
// these; the assistant only sweeps expired rows on its hourly job.
type CacheEntry struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Key       string             `bson:"key" json:"key"`
	Value     map[string]any     `bson:"value,omitempty" json:"value,omitempty"`
	ExpiresAt time.Time          `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

// Expired reports whether the entry is eligible for removal at the given
// instant.
func (e *CacheEntry) Expired(now time.Time) bool {
	return e.ExpiresAt.Before(now)
}
