package models

import "time"

// QueryRequest is the payload of POST /api/assistant/query.
type QueryRequest struct {
	Query  string `json:"query" binding:"required,min=1,max=2000"`
	UserID string `json:"user_id,omitempty"`
}

// SourceRef identifies one retrieved document that contributed to an answer.
type SourceRef struct {
	ExternalID   string  `json:"external_id"`
	DocumentType string  `json:"document_type"`
	Title        string  `json:"title"`
	Score        float64 `json:"score"`
}

// QueryResponse is the result of one answered query.
type QueryResponse struct {
	Answer         string         `json:"answer"`
	Sources        []SourceRef    `json:"sources"`
	LiveData       map[string]any `json:"live_data,omitempty"`
	ResponseTimeMs int64          `json:"response_time_ms"`
	Cached         bool           `json:"cached,omitempty"`
	Timestamp      time.Time      `json:"timestamp"`
}

// IndexRunReport summarizes one indexing run. A category appearing in
// FailedCategories was aborted wholesale (fetch failure); per-entity
// failures only bump Skipped/Failed counters.
type IndexRunReport struct {
	StartedAt        time.Time     `json:"started_at"`
	Duration         time.Duration `json:"duration"`
	Indexed          int           `json:"indexed"`
	Skipped          int           `json:"skipped"`
	Failed           int           `json:"failed"`
	FailedCategories []string      `json:"failed_categories,omitempty"`
}
