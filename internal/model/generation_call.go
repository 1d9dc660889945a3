package model

import "time"

// GenerationCall tracks each call to a generation provider for cost monitoring.
// Only metadata is stored; the reply itself is never persisted.
type GenerationCall struct {
	ID            int64     `db:"id" json:"id"`
	Segment       string    `db:"segment" json:"segment"`
	Provider      string    `db:"provider" json:"provider"`
	Model         string    `db:"model" json:"model"`
	Grounded      bool      `db:"grounded" json:"grounded"`
	Success       bool      `db:"success" json:"success"`
	CitationCount int       `db:"citation_count" json:"citation_count"`
	ErrorMessage  *string   `db:"error_message" json:"error_message,omitempty"`
	DurationMs    *int64    `db:"duration_ms" json:"duration_ms,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}
