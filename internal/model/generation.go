package model

import (
	"time"

	"github.com/google/uuid"
)

// NewID generates a time-sortable unique identifier (UUIDv7).
func NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// GenerationEvent records one code-generation call. It is never mutated
// after it has been persisted.
type GenerationEvent struct {
	ID            string         `json:"id"`
	Tool          string         `json:"tool"`
	Params        map[string]any `json:"params,omitempty"`
	ComponentType string         `json:"component_type"`
	Framework     string         `json:"framework"`
	ContentHash   string         `json:"content_hash"`
	SkeletonHash  string         `json:"skeleton_hash,omitempty"`
	Timestamp     time.Time      `json:"timestamp"`
	SessionID     string         `json:"session_id"`
}
