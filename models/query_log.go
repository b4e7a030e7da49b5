package models

import (
	"time"

	"github.com/google/uuid"
)

// QueryLogEntry records the outcome of one submitted query
type QueryLogEntry struct {
	ID               uuid.UUID `json:"id" db:"id"`
	RequestID        string    `json:"request_id" db:"request_id"`
	ClientHash       string    `json:"client_hash" db:"client_hash"`
	Query            string    `json:"query" db:"query"`
	Intent           string    `json:"intent" db:"intent"`
	Guest            *string   `json:"guest,omitempty" db:"guest"`
	EffectiveQuery   string    `json:"effective_query" db:"effective_query"`
	ResultCount      int       `json:"result_count" db:"result_count"`
	UsedFallback     bool      `json:"used_fallback" db:"used_fallback"`
	GenerationFailed bool      `json:"generation_failed" db:"generation_failed"`
	LatencyMs        int       `json:"latency_ms" db:"latency_ms"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
}

// TableName returns the table name for the QueryLogEntry model
func (QueryLogEntry) TableName() string {
	return "query_log"
}

// NewQueryLogEntry creates a new QueryLogEntry instance
func NewQueryLogEntry(requestID, clientHash, query string) *QueryLogEntry {
	return &QueryLogEntry{
		ID:         uuid.New(),
		RequestID:  requestID,
		ClientHash: clientHash,
		Query:      query,
		CreatedAt:  time.Now(),
	}
}

// WithGuest sets the detected guest
func (e *QueryLogEntry) WithGuest(guest string) *QueryLogEntry {
	if guest != "" {
		e.Guest = &guest
	}
	return e
}
