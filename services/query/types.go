package query

import "github.com/upb/lenny-lens/models"

// Request is one submitted question
type Request struct {
	Query     string
	ClientID  string
	RequestID string
}

// Recorder receives a log entry for every answered query.
// Record must not block.
type Recorder interface {
	Record(entry *models.QueryLogEntry) error
}

// Outcome labels for the query counter
const (
	OutcomeAnswered          = "answered"
	OutcomeGenerationFailed  = "generation_failed"
	OutcomeRateLimited       = "rate_limited"
	OutcomeRejected          = "rejected"
	OutcomeConversationLimit = "conversation_limit"
	OutcomeError             = "error"

	maxSources     = 5
	minQueryLength = 3
)

// intent label used before a query has been classified
const unclassified = "unclassified"
