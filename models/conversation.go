package models

import "time"

// Turn is one answered query in a conversation
type Turn struct {
	Query     string    `json:"query"`
	Answer    string    `json:"answer"`
	Timestamp time.Time `json:"timestamp"`
}

// Answer is the response to a submitted query
type Answer struct {
	Query              string           `json:"query"`
	Answer             string           `json:"answer"`
	Sources            []RetrievedChunk `json:"sources"`
	TotalResults       int              `json:"total_results"`
	ConversationLength int              `json:"conversation_length"`
	IsFollowup         bool             `json:"is_followup"`
	QueriesRemaining   int              `json:"queries_remaining"`
	UsedFallback       bool             `json:"used_fallback"`
}
