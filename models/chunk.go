package models

import (
	"time"
)

// ChunkType distinguishes the two kinds of transcript passages
type ChunkType string

const (
	ChunkTypeQAPair    ChunkType = "qa_pair"
	ChunkTypeStatement ChunkType = "statement"
)

// Valid reports whether t is a known chunk type
func (t ChunkType) Valid() bool {
	return t == ChunkTypeQAPair || t == ChunkTypeStatement
}

// EmbeddingDimensions is the width of the stored embedding vectors.
const EmbeddingDimensions = 1536

// Chunk represents a stored transcript passage
type Chunk struct {
	ID           int64      `json:"id" db:"id"`
	ChunkID      string     `json:"chunk_id" db:"chunk_id"`
	EpisodeGuest string     `json:"episode_guest" db:"episode_guest"`
	EpisodeTitle string     `json:"episode_title" db:"episode_title"`
	PublishDate  *time.Time `json:"publish_date,omitempty" db:"publish_date"`
	Keywords     []string   `json:"keywords" db:"keywords"`
	ChunkType    ChunkType  `json:"chunk_type" db:"chunk_type"`
	Text         string     `json:"text" db:"text"`
	Speaker      string     `json:"speaker" db:"speaker"`
	WordCount    int        `json:"word_count" db:"word_count"`
	Embedding    []float32  `json:"-" db:"embedding"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
}

// TableName returns the table name for the Chunk model
func (Chunk) TableName() string {
	return "chunks"
}

// RetrievedChunk is one ranked search hit
type RetrievedChunk struct {
	ID           int64     `json:"id"`
	EpisodeGuest string    `json:"episode_guest"`
	EpisodeTitle string    `json:"episode_title"`
	ChunkType    ChunkType `json:"chunk_type"`
	Text         string    `json:"text"`
	Speaker      string    `json:"speaker"`
	Keywords     []string  `json:"keywords"`
	Similarity   float64   `json:"similarity"`
}

// GuestSummary is one row of the guest listing
type GuestSummary struct {
	Name       string `json:"name"`
	ChunkCount int    `json:"chunk_count"`
}

// CorpusStats summarizes the stored corpus
type CorpusStats struct {
	TotalChunks  int `json:"total_chunks"`
	UniqueGuests int `json:"unique_guests"`
}
