package ingest

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/upb/lenny-lens/models"
)

// ChunkID accepts both numeric and string identifiers in the input file.
type ChunkID string

// UnmarshalJSON implements json.Unmarshaler
func (c *ChunkID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = ChunkID(s)
		return nil
	}
	if string(data) == "null" {
		*c = ""
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*c = ChunkID(n.String())
	return nil
}

// Record is one line of a chunk JSONL file
type Record struct {
	ChunkID      ChunkID   `json:"chunk_id"`
	EpisodeGuest string    `json:"episode_guest" validate:"required"`
	EpisodeTitle string    `json:"episode_title" validate:"required"`
	PublishDate  string    `json:"publish_date,omitempty"`
	Keywords     []string  `json:"keywords"`
	ChunkType    string    `json:"chunk_type" validate:"required,oneof=qa_pair statement"`
	Text         string    `json:"text" validate:"required"`
	Speaker      string    `json:"speaker"`
	WordCount    int       `json:"word_count" validate:"gte=0"`
	Embedding    []float32 `json:"embedding,omitempty" validate:"omitempty,len=1536"`
}

var publishDateLayouts = []string{"2006-01-02", time.RFC3339, "January 2, 2006", "Jan 2, 2006"}

// ToChunk converts a validated record into a storage row. A missing
// chunk_id gets a generated one and a zero word count is recomputed.
func (r *Record) ToChunk() *models.Chunk {
	chunk := &models.Chunk{
		ChunkID:      string(r.ChunkID),
		EpisodeGuest: strings.TrimSpace(r.EpisodeGuest),
		EpisodeTitle: strings.TrimSpace(r.EpisodeTitle),
		PublishDate:  parsePublishDate(r.PublishDate),
		Keywords:     r.Keywords,
		ChunkType:    models.ChunkType(r.ChunkType),
		Text:         r.Text,
		Speaker:      r.Speaker,
		WordCount:    r.WordCount,
		Embedding:    r.Embedding,
	}
	if chunk.ChunkID == "" {
		chunk.ChunkID = uuid.NewString()
	}
	if chunk.WordCount == 0 {
		chunk.WordCount = len(strings.Fields(r.Text))
	}
	if chunk.Keywords == nil {
		chunk.Keywords = []string{}
	}
	return chunk
}

func parsePublishDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range publishDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}
