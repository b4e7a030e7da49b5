// Package ingest loads prepared transcript chunks into the vector store.
package ingest

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/upb/lenny-lens/models"
	"github.com/upb/lenny-lens/repositories"
	"github.com/upb/lenny-lens/services/providers"
	"github.com/upb/lenny-lens/utils"
	"go.uber.org/zap"
)

const (
	// DefaultBatchSize is the number of chunks inserted per transaction.
	DefaultBatchSize = 100

	maxLineBytes = 4 << 20
)

// Options controls a load
type Options struct {
	BatchSize int
	// Embed computes embeddings for records that carry none. Without it
	// such records are skipped.
	Embed bool
}

// Summary reports the outcome of a load
type Summary struct {
	Read     int
	Inserted int
	Embedded int
	Skipped  int
}

// Loader reads chunk records and inserts them in batches
type Loader struct {
	chunks   repositories.ChunkRepository
	txm      repositories.TransactionManager
	embedder providers.Embedder
	logger   *zap.Logger
}

// NewLoader creates a Loader. embedder may be nil when no record needs embedding.
func NewLoader(chunks repositories.ChunkRepository, txm repositories.TransactionManager, embedder providers.Embedder, logger *zap.Logger) *Loader {
	return &Loader{
		chunks:   chunks,
		txm:      txm,
		embedder: embedder,
		logger:   logger,
	}
}

// Load reads JSONL records from r. Invalid lines are logged and skipped;
// storage and embedding errors abort the load. Batches committed before
// an error stay committed.
func (l *Loader) Load(ctx context.Context, r io.Reader, opts Options) (*Summary, error) {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.Embed && l.embedder == nil {
		return nil, fmt.Errorf("embedding requested but no embedder configured")
	}

	summary := &Summary{}
	batch := make([]*models.Chunk, 0, opts.BatchSize)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64<<10), maxLineBytes)

	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		summary.Read++

		chunk, err := l.parse(raw)
		if err != nil {
			summary.Skipped++
			l.logger.Warn("skipping invalid record", zap.Int("line", line), zap.Error(err))
			continue
		}

		if len(chunk.Embedding) == 0 {
			if !opts.Embed {
				summary.Skipped++
				l.logger.Warn("skipping record without embedding", zap.Int("line", line), zap.String("chunk_id", chunk.ChunkID))
				continue
			}
			vec, err := l.embedder.Embed(ctx, chunk.Text)
			if err != nil {
				return summary, fmt.Errorf("failed to embed record on line %d: %w", line, err)
			}
			if len(vec) != models.EmbeddingDimensions {
				return summary, fmt.Errorf("embedding for line %d has %d dimensions, want %d", line, len(vec), models.EmbeddingDimensions)
			}
			chunk.Embedding = vec
			summary.Embedded++
		}

		batch = append(batch, chunk)
		if len(batch) == opts.BatchSize {
			if err := l.flush(ctx, batch); err != nil {
				return summary, err
			}
			summary.Inserted += len(batch)
			batch = batch[:0]
		}
	}
	if err := scanner.Err(); err != nil {
		return summary, fmt.Errorf("failed to read records: %w", err)
	}

	if len(batch) > 0 {
		if err := l.flush(ctx, batch); err != nil {
			return summary, err
		}
		summary.Inserted += len(batch)
	}

	l.logger.Info("chunk load complete",
		zap.Int("read", summary.Read),
		zap.Int("inserted", summary.Inserted),
		zap.Int("embedded", summary.Embedded),
		zap.Int("skipped", summary.Skipped))

	return summary, nil
}

func (l *Loader) parse(raw []byte) (*models.Chunk, error) {
	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if err := utils.ValidateStruct(rec); err != nil {
		return nil, err
	}
	return rec.ToChunk(), nil
}

func (l *Loader) flush(ctx context.Context, batch []*models.Chunk) error {
	err := l.txm.InTransaction(ctx, func(ctx context.Context, _ repositories.Transaction) error {
		for _, chunk := range batch {
			if err := l.chunks.Insert(ctx, chunk); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to insert batch of %d chunks: %w", len(batch), err)
	}
	l.logger.Debug("batch inserted", zap.Int("size", len(batch)))
	return nil
}
