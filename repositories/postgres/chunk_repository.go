package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
	"github.com/upb/lenny-lens/models"
	"github.com/upb/lenny-lens/repositories"
	"go.uber.org/zap"
)

const searchColumns = `id, episode_guest, episode_title, chunk_type, text, speaker, keywords,
		       1 - (embedding <=> $1::vector) AS similarity`

// ChunkRepository implements the repositories.ChunkRepository interface
type ChunkRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewChunkRepository creates a new chunk repository
func NewChunkRepository(db *DB, logger *zap.Logger) repositories.ChunkRepository {
	return &ChunkRepository{
		db:     db,
		logger: logger,
	}
}

// Search runs a nearest-neighbour query over the chunk embeddings
func (r *ChunkRepository) Search(ctx context.Context, embedding []float32, limit int, guestFilter string) ([]models.RetrievedChunk, error) {
	vec := pgvector.NewVector(embedding)

	var (
		query string
		args  []interface{}
	)
	if guestFilter != "" {
		query = `
		SELECT ` + searchColumns + `
		FROM chunks
		WHERE episode_guest ILIKE $2
		ORDER BY embedding <=> $1::vector
		LIMIT $3
	`
		args = []interface{}{vec, "%" + guestFilter + "%", limit}
	} else {
		query = `
		SELECT ` + searchColumns + `
		FROM chunks
		ORDER BY embedding <=> $1::vector
		LIMIT $2
	`
		args = []interface{}{vec, limit}
	}

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search chunks: %w", err)
	}
	defer rows.Close()

	chunks := make([]models.RetrievedChunk, 0, limit)
	for rows.Next() {
		chunk, err := scanRetrievedChunk(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan chunk: %w", err)
		}
		chunks = append(chunks, chunk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating chunks: %w", err)
	}

	r.logger.Debug("chunk search completed",
		zap.Int("limit", limit),
		zap.Bool("guest_filtered", guestFilter != ""),
		zap.Int("results", len(chunks)),
	)
	return chunks, nil
}

func scanRetrievedChunk(rows *sql.Rows) (models.RetrievedChunk, error) {
	var (
		c                                  models.RetrievedChunk
		guest, title, chunkType, text, spk sql.NullString
		similarity                         sql.NullFloat64
	)
	err := rows.Scan(
		&c.ID,
		&guest,
		&title,
		&chunkType,
		&text,
		&spk,
		pq.Array(&c.Keywords),
		&similarity,
	)
	if err != nil {
		return c, err
	}
	c.EpisodeGuest = guest.String
	c.EpisodeTitle = title.String
	c.ChunkType = models.ChunkType(chunkType.String)
	c.Text = text.String
	c.Speaker = spk.String
	c.Similarity = similarity.Float64
	if c.Keywords == nil {
		c.Keywords = []string{}
	}
	return c, nil
}

// Insert stores a chunk. A chunk without an embedding is stored with a NULL vector.
func (r *ChunkRepository) Insert(ctx context.Context, chunk *models.Chunk) error {
	query := `
		INSERT INTO chunks (
			chunk_id, episode_guest, episode_title, publish_date, keywords,
			chunk_type, text, speaker, word_count, embedding
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at
	`

	var embedding interface{}
	if len(chunk.Embedding) > 0 {
		embedding = pgvector.NewVector(chunk.Embedding)
	}

	executor := GetExecutor(ctx, r.db)
	err := executor.QueryRowContext(ctx, query,
		chunk.ChunkID,
		chunk.EpisodeGuest,
		chunk.EpisodeTitle,
		chunk.PublishDate,
		pq.Array(chunk.Keywords),
		string(chunk.ChunkType),
		chunk.Text,
		chunk.Speaker,
		chunk.WordCount,
		embedding,
	).Scan(&chunk.ID, &chunk.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert chunk: %w", err)
	}

	r.logger.Debug("chunk inserted", zap.Int64("id", chunk.ID), zap.String("chunk_id", chunk.ChunkID))
	return nil
}

// ListGuests returns the chunk count per guest
func (r *ChunkRepository) ListGuests(ctx context.Context) ([]models.GuestSummary, error) {
	query := `
		SELECT episode_guest, COUNT(*)
		FROM chunks
		WHERE episode_guest IS NOT NULL
		GROUP BY episode_guest
		ORDER BY episode_guest
	`

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list guests: %w", err)
	}
	defer rows.Close()

	guests := []models.GuestSummary{}
	for rows.Next() {
		var g models.GuestSummary
		if err := rows.Scan(&g.Name, &g.ChunkCount); err != nil {
			return nil, fmt.Errorf("failed to scan guest: %w", err)
		}
		guests = append(guests, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating guests: %w", err)
	}

	return guests, nil
}

// Stats returns the chunk and distinct guest counts
func (r *ChunkRepository) Stats(ctx context.Context) (*models.CorpusStats, error) {
	query := `SELECT COUNT(*), COUNT(DISTINCT episode_guest) FROM chunks`

	stats := &models.CorpusStats{}
	executor := GetExecutor(ctx, r.db)
	if err := executor.QueryRowContext(ctx, query).Scan(&stats.TotalChunks, &stats.UniqueGuests); err != nil {
		return nil, fmt.Errorf("failed to get corpus stats: %w", err)
	}
	return stats, nil
}
