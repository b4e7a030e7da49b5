package repositories

import (
	"context"

	"github.com/upb/lenny-lens/models"
)

// TransactionManager manages database transactions
type TransactionManager interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) (Transaction, error)

	// InTransaction executes a function within a transaction
	// Automatically commits if function succeeds, rolls back on error
	InTransaction(ctx context.Context, fn func(ctx context.Context, tx Transaction) error) error
}

// Transaction represents a database transaction
type Transaction interface {
	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Context returns the transaction context
	Context() context.Context
}

// ChunkRepository handles transcript chunk storage and vector search
type ChunkRepository interface {
	// Search returns up to limit chunks nearest to embedding by cosine
	// distance, optionally restricted to guests whose name contains
	// guestFilter (case-insensitive). Results are ordered by descending
	// similarity.
	Search(ctx context.Context, embedding []float32, limit int, guestFilter string) ([]models.RetrievedChunk, error)

	// Insert stores a chunk and sets its ID and CreatedAt
	Insert(ctx context.Context, chunk *models.Chunk) error

	// ListGuests returns every guest with the number of stored chunks, ordered by name
	ListGuests(ctx context.Context) ([]models.GuestSummary, error)

	// Stats returns corpus totals
	Stats(ctx context.Context) (*models.CorpusStats, error)
}

// QueryLogRepository handles query log persistence
type QueryLogRepository interface {
	// Insert inserts a new query log entry
	Insert(ctx context.Context, entry *models.QueryLogEntry) error
}

// Repositories aggregates all repository interfaces
type Repositories struct {
	Chunks    ChunkRepository
	QueryLogs QueryLogRepository
}
