package postgres

import (
	"context"
	"fmt"

	"github.com/upb/lenny-lens/models"
	"github.com/upb/lenny-lens/repositories"
	"go.uber.org/zap"
)

// QueryLogRepository implements the repositories.QueryLogRepository interface
type QueryLogRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewQueryLogRepository creates a new query log repository
func NewQueryLogRepository(db *DB, logger *zap.Logger) repositories.QueryLogRepository {
	return &QueryLogRepository{
		db:     db,
		logger: logger,
	}
}

// Insert inserts a new query log entry
func (r *QueryLogRepository) Insert(ctx context.Context, entry *models.QueryLogEntry) error {
	query := `
		INSERT INTO query_log (
			id, request_id, client_hash, query, intent, guest, effective_query,
			result_count, used_fallback, generation_failed, latency_ms, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12
		)
	`

	executor := GetExecutor(ctx, r.db)
	_, err := executor.ExecContext(ctx, query,
		entry.ID,
		entry.RequestID,
		entry.ClientHash,
		entry.Query,
		entry.Intent,
		entry.Guest,
		entry.EffectiveQuery,
		entry.ResultCount,
		entry.UsedFallback,
		entry.GenerationFailed,
		entry.LatencyMs,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert query log entry: %w", err)
	}

	r.logger.Debug("query log entry inserted", zap.String("id", entry.ID.String()), zap.String("intent", entry.Intent))
	return nil
}
