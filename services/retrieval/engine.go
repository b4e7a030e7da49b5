// Package retrieval embeds a search query, runs the vector search and
// applies the similarity quality gate.
package retrieval

import (
	"context"
	"time"

	"github.com/upb/lenny-lens/internal/observability"
	"github.com/upb/lenny-lens/models"
	"github.com/upb/lenny-lens/services"
	"github.com/upb/lenny-lens/services/providers"
	"go.uber.org/zap"
)

const (
	DefaultSimilarityThreshold = 0.35
	DefaultMinResults          = 3
)

// Searcher runs a nearest-neighbour search over stored chunks, best first.
// An empty guestFilter searches every guest.
type Searcher interface {
	Search(ctx context.Context, embedding []float32, limit int, guestFilter string) ([]models.RetrievedChunk, error)
}

// Config holds quality gate settings
type Config struct {
	SimilarityThreshold float64
	MinResults          int
}

// Result is the gated output of one retrieval
type Result struct {
	Chunks       []models.RetrievedChunk
	Candidates   int
	UsedFallback bool
}

// TopSimilarity returns the best similarity in the result, or -1 when empty.
func (r *Result) TopSimilarity() float64 {
	if len(r.Chunks) == 0 {
		return -1
	}
	return r.Chunks[0].Similarity
}

// Engine retrieves gated chunks for a query
type Engine struct {
	embedder providers.Embedder
	searcher Searcher
	cfg      Config
	metrics  *observability.Metrics
	logger   *zap.Logger
}

// NewEngine creates a new Engine instance
func NewEngine(embedder providers.Embedder, searcher Searcher, cfg Config, metrics *observability.Metrics, logger *zap.Logger) *Engine {
	if cfg.MinResults <= 0 {
		cfg.MinResults = DefaultMinResults
	}
	return &Engine{
		embedder: embedder,
		searcher: searcher,
		cfg:      cfg,
		metrics:  metrics,
		logger:   logger,
	}
}

// Retrieve embeds query, searches for up to limit chunks and gates them.
// Embedding failures are external errors; search failures mean the store
// is unavailable.
func (e *Engine) Retrieve(ctx context.Context, query string, limit int, guestFilter string) (*Result, error) {
	start := time.Now()
	vec, err := e.embedder.Embed(ctx, query)
	e.metrics.ObserveStage(observability.StageEmbed, start)
	if err != nil {
		e.logger.Error("query embedding failed",
			zap.String("provider", e.embedder.Name()),
			zap.Error(err))
		return nil, services.WrapExternal(services.MsgEmbeddingFailed, err)
	}

	start = time.Now()
	candidates, err := e.searcher.Search(ctx, vec, limit, guestFilter)
	e.metrics.ObserveStage(observability.StageSearch, start)
	if err != nil {
		e.logger.Error("vector search failed", zap.Error(err))
		return nil, services.WrapUnavailable(services.MsgSearchUnavailable, err)
	}

	chunks, fallback := Gate(candidates, e.cfg.SimilarityThreshold, e.cfg.MinResults)
	result := &Result{Chunks: chunks, Candidates: len(candidates), UsedFallback: fallback}
	e.metrics.ObserveRetrieval(result.TopSimilarity(), fallback)

	e.logger.Debug("retrieval complete",
		zap.Int("limit", limit),
		zap.Bool("guest_filtered", guestFilter != ""),
		zap.Int("candidates", len(candidates)),
		zap.Int("kept", len(chunks)),
		zap.Bool("used_fallback", fallback))

	return result, nil
}

// Gate keeps chunks with similarity strictly above threshold. When fewer
// than minResults pass, it returns the first minResults chunks by rank
// instead and reports the fallback.
func Gate(chunks []models.RetrievedChunk, threshold float64, minResults int) ([]models.RetrievedChunk, bool) {
	kept := AboveThreshold(chunks, threshold)
	if len(kept) >= minResults {
		return kept, false
	}

	n := minResults
	if n > len(chunks) {
		n = len(chunks)
	}
	top := make([]models.RetrievedChunk, n)
	copy(top, chunks[:n])
	return top, true
}

// AboveThreshold returns the chunks whose similarity is strictly greater
// than threshold, in rank order.
func AboveThreshold(chunks []models.RetrievedChunk, threshold float64) []models.RetrievedChunk {
	kept := make([]models.RetrievedChunk, 0, len(chunks))
	for _, c := range chunks {
		if c.Similarity > threshold {
			kept = append(kept, c)
		}
	}
	return kept
}
