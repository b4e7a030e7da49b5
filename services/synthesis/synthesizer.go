package synthesis

import (
	"context"
	"time"

	"github.com/upb/lenny-lens/internal/observability"
	"github.com/upb/lenny-lens/models"
	"github.com/upb/lenny-lens/services/classifier"
	"github.com/upb/lenny-lens/services/providers"
	"go.uber.org/zap"
)

// Synthesis is the generated answer for one query
type Synthesis struct {
	Answer       string
	Strategy     Strategy
	Failed       bool
	PromptTokens int
}

// Synthesizer builds the prompt and calls the generator
type Synthesizer struct {
	generator providers.Generator
	maxChunks int
	tokens    *TokenCounter
	metrics   *observability.Metrics
	logger    *zap.Logger
}

// NewSynthesizer creates a new Synthesizer instance
func NewSynthesizer(generator providers.Generator, maxChunks int, metrics *observability.Metrics, logger *zap.Logger) *Synthesizer {
	if maxChunks <= 0 {
		maxChunks = DefaultMaxContextChunks
	}
	return &Synthesizer{
		generator: generator,
		maxChunks: maxChunks,
		tokens:    DefaultTokenCounter(),
		metrics:   metrics,
		logger:    logger,
	}
}

// Synthesize answers query from chunks. A generator failure does not return
// an error: the answer becomes "Error: <reason>" and Failed is set.
func (s *Synthesizer) Synthesize(ctx context.Context, query string, intent classifier.QueryIntent, chunks []models.RetrievedChunk, convContext string) *Synthesis {
	strategy := Select(intent.Intent)
	prompt := strategy.Build(PromptInput{
		Query:   query,
		Guest:   intent.Guest,
		Chunks:  chunks,
		Context: convContext,
	}, s.maxChunks)

	out := &Synthesis{Strategy: strategy, PromptTokens: s.tokens.Count(prompt)}

	start := time.Now()
	answer, err := s.generator.Complete(ctx, prompt)
	s.metrics.ObserveStage(observability.StageGenerate, start)

	if err != nil {
		s.logger.Warn("answer generation failed, returning error answer",
			zap.String("strategy", strategy.String()),
			zap.Bool("timeout", providers.IsTimeout(err)),
			zap.Error(err))
		out.Answer = "Error: " + err.Error()
		out.Failed = true
	} else {
		out.Answer = answer
	}

	s.metrics.ObserveGeneration(out.PromptTokens, out.Failed)
	return out
}
