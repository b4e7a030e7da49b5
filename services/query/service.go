package query

import (
	"context"
	"strings"
	"time"

	"github.com/upb/lenny-lens/internal/observability"
	"github.com/upb/lenny-lens/models"
	"github.com/upb/lenny-lens/services"
	"github.com/upb/lenny-lens/services/classifier"
	"github.com/upb/lenny-lens/services/ratelimit"
	"github.com/upb/lenny-lens/services/retrieval"
	"github.com/upb/lenny-lens/services/rewriter"
	"github.com/upb/lenny-lens/services/session"
	"github.com/upb/lenny-lens/services/synthesis"
	"go.uber.org/zap"
)

// Service runs the conversational query pipeline
type Service struct {
	limiter     *ratelimit.Limiter
	sessions    *session.Store
	retriever   *retrieval.Engine
	synthesizer *synthesis.Synthesizer
	recorder    Recorder
	metrics     *observability.Metrics
	logger      *zap.Logger
	now         func() time.Time
}

// NewService creates the pipeline. recorder and metrics may be nil.
func NewService(
	limiter *ratelimit.Limiter,
	sessions *session.Store,
	retriever *retrieval.Engine,
	synthesizer *synthesis.Synthesizer,
	recorder Recorder,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *Service {
	return &Service{
		limiter:     limiter,
		sessions:    sessions,
		retriever:   retriever,
		synthesizer: synthesizer,
		recorder:    recorder,
		metrics:     metrics,
		logger:      logger,
		now:         time.Now,
	}
}

// Submit answers one query for a client.
//
// The quota is checked first and is consumed even when the query is then
// rejected as too short or the conversation is full. Neither rejection
// reaches the embedding or generation providers.
func (s *Service) Submit(ctx context.Context, req *Request) (*models.Answer, error) {
	start := s.now()
	logger := s.logger.With(
		zap.String("request_id", req.RequestID),
		zap.String("client_id", req.ClientID))

	s.sessions.Sweep(start)

	quota := s.limiter.Check(req.ClientID)
	if !quota.Allowed {
		logger.Info("daily query limit reached", zap.Int("queries_today", quota.QueriesToday))
		s.metrics.IncQuery(unclassified, OutcomeRateLimited)
		return nil, services.NewRateLimitError(s.limiter.Limit(), quota.QueriesToday)
	}

	if len(strings.TrimSpace(req.Query)) < minQueryLength {
		s.metrics.IncQuery(unclassified, OutcomeRejected)
		return nil, services.NewQueryTooShortError()
	}

	turns := s.sessions.Turns(req.ClientID)
	if len(turns) >= s.sessions.MaxTurns() {
		logger.Info("conversation limit reached", zap.Int("turns", len(turns)))
		s.metrics.IncQuery(unclassified, OutcomeConversationLimit)
		return nil, services.NewConversationLimitError(s.sessions.MaxTurns())
	}

	intent := classifier.Classify(req.Query)
	plan := rewriter.Rewrite(req.Query, intent, turns)

	logger.Debug("query planned",
		zap.String("intent", intent.Intent.String()),
		zap.String("guest", intent.Guest),
		zap.String("effective_query", plan.EffectiveQuery),
		zap.Int("limit", plan.Limit),
		zap.Bool("carry_forward", plan.IsCarryForward))

	result, err := s.retriever.Retrieve(ctx, plan.EffectiveQuery, plan.Limit, plan.GuestFilter)
	if err != nil {
		s.metrics.IncQuery(intent.Intent.String(), OutcomeError)
		return nil, err
	}

	synth := s.synthesizer.Synthesize(ctx, req.Query, intent, result.Chunks, plan.Context)

	length := s.sessions.Append(req.ClientID, models.Turn{
		Query:     req.Query,
		Answer:    synth.Answer,
		Timestamp: s.now(),
	})

	sources := result.Chunks
	if len(sources) > maxSources {
		sources = sources[:maxSources]
	}

	answer := &models.Answer{
		Query:              req.Query,
		Answer:             synth.Answer,
		Sources:            sources,
		TotalResults:       len(result.Chunks),
		ConversationLength: length,
		IsFollowup:         length > 1,
		QueriesRemaining:   quota.QueriesRemaining,
		UsedFallback:       result.UsedFallback,
	}

	outcome := OutcomeAnswered
	if synth.Failed {
		outcome = OutcomeGenerationFailed
	}
	s.metrics.IncQuery(intent.Intent.String(), outcome)
	s.metrics.ObserveStage(observability.StageTotal, start)

	latency := s.now().Sub(start)
	s.record(req, intent, plan, answer, synth.Failed, latency)

	logger.Info("query answered",
		zap.String("intent", intent.Intent.String()),
		zap.String("strategy", synth.Strategy.String()),
		zap.Int("results", answer.TotalResults),
		zap.Bool("used_fallback", answer.UsedFallback),
		zap.Int("conversation_length", length),
		zap.Duration("latency", latency))

	return answer, nil
}

// Reset clears the client's conversation
func (s *Service) Reset(clientID string) {
	s.sessions.Clear(clientID)
}

func (s *Service) record(req *Request, intent classifier.QueryIntent, plan rewriter.Plan, answer *models.Answer, failed bool, latency time.Duration) {
	if s.recorder == nil {
		return
	}

	entry := models.NewQueryLogEntry(req.RequestID, req.ClientID, req.Query).WithGuest(intent.Guest)
	entry.Intent = intent.Intent.String()
	entry.EffectiveQuery = plan.EffectiveQuery
	entry.ResultCount = answer.TotalResults
	entry.UsedFallback = answer.UsedFallback
	entry.GenerationFailed = failed
	entry.LatencyMs = int(latency.Milliseconds())

	if err := s.recorder.Record(entry); err != nil {
		s.logger.Debug("query log entry not recorded",
			zap.String("request_id", req.RequestID),
			zap.Error(err))
	}
}
