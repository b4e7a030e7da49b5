package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/upb/lenny-lens/config"
	"github.com/upb/lenny-lens/internal/observability"
	"github.com/upb/lenny-lens/repositories"
	"github.com/upb/lenny-lens/repositories/postgres"
	"github.com/upb/lenny-lens/services/corpus"
	"github.com/upb/lenny-lens/services/ingest"
	"github.com/upb/lenny-lens/services/providers"
	"github.com/upb/lenny-lens/services/providers/openai"
	"github.com/upb/lenny-lens/services/query"
	"github.com/upb/lenny-lens/services/querylog"
	"github.com/upb/lenny-lens/services/ratelimit"
	"github.com/upb/lenny-lens/services/retrieval"
	"github.com/upb/lenny-lens/services/session"
	"github.com/upb/lenny-lens/services/synthesis"
	"go.uber.org/zap"
)

// Dependencies holds everything the server and CLI commands need.
// This is the central wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config  *config.Config
	DB      *postgres.DB
	Logger  *zap.Logger
	Metrics *observability.Metrics

	// Repository Factory
	RepoFactory *postgres.RepositoryFactory

	// Repositories
	Chunks    repositories.ChunkRepository
	QueryLogs repositories.QueryLogRepository
	TxManager repositories.TransactionManager

	// Model provider, used for both embeddings and generation
	Provider *openai.OpenAIAdapter

	// Pipeline state and stages
	Limiter     *ratelimit.Limiter
	Sessions    *session.Store
	Retriever   *retrieval.Engine
	Synthesizer *synthesis.Synthesizer
	Recorder    *querylog.Recorder

	// Services
	QueryService  *query.Service
	CorpusService *corpus.Service

	stopWorkers context.CancelFunc
}

// NewDependencies opens the database and wires every component
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	factory, err := postgres.NewRepositoryFactory(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	deps, err := NewDependenciesFromFactory(cfg, factory, logger)
	if err != nil {
		_ = factory.Close()
		return nil, err
	}
	return deps, nil
}

// NewDependenciesFromFactory wires every component on an already opened
// repository factory.
func NewDependenciesFromFactory(cfg *config.Config, factory *postgres.RepositoryFactory, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config:      cfg,
		Logger:      logger,
		Metrics:     observability.NewMetrics(),
		RepoFactory: factory,
		DB:          factory.GetDB(),
	}

	deps.initRepositories()
	deps.initProvider(cfg)

	if err := deps.initPipeline(cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize pipeline: %w", err)
	}

	deps.initServices(cfg)

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// initRepositories initializes all repository instances
func (d *Dependencies) initRepositories() {
	repos := d.RepoFactory.NewRepositories()

	d.Chunks = repos.Chunks
	d.QueryLogs = repos.QueryLogs
	d.TxManager = d.RepoFactory.GetTransactionManager()

	d.Logger.Info("repositories initialized")
}

// initProvider builds the OpenAI adapter from configuration
func (d *Dependencies) initProvider(cfg *config.Config) {
	d.Provider = openai.NewOpenAIAdapter(ProviderConfig(cfg))
	if cfg.Providers.OpenAI.APIKey == "" {
		d.Logger.Warn("OPENAI_API_KEY not set, queries will fail at the embedding step")
		return
	}
	d.Logger.Info("registered OpenAI provider",
		zap.String("embedding_model", cfg.Providers.OpenAI.EmbeddingModel),
		zap.String("chat_model", cfg.Providers.OpenAI.ChatModel))
}

// initPipeline builds the per-client state and the query stages
func (d *Dependencies) initPipeline(cfg *config.Config) error {
	p := cfg.Pipeline

	limiter, err := ratelimit.NewLimiter(ratelimit.Config{
		Limit:      p.DailyQueryLimit,
		MaxClients: p.MaxClients,
	}, d.Logger)
	if err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}
	d.Limiter = limiter

	sessions, err := session.NewStore(session.Config{
		MaxTurns:   p.MaxTurns,
		TTL:        p.SessionTTL,
		MaxClients: p.MaxClients,
	})
	if err != nil {
		return fmt.Errorf("session store: %w", err)
	}
	d.Sessions = sessions

	d.Retriever = retrieval.NewEngine(d.Provider, d.Chunks, retrieval.Config{
		SimilarityThreshold: p.SimilarityThreshold,
		MinResults:          p.MinResults,
	}, d.Metrics, d.Logger)
	d.Synthesizer = synthesis.NewSynthesizer(d.Provider, p.MaxContextChunks, d.Metrics, d.Logger)

	if cfg.QueryLog.Enabled {
		d.Recorder = querylog.NewRecorder(d.QueryLogs, d.Metrics, d.Logger, querylog.Config{
			BufferSize:  cfg.QueryLog.BufferSize,
			WorkerCount: cfg.QueryLog.Workers,
		})
	}
	return nil
}

// initServices builds the services behind the HTTP handlers
func (d *Dependencies) initServices(cfg *config.Config) {
	var recorder query.Recorder
	if d.Recorder != nil {
		recorder = d.Recorder
	}

	d.QueryService = query.NewService(d.Limiter, d.Sessions, d.Retriever, d.Synthesizer, recorder, d.Metrics, d.Logger)
	d.CorpusService = corpus.NewService(d.Chunks, d.DB, cfg.Pipeline.CorpusCacheTTL, d.Logger)
}

// NewLoader returns a chunk loader backed by the configured provider
func (d *Dependencies) NewLoader() *ingest.Loader {
	return ingest.NewLoader(d.Chunks, d.TxManager, d.Provider, d.Logger)
}

// Start launches the background workers: the query log writers and the
// rate limiter sweep. They run until Close.
func (d *Dependencies) Start(ctx context.Context) error {
	if d.Recorder != nil {
		if err := d.Recorder.Start(); err != nil {
			return fmt.Errorf("failed to start query log recorder: %w", err)
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	d.stopWorkers = cancel
	if interval := d.Config.Pipeline.RateLimitSweep; interval > 0 {
		go d.Limiter.StartCleanupWorker(ctx, interval)
	}
	return nil
}

// Close gracefully shuts down all dependencies
func (d *Dependencies) Close(ctx context.Context) error {
	d.Logger.Info("shutting down dependencies")

	var errs []error

	if d.stopWorkers != nil {
		d.stopWorkers()
		d.stopWorkers = nil
	}

	// Drain queued query log entries before the pool closes
	if d.Recorder != nil && d.Recorder.GetStats().Running {
		if err := d.Recorder.Stop(d.Config.QueryLog.StopTimeout); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop query log recorder: %w", err))
		}
	}

	if d.RepoFactory != nil {
		if err := d.RepoFactory.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		} else {
			d.Logger.Info("database connection closed")
		}
		d.RepoFactory = nil
	}

	_ = d.Logger.Sync()

	return errors.Join(errs...)
}

// ProviderConfig maps the OpenAI and synthesis settings onto the adapter
// configuration.
func ProviderConfig(cfg *config.Config) providers.ProviderConfig {
	o := cfg.Providers.OpenAI
	return providers.ProviderConfig{
		APIKey:            o.APIKey,
		BaseURL:           o.BaseURL,
		EmbeddingModel:    o.EmbeddingModel,
		ChatModel:         o.ChatModel,
		EmbeddingTimeout:  o.EmbeddingTimeout,
		GenerationTimeout: o.GenerationTimeout,
		MaxTokens:         cfg.Pipeline.MaxTokens,
		Temperature:       cfg.Pipeline.Temperature,
	}
}
