package corpus

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/upb/lenny-lens/models"
	"github.com/upb/lenny-lens/repositories"
	"github.com/upb/lenny-lens/services"
	"go.uber.org/zap"
)

const (
	guestsKey = "guests"
	statsKey  = "stats"
)

// HealthChecker reports whether the backing store is reachable
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Health is the result of a store health check
type Health struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// CacheStats represents report cache statistics
type CacheStats struct {
	Hits    uint64
	Misses  uint64
	HitRate float64
}

// Service answers the read-only corpus endpoints. Guest and stats reports
// are cached for ttl; a zero ttl disables the cache.
type Service struct {
	chunks repositories.ChunkRepository
	health HealthChecker
	logger *zap.Logger

	guests *expirable.LRU[string, []models.GuestSummary]
	stats  *expirable.LRU[string, models.CorpusStats]
	hits   atomic.Uint64
	misses atomic.Uint64
}

// NewService creates a corpus report service
func NewService(chunks repositories.ChunkRepository, health HealthChecker, ttl time.Duration, logger *zap.Logger) *Service {
	s := &Service{
		chunks: chunks,
		health: health,
		logger: logger,
	}
	if ttl > 0 {
		s.guests = expirable.NewLRU[string, []models.GuestSummary](1, nil, ttl)
		s.stats = expirable.NewLRU[string, models.CorpusStats](1, nil, ttl)
	}
	return s
}

// ListGuests returns every guest with its chunk count, ordered by name
func (s *Service) ListGuests(ctx context.Context) ([]models.GuestSummary, error) {
	if s.guests != nil {
		if guests, ok := s.guests.Get(guestsKey); ok {
			s.hits.Add(1)
			return guests, nil
		}
		s.misses.Add(1)
	}

	guests, err := s.chunks.ListGuests(ctx)
	if err != nil {
		s.logger.Error("failed to list guests", zap.Error(err))
		return nil, services.WrapUnavailable(services.MsgDatabaseUnavailable, err)
	}

	if s.guests != nil {
		s.guests.Add(guestsKey, guests)
	}
	return guests, nil
}

// Stats returns the chunk and distinct guest totals
func (s *Service) Stats(ctx context.Context) (*models.CorpusStats, error) {
	if s.stats != nil {
		if stats, ok := s.stats.Get(statsKey); ok {
			s.hits.Add(1)
			return &stats, nil
		}
		s.misses.Add(1)
	}

	stats, err := s.chunks.Stats(ctx)
	if err != nil {
		s.logger.Error("failed to load corpus stats", zap.Error(err))
		return nil, services.WrapUnavailable(services.MsgDatabaseUnavailable, err)
	}

	if s.stats != nil {
		s.stats.Add(statsKey, *stats)
	}
	return stats, nil
}

// Health checks the database. It never serves from cache.
func (s *Service) Health(ctx context.Context) (*Health, error) {
	if s.health == nil {
		return nil, services.WrapUnavailable(services.MsgDatabaseUnavailable, nil)
	}
	if err := s.health.HealthCheck(ctx); err != nil {
		s.logger.Warn("database health check failed", zap.Error(err))
		return nil, services.WrapUnavailable(services.MsgDatabaseUnavailable, err)
	}
	return &Health{Status: "healthy", Database: "connected"}, nil
}

// Invalidate drops cached reports, e.g. after new chunks were loaded
func (s *Service) Invalidate() {
	if s.guests != nil {
		s.guests.Purge()
	}
	if s.stats != nil {
		s.stats.Purge()
	}
}

// CacheStats returns report cache statistics
func (s *Service) CacheStats() CacheStats {
	hits, misses := s.hits.Load(), s.misses.Load()
	stats := CacheStats{Hits: hits, Misses: misses}
	if total := hits + misses; total > 0 {
		stats.HitRate = float64(hits) / float64(total)
	}
	return stats
}
