package corpus

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/upb/lenny-lens/models"
	"github.com/upb/lenny-lens/services"
	"go.uber.org/zap"
)

// MockChunkRepository is a mock implementation of ChunkRepository
type MockChunkRepository struct {
	mock.Mock
}

func (m *MockChunkRepository) Search(ctx context.Context, embedding []float32, limit int, guestFilter string) ([]models.RetrievedChunk, error) {
	args := m.Called(ctx, embedding, limit, guestFilter)
	if chunks := args.Get(0); chunks != nil {
		return chunks.([]models.RetrievedChunk), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockChunkRepository) Insert(ctx context.Context, chunk *models.Chunk) error {
	return m.Called(ctx, chunk).Error(0)
}

func (m *MockChunkRepository) ListGuests(ctx context.Context) ([]models.GuestSummary, error) {
	args := m.Called(ctx)
	if guests := args.Get(0); guests != nil {
		return guests.([]models.GuestSummary), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockChunkRepository) Stats(ctx context.Context) (*models.CorpusStats, error) {
	args := m.Called(ctx)
	if stats := args.Get(0); stats != nil {
		return stats.(*models.CorpusStats), args.Error(1)
	}
	return nil, args.Error(1)
}

type fakeHealth struct{ err error }

func (f fakeHealth) HealthCheck(context.Context) error { return f.err }

func TestService_ListGuestsCached(t *testing.T) {
	repo := new(MockChunkRepository)
	guests := []models.GuestSummary{{Name: "Brian Chesky", ChunkCount: 120}}
	repo.On("ListGuests", mock.Anything).Return(guests, nil).Once()

	svc := NewService(repo, nil, time.Minute, zap.NewNop())

	for i := 0; i < 3; i++ {
		got, err := svc.ListGuests(context.Background())
		require.NoError(t, err)
		assert.Equal(t, guests, got)
	}

	repo.AssertNumberOfCalls(t, "ListGuests", 1)
	stats := svc.CacheStats()
	assert.Equal(t, uint64(2), stats.Hits)
	assert.Equal(t, uint64(1), stats.Misses)
}

func TestService_CacheDisabled(t *testing.T) {
	repo := new(MockChunkRepository)
	repo.On("Stats", mock.Anything).Return(&models.CorpusStats{TotalChunks: 10, UniqueGuests: 2}, nil)

	svc := NewService(repo, nil, 0, zap.NewNop())
	_, err := svc.Stats(context.Background())
	require.NoError(t, err)
	_, err = svc.Stats(context.Background())
	require.NoError(t, err)

	repo.AssertNumberOfCalls(t, "Stats", 2)
}

func TestService_Invalidate(t *testing.T) {
	repo := new(MockChunkRepository)
	repo.On("Stats", mock.Anything).Return(&models.CorpusStats{TotalChunks: 10, UniqueGuests: 2}, nil)

	svc := NewService(repo, nil, time.Hour, zap.NewNop())
	_, _ = svc.Stats(context.Background())
	svc.Invalidate()
	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 10, stats.TotalChunks)
	repo.AssertNumberOfCalls(t, "Stats", 2)
}

func TestService_StoreErrors(t *testing.T) {
	repo := new(MockChunkRepository)
	repo.On("ListGuests", mock.Anything).Return(nil, errors.New("connection refused"))
	repo.On("Stats", mock.Anything).Return(nil, errors.New("connection refused"))

	svc := NewService(repo, nil, time.Minute, zap.NewNop())

	_, err := svc.ListGuests(context.Background())
	assert.True(t, services.IsUnavailableError(err))

	_, err = svc.Stats(context.Background())
	assert.True(t, services.IsUnavailableError(err))
	assert.Equal(t, services.MsgDatabaseUnavailable, services.GetErrorMessage(err))
}

func TestService_Health(t *testing.T) {
	svc := NewService(new(MockChunkRepository), fakeHealth{}, time.Minute, zap.NewNop())
	health, err := svc.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &Health{Status: "healthy", Database: "connected"}, health)

	svc = NewService(new(MockChunkRepository), fakeHealth{err: errors.New("down")}, time.Minute, zap.NewNop())
	_, err = svc.Health(context.Background())
	assert.True(t, services.IsUnavailableError(err))
}
