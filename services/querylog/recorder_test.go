package querylog

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/upb/lenny-lens/internal/observability"
	"github.com/upb/lenny-lens/models"
	"go.uber.org/zap"
)

// MockQueryLogRepository is a mock implementation of QueryLogRepository
type MockQueryLogRepository struct {
	mock.Mock
	mu       sync.Mutex
	inserted []*models.QueryLogEntry
}

func (m *MockQueryLogRepository) Insert(ctx context.Context, entry *models.QueryLogEntry) error {
	args := m.Called(ctx, entry)
	m.mu.Lock()
	m.inserted = append(m.inserted, entry)
	m.mu.Unlock()
	return args.Error(0)
}

func (m *MockQueryLogRepository) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.inserted)
}

func TestRecorder_WritesEntries(t *testing.T) {
	repo := new(MockQueryLogRepository)
	repo.On("Insert", mock.Anything, mock.Anything).Return(nil)

	r := NewRecorder(repo, nil, zap.NewNop(), Config{BufferSize: 10, WorkerCount: 2})
	require.NoError(t, r.Start())

	for i := 0; i < 5; i++ {
		require.NoError(t, r.Record(models.NewQueryLogEntry("req", "client", "how to hire")))
	}

	require.NoError(t, r.Stop(time.Second))
	assert.Equal(t, 5, repo.count())

	stats := r.GetStats()
	assert.Equal(t, int64(5), stats.Written)
	assert.Equal(t, int64(0), stats.Failed)
	assert.False(t, stats.Running)
}

func TestRecorder_RedactsQueries(t *testing.T) {
	repo := new(MockQueryLogRepository)
	repo.On("Insert", mock.Anything, mock.Anything).Return(nil)

	r := NewRecorder(repo, nil, zap.NewNop(), Config{BufferSize: 1, WorkerCount: 1})
	require.NoError(t, r.Start())

	entry := models.NewQueryLogEntry("req", "client", "reach me at jane@example.com")
	entry.EffectiveQuery = "reach me at jane@example.com"
	require.NoError(t, r.Record(entry))
	require.NoError(t, r.Stop(time.Second))

	require.Equal(t, 1, repo.count())
	assert.Equal(t, "reach me at [EMAIL_REDACTED]", repo.inserted[0].Query)
	assert.Equal(t, "reach me at [EMAIL_REDACTED]", repo.inserted[0].EffectiveQuery)
}

func TestRecorder_InsertFailureIsCounted(t *testing.T) {
	repo := new(MockQueryLogRepository)
	repo.On("Insert", mock.Anything, mock.Anything).Return(errors.New("db down"))

	r := NewRecorder(repo, nil, zap.NewNop(), Config{BufferSize: 4, WorkerCount: 1})
	require.NoError(t, r.Start())
	require.NoError(t, r.Record(models.NewQueryLogEntry("req", "client", "q")))
	require.NoError(t, r.Stop(time.Second))

	assert.Equal(t, int64(1), r.GetStats().Failed)
}

func TestRecorder_DropsWhenFull(t *testing.T) {
	block := make(chan struct{})
	repo := new(MockQueryLogRepository)
	repo.On("Insert", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { <-block }).
		Return(nil)

	metrics := observability.NewMetrics()
	r := NewRecorder(repo, metrics, zap.NewNop(), Config{BufferSize: 1, WorkerCount: 1})
	require.NoError(t, r.Start())

	// the first entry occupies the worker, the second fills the buffer
	require.NoError(t, r.Record(models.NewQueryLogEntry("1", "c", "q")))
	assert.Eventually(t, func() bool { return r.GetStats().PendingEntries == 0 }, time.Second, 5*time.Millisecond)
	require.NoError(t, r.Record(models.NewQueryLogEntry("2", "c", "q")))

	err := r.Record(models.NewQueryLogEntry("3", "c", "q"))
	assert.ErrorIs(t, err, ErrBufferFull)
	expected := `
# HELP lens_query_log_dropped_total Query log entries dropped because the buffer was full
# TYPE lens_query_log_dropped_total counter
lens_query_log_dropped_total 1
`
	assert.NoError(t, testutil.GatherAndCompare(metrics.Registry(), strings.NewReader(expected), "lens_query_log_dropped_total"))

	close(block)
	require.NoError(t, r.Stop(time.Second))
	assert.Equal(t, 2, repo.count())
}

func TestRecorder_Lifecycle(t *testing.T) {
	r := NewRecorder(new(MockQueryLogRepository), nil, zap.NewNop(), Config{})

	assert.ErrorIs(t, r.Record(models.NewQueryLogEntry("r", "c", "q")), ErrNotRunning)
	assert.ErrorIs(t, r.Stop(time.Second), ErrNotRunning)

	require.NoError(t, r.Start())
	assert.Error(t, r.Start())
	assert.Equal(t, DefaultConfig().BufferSize, r.GetStats().BufferSize)

	require.NoError(t, r.Stop(time.Second))
	assert.ErrorIs(t, r.Record(models.NewQueryLogEntry("r", "c", "q")), ErrNotRunning)
}
