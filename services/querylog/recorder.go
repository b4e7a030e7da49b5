// Package querylog persists one row per answered query on a small
// background worker pool. Recording never blocks the request path: when
// the buffer is full the entry is dropped and counted.
package querylog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/upb/lenny-lens/internal/observability"
	"github.com/upb/lenny-lens/models"
	"github.com/upb/lenny-lens/repositories"
	"go.uber.org/zap"
)

// ErrBufferFull is returned by Record when the entry was dropped.
var ErrBufferFull = errors.New("query log buffer full")

// ErrNotRunning is returned by Record before Start or after Stop.
var ErrNotRunning = errors.New("query log recorder not running")

const insertTimeout = 5 * time.Second

// Config holds configuration for the Recorder
type Config struct {
	BufferSize  int // Size of the entry buffer channel
	WorkerCount int // Number of concurrent writers
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		BufferSize:  1000,
		WorkerCount: 2,
	}
}

// Recorder writes query log entries asynchronously
type Recorder struct {
	repo        repositories.QueryLogRepository
	metrics     *observability.Metrics
	logger      *zap.Logger
	entries     chan *models.QueryLogEntry
	workerCount int
	bufferSize  int
	wg          sync.WaitGroup

	mu      sync.RWMutex
	started bool
	stopped bool
	written int64
	failed  int64
}

// NewRecorder creates a Recorder. Call Start before recording.
func NewRecorder(repo repositories.QueryLogRepository, metrics *observability.Metrics, logger *zap.Logger, config Config) *Recorder {
	defaults := DefaultConfig()
	if config.BufferSize <= 0 {
		config.BufferSize = defaults.BufferSize
	}
	if config.WorkerCount <= 0 {
		config.WorkerCount = defaults.WorkerCount
	}

	return &Recorder{
		repo:        repo,
		metrics:     metrics,
		logger:      logger,
		entries:     make(chan *models.QueryLogEntry, config.BufferSize),
		workerCount: config.WorkerCount,
		bufferSize:  config.BufferSize,
	}
}

// Start starts the background workers
func (r *Recorder) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started {
		return fmt.Errorf("query log recorder already started")
	}

	for i := 0; i < r.workerCount; i++ {
		r.wg.Add(1)
		go r.worker(i)
	}

	r.started = true
	r.logger.Info("started query log recorder",
		zap.Int("worker_count", r.workerCount),
		zap.Int("buffer_size", r.bufferSize))

	return nil
}

// Stop stops accepting entries and waits up to timeout for the
// buffered ones to be written.
func (r *Recorder) Stop(timeout time.Duration) error {
	r.mu.Lock()
	if !r.started || r.stopped {
		r.mu.Unlock()
		return ErrNotRunning
	}
	r.stopped = true
	pending := len(r.entries)
	close(r.entries)
	r.mu.Unlock()

	r.logger.Info("stopping query log recorder", zap.Int("pending_entries", pending))

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.logger.Info("query log recorder stopped gracefully")
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("query log recorder stop timeout after %v", timeout)
	}
}

// Record queues entry without blocking
func (r *Recorder) Record(entry *models.QueryLogEntry) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if !r.started || r.stopped {
		return ErrNotRunning
	}

	select {
	case r.entries <- entry:
		return nil
	default:
		r.metrics.IncQueryLogDropped()
		r.logger.Warn("query log buffer full, dropping entry",
			zap.String("request_id", entry.RequestID),
			zap.String("intent", entry.Intent))
		return ErrBufferFull
	}
}

func (r *Recorder) worker(id int) {
	defer r.wg.Done()

	for entry := range r.entries {
		if err := r.write(entry); err != nil {
			r.logger.Error("failed to write query log entry",
				zap.Int("worker_id", id),
				zap.String("request_id", entry.RequestID),
				zap.Error(err))
		}
	}
}

func (r *Recorder) write(entry *models.QueryLogEntry) error {
	ctx, cancel := context.WithTimeout(context.Background(), insertTimeout)
	defer cancel()

	entry.Query = Redact(entry.Query)
	entry.EffectiveQuery = Redact(entry.EffectiveQuery)

	err := r.repo.Insert(ctx, entry)

	r.mu.Lock()
	if err != nil {
		r.failed++
	} else {
		r.written++
	}
	r.mu.Unlock()

	return err
}

// Stats represents recorder statistics
type Stats struct {
	BufferSize     int
	PendingEntries int
	WorkerCount    int
	Written        int64
	Failed         int64
	Running        bool
}

// GetStats returns statistics about the recorder
func (r *Recorder) GetStats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return Stats{
		BufferSize:     r.bufferSize,
		PendingEntries: len(r.entries),
		WorkerCount:    r.workerCount,
		Written:        r.written,
		Failed:         r.failed,
		Running:        r.started && !r.stopped,
	}
}
