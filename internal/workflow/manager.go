package workflow

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"sortline/internal/config"
	"sortline/internal/counters"
	"sortline/internal/journal"
	"sortline/internal/logging"
	"sortline/internal/queue"
	"sortline/internal/stage"
	"sortline/internal/timeline"
)

// Recorder receives the outcome of every item that leaves the line.
type Recorder interface {
	Record(ctx context.Context, entry journal.Entry) (journal.Entry, error)
}

// Manager coordinates queue processing using registered stage handlers.
type Manager struct {
	cfg      *config.Config
	clock    timeline.Clock
	queue    *queue.Queue
	logger   *slog.Logger
	counters *counters.Store
	journal  Recorder
	observer func(queue.Item)

	stages []pipelineStage

	// owned by the scheduler goroutine
	isProcessing bool
	runCtx       context.Context
	droppedAt    map[int64]time.Duration

	mu        sync.RWMutex
	state     State
	runs      int
	completed int
	failed    int
	lastErr   error
	lastItem  *queue.Item
	pending   []queue.Item
	health    map[string]stage.Health
}

// ManagerOption configures optional Manager behavior.
type ManagerOption func(*Manager)

// WithCounters exposes counter values in Status.
func WithCounters(store *counters.Store) ManagerOption {
	return func(m *Manager) { m.counters = store }
}

// WithJournal records every finished item.
func WithJournal(rec Recorder) ManagerOption {
	return func(m *Manager) { m.journal = rec }
}

// WithItemObserver registers a callback invoked when an item is sorted or
// fails. It runs on the scheduler goroutine.
func WithItemObserver(fn func(queue.Item)) ManagerOption {
	return func(m *Manager) { m.observer = fn }
}

// NewManager constructs a workflow manager over q. Stages must be registered
// with ConfigureStages before the first drop.
func NewManager(cfg *config.Config, clock timeline.Clock, q *queue.Queue, logger *slog.Logger, opts ...ManagerOption) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	if cfg == nil {
		def := config.Default()
		cfg = &def
	}
	m := &Manager{
		cfg:       cfg,
		clock:     clock,
		queue:     q,
		logger:    logging.NewComponentLogger(logger, "workflow-runner"),
		droppedAt: make(map[int64]time.Duration),
		state:     StateIdle,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Processing reports the processing flag.
func (m *Manager) Processing() bool { return m.isProcessing }

// State returns the current runner state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

func (m *Manager) setState(state State) {
	m.mu.Lock()
	m.state = state
	m.mu.Unlock()
}
