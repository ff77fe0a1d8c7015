package workflow

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"mediasort/internal/config"
	"mediasort/internal/logging"
	"mediasort/internal/notifications"
	"mediasort/internal/organizer"
	"mediasort/internal/queue"
	"mediasort/internal/stability"
	"mediasort/internal/stats"
)

// Source yields pending paths. queue.Queue satisfies it.
type Source interface {
	Pop(ctx context.Context, timeout time.Duration) (queue.PendingPath, bool)
}

// Detector decides whether a file finished being written.
type Detector interface {
	Check(ctx context.Context, path string) stability.Result
}

// Handler organizes one stable file. organizer.Organizer satisfies it.
type Handler interface {
	Organize(ctx context.Context, path string) (organizer.Outcome, error)
}

// Manager owns the worker goroutines.
type Manager struct {
	source      Source
	detector    Detector
	handler     Handler
	notifier    notifications.Service
	metrics     *stats.Collector
	logger      *slog.Logger
	monitorRoot string
	workers     int
	popTimeout  time.Duration

	mu        sync.RWMutex
	running   bool
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	processed int
	failed    int
	lastErr   error
	lastItem  string
	lastAt    time.Time
}

// ManagerOption configures optional Manager behavior.
type ManagerOption func(*Manager)

// WithNotifier publishes placement failures through n.
func WithNotifier(n notifications.Service) ManagerOption {
	return func(m *Manager) { m.notifier = n }
}

// WithMetrics counts failures that never reach placement.
func WithMetrics(c *stats.Collector) ManagerOption {
	return func(m *Manager) { m.metrics = c }
}

// NewManager constructs a worker pool sized from cfg.Ingest.
func NewManager(cfg *config.Config, source Source, detector Detector, handler Handler, logger *slog.Logger, opts ...ManagerOption) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	m := &Manager{
		source:      source,
		detector:    detector,
		handler:     handler,
		logger:      logging.NewComponentLogger(logger, "workflow"),
		monitorRoot: cfg.Paths.MonitorDir,
		workers:     cfg.Ingest.Workers,
		popTimeout:  cfg.Ingest.PopTimeout(),
	}
	if m.workers < 1 {
		m.workers = 1
	}
	if m.popTimeout <= 0 {
		m.popTimeout = time.Second
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}
