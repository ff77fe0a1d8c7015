package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/prometheus/client_golang/prometheus"

	"mediasort/internal/config"
	"mediasort/internal/history"
	"mediasort/internal/logging"
	"mediasort/internal/metadata"
	"mediasort/internal/notifications"
	"mediasort/internal/organizer"
	"mediasort/internal/preflight"
	"mediasort/internal/queue"
	"mediasort/internal/stability"
	"mediasort/internal/stats"
	"mediasort/internal/sweeper"
	"mediasort/internal/watcher"
	"mediasort/internal/workflow"
)

// ErrAlreadyRunning is returned when monitoring is started twice.
var ErrAlreadyRunning = errors.New("monitoring already running")

// ConfigLoader produces a fresh configuration snapshot for each session.
type ConfigLoader func() (*config.Config, error)

// ResolverFactory builds the metadata resolver for a session.
type ResolverFactory func(cfg *config.Config, logger *slog.Logger) organizer.Resolver

// Daemon coordinates the ingestion pipeline and enforces single-instance
// monitoring.
type Daemon struct {
	cfg      *config.Config
	loader   ConfigLoader
	logger   *slog.Logger
	hub      *logging.StreamHub
	history  *history.Store
	counters *stats.Counters
	metrics  *stats.Collector
	registry *prometheus.Registry
	notifier notifications.Service
	resolver ResolverFactory

	lockPath string
	lock     *flock.Flock

	mu        sync.RWMutex
	running   bool
	session   *config.Config
	queue     *queue.Queue
	manager   *workflow.Manager
	watcher   *watcher.Watcher
	cancel    context.CancelFunc
	sweepDone chan struct{}
	startedAt time.Time
	watching  bool
}

// Option customizes a Daemon.
type Option func(*Daemon)

// WithConfigLoader replaces the loader used to snapshot config on Start.
func WithConfigLoader(loader ConfigLoader) Option {
	return func(d *Daemon) { d.loader = loader }
}

// WithLogSink tees every record at info level and above into fn as a flat
// message and severity.
func WithLogSink(fn logging.SinkFunc) Option {
	return func(d *Daemon) {
		if fn != nil {
			d.logger = logging.TeeLogger(d.logger, logging.NewSinkHandler(fn, slog.LevelInfo))
		}
	}
}

// WithStreamHub exposes recent log events through Logs.
func WithStreamHub(hub *logging.StreamHub) Option {
	return func(d *Daemon) { d.hub = hub }
}

// WithNotifier overrides the notification service built from config.
func WithNotifier(n notifications.Service) Option {
	return func(d *Daemon) { d.notifier = n }
}

// WithResolverFactory overrides how sessions build their metadata resolver.
func WithResolverFactory(f ResolverFactory) Option {
	return func(d *Daemon) { d.resolver = f }
}

// New constructs a daemon. store may be nil, in which case history is not
// recorded.
func New(cfg *config.Config, store *history.Store, logger *slog.Logger, opts ...Option) (*Daemon, error) {
	if cfg == nil {
		return nil, errors.New("daemon requires config")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	d := &Daemon{
		cfg:      cfg,
		logger:   logger,
		history:  store,
		counters: stats.NewCounters(),
		lockPath: cfg.LockPath(),
		resolver: func(cfg *config.Config, logger *slog.Logger) organizer.Resolver {
			return metadata.New(cfg, logger)
		},
	}
	d.loader = func() (*config.Config, error) { return d.cfg.Snapshot(), nil }
	for _, opt := range opts {
		opt(d)
	}
	if d.notifier == nil {
		d.notifier = notifications.NewService(cfg)
	}
	d.lock = flock.New(d.lockPath)
	d.metrics = stats.NewCollector(d.counters, queueView{d})
	d.registry = stats.NewRegistry(d.metrics)
	d.logger = logging.NewComponentLogger(d.logger, "daemon")
	return d, nil
}

// Start begins monitoring with a fresh configuration snapshot.
func (d *Daemon) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.running {
		return ErrAlreadyRunning
	}

	cfg, err := d.loader()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.Paths.MonitorDir == "" {
		return errors.New("monitor folder not configured (set paths.monitor_dir)")
	}
	info, err := os.Stat(cfg.Paths.MonitorDir)
	if err != nil {
		return fmt.Errorf("monitor folder %s: %w", cfg.Paths.MonitorDir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("monitor folder %s is not a directory", cfg.Paths.MonitorDir)
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another mediasort instance is already monitoring")
	}

	for _, failed := range preflight.Failed(preflight.RunAll(ctx, cfg)) {
		logging.WarnWithContext(d.logger, "preflight check failed", "preflight_failed",
			logging.String("check", failed.Name),
			logging.String("detail", failed.Detail),
			logging.String(logging.FieldImpact, "files routed to this destination may fail to move"),
		)
	}

	q := queue.New(queue.Options{
		Capacity:    cfg.Ingest.QueueCapacity,
		DedupWindow: cfg.Ingest.DedupWindow(),
		MaxRecords:  cfg.Ingest.AdmissionRecords,
	})
	org := d.newOrganizer(cfg)
	detector := stability.New(stability.Options{
		Interval:  cfg.Ingest.StabilityInterval(),
		Timeout:   cfg.Ingest.StabilityTimeout(),
		Threshold: cfg.Ingest.StabilityThreshold,
	})
	mgr := workflow.NewManager(cfg, q, detector, org, d.logger,
		workflow.WithNotifier(d.notifier),
		workflow.WithMetrics(d.metrics),
	)

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	if err := mgr.Start(runCtx); err != nil {
		cancel()
		_ = d.lock.Unlock()
		return fmt.Errorf("start workers: %w", err)
	}

	excluded := cfg.CategoryRoots()
	sw := sweeper.New(sweeper.Options{
		Root:     cfg.Paths.MonitorDir,
		Excluded: excluded,
		MaxDepth: cfg.Ingest.SweepMaxDepth,
		Interval: cfg.Ingest.SweepInterval(),
	}, q.Admit, d.logger)
	sweepDone := make(chan struct{})
	go func() {
		defer close(sweepDone)
		sw.Run(runCtx)
	}()

	w := watcher.New(cfg.Paths.MonitorDir, excluded, q.Admit, d.logger)
	watching := true
	if err := w.Start(runCtx); err != nil {
		watching = false
		w = nil
		logging.WarnWithContext(d.logger, "filesystem watcher unavailable; relying on periodic sweeps", "watcher_unavailable",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check inotify limits"),
			logging.String(logging.FieldImpact, "new files are picked up on the next sweep instead of immediately"),
		)
	}

	d.session = cfg
	d.queue = q
	d.manager = mgr
	d.watcher = w
	d.watching = watching
	d.cancel = cancel
	d.sweepDone = sweepDone
	d.startedAt = time.Now()
	d.running = true

	d.logger.Info("monitoring started",
		logging.String(logging.FieldPath, cfg.Paths.MonitorDir),
		logging.Int("workers", cfg.Ingest.Workers),
		logging.Bool("watcher", watching),
		logging.String("lock", d.lockPath),
	)
	d.publish(ctx, notifications.EventMonitoringStarted, notifications.Payload{"root": cfg.Paths.MonitorDir})
	return nil
}

// Stop ends monitoring. Moves already in progress finish before it returns.
func (d *Daemon) Stop() {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return
	}
	cancel := d.cancel
	w := d.watcher
	mgr := d.manager
	sweepDone := d.sweepDone
	d.running = false
	d.cancel = nil
	d.watcher = nil
	d.mu.Unlock()

	cancel()
	if w != nil {
		if err := w.Close(); err != nil {
			d.logger.Debug("watcher close failed", logging.Error(err))
		}
	}
	<-sweepDone
	mgr.Stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.logger.Info("monitoring stopped")
}

// Close stops monitoring and releases the history store.
func (d *Daemon) Close() error {
	d.Stop()
	if d.history != nil {
		return d.history.Close()
	}
	return nil
}

// Running reports whether a monitoring session is active.
func (d *Daemon) Running() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.running
}

// MetricsRegistry returns the Prometheus registry backing /metrics.
func (d *Daemon) MetricsRegistry() *prometheus.Registry {
	return d.registry
}

func (d *Daemon) newOrganizer(cfg *config.Config) *organizer.Organizer {
	opts := []organizer.Option{organizer.WithMetrics(d.metrics)}
	if d.history != nil {
		opts = append(opts, organizer.WithHistory(d.history))
	}
	return organizer.New(cfg, d.resolver(cfg, d.logger), d.counters, d.logger, opts...)
}

func (d *Daemon) publish(ctx context.Context, event notifications.Event, payload notifications.Payload) {
	if err := d.notifier.Publish(ctx, event, payload); err != nil {
		d.logger.Debug("notification failed", logging.String("event", string(event)), logging.Error(err))
	}
}

type queueView struct{ d *Daemon }

func (v queueView) Snapshot() queue.Snapshot {
	v.d.mu.RLock()
	q := v.d.queue
	v.d.mu.RUnlock()
	if q == nil {
		return queue.Snapshot{}
	}
	return q.Snapshot()
}
