package organizer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"mediasort/internal/config"
	"mediasort/internal/history"
	"mediasort/internal/logging"
	"mediasort/internal/media"
	"mediasort/internal/metadata"
	"mediasort/internal/parser"
	"mediasort/internal/planner"
	"mediasort/internal/services"
	"mediasort/internal/stats"
)

// ErrIgnored marks files whose extension is never organized.
var ErrIgnored = fmt.Errorf("%w: ignored file type", services.ErrValidation)

// Resolver enriches parsed names. metadata.Resolver satisfies it.
type Resolver interface {
	ResolveTV(ctx context.Context, parsed parser.Parsed) media.TV
	ResolveMovie(ctx context.Context, title, year string) media.Movie
	ResolveMusic(ctx context.Context, path string) media.Music
}

// HistoryRecorder persists outcomes. history.Store satisfies it.
type HistoryRecorder interface {
	Record(ctx context.Context, entry history.Entry) (int64, error)
}

// Outcome describes what Organize did with one file.
type Outcome struct {
	Source      string         `json:"source"`
	Moved       bool           `json:"moved"`
	Destination string         `json:"destination,omitempty"`
	Category    media.Category `json:"category"`
	Result      media.Result   `json:"result"`
}

// Organizer moves files into the library.
type Organizer struct {
	roots    planner.Roots
	resolver Resolver
	counters *stats.Counters
	history  HistoryRecorder
	metrics  *stats.Collector
	logger   *slog.Logger
}

// Option customizes an Organizer.
type Option func(*Organizer)

// WithHistory records every outcome in h.
func WithHistory(h HistoryRecorder) Option {
	return func(o *Organizer) { o.history = h }
}

// WithMetrics reports processing durations to c.
func WithMetrics(c *stats.Collector) Option {
	return func(o *Organizer) { o.metrics = c }
}

// New constructs an Organizer for the category roots in cfg.
func New(cfg *config.Config, resolver Resolver, counters *stats.Counters, logger *slog.Logger, opts ...Option) *Organizer {
	o := &Organizer{
		roots:    planner.RootsFromConfig(cfg),
		resolver: resolver,
		counters: counters,
		logger:   logging.NewComponentLogger(logger, "organizer"),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Classify determines the kind of path and enriches it through the resolver.
func (o *Organizer) Classify(ctx context.Context, path string) media.Result {
	return classify(ctx, o.resolver, path)
}

// ClassifyName classifies a bare file name without consulting any service.
func ClassifyName(name string) media.Result {
	return classify(context.Background(), offline, filepath.Base(name))
}

// offline applies naming defaults and sanitization with no lookups wired.
var offline Resolver = metadata.NewWithDependencies(nil, nil, metadata.Dependencies{})

func classify(ctx context.Context, resolver Resolver, path string) media.Result {
	if resolver == nil {
		resolver = offline
	}
	name := filepath.Base(path)
	ext := media.Ext(name)
	switch {
	case media.IsIgnored(name):
		return media.Unclassified(name, ext)
	case media.IsMusic(name):
		return media.NewMusic(name, ext, resolver.ResolveMusic(ctx, path))
	case media.IsVideo(name):
		parsed := parser.Parse(name)
		if parsed.TVHint {
			return media.NewTV(name, ext, resolver.ResolveTV(ctx, parsed))
		}
		title, year := parser.MovieTitle(parsed.Cleaned)
		return media.NewMovie(name, ext, resolver.ResolveMovie(ctx, title, year))
	default:
		return media.Unclassified(name, ext)
	}
}

// Plan classifies path and returns where it would go, without moving it.
func (o *Organizer) Plan(ctx context.Context, path string) (media.Result, planner.Plan, error) {
	result := o.Classify(ctx, path)
	plan, err := planner.Build(result, o.roots)
	return result, plan, err
}

// Organize classifies path, moves it to its planned destination, and records
// the outcome. Ignored extensions return ErrIgnored without touching the file.
func (o *Organizer) Organize(ctx context.Context, path string) (Outcome, error) {
	started := time.Now()
	logger := logging.WithContext(ctx, o.logger)
	name := filepath.Base(path)
	outcome := Outcome{Source: path}

	if media.IsIgnored(name) {
		return outcome, ErrIgnored
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return outcome, services.Wrap(services.ErrNotFound, "organizing", "stat", "source vanished", err)
		}
		return outcome, services.Wrap(services.ErrTransient, "organizing", "stat", "inspect source", err)
	}

	result := o.Classify(ctx, path)
	outcome.Result = result
	outcome.Category = result.Category()

	plan, err := planner.Build(result, o.roots)
	if err != nil {
		o.record(ctx, outcome, history.StatusSkipped, err)
		return outcome, err
	}
	outcome.Category = plan.Category

	dst, err := planner.Place(path, plan)
	if err != nil {
		o.record(ctx, outcome, history.StatusFailed, err)
		o.metrics.ObserveFailure(services.Marker(err))
		return outcome, err
	}
	outcome.Moved = true
	outcome.Destination = dst

	o.counters.Increment(plan.Category)
	o.record(ctx, outcome, history.StatusMoved, nil)
	o.metrics.ObserveProcessing(plan.Category, time.Since(started))

	logger.Info("file organized",
		logging.String(logging.FieldFile, name),
		logging.String(logging.FieldCategory, string(plan.Category)),
		logging.String("destination", dst),
		logging.String("summary", result.Summary()),
		logging.Success(),
	)
	return outcome, nil
}

func (o *Organizer) record(ctx context.Context, outcome Outcome, status history.Status, cause error) {
	if o.history == nil {
		return
	}
	entry := history.Entry{
		Source:      outcome.Source,
		Destination: outcome.Destination,
		Category:    outcome.Category,
		Kind:        outcome.Result.Kind,
		Summary:     outcome.Result.Summary(),
		Status:      status,
		Origin:      OriginFromContext(ctx),
	}
	if cause != nil {
		entry.Error = cause.Error()
	}
	if id, ok := services.RequestIDFromContext(ctx); ok {
		entry.CorrelationID = id
	}
	if _, err := o.history.Record(context.WithoutCancel(ctx), entry); err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, o.logger), "history record failed", "history_write_failed",
			logging.String(logging.FieldPath, outcome.Source),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the state directory is writable"),
			logging.String(logging.FieldImpact, "placement succeeded but is missing from history"),
		)
	}
}
