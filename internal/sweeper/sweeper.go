package sweeper

import (
	"context"
	"io/fs"
	"log/slog"
	"time"

	"mediasort/internal/fileutil"
	"mediasort/internal/logging"
	"mediasort/internal/media"
)

// AdmitFunc offers a path to the ingestion queue and reports acceptance.
type AdmitFunc func(path string) bool

// Options configures a Sweeper.
type Options struct {
	Root     string
	Excluded []string
	MaxDepth int
	Interval time.Duration
}

// Sweeper walks the monitor root and admits every candidate file.
type Sweeper struct {
	opts   Options
	admit  AdmitFunc
	logger *slog.Logger
}

// New builds a Sweeper. A zero Interval defaults to ten seconds and a zero
// MaxDepth to three.
func New(opts Options, admit AdmitFunc, logger *slog.Logger) *Sweeper {
	if opts.Interval <= 0 {
		opts.Interval = 10 * time.Second
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = 3
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Sweeper{opts: opts, admit: admit, logger: logging.NewComponentLogger(logger, "sweeper")}
}

// Initial walks the entire tree once and returns how many files were admitted.
func (s *Sweeper) Initial(ctx context.Context) int {
	n := s.walk(ctx, -1)
	if n > 0 {
		s.logger.Info("initial sweep queued files", logging.Int("count", n))
	}
	return n
}

// Sweep walks to maxDepth, with the root at depth 0, and returns the number of
// admissions.
func (s *Sweeper) Sweep(ctx context.Context, maxDepth int) int {
	n := s.walk(ctx, maxDepth)
	if n > 0 {
		s.logger.Debug("sweep queued files", logging.Int("count", n))
	}
	return n
}

// Run performs the initial sweep and then sweeps every Interval until ctx
// ends.
func (s *Sweeper) Run(ctx context.Context) {
	s.Initial(ctx)
	ticker := time.NewTicker(s.opts.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(ctx, s.opts.MaxDepth)
		}
	}
}

func (s *Sweeper) walk(ctx context.Context, maxDepth int) int {
	if s.opts.Root == "" || s.admit == nil {
		return 0
	}
	admitted := 0
	err := fileutil.Walk(ctx, s.opts.Root, maxDepth, s.opts.Excluded, func(path string, entry fs.DirEntry) {
		if entry.IsDir() || media.IsTemporary(path) || media.IsIgnored(path) {
			return
		}
		if s.admit(path) {
			admitted++
		}
	})
	if err != nil {
		s.logger.Debug("sweep interrupted", logging.Error(err))
	}
	return admitted
}
