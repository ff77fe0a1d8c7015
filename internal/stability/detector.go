package stability

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"time"
)

// Result is the outcome of a stability check.
type Result int

const (
	// NotStable means the file kept changing until the timeout or cancellation.
	NotStable Result = iota
	// Stable means the size settled and the write probe succeeded.
	Stable
	// Gone means the file disappeared while being watched.
	Gone
)

func (r Result) String() string {
	switch r {
	case Stable:
		return "stable"
	case Gone:
		return "gone"
	default:
		return "not_stable"
	}
}

const (
	defaultInterval  = time.Second
	defaultTimeout   = 30 * time.Second
	defaultThreshold = 3
)

// Options configures a Detector. Zero values use the defaults.
type Options struct {
	Interval  time.Duration
	Timeout   time.Duration
	Threshold int

	// Probe overrides the write-open probe. Tests use it to simulate locks.
	Probe func(path string) error
}

// Detector polls files until their size settles.
type Detector struct {
	interval  time.Duration
	timeout   time.Duration
	threshold int
	probe     func(path string) error
}

// New constructs a Detector.
func New(opts Options) *Detector {
	if opts.Interval <= 0 {
		opts.Interval = defaultInterval
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.Threshold <= 0 {
		opts.Threshold = defaultThreshold
	}
	if opts.Probe == nil {
		opts.Probe = probeWritable
	}
	return &Detector{
		interval:  opts.Interval,
		timeout:   opts.Timeout,
		threshold: opts.Threshold,
		probe:     opts.Probe,
	}
}

// Check blocks until path is stable, disappears, the timeout elapses, or ctx
// ends.
func (d *Detector) Check(ctx context.Context, path string) Result {
	deadline := time.NewTimer(d.timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	lastSize := int64(-1)
	unchanged := 0
	for {
		info, err := os.Stat(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return Gone
			}
			unchanged = 0
		} else {
			size := info.Size()
			if size == 0 || size != lastSize {
				unchanged = 0
			} else {
				unchanged++
			}
			lastSize = size
		}

		if unchanged >= d.threshold {
			if err := d.probe(path); err == nil {
				return Stable
			} else if errors.Is(err, fs.ErrNotExist) {
				return Gone
			}
			unchanged = 0
		}

		select {
		case <-ctx.Done():
			return NotStable
		case <-deadline.C:
			return NotStable
		case <-ticker.C:
		}
	}
}

func probeWritable(path string) error {
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0)
	if err != nil {
		return err
	}
	return file.Close()
}
