package queue

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/simplelru"
)

const (
	defaultCapacity    = 5000
	defaultDedupWindow = 300 * time.Second
	defaultMaxRecords  = 5000
)

// PendingPath is a file admitted for processing.
type PendingPath struct {
	Path       string    `json:"path"`
	AdmittedAt time.Time `json:"admitted_at"`
}

// Options configures a Queue. Zero values fall back to the defaults.
type Options struct {
	Capacity    int
	DedupWindow time.Duration
	MaxRecords  int
	Now         func() time.Time
}

// Snapshot reports queue occupancy and admission counters.
type Snapshot struct {
	Buffered   int    `json:"buffered"`
	Capacity   int    `json:"capacity"`
	Records    int    `json:"records"`
	Admitted   uint64 `json:"admitted"`
	Duplicates uint64 `json:"duplicates"`
	Dropped    uint64 `json:"dropped"`
}

// Queue is a bounded FIFO of paths with time-windowed deduplication. Any
// number of producers may call Admit; any number of consumers may call Pop.
type Queue struct {
	mu         sync.Mutex
	records    *simplelru.LRU[string, time.Time]
	items      chan PendingPath
	window     time.Duration
	maxRecords int
	trimTo     int
	now        func() time.Time

	admitted   atomic.Uint64
	duplicates atomic.Uint64
	dropped    atomic.Uint64
}

// New constructs a Queue.
func New(opts Options) *Queue {
	if opts.Capacity <= 0 {
		opts.Capacity = defaultCapacity
	}
	if opts.DedupWindow <= 0 {
		opts.DedupWindow = defaultDedupWindow
	}
	// The record must outlive every buffered path or a sweep could queue it twice.
	if opts.MaxRecords <= 0 {
		opts.MaxRecords = max(defaultMaxRecords, opts.Capacity)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	// One slot of headroom so an insert can overshoot before the batch trim.
	records, err := simplelru.NewLRU[string, time.Time](opts.MaxRecords+1, nil)
	if err != nil {
		panic(err) // unreachable: size is always positive
	}
	trimTo := opts.MaxRecords * 9 / 10
	if trimTo < 1 {
		trimTo = 1
	}
	return &Queue{
		records:    records,
		items:      make(chan PendingPath, opts.Capacity),
		window:     opts.DedupWindow,
		maxRecords: opts.MaxRecords,
		trimTo:     trimTo,
		now:        opts.Now,
	}
}

// Admit enqueues path unless it was admitted within the dedup window or the
// buffer is full. It never blocks.
func (q *Queue) Admit(path string) bool {
	key := normalize(path)
	if key == "" {
		return false
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	now := q.now()
	if last, ok := q.records.Peek(key); ok && now.Sub(last) < q.window {
		q.duplicates.Add(1)
		return false
	}

	select {
	case q.items <- PendingPath{Path: key, AdmittedAt: now}:
	default:
		q.dropped.Add(1)
		return false
	}

	q.records.Add(key, now)
	if q.records.Len() > q.maxRecords {
		for q.records.Len() > q.trimTo {
			q.records.RemoveOldest()
		}
	}
	q.admitted.Add(1)
	return true
}

// Pop removes the oldest pending path, waiting at most timeout. It returns
// false on timeout or when ctx ends.
func (q *Queue) Pop(ctx context.Context, timeout time.Duration) (PendingPath, bool) {
	select {
	case item := <-q.items:
		return item, true
	default:
	}
	if timeout <= 0 {
		return PendingPath{}, false
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case item := <-q.items:
		return item, true
	case <-timer.C:
		return PendingPath{}, false
	case <-ctx.Done():
		return PendingPath{}, false
	}
}

// Len returns the number of buffered paths.
func (q *Queue) Len() int {
	return len(q.items)
}

// Records returns the size of the admission record.
func (q *Queue) Records() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.records.Len()
}

// Snapshot returns current occupancy and counters.
func (q *Queue) Snapshot() Snapshot {
	return Snapshot{
		Buffered:   q.Len(),
		Capacity:   cap(q.items),
		Records:    q.Records(),
		Admitted:   q.admitted.Load(),
		Duplicates: q.duplicates.Load(),
		Dropped:    q.dropped.Load(),
	}
}

// normalize keeps surrounding whitespace, which is legal in file names.
func normalize(path string) string {
	if strings.TrimSpace(path) == "" {
		return ""
	}
	return filepath.Clean(path)
}
