package logging

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// LogEvent is one log record as kept by the StreamHub and served to
// `mediasort logs`, IPC LogTail and GET /api/logs.
type LogEvent struct {
	Sequence      uint64            `json:"seq"`
	Timestamp     time.Time         `json:"ts"`
	Level         string            `json:"level"`
	Message       string            `json:"msg"`
	Component     string            `json:"component,omitempty"`
	Stage         string            `json:"stage,omitempty"`
	Worker        int               `json:"worker,omitempty"`
	CorrelationID string            `json:"correlation_id,omitempty"`
	File          string            `json:"file,omitempty"`
	Fields        map[string]string `json:"fields,omitempty"`
}

const defaultStreamCapacity = 512

// StreamHub is a fixed-size ring of recent events. Sequence numbers start at
// 1 and never repeat, so readers resume with the last value they saw.
type StreamHub struct {
	mu      sync.Mutex
	ring    []LogEvent
	start   int
	size    int
	lastSeq uint64
	changed chan struct{}
}

// NewStreamHub constructs a hub retaining at most capacity events.
func NewStreamHub(capacity int) *StreamHub {
	if capacity <= 0 {
		capacity = defaultStreamCapacity
	}
	return &StreamHub{
		ring:    make([]LogEvent, capacity),
		changed: make(chan struct{}),
	}
}

// Publish stamps evt with the next sequence number and stores it, evicting
// the oldest event when the ring is full.
func (h *StreamHub) Publish(evt LogEvent) {
	if h == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	h.lastSeq++
	evt.Sequence = h.lastSeq
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now().UTC()
	}
	capacity := len(h.ring)
	if h.size < capacity {
		h.ring[(h.start+h.size)%capacity] = evt
		h.size++
	} else {
		h.ring[h.start] = evt
		h.start = (h.start + 1) % capacity
	}

	close(h.changed)
	h.changed = make(chan struct{})
}

// Fetch returns up to limit events with sequence greater than since, plus the
// latest sequence number. With wait set it blocks until an event arrives or
// ctx ends, in which case the context error is returned.
func (h *StreamHub) Fetch(ctx context.Context, since uint64, limit int, wait bool) ([]LogEvent, uint64, error) {
	if h == nil {
		return nil, since, nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	for {
		h.mu.Lock()
		events := h.afterLocked(since, limit)
		last := h.lastSeq
		changed := h.changed
		h.mu.Unlock()

		if len(events) > 0 || !wait {
			return events, last, nil
		}
		select {
		case <-ctx.Done():
			return nil, last, ctx.Err()
		case <-changed:
		}
	}
}

// Tail returns the newest limit events without blocking. A limit <= 0 returns
// everything buffered.
func (h *StreamHub) Tail(limit int) ([]LogEvent, uint64) {
	if h == nil {
		return nil, 0
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if limit <= 0 || limit > h.size {
		limit = h.size
	}
	out := make([]LogEvent, 0, limit)
	for i := h.size - limit; i < h.size; i++ {
		out = append(out, h.at(i))
	}
	return out, h.lastSeq
}

// FirstSequence reports the oldest sequence number still buffered.
func (h *StreamHub) FirstSequence() uint64 {
	if h == nil {
		return 0
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.size == 0 {
		return h.lastSeq
	}
	return h.at(0).Sequence
}

func (h *StreamHub) at(i int) LogEvent {
	return h.ring[(h.start+i)%len(h.ring)]
}

func (h *StreamHub) afterLocked(since uint64, limit int) []LogEvent {
	if limit <= 0 || limit > len(h.ring) {
		limit = len(h.ring)
	}
	var out []LogEvent
	for i := 0; i < h.size && len(out) < limit; i++ {
		if evt := h.at(i); evt.Sequence > since {
			out = append(out, evt)
		}
	}
	return out
}

// streamHandler publishes every record to the hub before delegating.
type streamHandler struct {
	next   slog.Handler
	hub    *StreamHub
	preset []slog.Attr
}

func newStreamHandler(next slog.Handler, hub *StreamHub) slog.Handler {
	if hub == nil || next == nil {
		return next
	}
	return &streamHandler{next: next, hub: hub}
}

func (h *streamHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *streamHandler) Handle(ctx context.Context, record slog.Record) error {
	h.hub.Publish(toEvent(record, h.preset))
	return h.next.Handle(ctx, record.Clone())
}

func (h *streamHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &streamHandler{
		next:   h.next.WithAttrs(attrs),
		hub:    h.hub,
		preset: append(append([]slog.Attr(nil), h.preset...), attrs...),
	}
}

func (h *streamHandler) WithGroup(name string) slog.Handler {
	return &streamHandler{next: h.next.WithGroup(name), hub: h.hub}
}

// toEvent applies preset attrs first so call-site values win.
func toEvent(record slog.Record, preset []slog.Attr) LogEvent {
	event := LogEvent{
		Timestamp: record.Time,
		Level:     strings.ToUpper(record.Level.String()),
		Message:   strings.TrimSpace(record.Message),
	}
	apply := func(attr slog.Attr) bool {
		key := strings.TrimSpace(attr.Key)
		value := attr.Value.Resolve()
		switch key {
		case "":
		case FieldStage:
			event.Stage = plainValue(value)
		case FieldWorker:
			if value.Kind() == slog.KindInt64 {
				event.Worker = int(value.Int64())
			}
		case FieldCorrelationID:
			event.CorrelationID = plainValue(value)
		case FieldComponent:
			event.Component = plainValue(value)
		case FieldFile:
			event.File = plainValue(value)
		default:
			if event.Fields == nil {
				event.Fields = make(map[string]string)
			}
			event.Fields[key] = plainValue(value)
		}
		return true
	}
	for _, attr := range preset {
		apply(attr)
	}
	record.Attrs(apply)
	return event
}
