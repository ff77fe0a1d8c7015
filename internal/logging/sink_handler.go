package logging

import (
	"context"
	"log/slog"
	"strings"
)

// Severity is the coarse classification handed to log sinks.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// SinkFunc receives a flattened log line. Front ends that only understand a
// message and a severity subscribe through this callback.
type SinkFunc func(message string, severity Severity)

type sinkHandler struct {
	fn    SinkFunc
	level slog.Leveler
	attrs []slog.Attr
}

// NewSinkHandler adapts slog records to a SinkFunc. Records at or above level
// are forwarded; a nil level forwards INFO and above.
func NewSinkHandler(fn SinkFunc, level slog.Leveler) slog.Handler {
	if fn == nil {
		return NoopHandler{}
	}
	if level == nil {
		level = slog.LevelInfo
	}
	return &sinkHandler{fn: fn, level: level}
}

func (h *sinkHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *sinkHandler) Handle(_ context.Context, record slog.Record) error {
	severity := severityForLevel(record.Level)
	var file string
	visit := func(attr slog.Attr) {
		switch attr.Key {
		case FieldSeverity:
			if value := strings.TrimSpace(attr.Value.String()); value != "" {
				severity = Severity(value)
			}
		case FieldFile:
			file = strings.TrimSpace(attr.Value.String())
		}
	}
	for _, attr := range h.attrs {
		visit(attr)
	}
	record.Attrs(func(attr slog.Attr) bool {
		visit(attr)
		return true
	})

	message := strings.TrimSpace(record.Message)
	if file != "" {
		message += ": " + file
	}
	h.fn(message, severity)
	return nil
}

func (h *sinkHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	next = append(next, h.attrs...)
	next = append(next, attrs...)
	return &sinkHandler{fn: h.fn, level: h.level, attrs: next}
}

// Groups only affect key prefixes, which sinks do not render.
func (h *sinkHandler) WithGroup(string) slog.Handler {
	return h
}

func severityForLevel(level slog.Level) Severity {
	switch {
	case level >= slog.LevelError:
		return SeverityError
	case level >= slog.LevelWarn:
		return SeverityWarning
	default:
		return SeverityInfo
	}
}
