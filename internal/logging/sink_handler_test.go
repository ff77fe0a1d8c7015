package logging

import (
	"errors"
	"log/slog"
	"sync"
	"testing"
)

type sinkCapture struct {
	mu      sync.Mutex
	entries []sinkEntry
}

type sinkEntry struct {
	message  string
	severity Severity
}

func (c *sinkCapture) record(message string, severity Severity) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, sinkEntry{message: message, severity: severity})
}

func TestSinkHandlerMapsLevelsToSeverity(t *testing.T) {
	capture := &sinkCapture{}
	logger := slog.New(NewSinkHandler(capture.record, slog.LevelDebug))

	logger.Debug("debug line")
	logger.Info("info line")
	logger.Warn("warn line")
	logger.Error("error line", Error(errors.New("boom")))

	want := []Severity{SeverityInfo, SeverityInfo, SeverityWarning, SeverityError}
	if len(capture.entries) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(capture.entries))
	}
	for i, sev := range want {
		if capture.entries[i].severity != sev {
			t.Fatalf("entry %d: expected %s, got %s", i, sev, capture.entries[i].severity)
		}
	}
}

func TestSinkHandlerSuccessOverrideAndFileSuffix(t *testing.T) {
	capture := &sinkCapture{}
	logger := slog.New(NewSinkHandler(capture.record, nil))

	logger.Info("moved", String(FieldFile, "Show - S01E01.mkv"), Success())

	if len(capture.entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(capture.entries))
	}
	got := capture.entries[0]
	if got.severity != SeveritySuccess {
		t.Fatalf("expected success severity, got %s", got.severity)
	}
	if got.message != "moved: Show - S01E01.mkv" {
		t.Fatalf("unexpected message %q", got.message)
	}
}

func TestSinkHandlerRespectsLevelAndWithAttrs(t *testing.T) {
	capture := &sinkCapture{}
	logger := slog.New(NewSinkHandler(capture.record, slog.LevelInfo)).With(String(FieldFile, "a.mp3"))

	logger.Debug("hidden")
	logger.Info("queued")

	if len(capture.entries) != 1 {
		t.Fatalf("expected debug to be filtered, got %d entries", len(capture.entries))
	}
	if capture.entries[0].message != "queued: a.mp3" {
		t.Fatalf("expected file from WithAttrs, got %q", capture.entries[0].message)
	}
}

func TestNewSinkHandlerNilFuncIsNoop(t *testing.T) {
	if _, ok := NewSinkHandler(nil, nil).(NoopHandler); !ok {
		t.Fatal("expected NoopHandler for nil sink")
	}
}
