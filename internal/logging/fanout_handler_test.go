package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"
)

type failingHandler struct{ NoopHandler }

func (failingHandler) Enabled(context.Context, slog.Level) bool { return true }

func (failingHandler) Handle(context.Context, slog.Record) error { return errors.New("disk full") }

func TestNewFanoutHandlerCollapsesTrivialSets(t *testing.T) {
	if _, ok := newFanoutHandler(nil, nil).(NoopHandler); !ok {
		t.Fatal("expected noop handler when every member is nil")
	}
	inner := slog.NewTextHandler(&bytes.Buffer{}, nil)
	if got := newFanoutHandler(nil, inner); got != inner {
		t.Fatalf("expected lone handler returned as-is, got %T", got)
	}
}

func TestFanoutRespectsMemberLevels(t *testing.T) {
	var infoBuf, debugBuf bytes.Buffer
	h := newFanoutHandler(
		slog.NewTextHandler(&infoBuf, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewTextHandler(&debugBuf, &slog.HandlerOptions{Level: slog.LevelDebug}),
	)
	logger := slog.New(h).With(slog.String(FieldComponent, "sweeper"))
	logger.Debug("sweep skipped category root")
	logger.Info("sweep complete", slog.Int("admitted", 3))

	if strings.Contains(infoBuf.String(), "skipped") {
		t.Fatalf("info member received debug record: %s", infoBuf.String())
	}
	if !strings.Contains(debugBuf.String(), "skipped") || !strings.Contains(debugBuf.String(), "admitted=3") {
		t.Fatalf("debug member missing records: %s", debugBuf.String())
	}
	if !strings.Contains(infoBuf.String(), "component=sweeper") {
		t.Fatalf("expected WithAttrs to reach every member: %s", infoBuf.String())
	}
	if h.Enabled(context.Background(), slog.LevelDebug-4) {
		t.Fatal("expected fanout disabled below every member level")
	}
}

func TestFanoutKeepsDeliveringAfterMemberError(t *testing.T) {
	var buf bytes.Buffer
	h := newFanoutHandler(failingHandler{}, slog.NewTextHandler(&buf, nil))
	err := h.Handle(context.Background(), slog.NewRecord(time.Now(), slog.LevelInfo, "file placed", 0))
	if err == nil || err.Error() != "disk full" {
		t.Fatalf("expected first member error, got %v", err)
	}
	if !strings.Contains(buf.String(), "file placed") {
		t.Fatalf("expected second member to receive record: %q", buf.String())
	}
}

func TestTeeLoggerAddsSink(t *testing.T) {
	var base bytes.Buffer
	var sunk []string
	logger := TeeLogger(
		slog.New(slog.NewTextHandler(&base, nil)),
		NewSinkHandler(func(msg string, _ Severity) { sunk = append(sunk, msg) }, slog.LevelInfo),
	)
	logger.Info("import finished", slog.String(FieldFile, "show.mkv"))

	if !strings.Contains(base.String(), "import finished") {
		t.Fatalf("base handler missed record: %q", base.String())
	}
	if len(sunk) != 1 || sunk[0] != "import finished: show.mkv" {
		t.Fatalf("unexpected sink messages %v", sunk)
	}
}
