package daemon_test

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"mediasort/internal/config"
	"mediasort/internal/daemon"
	"mediasort/internal/history"
	"mediasort/internal/logging"
	"mediasort/internal/media"
	"mediasort/internal/metadata"
	"mediasort/internal/notifications"
	"mediasort/internal/organizer"
	"mediasort/internal/testsupport"
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []notifications.Event
	last   notifications.Payload
}

func (n *recordingNotifier) Publish(_ context.Context, event notifications.Event, payload notifications.Payload) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
	n.last = payload
	return nil
}

func (n *recordingNotifier) has(event notifications.Event) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, e := range n.events {
		if e == event {
			return true
		}
	}
	return false
}

func offlineResolver(cfg *config.Config, logger *slog.Logger) organizer.Resolver {
	return metadata.NewWithDependencies(cfg, logger, metadata.Dependencies{})
}

func newDaemon(t *testing.T, cfg *config.Config, opts ...daemon.Option) (*daemon.Daemon, *history.Store) {
	t.Helper()
	store := testsupport.MustOpenHistory(t, cfg)
	opts = append([]daemon.Option{daemon.WithResolverFactory(offlineResolver)}, opts...)
	d, err := daemon.New(cfg, store, logging.NewNop(), opts...)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(d.Stop)
	return d, store
}

func waitForFile(t *testing.T, path string) {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := os.Stat(path); err == nil {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", path)
}

func TestDaemonStartStopLifecycle(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	notifier := &recordingNotifier{}
	d, _ := newDaemon(t, cfg, daemon.WithNotifier(notifier))

	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if !d.Running() {
		t.Fatal("expected daemon running")
	}
	if err := d.Start(context.Background()); !errors.Is(err, daemon.ErrAlreadyRunning) {
		t.Fatalf("expected ErrAlreadyRunning, got %v", err)
	}
	status := d.Status(context.Background())
	if !status.Running || !status.Watching || status.MonitorDir != cfg.Paths.MonitorDir || status.Workflow.Workers != cfg.Ingest.Workers {
		t.Fatalf("unexpected status %+v", status)
	}
	if !notifier.has(notifications.EventMonitoringStarted) {
		t.Fatal("expected monitoring started notification")
	}

	d.Stop()
	if d.Running() {
		t.Fatal("expected daemon stopped")
	}
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("restart returned error: %v", err)
	}
}

func TestDaemonStartRequiresMonitorFolder(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Paths.MonitorDir = ""
	d, _ := newDaemon(t, cfg)
	if err := d.Start(context.Background()); err == nil {
		t.Fatal("expected error for unset monitor folder")
	}

	cfg2 := testsupport.NewConfig(t)
	cfg2.Paths.MonitorDir = filepath.Join(testsupport.BaseDir(cfg2), "missing")
	d2, _ := newDaemon(t, cfg2)
	if err := d2.Start(context.Background()); err == nil {
		t.Fatal("expected error for missing monitor folder")
	}
	if d2.Running() {
		t.Fatal("daemon must not run after failed start")
	}
}

func TestDaemonStartUsesFreshConfigSnapshot(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	other := testsupport.NewConfig(t)
	d, _ := newDaemon(t, cfg, daemon.WithConfigLoader(func() (*config.Config, error) {
		return other.Snapshot(), nil
	}))
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if got := d.Status(context.Background()).MonitorDir; got != other.Paths.MonitorDir {
		t.Fatalf("expected loader snapshot monitor dir %q, got %q", other.Paths.MonitorDir, got)
	}
}

func TestDaemonOrganizesDroppedFiles(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	d, store := newDaemon(t, cfg)
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}

	testsupport.WriteFile(t, filepath.Join(cfg.Paths.MonitorDir, "Show.Name.S01E02.720p.HDTV.x264.mkv"), 2048)
	testsupport.WriteFile(t, filepath.Join(cfg.Paths.MonitorDir, "Release", "The.Movie.2014.1080p.BluRay.mp4"), 4096)
	testsupport.WriteFile(t, filepath.Join(cfg.Paths.MonitorDir, "Release", "release.nfo"), 10)

	episode := filepath.Join(cfg.Paths.TVDir, "Show Name", "Show Name - S01E02.mkv")
	movie := filepath.Join(cfg.Paths.MovieDir, "The Movie (2014).mp4")
	waitForFile(t, episode)
	waitForFile(t, movie)

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := os.Stat(filepath.Join(cfg.Paths.MonitorDir, "Release")); errors.Is(err, os.ErrNotExist) {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if _, err := os.Stat(filepath.Join(cfg.Paths.MonitorDir, "Release")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected release folder cleaned up, stat err=%v", err)
	}

	snap := d.Stats()
	if snap.TV != 1 || snap.Movies != 1 {
		t.Fatalf("unexpected stats %+v", snap)
	}
	d.Stop()

	entries, err := store.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	moved := 0
	for _, e := range entries {
		if e.Status == history.StatusMoved && e.Origin == history.OriginWatch && e.CorrelationID != "" {
			moved++
		}
	}
	if moved != 2 {
		t.Fatalf("expected two watch placements in history, got %+v", entries)
	}
}

func TestMassImportMovesMediaAndLeavesJunk(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	notifier := &recordingNotifier{}
	d, _ := newDaemon(t, cfg, daemon.WithNotifier(notifier))

	importDir := filepath.Join(testsupport.BaseDir(cfg), "import")
	for i := 1; i <= 4; i++ {
		testsupport.WriteFile(t, filepath.Join(importDir, "Series", fmt.Sprintf("Series.Name.S01E%02d.mkv", i)), 64)
	}
	for i := 1; i <= 3; i++ {
		testsupport.WriteFile(t, filepath.Join(importDir, "films", fmt.Sprintf("Film.Number.%d.%d.mp4", i, 2000+i)), 64)
	}
	for i := 1; i <= 3; i++ {
		testsupport.WriteFile(t, filepath.Join(importDir, "album", fmt.Sprintf("track%02d.mp3", i)), 64)
	}
	junk := []string{"series.nfo", "cover.jpg", "readme.txt", "shortcut.url", "thumbs.db"}
	for _, name := range junk {
		testsupport.WriteFile(t, filepath.Join(importDir, name), 8)
	}

	moved, err := d.MassImport(context.Background(), importDir)
	if err != nil {
		t.Fatalf("MassImport returned error: %v", err)
	}
	if moved != 10 {
		t.Fatalf("expected 10 moves, got %d", moved)
	}
	for _, name := range junk {
		if _, err := os.Stat(filepath.Join(importDir, name)); err != nil {
			t.Fatalf("junk %s should stay in place: %v", name, err)
		}
	}
	snap := d.Stats()
	if snap.TV != 4 || snap.Movies != 3 || snap.Music != 3 {
		t.Fatalf("unexpected stats %+v", snap)
	}
	if !notifier.has(notifications.EventImportCompleted) {
		t.Fatal("expected import completed notification")
	}

	entries, err := d.History(context.Background(), 20)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(entries) != 10 || entries[0].Origin != history.OriginImport {
		t.Fatalf("expected 10 import entries, got %d (%+v)", len(entries), entries[0])
	}
}

func TestMassImportRejectsMissingDir(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	d, _ := newDaemon(t, cfg)
	if _, err := d.MassImport(context.Background(), filepath.Join(testsupport.BaseDir(cfg), "nope")); err == nil {
		t.Fatal("expected error for missing import dir")
	}
}

func TestParseIsDryRun(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	d, _ := newDaemon(t, cfg)

	report := d.Parse(context.Background(), "Show.Name.S03E04.1080p.WEB-DL.mkv")
	if !report.TVHint || report.Result.Kind != media.KindTV {
		t.Fatalf("expected TV classification, got %+v", report)
	}
	if report.Cleaned != "Show Name S03E04" {
		t.Fatalf("unexpected cleaned name %q", report.Cleaned)
	}
	want := filepath.Join(cfg.Paths.TVDir, "Show Name", "Show Name - S03E04.mkv")
	if report.Destination != want {
		t.Fatalf("destination %q, want %q", report.Destination, want)
	}
	if _, err := os.Stat(cfg.Paths.TVDir); !errors.Is(err, os.ErrNotExist) {
		t.Fatal("dry run must not create directories")
	}

	if got := d.TestParse(context.Background(), "Film.2012.mp4"); got.Kind != media.KindMovie || got.Movie.Year != "2012" {
		t.Fatalf("unexpected TestParse result %+v", got)
	}
}

func TestWithLogSinkReceivesMessages(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	var mu sync.Mutex
	var messages []string
	sink := func(message string, severity logging.Severity) {
		mu.Lock()
		defer mu.Unlock()
		messages = append(messages, string(severity)+":"+message)
	}
	d, _ := newDaemon(t, cfg, daemon.WithLogSink(sink))
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	d.Stop()

	mu.Lock()
	defer mu.Unlock()
	found := false
	for _, m := range messages {
		if m == "info:monitoring started" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected monitoring started in sink, got %v", messages)
	}
}
