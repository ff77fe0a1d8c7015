package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mediasort/internal/testsupport"
)

func TestStatusWithRunningDaemon(t *testing.T) {
	env := setupCLITestEnv(t)
	if err := env.daemon.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	out, _, err := runCLI(t, []string{"status"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "== Daemon ==")
	requireContains(t, out, "[OK] Monitoring")
	requireContains(t, out, "== Checks ==")
	requireContains(t, out, "== Session ==")
	requireContains(t, out, "total")
}

func TestStatusOffline(t *testing.T) {
	_, configPath := newCLIConfig(t)
	socket := shortSocketPath(t)

	out, _, err := runCLI(t, []string{"status"}, socket, configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "Not running")
	if strings.Contains(out, "== Session ==") {
		t.Fatalf("offline status should not render session stats:\n%s", out)
	}
}

func TestStopWhenNotRunning(t *testing.T) {
	_, configPath := newCLIConfig(t)
	out, _, err := runCLI(t, []string{"stop"}, shortSocketPath(t), configPath)
	if err != nil {
		t.Fatalf("stop: %v", err)
	}
	requireContains(t, out, "Daemon is not running")
}

func TestParseCommand(t *testing.T) {
	cfg, configPath := newCLIConfig(t)
	out, _, err := runCLI(t, []string{"parse", "Show.Name.S02E05.720p.HDTV.mkv"}, shortSocketPath(t), configPath)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	requireContains(t, out, "Show Name")
	requireContains(t, out, "S02E05")
	requireContains(t, out, cfg.Paths.TVDir)
}

func TestImportThroughDaemon(t *testing.T) {
	env := setupCLITestEnv(t)
	dir := filepath.Join(testsupport.BaseDir(env.cfg), "drop")
	testsupport.WriteFile(t, filepath.Join(dir, "Show.Name.S01E01.mkv"), 16)
	testsupport.WriteFile(t, filepath.Join(dir, "Some.Film.2010.mp4"), 16)

	out, _, err := runCLI(t, []string{"import", dir}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	requireContains(t, out, "Moved 2 files")
	if got := env.daemon.Stats().Total(); got != 2 {
		t.Fatalf("expected daemon counters to see 2 moves, got %d", got)
	}

	out, _, err = runCLI(t, []string{"history"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "Some.Film.2010.mp4")
	requireContains(t, out, "moved")
}

func TestImportInProcessWithoutDaemon(t *testing.T) {
	cfg, configPath := newCLIConfig(t)
	socket := shortSocketPath(t)
	dir := filepath.Join(testsupport.BaseDir(cfg), "drop")
	testsupport.WriteFile(t, filepath.Join(dir, "Some.Film.2010.mp4"), 16)

	out, _, err := runCLI(t, []string{"import", dir}, socket, configPath)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	requireContains(t, out, "Moved 1 files")
	if _, err := os.Stat(filepath.Join(cfg.Paths.MovieDir, "Some Film (2010).mp4")); err != nil {
		t.Fatalf("expected movie placed: %v", err)
	}

	out, _, err = runCLI(t, []string{"history", "--json"}, socket, configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, `"origin": "import"`)
}

func TestLogsCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	if err := env.daemon.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	out, _, err := runCLI(t, []string{"logs", "-n", "20"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	requireContains(t, out, "monitoring started")
}

func TestLogsFallsBackToLogFile(t *testing.T) {
	cfg, configPath := newCLIConfig(t)
	logPath := filepath.Join(cfg.Paths.LogDir, "mediasort.log")
	if err := os.WriteFile(logPath, []byte("one\ntwo\nthree\n"), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}
	out, _, err := runCLI(t, []string{"logs", "-n", "2"}, shortSocketPath(t), configPath)
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	if out != "two\nthree\n" {
		t.Fatalf("unexpected log output %q", out)
	}
}

func TestTestNotifyRequiresDaemon(t *testing.T) {
	_, configPath := newCLIConfig(t)
	_, _, err := runCLI(t, []string{"test-notify"}, shortSocketPath(t), configPath)
	if err == nil || !strings.Contains(err.Error(), "mediasort start") {
		t.Fatalf("expected dial hint, got %v", err)
	}
}

func TestTestNotifyWithoutTopic(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, []string{"test-notify"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("test-notify: %v", err)
	}
	requireContains(t, out, "ntfy topic not configured")
}

func TestSocketPathFallsBackWhenConfigIsBroken(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	broken := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(broken, []byte("[paths\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	socketFlag, configFlag := "", broken
	ctx := newCommandContext(&socketFlag, &configFlag)

	want := filepath.Join(home, ".local", "share", "mediasort", "mediasort.sock")
	if got := ctx.socketPath(); got != want {
		t.Fatalf("expected default socket %q, got %q", want, got)
	}

	socketFlag = "/tmp/explicit.sock"
	if got := ctx.socketPath(); got != socketFlag {
		t.Fatalf("expected --socket to win, got %q", got)
	}
}
