package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"mediasort/internal/config"
)

func TestLoadDefaultConfigUsesEnvKeysAndExpandsPaths(t *testing.T) {
	t.Setenv("TMDB_API_KEY", "tmdb-key")
	t.Setenv("ACOUSTID_API_KEY", "acoustid-key")
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantState := filepath.Join(tempHome, ".local", "share", "mediasort")
	if cfg.Paths.StateDir != wantState {
		t.Fatalf("unexpected state dir: got %q want %q", cfg.Paths.StateDir, wantState)
	}
	if cfg.Paths.LogDir != filepath.Join(wantState, "logs") {
		t.Fatalf("unexpected log dir: %q", cfg.Paths.LogDir)
	}
	if cfg.Paths.MonitorDir != "" {
		t.Fatalf("expected monitor dir unset by default, got %q", cfg.Paths.MonitorDir)
	}
	if cfg.TMDB.APIKey != "tmdb-key" {
		t.Fatalf("expected TMDB key from env, got %q", cfg.TMDB.APIKey)
	}
	if cfg.AcoustID.APIKey != "acoustid-key" {
		t.Fatalf("expected AcoustID key from env, got %q", cfg.AcoustID.APIKey)
	}
	if !cfg.Lookup.NetworkCorrection {
		t.Fatal("expected network correction enabled by default")
	}
	if cfg.Ingest.Workers != 2 || cfg.Ingest.QueueCapacity != 5000 || cfg.Ingest.DedupWindowSeconds != 300 {
		t.Fatalf("unexpected ingest defaults: %+v", cfg.Ingest)
	}
	if cfg.Ingest.SweepMaxDepth != 3 || cfg.Ingest.StabilityThreshold != 3 {
		t.Fatalf("unexpected sweep/stability defaults: %+v", cfg.Ingest)
	}
}

func TestLoadCustomPathOverridesValues(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("TMDB_API_KEY", "")

	configPath := filepath.Join(t.TempDir(), "config.toml")
	content := `
[paths]
monitor_dir = "~/incoming"
tv_dir = "~/media/tv"
movie_dir = "~/media/movies"

[lookup]
network_correction = false

[ingest]
workers = 4
sweep_max_depth = 5

[logging]
format = "JSON"
level = "DEBUG"
`
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to exist")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: %q", resolved)
	}
	if cfg.Paths.MonitorDir != filepath.Join(tempHome, "incoming") {
		t.Fatalf("unexpected monitor dir: %q", cfg.Paths.MonitorDir)
	}
	if cfg.Paths.TVDir != filepath.Join(tempHome, "media", "tv") {
		t.Fatalf("unexpected tv dir: %q", cfg.Paths.TVDir)
	}
	if cfg.Lookup.NetworkCorrection {
		t.Fatal("expected network correction disabled")
	}
	if cfg.Ingest.Workers != 4 || cfg.Ingest.SweepMaxDepth != 5 {
		t.Fatalf("unexpected ingest values: %+v", cfg.Ingest)
	}
	if cfg.Ingest.QueueCapacity != 5000 {
		t.Fatalf("expected untouched defaults preserved, got capacity %d", cfg.Ingest.QueueCapacity)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("expected normalized logging values, got %+v", cfg.Logging)
	}
	roots := cfg.CategoryRoots()
	if len(roots) != 2 {
		t.Fatalf("expected two category roots, got %v", roots)
	}
}

func TestValidateRejectsMonitorInsideCategoryRoot(t *testing.T) {
	cfg := config.Default()
	base := t.TempDir()
	cfg.Paths.StateDir = filepath.Join(base, "state")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.TVDir = filepath.Join(base, "media")
	cfg.Paths.MonitorDir = filepath.Join(base, "media", "incoming")

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "paths.tv_dir") {
		t.Fatalf("expected error to name tv_dir, got %v", err)
	}
}

func TestValidateAllowsCategoryRootInsideMonitor(t *testing.T) {
	cfg := config.Default()
	base := t.TempDir()
	cfg.Paths.StateDir = filepath.Join(base, "state")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.MonitorDir = filepath.Join(base, "downloads")
	cfg.Paths.MovieDir = filepath.Join(base, "downloads", "sorted", "movies")

	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected nested category root to be accepted, got %v", err)
	}
}

func TestValidateRejectsBadIngestValues(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.StateDir = t.TempDir()
	cfg.Paths.LogDir = t.TempDir()
	cfg.Ingest.Workers = -1

	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "ingest.workers") {
		t.Fatalf("expected ingest.workers error, got %v", err)
	}
}

func TestValidateRequiresRecordForEveryQueuedPath(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.StateDir = t.TempDir()
	cfg.Paths.LogDir = t.TempDir()
	if cfg.Ingest.AdmissionRecords < cfg.Ingest.QueueCapacity {
		t.Fatalf("default admission_records %d below queue_capacity %d", cfg.Ingest.AdmissionRecords, cfg.Ingest.QueueCapacity)
	}
	cfg.Ingest.AdmissionRecords = cfg.Ingest.QueueCapacity - 1

	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "ingest.admission_records") {
		t.Fatalf("expected ingest.admission_records error, got %v", err)
	}
}

func TestSnapshotIsDetached(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.TVDir = "/media/tv"
	snap := cfg.Snapshot()
	cfg.Paths.TVDir = "/elsewhere"
	if snap.Paths.TVDir != "/media/tv" {
		t.Fatalf("snapshot changed with source: %q", snap.Paths.TVDir)
	}
}

func TestCreateSampleProducesLoadableConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	target := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(target); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	var decoded map[string]any
	if err := toml.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("sample config is not valid TOML: %v", err)
	}

	cfg, _, exists, err := config.Load(target)
	if err != nil {
		t.Fatalf("Load sample returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected sample to exist")
	}
	if cfg.Paths.MonitorDir == "" || cfg.Paths.MusicDir == "" {
		t.Fatalf("expected sample paths populated, got %+v", cfg.Paths)
	}
}
