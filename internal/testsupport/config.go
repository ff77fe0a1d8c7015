package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"mediasort/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The monitor folder exists; category roots are left for placement to create.
// Polling intervals are shortened so pipeline tests settle quickly and network
// correction is off.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.MonitorDir = filepath.Join(base, "incoming")
	cfgVal.Paths.TVDir = filepath.Join(base, "library", "tv")
	cfgVal.Paths.MovieDir = filepath.Join(base, "library", "movies")
	cfgVal.Paths.MusicDir = filepath.Join(base, "library", "music")
	cfgVal.Paths.OtherDir = filepath.Join(base, "library", "other")
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.APIBind = "127.0.0.1:0"
	cfgVal.Lookup.NetworkCorrection = false
	cfgVal.TMDB.APIKey = ""
	cfgVal.AcoustID.APIKey = ""
	cfgVal.Ingest.StabilityIntervalMillis = 20
	cfgVal.Ingest.StabilityThreshold = 2
	cfgVal.Ingest.StabilityTimeoutSeconds = 5
	cfgVal.Ingest.PopTimeoutMillis = 50
	cfgVal.Ingest.SweepIntervalSeconds = 1

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	for _, opt := range opts {
		opt(builder)
	}

	for _, dir := range []string{cfgVal.Paths.MonitorDir, cfgVal.Paths.StateDir, cfgVal.Paths.LogDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}
	return builder.cfg
}

// WithoutRoot clears a category root so routing falls through to other.
func WithoutRoot(roots ...string) ConfigOption {
	return func(b *configBuilder) {
		for _, root := range roots {
			switch root {
			case "tv":
				b.cfg.Paths.TVDir = ""
			case "movies":
				b.cfg.Paths.MovieDir = ""
			case "music":
				b.cfg.Paths.MusicDir = ""
			case "other":
				b.cfg.Paths.OtherDir = ""
			}
		}
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, fpcalc is stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"fpcalc"}
		}
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		script := []byte("#!/bin/sh\nexit 0\n")
		for _, name := range names {
			target := filepath.Join(binDir, name)
			if err := os.WriteFile(target, script, 0o755); err != nil {
				b.t.Fatalf("write stub %s: %v", name, err)
			}
		}

		oldPath := os.Getenv("PATH")
		if err := os.Setenv("PATH", binDir+string(os.PathListSeparator)+oldPath); err != nil {
			b.t.Fatalf("set PATH: %v", err)
		}
		b.t.Cleanup(func() {
			_ = os.Setenv("PATH", oldPath)
		})
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}
