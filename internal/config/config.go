package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains the monitored root, category roots, and runtime directories.
type Paths struct {
	MonitorDir string `toml:"monitor_dir"`
	TVDir      string `toml:"tv_dir"`
	MovieDir   string `toml:"movie_dir"`
	MusicDir   string `toml:"music_dir"`
	OtherDir   string `toml:"other_dir"`
	StateDir   string `toml:"state_dir"`
	LogDir     string `toml:"log_dir"`
	APIBind    string `toml:"api_bind"`
}

// Lookup controls the free metadata services and shared HTTP behaviour.
type Lookup struct {
	NetworkCorrection  bool   `toml:"network_correction"`
	TVMazeBaseURL      string `toml:"tvmaze_base_url"`
	MusicBrainzBaseURL string `toml:"musicbrainz_base_url"`
	UserAgent          string `toml:"user_agent"`
	RequestTimeout     int    `toml:"request_timeout"`
	MaxAttempts        int    `toml:"max_attempts"`
}

// TMDB contains configuration for The Movie Database API.
type TMDB struct {
	APIKey   string `toml:"api_key"`
	BaseURL  string `toml:"base_url"`
	Language string `toml:"language"`
}

// AcoustID contains configuration for acoustic fingerprint lookups.
type AcoustID struct {
	APIKey       string  `toml:"api_key"`
	BaseURL      string  `toml:"base_url"`
	FpcalcBinary string  `toml:"fpcalc_binary"`
	MinScore     float64 `toml:"min_score"`
}

// Ingest contains the pipeline sizing and timing knobs.
type Ingest struct {
	Workers                 int `toml:"workers"`
	QueueCapacity           int `toml:"queue_capacity"`
	AdmissionRecords        int `toml:"admission_records"`
	DedupWindowSeconds      int `toml:"dedup_window_seconds"`
	StabilityIntervalMillis int `toml:"stability_interval_ms"`
	StabilityThreshold      int `toml:"stability_threshold"`
	StabilityTimeoutSeconds int `toml:"stability_timeout_seconds"`
	PopTimeoutMillis        int `toml:"pop_timeout_ms"`
	SweepIntervalSeconds    int `toml:"sweep_interval_seconds"`
	SweepMaxDepth           int `toml:"sweep_max_depth"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	Imports        bool   `toml:"imports"`
	Errors         bool   `toml:"errors"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for mediasort.
//
// Configuration sections by subsystem:
//   - Paths: monitored root, category roots, state/log directories, API bind
//   - Lookup: free title correction services and HTTP retry policy
//   - TMDB: richer movie/show/episode lookups (optional)
//   - AcoustID: fingerprint lookups for untagged music (optional)
//   - Ingest: queue, worker, stability, and sweep tuning
//   - Notifications: ntfy push notification settings
//   - Logging: log format, level, and retention
type Config struct {
	Paths         Paths         `toml:"paths"`
	Lookup        Lookup        `toml:"lookup"`
	TMDB          TMDB          `toml:"tmdb"`
	AcoustID      AcoustID      `toml:"acoustid"`
	Ingest        Ingest        `toml:"ingest"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("mediasort.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// Snapshot returns a detached copy of the configuration. A running pipeline
// works from a snapshot so edits to the source only apply on the next start.
func (c *Config) Snapshot() *Config {
	if c == nil {
		return nil
	}
	clone := *c
	return &clone
}

// EnsureDirectories creates the directories the daemon writes to.
// Category roots are created on a best-effort basis so the daemon can run
// while external storage is temporarily unavailable.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StateDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	for _, dir := range c.CategoryRoots() {
		_ = os.MkdirAll(dir, 0o755)
	}
	return nil
}

// CategoryRoots returns every configured destination root.
func (c *Config) CategoryRoots() []string {
	roots := make([]string, 0, 4)
	for _, dir := range []string{c.Paths.TVDir, c.Paths.MovieDir, c.Paths.MusicDir, c.Paths.OtherDir} {
		if strings.TrimSpace(dir) != "" {
			roots = append(roots, dir)
		}
	}
	return roots
}

// HistoryPath returns the placement ledger database location.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.Paths.StateDir, "history.db")
}

// SocketPath returns the IPC socket location.
func (c *Config) SocketPath() string {
	return filepath.Join(c.Paths.StateDir, "mediasort.sock")
}

// LockPath returns the single-instance lock file location.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.StateDir, "mediasort.lock")
}

// PIDPath returns the daemon PID file location.
func (c *Config) PIDPath() string {
	return filepath.Join(c.Paths.StateDir, "mediasort.pid")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// Encode renders the configuration as TOML.
func (c *Config) Encode() ([]byte, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return data, nil
}
