package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateLookup(); err != nil {
		return err
	}
	if err := c.validateAcoustID(); err != nil {
		return err
	}
	if err := c.validateIngest(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.StateDir == "" {
		return errors.New("paths.state_dir must be set")
	}
	if c.Paths.LogDir == "" {
		return errors.New("paths.log_dir must be set")
	}
	monitor := c.Paths.MonitorDir
	if monitor == "" {
		return nil
	}
	roots := map[string]string{
		"paths.tv_dir":    c.Paths.TVDir,
		"paths.movie_dir": c.Paths.MovieDir,
		"paths.music_dir": c.Paths.MusicDir,
		"paths.other_dir": c.Paths.OtherDir,
	}
	for name, root := range roots {
		if root == "" {
			continue
		}
		if filepath.Clean(root) == filepath.Clean(monitor) {
			return fmt.Errorf("%s must differ from paths.monitor_dir", name)
		}
		if rel, err := filepath.Rel(root, monitor); err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return fmt.Errorf("paths.monitor_dir must not live inside %s", name)
		}
	}
	return nil
}

func (c *Config) validateLookup() error {
	if c.Lookup.RequestTimeout < 0 {
		return errors.New("lookup.request_timeout must be positive")
	}
	if c.Lookup.MaxAttempts < 1 || c.Lookup.MaxAttempts > 10 {
		return errors.New("lookup.max_attempts must be between 1 and 10")
	}
	return nil
}

func (c *Config) validateAcoustID() error {
	if c.AcoustID.MinScore < 0 || c.AcoustID.MinScore > 1 {
		return errors.New("acoustid.min_score must be between 0 and 1")
	}
	return nil
}

func (c *Config) validateIngest() error {
	checks := []struct {
		name  string
		value int
	}{
		{"ingest.workers", c.Ingest.Workers},
		{"ingest.queue_capacity", c.Ingest.QueueCapacity},
		{"ingest.admission_records", c.Ingest.AdmissionRecords},
		{"ingest.dedup_window_seconds", c.Ingest.DedupWindowSeconds},
		{"ingest.stability_interval_ms", c.Ingest.StabilityIntervalMillis},
		{"ingest.stability_threshold", c.Ingest.StabilityThreshold},
		{"ingest.stability_timeout_seconds", c.Ingest.StabilityTimeoutSeconds},
		{"ingest.pop_timeout_ms", c.Ingest.PopTimeoutMillis},
		{"ingest.sweep_interval_seconds", c.Ingest.SweepIntervalSeconds},
		{"ingest.sweep_max_depth", c.Ingest.SweepMaxDepth},
	}
	for _, check := range checks {
		if check.value < 1 {
			return fmt.Errorf("%s must be positive", check.name)
		}
	}
	if c.Ingest.AdmissionRecords < c.Ingest.QueueCapacity {
		return errors.New("ingest.admission_records must be at least ingest.queue_capacity")
	}
	if c.Ingest.StabilityTimeout() < c.Ingest.StabilityInterval() {
		return errors.New("ingest.stability_timeout_seconds must be at least one polling interval")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	if c.Logging.RetentionDays < 0 {
		return errors.New("logging.retention_days must be zero or positive")
	}
	return nil
}
