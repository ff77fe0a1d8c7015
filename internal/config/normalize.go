package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeLookup()
	c.normalizeTMDB()
	c.normalizeAcoustID()
	c.normalizeIngest()
	c.normalizeLogging()
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyRequestTimeout
	}
	return nil
}

func (c *Config) normalizePaths() error {
	fields := []struct {
		name  string
		value *string
	}{
		{"paths.monitor_dir", &c.Paths.MonitorDir},
		{"paths.tv_dir", &c.Paths.TVDir},
		{"paths.movie_dir", &c.Paths.MovieDir},
		{"paths.music_dir", &c.Paths.MusicDir},
		{"paths.other_dir", &c.Paths.OtherDir},
		{"paths.state_dir", &c.Paths.StateDir},
		{"paths.log_dir", &c.Paths.LogDir},
	}
	for _, field := range fields {
		trimmed := strings.TrimSpace(*field.value)
		expanded, err := expandPath(trimmed)
		if err != nil {
			return fmt.Errorf("%s: %w", field.name, err)
		}
		*field.value = expanded
	}
	if c.Paths.StateDir == "" {
		expanded, err := expandPath(defaultStateDir)
		if err != nil {
			return fmt.Errorf("paths.state_dir: %w", err)
		}
		c.Paths.StateDir = expanded
	}
	if c.Paths.LogDir == "" {
		expanded, err := expandPath(defaultLogDir)
		if err != nil {
			return fmt.Errorf("paths.log_dir: %w", err)
		}
		c.Paths.LogDir = expanded
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	return nil
}

func (c *Config) normalizeLookup() {
	c.Lookup.TVMazeBaseURL = strings.TrimRight(strings.TrimSpace(c.Lookup.TVMazeBaseURL), "/")
	if c.Lookup.TVMazeBaseURL == "" {
		c.Lookup.TVMazeBaseURL = defaultTVMazeBaseURL
	}
	c.Lookup.MusicBrainzBaseURL = strings.TrimRight(strings.TrimSpace(c.Lookup.MusicBrainzBaseURL), "/")
	if c.Lookup.MusicBrainzBaseURL == "" {
		c.Lookup.MusicBrainzBaseURL = defaultMusicBrainzBaseURL
	}
	c.Lookup.UserAgent = strings.TrimSpace(c.Lookup.UserAgent)
	if c.Lookup.UserAgent == "" {
		c.Lookup.UserAgent = defaultUserAgent
	}
	if c.Lookup.RequestTimeout <= 0 {
		c.Lookup.RequestTimeout = defaultRequestTimeout
	}
	if c.Lookup.MaxAttempts <= 0 {
		c.Lookup.MaxAttempts = defaultMaxAttempts
	}
}

func (c *Config) normalizeTMDB() {
	c.TMDB.APIKey = strings.TrimSpace(c.TMDB.APIKey)
	if c.TMDB.APIKey == "" {
		if value, ok := os.LookupEnv("TMDB_API_KEY"); ok {
			c.TMDB.APIKey = strings.TrimSpace(value)
		}
	}
	c.TMDB.BaseURL = strings.TrimRight(strings.TrimSpace(c.TMDB.BaseURL), "/")
	if c.TMDB.BaseURL == "" {
		c.TMDB.BaseURL = defaultTMDBBaseURL
	}
	c.TMDB.Language = strings.TrimSpace(c.TMDB.Language)
	if c.TMDB.Language == "" {
		c.TMDB.Language = defaultTMDBLanguage
	}
}

func (c *Config) normalizeAcoustID() {
	c.AcoustID.APIKey = strings.TrimSpace(c.AcoustID.APIKey)
	if c.AcoustID.APIKey == "" {
		if value, ok := os.LookupEnv("ACOUSTID_API_KEY"); ok {
			c.AcoustID.APIKey = strings.TrimSpace(value)
		}
	}
	c.AcoustID.BaseURL = strings.TrimRight(strings.TrimSpace(c.AcoustID.BaseURL), "/")
	if c.AcoustID.BaseURL == "" {
		c.AcoustID.BaseURL = defaultAcoustIDBaseURL
	}
	c.AcoustID.FpcalcBinary = strings.TrimSpace(c.AcoustID.FpcalcBinary)
	if c.AcoustID.FpcalcBinary == "" {
		c.AcoustID.FpcalcBinary = defaultFpcalcBinary
	}
	if c.AcoustID.MinScore == 0 {
		c.AcoustID.MinScore = defaultAcoustIDMinScore
	}
}

func (c *Config) normalizeIngest() {
	if c.Ingest.Workers == 0 {
		c.Ingest.Workers = defaultWorkers
	}
	if c.Ingest.QueueCapacity == 0 {
		c.Ingest.QueueCapacity = defaultQueueCapacity
	}
	if c.Ingest.AdmissionRecords == 0 {
		c.Ingest.AdmissionRecords = defaultAdmissionRecords
	}
	if c.Ingest.DedupWindowSeconds == 0 {
		c.Ingest.DedupWindowSeconds = defaultDedupWindowSeconds
	}
	if c.Ingest.StabilityIntervalMillis == 0 {
		c.Ingest.StabilityIntervalMillis = defaultStabilityIntervalMilli
	}
	if c.Ingest.StabilityThreshold == 0 {
		c.Ingest.StabilityThreshold = defaultStabilityThreshold
	}
	if c.Ingest.StabilityTimeoutSeconds == 0 {
		c.Ingest.StabilityTimeoutSeconds = defaultStabilityTimeout
	}
	if c.Ingest.PopTimeoutMillis == 0 {
		c.Ingest.PopTimeoutMillis = defaultPopTimeoutMillis
	}
	if c.Ingest.SweepIntervalSeconds == 0 {
		c.Ingest.SweepIntervalSeconds = defaultSweepIntervalSeconds
	}
	if c.Ingest.SweepMaxDepth == 0 {
		c.Ingest.SweepMaxDepth = defaultSweepMaxDepth
	}
}

func (c *Config) normalizeLogging() {
	format := strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if format == "" {
		format = defaultLogFormat
	}
	c.Logging.Format = format

	level := strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if level == "" {
		level = defaultLogLevel
	}
	c.Logging.Level = level
}

// DedupWindow returns the admission dedup window as a duration.
func (i Ingest) DedupWindow() time.Duration {
	return time.Duration(i.DedupWindowSeconds) * time.Second
}

// StabilityInterval returns the size polling interval.
func (i Ingest) StabilityInterval() time.Duration {
	return time.Duration(i.StabilityIntervalMillis) * time.Millisecond
}

// StabilityTimeout returns the maximum time spent waiting for a write to settle.
func (i Ingest) StabilityTimeout() time.Duration {
	return time.Duration(i.StabilityTimeoutSeconds) * time.Second
}

// PopTimeout returns how long a worker blocks on the queue before rechecking shutdown.
func (i Ingest) PopTimeout() time.Duration {
	return time.Duration(i.PopTimeoutMillis) * time.Millisecond
}

// SweepInterval returns the period between reconciliation sweeps.
func (i Ingest) SweepInterval() time.Duration {
	return time.Duration(i.SweepIntervalSeconds) * time.Second
}

// Timeout returns the per-request timeout for lookup services.
func (l Lookup) Timeout() time.Duration {
	return time.Duration(l.RequestTimeout) * time.Second
}
