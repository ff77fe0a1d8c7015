package config

const (
	defaultConfigPath             = "~/.config/mediasort/config.toml"
	defaultStateDir               = "~/.local/share/mediasort"
	defaultLogDir                 = "~/.local/share/mediasort/logs"
	defaultAPIBind                = "127.0.0.1:7488"
	defaultTVMazeBaseURL          = "https://api.tvmaze.com"
	defaultMusicBrainzBaseURL     = "https://musicbrainz.org/ws/2"
	defaultUserAgent              = "MediaSorter/1.0"
	defaultRequestTimeout         = 5
	defaultMaxAttempts            = 3
	defaultTMDBBaseURL            = "https://api.themoviedb.org/3"
	defaultTMDBLanguage           = "en-US"
	defaultAcoustIDBaseURL        = "https://api.acoustid.org/v2"
	defaultFpcalcBinary           = "fpcalc"
	defaultAcoustIDMinScore       = 0.8
	defaultWorkers                = 2
	defaultQueueCapacity          = 5000
	defaultAdmissionRecords       = 5000
	defaultDedupWindowSeconds     = 300
	defaultStabilityIntervalMilli = 1000
	defaultStabilityThreshold     = 3
	defaultStabilityTimeout       = 30
	defaultPopTimeoutMillis       = 1000
	defaultSweepIntervalSeconds   = 10
	defaultSweepMaxDepth          = 3
	defaultNotifyRequestTimeout   = 10
	defaultLogFormat              = "console"
	defaultLogLevel               = "info"
	defaultLogRetentionDays       = 30
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
			APIBind:  defaultAPIBind,
		},
		Lookup: Lookup{
			NetworkCorrection:  true,
			TVMazeBaseURL:      defaultTVMazeBaseURL,
			MusicBrainzBaseURL: defaultMusicBrainzBaseURL,
			UserAgent:          defaultUserAgent,
			RequestTimeout:     defaultRequestTimeout,
			MaxAttempts:        defaultMaxAttempts,
		},
		TMDB: TMDB{
			BaseURL:  defaultTMDBBaseURL,
			Language: defaultTMDBLanguage,
		},
		AcoustID: AcoustID{
			BaseURL:      defaultAcoustIDBaseURL,
			FpcalcBinary: defaultFpcalcBinary,
			MinScore:     defaultAcoustIDMinScore,
		},
		Ingest: Ingest{
			Workers:                 defaultWorkers,
			QueueCapacity:           defaultQueueCapacity,
			AdmissionRecords:        defaultAdmissionRecords,
			DedupWindowSeconds:      defaultDedupWindowSeconds,
			StabilityIntervalMillis: defaultStabilityIntervalMilli,
			StabilityThreshold:      defaultStabilityThreshold,
			StabilityTimeoutSeconds: defaultStabilityTimeout,
			PopTimeoutMillis:        defaultPopTimeoutMillis,
			SweepIntervalSeconds:    defaultSweepIntervalSeconds,
			SweepMaxDepth:           defaultSweepMaxDepth,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyRequestTimeout,
			Imports:        true,
			Errors:         true,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
