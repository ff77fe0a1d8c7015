package daemonrun

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"mediasort/internal/config"
	"mediasort/internal/daemon"
	"mediasort/internal/deps"
	"mediasort/internal/history"
	"mediasort/internal/ipc"
	"mediasort/internal/logging"
	"mediasort/internal/notifications"
)

// APITokenEnv names the environment variable holding the HTTP API bearer token.
const APITokenEnv = "MEDIASORT_API_TOKEN"

const (
	runLogPrefix     = "mediasort-"
	currentLogName   = "mediasort.log"
	streamHubEntries = 4096
)

// Options configures daemon process runtime behavior.
type Options struct {
	// ConfigPath, when set, is re-read on every monitoring start so edits
	// apply without restarting the process.
	ConfigPath string
	// Idle keeps monitoring stopped until a start request arrives over IPC.
	Idle bool
}

// Run hosts the daemon until SIGINT or SIGTERM.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return errors.New("config is required")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	runID := time.Now().UTC().Format("20060102T150405.000Z")
	logPath := filepath.Join(cfg.Paths.LogDir, runLogPrefix+runID+".log")
	logHub := logging.NewStreamHub(streamHubEntries)
	logger, err := logging.New(logging.Options{
		Level:            cfg.Logging.Level,
		Format:           cfg.Logging.Format,
		OutputPaths:      []string{"stdout", logPath},
		ErrorOutputPaths: []string{"stderr", logPath},
		Stream:           logHub,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	if err := ensureCurrentLogPointer(cfg.Paths.LogDir, logPath); err != nil {
		fmt.Fprintf(os.Stderr, "warn: unable to update %s link: %v\n", currentLogName, err)
	}
	logging.CleanupOldLogs(logger, cfg.Logging.RetentionDays,
		logging.RetentionTarget{Dir: cfg.Paths.LogDir, Pattern: runLogPrefix + "*.log", Exclude: []string{logPath}},
	)
	logDependencySnapshot(logger, cfg)

	pidPath := cfg.PIDPath()
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	store, err := history.Open(cfg.HistoryPath())
	if err != nil {
		logging.ErrorWithContext(logger, "open history store", "history_open_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check permissions on paths.state_dir"))
		return err
	}
	defer store.Close()
	pruneHistory(signalCtx, logger, store, cfg.Logging.RetentionDays)

	daemonOpts := []daemon.Option{
		daemon.WithStreamHub(logHub),
		daemon.WithNotifier(notifications.NewService(cfg)),
	}
	if strings.TrimSpace(opts.ConfigPath) != "" {
		daemonOpts = append(daemonOpts, daemon.WithConfigLoader(configLoader(opts.ConfigPath, cfg)))
	}
	d, err := daemon.New(cfg, store, logger, daemonOpts...)
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	ipcServer, err := ipc.NewServer(signalCtx, cfg.SocketPath(), d, logger)
	if err != nil {
		return fmt.Errorf("start IPC server: %w", err)
	}
	defer ipcServer.Close()
	ipcServer.Serve()

	if apiServer := daemon.NewAPIServer(d, cfg.Paths.APIBind, os.Getenv(APITokenEnv), logger); apiServer != nil {
		if err := apiServer.Start(signalCtx); err != nil {
			logging.WarnWithContext(logger, "http api unavailable", "api_start_failed",
				logging.Error(err),
				logging.String("bind", cfg.Paths.APIBind),
				logging.String(logging.FieldImpact, "status and metrics are only reachable over the IPC socket"),
				logging.String(logging.FieldErrorHint, "free the port or change paths.api_bind"))
		} else {
			defer apiServer.Stop()
		}
	}

	if !opts.Idle {
		if err := d.Start(signalCtx); err != nil {
			logging.WarnWithContext(logger, "daemon start failed", "daemon_start_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "set paths.monitor_dir to an existing folder, then run mediasort start"),
				logging.String(logging.FieldImpact, "no files are organized until monitoring starts"))
		}
	}

	<-signalCtx.Done()
	logger.Info("mediasort daemon shutting down")
	return nil
}

func configLoader(path string, fallback *config.Config) daemon.ConfigLoader {
	return func() (*config.Config, error) {
		cfg, _, _, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		// The socket, lock, and ledger are already bound to the startup paths.
		cfg.Paths.StateDir = fallback.Paths.StateDir
		cfg.Paths.LogDir = fallback.Paths.LogDir
		return cfg, nil
	}
}

func pruneHistory(ctx context.Context, logger *slog.Logger, store *history.Store, retentionDays int) {
	if retentionDays <= 0 {
		return
	}
	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	removed, err := store.Prune(ctx, cutoff)
	if err != nil {
		logging.WarnWithContext(logger, "history prune failed", "history_prune_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "old placement records remain in the ledger"))
		return
	}
	if removed > 0 {
		logger.Info("pruned placement history",
			logging.String(logging.FieldEventType, "history_pruned"),
			logging.Int("removed", int(removed)))
	}
}

func ensureCurrentLogPointer(logDir, target string) error {
	if logDir == "" || target == "" {
		return nil
	}
	current := filepath.Join(logDir, currentLogName)
	if err := os.Remove(current); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing log pointer: %w", err)
	}
	if err := os.Symlink(target, current); err == nil {
		return nil
	}
	if err := os.Link(target, current); err != nil {
		return fmt.Errorf("link log pointer: %w", err)
	}
	return nil
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}

func logDependencySnapshot(logger *slog.Logger, cfg *config.Config) {
	attrs := []logging.Attr{
		logging.String(logging.FieldEventType, "dependency_snapshot"),
		logging.Bool("network_correction", cfg.Lookup.NetworkCorrection),
		logging.Bool("tmdb_key_present", strings.TrimSpace(cfg.TMDB.APIKey) != ""),
		logging.Bool("acoustid_key_present", strings.TrimSpace(cfg.AcoustID.APIKey) != ""),
		logging.Bool("ntfy_configured", strings.TrimSpace(cfg.Notifications.NtfyTopic) != ""),
	}
	for _, status := range deps.CheckBinaries(deps.Requirements(cfg)) {
		attrs = append(attrs,
			logging.Bool(status.Command+"_available", status.Available))
	}
	logger.Info("dependency snapshot", logging.Args(attrs...)...)
}
