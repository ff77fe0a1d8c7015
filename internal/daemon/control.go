package daemon

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"mediasort/internal/config"
	"mediasort/internal/deps"
	"mediasort/internal/fileutil"
	"mediasort/internal/history"
	"mediasort/internal/logging"
	"mediasort/internal/media"
	"mediasort/internal/notifications"
	"mediasort/internal/organizer"
	"mediasort/internal/parser"
	"mediasort/internal/queue"
	"mediasort/internal/services"
	"mediasort/internal/stats"
	"mediasort/internal/workflow"
)

// Status represents daemon runtime information.
type Status struct {
	Running      bool                   `json:"running"`
	Watching     bool                   `json:"watching"`
	PID          int                    `json:"pid"`
	MonitorDir   string                 `json:"monitor_dir"`
	StartedAt    time.Time              `json:"started_at,omitzero"`
	Workflow     workflow.StatusSummary `json:"workflow"`
	Queue        queue.Snapshot         `json:"queue"`
	Stats        stats.Snapshot         `json:"stats"`
	Dependencies []deps.Status          `json:"dependencies"`
	HistoryPath  string                 `json:"history_path,omitempty"`
	LockFilePath string                 `json:"lock_file_path"`
}

// ImportResult summarizes a mass import.
type ImportResult struct {
	Dir     string `json:"dir"`
	Scanned int    `json:"scanned"`
	Moved   int    `json:"moved"`
	Failed  int    `json:"failed"`
}

// ParseReport is the dry-run view of one file name.
type ParseReport struct {
	Cleaned     string       `json:"cleaned"`
	TVHint      bool         `json:"tv_hint"`
	Result      media.Result `json:"result"`
	Destination string       `json:"destination,omitempty"`
	Error       string       `json:"error,omitempty"`
}

// MassImport organizes every file below dir synchronously and returns the
// number moved. Source folders are not cleaned afterwards.
func (d *Daemon) MassImport(ctx context.Context, dir string) (int, error) {
	result, err := d.Import(ctx, dir)
	return result.Moved, err
}

// Import is MassImport with the full tally.
func (d *Daemon) Import(ctx context.Context, dir string) (ImportResult, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return ImportResult{}, fmt.Errorf("%w: import folder is required", services.ErrValidation)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return ImportResult{}, fmt.Errorf("resolve import folder: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return ImportResult{}, services.Wrap(services.ErrNotFound, "import", "stat", "import folder unavailable", err)
	}
	if !info.IsDir() {
		return ImportResult{}, fmt.Errorf("%w: %s is not a directory", services.ErrValidation, abs)
	}

	cfg := d.activeConfig()
	org := d.newOrganizer(cfg)
	result := ImportResult{Dir: abs}
	logger := d.logger.With(logging.String("import_dir", abs))
	logger.Info("mass import started")

	var files []string
	walkErr := fileutil.Walk(ctx, abs, -1, cfg.CategoryRoots(), func(path string, entry fs.DirEntry) {
		if !entry.IsDir() {
			files = append(files, path)
		}
	})
	for _, path := range files {
		if ctx.Err() != nil {
			break
		}
		result.Scanned++
		itemCtx := services.WithRequestID(organizer.WithOrigin(ctx, history.OriginImport), uuid.NewString())
		outcome, err := org.Organize(itemCtx, path)
		switch {
		case err == nil && outcome.Moved:
			result.Moved++
		case err == nil, errors.Is(err, organizer.ErrIgnored), errors.Is(err, services.ErrNotFound):
		default:
			result.Failed++
			logging.WarnWithContext(logging.WithContext(itemCtx, logger), "import item failed", "import_item_failed",
				logging.String(logging.FieldFile, filepath.Base(path)),
				logging.Error(err),
				logging.String(logging.FieldImpact, "file left in the import folder"),
			)
		}
	}

	logger.Info("mass import finished",
		logging.Int("moved", result.Moved),
		logging.Int("failed", result.Failed),
		logging.Int("scanned", result.Scanned),
		logging.Success(),
	)
	d.publish(context.WithoutCancel(ctx), notifications.EventImportCompleted, notifications.Payload{
		"moved":  result.Moved,
		"failed": result.Failed,
		"dir":    abs,
	})
	if walkErr == nil {
		walkErr = ctx.Err()
	}
	return result, walkErr
}

// TestParse classifies filename without moving anything.
func (d *Daemon) TestParse(ctx context.Context, filename string) media.Result {
	return d.Parse(ctx, filename).Result
}

// Parse reports how filename would be cleaned, classified, and placed.
func (d *Daemon) Parse(ctx context.Context, filename string) ParseReport {
	name := filepath.Base(strings.TrimSpace(filename))
	parsed := parser.Parse(name)
	report := ParseReport{Cleaned: parsed.Cleaned, TVHint: parsed.TVHint}

	org := d.newOrganizer(d.activeConfig())
	result, plan, err := org.Plan(ctx, name)
	report.Result = result
	if err != nil {
		report.Error = err.Error()
		return report
	}
	report.Destination = plan.Path
	return report
}

// Stats returns placement counts since the daemon started.
func (d *Daemon) Stats() stats.Snapshot {
	return d.counters.Snapshot()
}

// Status returns the current daemon status.
func (d *Daemon) Status(_ context.Context) Status {
	d.mu.RLock()
	status := Status{
		Running:      d.running,
		Watching:     d.running && d.watching,
		PID:          os.Getpid(),
		LockFilePath: d.lockPath,
	}
	cfg := d.cfg
	if d.running {
		status.StartedAt = d.startedAt
		cfg = d.session
	}
	mgr := d.manager
	d.mu.RUnlock()

	status.MonitorDir = cfg.Paths.MonitorDir
	if mgr != nil {
		status.Workflow = mgr.Status()
	}
	status.Queue = queueView{d}.Snapshot()
	status.Stats = d.counters.Snapshot()
	status.Dependencies = deps.CheckBinaries(deps.Requirements(cfg))
	if d.history != nil {
		status.HistoryPath = d.history.Path()
	}
	return status
}

// History returns the most recent placement records, newest first.
func (d *Daemon) History(ctx context.Context, limit int) ([]history.Entry, error) {
	if d.history == nil {
		return nil, errors.New("history store unavailable")
	}
	if limit <= 0 {
		limit = 50
	}
	return d.history.Recent(ctx, limit)
}

// Logs returns buffered log events after since. With follow set it waits for
// new events until ctx ends.
func (d *Daemon) Logs(ctx context.Context, since uint64, limit int, follow bool) ([]logging.LogEvent, uint64, error) {
	if d.hub == nil {
		return nil, 0, nil
	}
	if limit <= 0 {
		limit = 200
	}
	if since == 0 && !follow {
		events, next := d.hub.Tail(limit)
		return events, next, nil
	}
	return d.hub.Fetch(ctx, since, limit, follow)
}

// TestNotification sends a test notification using the current configuration.
func (d *Daemon) TestNotification(ctx context.Context) (bool, string, error) {
	if strings.TrimSpace(d.cfg.Notifications.NtfyTopic) == "" {
		return false, "ntfy topic not configured", nil
	}
	if err := d.notifier.Publish(ctx, notifications.EventTest, nil); err != nil {
		return false, "failed to send notification", err
	}
	return true, "test notification sent", nil
}

func (d *Daemon) activeConfig() *config.Config {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.running && d.session != nil {
		return d.session
	}
	return d.cfg
}
