package watcher

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"mediasort/internal/fileutil"
	"mediasort/internal/logging"
	"mediasort/internal/media"
)

// AdmitFunc offers a path to the ingestion queue and reports acceptance.
type AdmitFunc func(path string) bool

// Watcher feeds filesystem events into an AdmitFunc.
type Watcher struct {
	root     string
	excluded []string
	admit    AdmitFunc
	logger   *slog.Logger

	mu     sync.Mutex
	fs     *fsnotify.Watcher
	cancel context.CancelFunc
	wg     sync.WaitGroup
	dirs   map[string]struct{}
}

// New builds a watcher for root. Paths under any of excluded are ignored.
func New(root string, excluded []string, admit AdmitFunc, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Watcher{
		root:     filepath.Clean(root),
		excluded: excluded,
		admit:    admit,
		logger:   logging.NewComponentLogger(logger, "watcher"),
	}
}

// Start registers the tree and begins delivering events until ctx ends or
// Close is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.fs != nil {
		return errors.New("watcher already started")
	}
	if w.admit == nil {
		return errors.New("watcher admit callback not configured")
	}
	info, err := os.Stat(w.root)
	if err != nil {
		return fmt.Errorf("stat monitor root: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("monitor root %s is not a directory", w.root)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if err := fsw.Add(w.root); err != nil {
		_ = fsw.Close()
		return fmt.Errorf("watch %s: %w", w.root, err)
	}
	w.fs = fsw
	w.dirs = map[string]struct{}{w.root: {}}
	w.addTreeLocked(ctx, w.root, false)

	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.wg.Add(1)
	go w.loop(runCtx, fsw)

	w.logger.Info("watching monitor folder",
		logging.String(logging.FieldPath, w.root),
		logging.Int("directories", len(w.dirs)),
	)
	return nil
}

// Close stops event delivery and releases the inotify handles.
func (w *Watcher) Close() error {
	w.mu.Lock()
	fsw := w.fs
	cancel := w.cancel
	w.fs = nil
	w.cancel = nil
	w.mu.Unlock()
	if fsw == nil {
		return nil
	}
	cancel()
	err := fsw.Close()
	w.wg.Wait()
	return err
}

// Watched returns how many directories are registered.
func (w *Watcher) Watched() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.dirs)
}

func (w *Watcher) loop(ctx context.Context, fsw *fsnotify.Watcher) {
	defer w.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				w.handle(ctx, event.Name)
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			logging.WarnWithContext(w.logger, "filesystem watcher error", "watcher_error",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "raise fs.inotify.max_user_watches if this repeats"),
				logging.String(logging.FieldImpact, "missed files are picked up by the periodic sweep"),
			)
		}
	}
}

func (w *Watcher) handle(ctx context.Context, path string) {
	info, err := os.Stat(path)
	if err != nil {
		return
	}
	if fileutil.IsUnderAny(path, w.excluded) {
		return
	}
	if info.IsDir() {
		w.mu.Lock()
		if w.fs != nil {
			w.addDirLocked(path)
			w.addTreeLocked(ctx, path, true)
		}
		w.mu.Unlock()
		return
	}
	w.offer(path)
}

func (w *Watcher) offer(path string) {
	if media.IsTemporary(path) || fileutil.IsUnderAny(path, w.excluded) {
		return
	}
	if w.admit(path) {
		w.logger.Debug("file admitted", logging.String(logging.FieldPath, path))
	}
}

// addTreeLocked registers every directory below dir. With admit set, the
// files found along the way are offered to the queue.
func (w *Watcher) addTreeLocked(ctx context.Context, dir string, admit bool) {
	_ = fileutil.Walk(ctx, dir, -1, w.excluded, func(path string, entry fs.DirEntry) {
		if entry.IsDir() {
			w.addDirLocked(path)
			return
		}
		if admit {
			w.offer(path)
		}
	})
}

func (w *Watcher) addDirLocked(dir string) {
	if _, ok := w.dirs[dir]; ok {
		return
	}
	if err := w.fs.Add(dir); err != nil {
		logging.WarnWithContext(w.logger, "failed to watch directory", "watch_add_failed",
			logging.String(logging.FieldPath, dir),
			logging.Error(err),
			logging.String(logging.FieldImpact, "files in this folder rely on the periodic sweep"),
		)
		return
	}
	w.dirs[dir] = struct{}{}
}
