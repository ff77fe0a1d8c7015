package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime/debug"

	"github.com/google/uuid"

	"mediasort/internal/logging"
	"mediasort/internal/organizer"
	"mediasort/internal/planner"
	"mediasort/internal/services"
	"mediasort/internal/stability"
)

// processSafely handles one path and converts a panic into a logged failure.
func (m *Manager) processSafely(ctx context.Context, logger *slog.Logger, path string) {
	ctx = services.WithRequestID(ctx, uuid.NewString())
	itemLogger := logging.WithContext(ctx, logger).With(logging.String(logging.FieldPath, path))
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("panic while processing %s: %v", filepath.Base(path), r)
			logging.ErrorWithContext(itemLogger, "worker recovered from panic", "worker_panic",
				logging.Error(err),
				logging.String("stack", string(debug.Stack())),
				logging.String(logging.FieldErrorHint, "report this file name with the log excerpt"),
			)
			m.recordFailure(path, err)
			m.metrics.ObserveFailure("panic")
		}
	}()
	m.process(ctx, itemLogger, path)
}

func (m *Manager) process(ctx context.Context, logger *slog.Logger, path string) {
	switch result := m.detector.Check(ctx, path); result {
	case stability.Stable:
	case stability.Gone:
		logger.Debug("file vanished before it settled")
		return
	default:
		logger.Debug("file not stable; a later sweep will retry", logging.String("result", result.String()))
		return
	}

	// The move must not be torn by shutdown.
	workCtx := context.WithoutCancel(ctx)
	outcome, err := m.handler.Organize(workCtx, path)
	if err != nil {
		m.handleFailure(workCtx, logger, path, err)
		return
	}
	m.recordSuccess(path)
	if outcome.Moved {
		m.cleanup(logger, outcome.Source)
	}
}

func (m *Manager) handleFailure(ctx context.Context, logger *slog.Logger, path string, err error) {
	switch {
	case errors.Is(err, organizer.ErrIgnored):
		logger.Debug("ignored file type")
		return
	case errors.Is(err, services.ErrNotFound):
		logger.Debug("file vanished before placement")
		return
	case errors.Is(err, planner.ErrNoDestination):
		logging.WarnWithContext(logger, "no destination configured; file skipped", "placement_skipped",
			logging.String(logging.FieldFile, filepath.Base(path)),
			logging.String(logging.FieldErrorHint, "set the category root or paths.other_dir in the config"),
			logging.String(logging.FieldImpact, "file stays in the monitor folder"),
		)
		return
	}

	m.recordFailure(path, err)
	attrs := []logging.Attr{
		logging.String(logging.FieldFile, filepath.Base(path)),
		logging.Error(err),
		logging.String("error_class", services.Marker(err)),
		logging.Alert("placement_failure"),
	}
	if services.IsRetryable(err) {
		attrs = append(attrs,
			logging.String(logging.FieldErrorHint, "the file stays in place and is retried on the next sweep"),
		)
	} else {
		attrs = append(attrs,
			logging.String(logging.FieldErrorHint, "check category roots in the config"),
		)
	}
	logging.ErrorWithContext(logger, "failed to organize file", "placement_failed", attrs...)
	m.notifyFailure(ctx, logger, path, err)
}

func (m *Manager) cleanup(logger *slog.Logger, source string) {
	if m.monitorRoot == "" {
		return
	}
	result := CleanupSource(m.monitorRoot, filepath.Dir(source))
	if len(result.Removed) > 0 {
		logger.Debug("source folder cleaned", logging.Int("removed", len(result.Removed)))
	}
	for _, msg := range result.Errors {
		logging.WarnWithContext(logger, "source cleanup incomplete", "cleanup_failed",
			logging.String("detail", msg),
			logging.String(logging.FieldImpact, "leftover files stay in the monitor folder"),
		)
	}
}
