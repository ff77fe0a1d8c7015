package workflow

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"

	"mediasort/internal/logging"
	"mediasort/internal/notifications"
)

func (m *Manager) notifyFailure(ctx context.Context, logger *slog.Logger, path string, cause error) {
	if m.notifier == nil {
		return
	}
	err := m.notifier.Publish(ctx, notifications.EventPlacementFailed, notifications.Payload{
		"file":  filepath.Base(path),
		"error": cause.Error(),
	})
	if err == nil {
		return
	}
	if errors.Is(err, context.Canceled) {
		logger.Debug("daemon shutting down, could not send failure notification")
		return
	}
	logger.Debug("failure notification failed", logging.Error(err))
}
