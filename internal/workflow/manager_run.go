package workflow

import (
	"context"
	"errors"

	"mediasort/internal/logging"
	"mediasort/internal/services"
)

// Start spawns the configured number of workers.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return errors.New("workflow already running")
	}
	if m.source == nil || m.detector == nil || m.handler == nil {
		m.mu.Unlock()
		return errors.New("workflow dependencies not configured")
	}
	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.running = true
	m.wg.Add(m.workers)
	m.mu.Unlock()

	for i := 0; i < m.workers; i++ {
		go m.runWorker(services.WithWorker(runCtx, i))
	}
	m.logger.Info("workers started", logging.Int("workers", m.workers))
	return nil
}

// Stop cancels the workers and waits for them to exit. A move already in
// progress finishes first.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	cancel := m.cancel
	m.running = false
	m.cancel = nil
	m.mu.Unlock()

	cancel()
	m.wg.Wait()
	m.logger.Info("workers stopped")
}

func (m *Manager) runWorker(ctx context.Context) {
	defer m.wg.Done()
	for {
		if ctx.Err() != nil {
			return
		}
		item, ok := m.source.Pop(ctx, m.popTimeout)
		if !ok {
			continue
		}
		m.processSafely(ctx, m.logger, item.Path)
	}
}
