package workflow

import "time"

// StatusSummary represents lightweight worker pool diagnostics.
type StatusSummary struct {
	Running   bool      `json:"running"`
	Workers   int       `json:"workers"`
	Processed int       `json:"processed"`
	Failed    int       `json:"failed"`
	LastError string    `json:"last_error,omitempty"`
	LastItem  string    `json:"last_item,omitempty"`
	LastAt    time.Time `json:"last_at,omitzero"`
}

// Status returns the latest worker pool information.
func (m *Manager) Status() StatusSummary {
	m.mu.RLock()
	defer m.mu.RUnlock()
	summary := StatusSummary{
		Running:   m.running,
		Workers:   m.workers,
		Processed: m.processed,
		Failed:    m.failed,
		LastItem:  m.lastItem,
		LastAt:    m.lastAt,
	}
	if m.lastErr != nil {
		summary.LastError = m.lastErr.Error()
	}
	return summary
}

func (m *Manager) recordSuccess(path string) {
	m.mu.Lock()
	m.processed++
	m.lastItem = path
	m.lastAt = time.Now()
	m.mu.Unlock()
}

func (m *Manager) recordFailure(path string, err error) {
	m.mu.Lock()
	m.failed++
	m.lastErr = err
	m.lastItem = path
	m.lastAt = time.Now()
	m.mu.Unlock()
}
