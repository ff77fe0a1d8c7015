package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"mediasort/internal/media"
)

// Status records how an item left the pipeline.
type Status string

const (
	StatusMoved   Status = "moved"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// Origin records which path fed the item in.
type Origin string

const (
	OriginWatch  Origin = "watch"
	OriginImport Origin = "import"
)

// Entry is one row of the placement ledger.
type Entry struct {
	ID            int64          `json:"id"`
	Source        string         `json:"source"`
	Destination   string         `json:"destination,omitempty"`
	Category      media.Category `json:"category"`
	Kind          media.Kind     `json:"kind"`
	Summary       string         `json:"summary,omitempty"`
	Status        Status         `json:"status"`
	Error         string         `json:"error,omitempty"`
	CorrelationID string         `json:"correlation_id,omitempty"`
	Origin        Origin         `json:"origin"`
	CreatedAt     time.Time      `json:"created_at"`
}

// Store persists placements in SQLite.
type Store struct {
	db   *sql.DB
	path string
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// Open initializes or connects to the history database at path.
func Open(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("history path required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure history directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database location.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Record appends an entry and returns its ID. A zero CreatedAt is stamped now.
func (s *Store) Record(ctx context.Context, entry Entry) (int64, error) {
	if s == nil {
		return 0, nil
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	if entry.Origin == "" {
		entry.Origin = OriginWatch
	}
	if entry.Status == "" {
		return 0, errors.New("history entry requires a status")
	}
	var id int64
	err := retryOnBusy(ctx, func() error {
		res, err := s.db.ExecContext(ctx,
			`INSERT INTO placements (
                source_path, destination, category, kind, summary, status,
                error_message, correlation_id, origin, created_at
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			entry.Source,
			nullableString(entry.Destination),
			string(entry.Category),
			string(entry.Kind),
			nullableString(entry.Summary),
			string(entry.Status),
			nullableString(entry.Error),
			nullableString(entry.CorrelationID),
			string(entry.Origin),
			entry.CreatedAt.UTC().Format(time.RFC3339Nano),
		)
		if err != nil {
			return err
		}
		id, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("record placement: %w", err)
	}
	return id, nil
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if s == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source_path, destination, category, kind, summary, status,
                error_message, correlation_id, origin, created_at
         FROM placements ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Counts returns moved placements grouped by category.
func (s *Store) Counts(ctx context.Context) (map[media.Category]int, error) {
	counts := make(map[media.Category]int)
	if s == nil {
		return counts, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT category, COUNT(1) FROM placements WHERE status = ? GROUP BY category`, string(StatusMoved))
	if err != nil {
		return nil, fmt.Errorf("history counts: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var category string
		var count int
		if err := rows.Scan(&category, &count); err != nil {
			return nil, err
		}
		counts[media.Category(category)] = count
	}
	return counts, rows.Err()
}

// Prune deletes entries created before cutoff and reports how many were removed.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	if s == nil {
		return 0, nil
	}
	var removed int64
	err := retryOnBusy(ctx, func() error {
		res, err := s.db.ExecContext(ctx, `DELETE FROM placements WHERE created_at < ?`, cutoff.UTC().Format(time.RFC3339Nano))
		if err != nil {
			return err
		}
		removed, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("prune history: %w", err)
	}
	return removed, nil
}

func scanEntry(scanner interface{ Scan(dest ...any) error }) (Entry, error) {
	var (
		entry         Entry
		destination   sql.NullString
		category      string
		kind          string
		summary       sql.NullString
		status        string
		errorMessage  sql.NullString
		correlationID sql.NullString
		origin        string
		createdRaw    string
	)
	if err := scanner.Scan(
		&entry.ID,
		&entry.Source,
		&destination,
		&category,
		&kind,
		&summary,
		&status,
		&errorMessage,
		&correlationID,
		&origin,
		&createdRaw,
	); err != nil {
		return Entry{}, err
	}
	entry.Destination = destination.String
	entry.Category = media.Category(category)
	entry.Kind = media.Kind(kind)
	entry.Summary = summary.String
	entry.Status = Status(status)
	entry.Error = errorMessage.String
	entry.CorrelationID = correlationID.String
	entry.Origin = Origin(origin)
	if ts, err := time.Parse(time.RFC3339Nano, createdRaw); err == nil {
		entry.CreatedAt = ts
	}
	return entry, nil
}

func nullableString(value string) sql.NullString {
	if strings.TrimSpace(value) == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: value, Valid: true}
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}
