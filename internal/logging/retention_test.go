package logging

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestCleanupOldLogsPrunesOnlyExpiredMatches(t *testing.T) {
	dir := t.TempDir()
	old := time.Now().AddDate(0, 0, -40)
	write := func(name string, mod time.Time) string {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte("x\n"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
		if err := os.Chtimes(path, mod, mod); err != nil {
			t.Fatalf("chtimes %s: %v", name, err)
		}
		return path
	}
	expired := write("mediasort-a.log", old)
	active := write("mediasort-b.log", old)
	fresh := write("mediasort-c.log", time.Now())
	unrelated := write("notes.txt", old)

	CleanupOldLogs(NewNop(), 30, RetentionTarget{Dir: dir, Pattern: "mediasort-*.log", Exclude: []string{active}})

	if _, err := os.Stat(expired); !os.IsNotExist(err) {
		t.Fatalf("expected expired log removed, stat err=%v", err)
	}
	for _, keep := range []string{active, fresh, unrelated} {
		if _, err := os.Stat(keep); err != nil {
			t.Fatalf("expected %s kept: %v", filepath.Base(keep), err)
		}
	}
}

func TestCleanupOldLogsDisabledAtZeroDays(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mediasort-a.log")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	old := time.Now().AddDate(-1, 0, 0)
	_ = os.Chtimes(path, old, old)

	CleanupOldLogs(nil, 0, RetentionTarget{Dir: dir})
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected file kept when retention disabled: %v", err)
	}
}
