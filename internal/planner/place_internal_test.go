package planner

import (
	"os"
	"path/filepath"
	"syscall"
	"testing"

	"mediasort/internal/media"
)

func TestPlaceCrossDeviceKeepsReservedName(t *testing.T) {
	base := t.TempDir()
	roots := Roots{Movie: filepath.Join(base, "movies")}
	plan, err := Build(media.NewMovie("x.mkv", ".mkv", media.Movie{Title: "Heat", Year: "1995"}), roots)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	src := filepath.Join(base, "heat.mkv")
	if err := os.WriteFile(src, []byte("reel"), 0o644); err != nil {
		t.Fatal(err)
	}

	var sawPlaceholder bool
	renameFile = func(oldpath, newpath string) error {
		info, err := os.Stat(newpath)
		sawPlaceholder = err == nil && info.Size() == 0
		return &os.LinkError{Op: "rename", Old: oldpath, New: newpath, Err: syscall.EXDEV}
	}
	t.Cleanup(func() { renameFile = os.Rename })

	dst, err := Place(src, plan)
	if err != nil {
		t.Fatalf("Place: %v", err)
	}
	if !sawPlaceholder {
		t.Fatal("expected destination reserved before the move")
	}
	if dst != plan.Path {
		t.Fatalf("expected reserved name %s, got %s", plan.Path, dst)
	}
	data, err := os.ReadFile(dst)
	if err != nil || string(data) != "reel" {
		t.Fatalf("unexpected destination content %q err=%v", data, err)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Fatalf("expected source removed, stat err=%v", err)
	}
	entries, err := os.ReadDir(plan.Dir())
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected only the placed file, got %v", entries)
	}
}
