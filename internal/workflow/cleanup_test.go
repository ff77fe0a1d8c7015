package workflow_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"mediasort/internal/workflow"
)

func TestCleanupSourceRemovesJunkAndEmptyFolder(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "Show.S01")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	for _, name := range []string{"release.nfo", "cover.JPG", "subs.srt", "link.url"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	result := workflow.CleanupSource(root, dir)
	if len(result.Errors) != 0 {
		t.Fatalf("unexpected errors %v", result.Errors)
	}
	if len(result.Removed) != 5 {
		t.Fatalf("expected four files and the folder removed, got %v", result.Removed)
	}
	if _, err := os.Stat(dir); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected folder removed, stat err=%v", err)
	}
}

func TestCleanupSourceKeepsFolderWithMedia(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "Album")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	for _, name := range []string{"notes.txt", "track02.flac"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	result := workflow.CleanupSource(root, dir)
	if len(result.Removed) != 1 || filepath.Base(result.Removed[0]) != "notes.txt" {
		t.Fatalf("unexpected removals %v", result.Removed)
	}
	if _, err := os.Stat(filepath.Join(dir, "track02.flac")); err != nil {
		t.Fatalf("media file must stay: %v", err)
	}
}

func TestCleanupSourceRefusesRootAndOutside(t *testing.T) {
	root := t.TempDir()
	junk := filepath.Join(root, "readme.txt")
	if err := os.WriteFile(junk, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if result := workflow.CleanupSource(root, root); len(result.Removed) != 0 {
		t.Fatalf("monitor root must not be cleaned, removed %v", result.Removed)
	}
	outside := t.TempDir()
	outsideJunk := filepath.Join(outside, "readme.txt")
	if err := os.WriteFile(outsideJunk, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if result := workflow.CleanupSource(root, outside); len(result.Removed) != 0 {
		t.Fatalf("outside folder must not be cleaned, removed %v", result.Removed)
	}
	for _, path := range []string{junk, outsideJunk} {
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("expected %s kept: %v", path, err)
		}
	}
}
