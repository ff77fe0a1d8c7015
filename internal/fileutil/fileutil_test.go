package fileutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"testing"
)

func TestCopyFileVerified(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.bin")
	dst := filepath.Join(dir, "dst.bin")

	content := []byte("verified copy content")
	if err := os.WriteFile(src, content, 0o640); err != nil {
		t.Fatal(err)
	}
	if err := CopyFileVerified(src, dst); err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(content) {
		t.Fatalf("content mismatch: got %q, want %q", got, content)
	}
	info, err := os.Stat(dst)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm()&0o600 != 0o600 {
		t.Fatalf("expected owner read/write preserved, got %o", info.Mode().Perm())
	}
}

func TestCopyFileVerifiedRefusesExistingDestination(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.bin")
	dst := filepath.Join(dir, "dst.bin")
	if err := os.WriteFile(src, []byte("new"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(dst, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := CopyFileVerified(src, dst); err == nil {
		t.Fatal("expected error for existing destination")
	}
	got, _ := os.ReadFile(dst)
	if string(got) != "old" {
		t.Fatalf("existing destination was modified: %q", got)
	}
}

func TestCopyFileVerifiedMissingSource(t *testing.T) {
	dir := t.TempDir()
	if err := CopyFileVerified(filepath.Join(dir, "missing"), filepath.Join(dir, "dst")); err == nil {
		t.Fatal("expected error for missing source")
	}
}

func TestReplaceWithCopyOverwritesPlaceholder(t *testing.T) {
	srcDir := t.TempDir()
	dstDir := t.TempDir()
	src := filepath.Join(srcDir, "movie.mkv")
	dst := filepath.Join(dstDir, "Movie (2010).mkv")
	if err := os.WriteFile(src, []byte("feature"), 0o640); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(dst, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	if err := ReplaceWithCopy(src, dst); err != nil {
		t.Fatalf("ReplaceWithCopy: %v", err)
	}
	got, err := os.ReadFile(dst)
	if err != nil || string(got) != "feature" {
		t.Fatalf("unexpected destination content %q err=%v", got, err)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Fatalf("expected source removed, stat err=%v", err)
	}
	entries, err := os.ReadDir(dstDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "Movie (2010).mkv" {
		t.Fatalf("expected only the destination left behind, got %v", entries)
	}
}

func TestReplaceWithCopyMissingSourceKeepsPlaceholder(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "dst.mkv")
	if err := os.WriteFile(dst, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := ReplaceWithCopy(filepath.Join(dir, "missing.mkv"), dst); err == nil {
		t.Fatal("expected error for missing source")
	}
	if _, err := os.Stat(dst); err != nil {
		t.Fatalf("placeholder must survive a failed copy: %v", err)
	}
}

func TestIsCrossDevice(t *testing.T) {
	wrapped := &os.LinkError{Op: "rename", Old: "a", New: "b", Err: syscall.EXDEV}
	if !IsCrossDevice(wrapped) {
		t.Fatal("expected EXDEV link error to be detected")
	}
	if IsCrossDevice(fmt.Errorf("other: %w", errors.New("nope"))) {
		t.Fatal("unexpected cross-device match")
	}
}

func TestIsWithin(t *testing.T) {
	cases := []struct {
		root, path string
		want       bool
	}{
		{"/media/tv", "/media/tv", true},
		{"/media/tv", "/media/tv/Show/ep.mkv", true},
		{"/media/tv", "/media/tv/../movies/x.mkv", false},
		{"/media/tv", "/media/tvshows/x.mkv", false},
		{"/media/tv", "/media", false},
		{"/media/tv/", "/media/tv/..hidden", true},
	}
	for _, tc := range cases {
		if got := IsWithin(tc.root, tc.path); got != tc.want {
			t.Errorf("IsWithin(%q, %q) = %v, want %v", tc.root, tc.path, got, tc.want)
		}
	}
	if !IsUnderAny("/in/sorted/tv/a.mkv", []string{"", "/in/sorted/tv"}) {
		t.Fatal("expected IsUnderAny match")
	}
}

func TestIsEmptyDir(t *testing.T) {
	dir := t.TempDir()
	empty, err := IsEmptyDir(dir)
	if err != nil || !empty {
		t.Fatalf("expected empty dir, got %v err=%v", empty, err)
	}
	if err := os.WriteFile(filepath.Join(dir, "f"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	empty, err = IsEmptyDir(dir)
	if err != nil || empty {
		t.Fatalf("expected non-empty dir, got %v err=%v", empty, err)
	}
}
