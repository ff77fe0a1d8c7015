package fileutil_test

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"mediasort/internal/fileutil"
)

func buildTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := []string{
		"top.mkv",
		"a/one.mkv",
		"a/b/two.mkv",
		"a/b/c/three.mkv",
		"library/tv/placed.mkv",
	}
	for _, rel := range files {
		path := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	return root
}

func collectFiles(t *testing.T, root string, depth int, excluded []string) []string {
	t.Helper()
	var got []string
	err := fileutil.Walk(context.Background(), root, depth, excluded, func(path string, entry fs.DirEntry) {
		if entry.IsDir() {
			return
		}
		rel, _ := filepath.Rel(root, path)
		got = append(got, filepath.ToSlash(rel))
	})
	if err != nil {
		t.Fatalf("Walk returned error: %v", err)
	}
	sort.Strings(got)
	return got
}

func TestWalkRespectsDepthAndExclusions(t *testing.T) {
	root := buildTree(t)
	excluded := []string{filepath.Join(root, "library")}

	all := collectFiles(t, root, -1, excluded)
	want := []string{"a/b/c/three.mkv", "a/b/two.mkv", "a/one.mkv", "top.mkv"}
	if len(all) != len(want) {
		t.Fatalf("unbounded walk got %v, want %v", all, want)
	}
	for i := range want {
		if all[i] != want[i] {
			t.Fatalf("unbounded walk got %v, want %v", all, want)
		}
	}

	shallow := collectFiles(t, root, 1, excluded)
	if len(shallow) != 2 || shallow[0] != "a/one.mkv" || shallow[1] != "top.mkv" {
		t.Fatalf("depth 1 walk got %v", shallow)
	}

	rootOnly := collectFiles(t, root, 0, nil)
	if len(rootOnly) != 1 || rootOnly[0] != "top.mkv" {
		t.Fatalf("depth 0 walk got %v", rootOnly)
	}
}

func TestWalkStopsOnCancel(t *testing.T) {
	root := buildTree(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls := 0
	err := fileutil.Walk(ctx, root, -1, nil, func(string, fs.DirEntry) { calls++ })
	if err == nil {
		t.Fatal("expected context error")
	}
	if calls != 0 {
		t.Fatalf("expected no visits after cancel, got %d", calls)
	}
}
