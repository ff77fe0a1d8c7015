package sweeper_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"mediasort/internal/logging"
	"mediasort/internal/queue"
	"mediasort/internal/sweeper"
)

func seed(t *testing.T, root string, rels ...string) {
	t.Helper()
	for _, rel := range rels {
		path := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
}

func TestInitialSweepIsUnbounded(t *testing.T) {
	root := t.TempDir()
	seed(t, root,
		"a.mkv",
		"d1/b.mkv",
		"d1/d2/d3/d4/deep.flac",
		"d1/readme.nfo",
		"d1/download.mkv.part",
		"sorted/tv/placed.mkv",
	)
	q := queue.New(queue.Options{Capacity: 10})
	s := sweeper.New(sweeper.Options{
		Root:     root,
		Excluded: []string{filepath.Join(root, "sorted")},
		MaxDepth: 1,
	}, q.Admit, logging.NewNop())

	if got := s.Initial(context.Background()); got != 3 {
		t.Fatalf("expected 3 admissions, got %d", got)
	}
	if q.Len() != 3 {
		t.Fatalf("expected 3 queued, got %d", q.Len())
	}
	if got := s.Initial(context.Background()); got != 0 {
		t.Fatalf("expected dedup to reject repeats, got %d", got)
	}
}

func TestSweepHonorsDepth(t *testing.T) {
	root := t.TempDir()
	seed(t, root, "top.mkv", "one/a.mkv", "one/two/b.mkv", "one/two/three/c.mkv")

	var mu sync.Mutex
	var admitted []string
	admit := func(path string) bool {
		mu.Lock()
		defer mu.Unlock()
		admitted = append(admitted, path)
		return true
	}
	s := sweeper.New(sweeper.Options{Root: root}, admit, logging.NewNop())

	if got := s.Sweep(context.Background(), 0); got != 1 {
		t.Fatalf("depth 0: expected 1 admission, got %d (%v)", got, admitted)
	}
	admitted = nil
	if got := s.Sweep(context.Background(), 2); got != 3 {
		t.Fatalf("depth 2: expected 3 admissions, got %d (%v)", got, admitted)
	}
}

func TestRunSweepsPeriodicallyUntilCancelled(t *testing.T) {
	root := t.TempDir()
	var mu sync.Mutex
	counts := map[string]int{}
	admit := func(path string) bool {
		mu.Lock()
		defer mu.Unlock()
		counts[path]++
		return true
	}
	s := sweeper.New(sweeper.Options{Root: root, Interval: 20 * time.Millisecond}, admit, logging.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	late := filepath.Join(root, "late.mkv")
	seed(t, root, "late.mkv")
	deadline := time.Now().Add(5 * time.Second)
	for {
		mu.Lock()
		n := counts[late]
		mu.Unlock()
		if n > 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("periodic sweep never admitted late file")
		}
		time.Sleep(10 * time.Millisecond)
	}
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
