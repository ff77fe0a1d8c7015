package daemonrun

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"mediasort/internal/ipc"
	"mediasort/internal/testsupport"
)

func TestRunHostsDaemon(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- Run(ctx, cfg, Options{}) }()

	var client *ipc.Client
	deadline := time.Now().Add(5 * time.Second)
	for client == nil && time.Now().Before(deadline) {
		c, err := ipc.Dial(cfg.SocketPath())
		if err == nil {
			client = c
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if client == nil {
		t.Fatal("daemon socket never became reachable")
	}
	status, err := client.Status()
	client.Close()
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if !status.Running {
		t.Fatal("expected monitoring to start automatically")
	}
	if _, err := os.Stat(cfg.PIDPath()); err != nil {
		t.Fatalf("expected pid file: %v", err)
	}
	if target, err := os.Readlink(filepath.Join(cfg.Paths.LogDir, currentLogName)); err != nil || filepath.Dir(target) != cfg.Paths.LogDir {
		t.Fatalf("expected current log pointer, got %q %v", target, err)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("Run did not exit after cancel")
	}
	if _, err := os.Stat(cfg.PIDPath()); !os.IsNotExist(err) {
		t.Fatalf("expected pid file removed, got %v", err)
	}
	if _, err := os.Stat(cfg.SocketPath()); !os.IsNotExist(err) {
		t.Fatalf("expected socket removed, got %v", err)
	}
}

func TestRunIdleWaitsForStart(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Run(ctx, cfg, Options{Idle: true}) }()
	defer func() {
		cancel()
		<-done
	}()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		client, err := ipc.Dial(cfg.SocketPath())
		if err != nil {
			time.Sleep(20 * time.Millisecond)
			continue
		}
		status, err := client.Status()
		client.Close()
		if err != nil {
			t.Fatalf("Status: %v", err)
		}
		if status.Running {
			t.Fatal("expected idle daemon")
		}
		return
	}
	t.Fatal("daemon socket never became reachable")
}

func TestWritePIDFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mediasort.pid")
	if err := writePIDFile(path); err != nil {
		t.Fatalf("writePIDFile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read pid: %v", err)
	}
	if len(data) == 0 || data[len(data)-1] != '\n' {
		t.Fatalf("unexpected pid file contents %q", data)
	}
}
