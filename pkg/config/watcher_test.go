package config

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"daybook-hq/daybook/pkg/telemetry/logging"
)

func watcherLogger(t *testing.T) *logging.Logger {
	t.Helper()
	logger, err := logging.New(logging.Config{Level: "error", Format: "json", Writer: io.Discard})
	if err != nil {
		t.Fatalf("logging.New: %v", err)
	}
	return logger
}

func TestWatcher_ReloadOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("a: 1\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	w, err := NewWatcher(path, watcherLogger(t))
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}

	reloaded := make(chan struct{}, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		_ = w.Watch(ctx, func() error {
			select {
			case reloaded <- struct{}{}:
			default:
			}
			return nil
		})
	}()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(path, []byte("a: 2\n"), 0o644); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}

	select {
	case <-reloaded:
	case <-time.After(3 * time.Second):
		t.Fatal("reload callback not invoked after config change")
	}

	if err := w.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("a: 1\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	w, err := NewWatcher(path, watcherLogger(t))
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}

	reloaded := make(chan struct{}, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		_ = w.Watch(ctx, func() error {
			select {
			case reloaded <- struct{}{}:
			default:
			}
			return nil
		})
	}()

	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("b: 1\n"), 0o644); err != nil {
		t.Fatalf("write other file: %v", err)
	}

	select {
	case <-reloaded:
		t.Fatal("reload fired for an unrelated file")
	case <-time.After(500 * time.Millisecond):
	}

	if err := w.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
}
