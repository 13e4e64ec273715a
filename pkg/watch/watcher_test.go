package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func TestWatch_TriggersOnRewrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.csv")
	if err := os.WriteFile(path, []byte("ystar,x1\n1,0.5\n"), 0o644); err != nil {
		t.Fatalf("write dataset: %v", err)
	}

	w, err := NewDatasetWatcher(path, 50*time.Millisecond)
	if err != nil {
		t.Fatalf("NewDatasetWatcher failed: %v", err)
	}
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int64
	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Watch(ctx, func() error {
			calls.Add(1)
			return nil
		})
	}()

	// Give the watcher time to register before mutating the file.
	time.Sleep(100 * time.Millisecond)

	// An atomic replace, the common editor and pipeline write pattern.
	tmp := filepath.Join(dir, ".data.csv.tmp")
	if err := os.WriteFile(tmp, []byte("ystar,x1\n2,0.7\n"), 0o644); err != nil {
		t.Fatalf("write temp: %v", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		t.Fatalf("rename: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for calls.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("refit callback never fired")
		case <-time.After(20 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Watch did not return after cancellation")
	}
}

func TestWatch_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.csv")
	if err := os.WriteFile(path, []byte("ystar,x1\n1,0.5\n"), 0o644); err != nil {
		t.Fatalf("write dataset: %v", err)
	}

	w, err := NewDatasetWatcher(path, 50*time.Millisecond)
	if err != nil {
		t.Fatalf("NewDatasetWatcher failed: %v", err)
	}
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int64
	go w.Watch(ctx, func() error {
		calls.Add(1)
		return nil
	})

	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(dir, "other.csv"), []byte("x\n"), 0o644); err != nil {
		t.Fatalf("write unrelated file: %v", err)
	}

	time.Sleep(300 * time.Millisecond)
	if n := calls.Load(); n != 0 {
		t.Errorf("unrelated file triggered %d refits", n)
	}
}

func TestWatch_AlreadyRunning(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.csv")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("write dataset: %v", err)
	}

	w, err := NewDatasetWatcher(path, 0)
	if err != nil {
		t.Fatalf("NewDatasetWatcher failed: %v", err)
	}
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	started := make(chan struct{})
	go func() {
		close(started)
		w.Watch(ctx, func() error { return nil })
	}()
	<-started
	time.Sleep(50 * time.Millisecond)

	if err := w.Watch(ctx, func() error { return nil }); err == nil {
		t.Fatal("second Watch call should fail while the first is running")
	}
}
