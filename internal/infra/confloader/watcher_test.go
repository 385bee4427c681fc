package confloader

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewWatcher(t *testing.T) {
	logger := quietLogger()
	w, err := NewWatcher(WithWatcherLogger(logger), WithDebounce(time.Second))
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w.Stop()

	if w.logger != logger {
		t.Error("WithWatcherLogger() option not applied")
	}
	if w.debounce != time.Second {
		t.Errorf("debounce = %v", w.debounce)
	}
}

func TestWatcher_Watch_NonexistentDir(t *testing.T) {
	w, err := NewWatcher(WithWatcherLogger(quietLogger()))
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w.Stop()

	if err := w.Watch("/nonexistent/path/pagegate.yaml"); err == nil {
		t.Error("Watch() expected error for nonexistent directory")
	}
}

func TestWatcher_OnChange_MultipleCallbacks(t *testing.T) {
	w, err := NewWatcher()
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w.Stop()

	var count atomic.Int32
	for i := 0; i < 3; i++ {
		w.OnChange(func(string) { count.Add(1) })
	}
	w.notifyCallbacks("/test/path")

	if got := count.Load(); got != 3 {
		t.Errorf("callbacks run = %d, want 3", got)
	}
}

func TestWatcher_ConcurrentCallbacks(t *testing.T) {
	w, err := NewWatcher()
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w.Stop()

	var count atomic.Int32
	w.OnChange(func(string) { count.Add(1) })

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.notifyCallbacks("/test/path")
		}()
	}
	wg.Wait()

	if got := count.Load(); got != 100 {
		t.Errorf("count = %d, want 100", got)
	}
}

func TestWatcher_StopTwice(t *testing.T) {
	w, err := NewWatcher(WithWatcherLogger(quietLogger()))
	if err != nil {
		t.Fatal(err)
	}
	w.StartAsync()
	if err := w.Stop(); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
	if err := w.Stop(); err != nil {
		t.Errorf("second Stop() error = %v", err)
	}
}

func startWatching(t *testing.T, path string, debounce time.Duration) <-chan string {
	t.Helper()
	w, err := NewWatcher(WithWatcherLogger(quietLogger()), WithDebounce(debounce))
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	if err := w.Watch(path); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}

	changed := make(chan string, 100)
	w.OnChange(func(p string) { changed <- p })
	w.StartAsync()
	t.Cleanup(func() { w.Stop() })

	// let the watcher goroutine start
	time.Sleep(50 * time.Millisecond)
	return changed
}

func TestWatcher_FileChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pagegate.yaml")
	if err := os.WriteFile(path, []byte("log:\n  level: info\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	changed := startWatching(t, path, 0)

	if err := os.WriteFile(path, []byte("log:\n  level: debug\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case got := <-changed:
		if got != path {
			t.Errorf("callback path = %q, want %q", got, path)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("callback was not triggered within timeout")
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pagegate.yaml")
	if err := os.WriteFile(path, []byte("a: 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	changed := startWatching(t, path, 0)

	if err := os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case got := <-changed:
		t.Errorf("unexpected callback for %q", got)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcher_RenameReplace(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pagegate.yaml")
	if err := os.WriteFile(path, []byte("a: 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	changed := startWatching(t, path, 0)

	tmp := filepath.Join(dir, ".pagegate.yaml.swp")
	if err := os.WriteFile(tmp, []byte("a: 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Rename(tmp, path); err != nil {
		t.Fatal(err)
	}

	select {
	case got := <-changed:
		if got != path {
			t.Errorf("callback path = %q", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("replacing the file by rename was not noticed")
	}
}

func TestWatcher_Debounce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pagegate.yaml")
	if err := os.WriteFile(path, []byte("a: 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	changed := startWatching(t, path, 200*time.Millisecond)

	for i := 1; i <= 5; i++ {
		if err := os.WriteFile(path, []byte("a: 1\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	select {
	case <-changed:
	case <-time.After(2 * time.Second):
		t.Fatal("callback was not triggered")
	}
	select {
	case <-changed:
		t.Error("burst of writes produced more than one callback")
	case <-time.After(400 * time.Millisecond):
	}
}
