package confloader

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewWatcher(t *testing.T) {
	w, err := NewWatcher()
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w.Stop()

	if w.watcher == nil || w.done == nil || w.logger == nil {
		t.Error("NewWatcher() left fields unset")
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	w2, err := NewWatcher(WithWatcherLogger(logger))
	if err != nil {
		t.Fatal(err)
	}
	defer w2.Stop()
	if w2.logger != logger {
		t.Error("WithWatcherLogger() option not applied")
	}
}

func TestWatcher_Watch_NonexistentDir(t *testing.T) {
	w, err := NewWatcher()
	if err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if err := w.Watch("/nonexistent/dir/file.json"); err == nil {
		t.Error("Watch() on a missing directory should fail")
	}
}

func TestWatcher_StopTwice(t *testing.T) {
	w, err := NewWatcher()
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

// waitChange returns the first changed path equal to want, or fails.
func waitChange(t *testing.T, changed <-chan string, want string) {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case path := <-changed:
			if path == want {
				return
			}
		case <-deadline:
			t.Fatalf("no change reported for %s", want)
		}
	}
}

func startWatching(t *testing.T, file string) <-chan string {
	t.Helper()
	w, err := NewWatcher()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { w.Stop() })

	if err := w.Watch(file); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	changed := make(chan string, 32)
	w.OnChange(func(path string) {
		select {
		case changed <- path:
		default:
		}
	})
	w.StartAsync()
	time.Sleep(100 * time.Millisecond)
	return changed
}

func TestWatcher_FileWrite(t *testing.T) {
	file := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(file, []byte("key: value1"), 0644); err != nil {
		t.Fatal(err)
	}
	changed := startWatching(t, file)

	if err := os.WriteFile(file, []byte("key: value2"), 0644); err != nil {
		t.Fatal(err)
	}
	waitChange(t, changed, file)
}

func TestWatcher_AtomicReplace(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "validators.json")
	if err := os.WriteFile(file, []byte("[]"), 0644); err != nil {
		t.Fatal(err)
	}
	changed := startWatching(t, file)

	tmp := filepath.Join(dir, ".validators.json.tmp")
	if err := os.WriteFile(tmp, []byte(`[{"validator_vote_address":"a"}]`), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Rename(tmp, file); err != nil {
		t.Fatal(err)
	}
	waitChange(t, changed, file)
}

func TestWatcher_Remove(t *testing.T) {
	file := filepath.Join(t.TempDir(), "validators.json")
	if err := os.WriteFile(file, []byte("[]"), 0644); err != nil {
		t.Fatal(err)
	}
	changed := startWatching(t, file)

	if err := os.Remove(file); err != nil {
		t.Fatal(err)
	}
	waitChange(t, changed, file)
}
