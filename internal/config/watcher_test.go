package config_test

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/littlejunkers/leadchat/internal/config"
)

const watcherValidYAML = `
server:
  log_level: info
providers:
  completion:
    name: openai
sinks:
  postgres:
    dsn: "postgres://localhost/leads"
`

const watcherUpdatedYAML = `
server:
  log_level: debug
providers:
  completion:
    name: openai
sinks:
  postgres:
    dsn: "postgres://localhost/leads"
`

const watcherInvalidYAML = `
server:
  log_level: bananas
`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestWatcher_InitialLoad(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, watcherValidYAML)

	w, err := config.NewWatcher(path, nil)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Stop()

	cfg := w.Current()
	if cfg == nil {
		t.Fatal("Current() returned nil")
	}
	if cfg.Server.LogLevel != config.LogInfo {
		t.Errorf("LogLevel = %q, want info", cfg.Server.LogLevel)
	}
}

func TestWatcher_InitialLoadFailsOnInvalidConfig(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, watcherInvalidYAML)

	if _, err := config.NewWatcher(path, nil); err == nil {
		t.Fatal("expected error for invalid initial config, got nil")
	}
}

func TestWatcher_DetectsChange(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, watcherValidYAML)

	var (
		mu       sync.Mutex
		gotOld   *config.Config
		gotNew   *config.Config
		notified = make(chan struct{}, 1)
	)
	onChange := func(old, new *config.Config) {
		mu.Lock()
		gotOld, gotNew = old, new
		mu.Unlock()
		select {
		case notified <- struct{}{}:
		default:
		}
	}

	w, err := config.NewWatcher(path, onChange, config.WithInterval(20*time.Millisecond))
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Stop()

	// Sleep past mtime granularity before rewriting.
	time.Sleep(50 * time.Millisecond)
	writeFile(t, path, watcherUpdatedYAML)

	select {
	case <-notified:
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not detect the config change")
	}

	mu.Lock()
	defer mu.Unlock()
	if gotOld == nil || gotNew == nil {
		t.Fatal("onChange called with nil config")
	}
	if gotOld.Server.LogLevel != config.LogInfo {
		t.Errorf("old LogLevel = %q, want info", gotOld.Server.LogLevel)
	}
	if gotNew.Server.LogLevel != config.LogDebug {
		t.Errorf("new LogLevel = %q, want debug", gotNew.Server.LogLevel)
	}
	if w.Current().Server.LogLevel != config.LogDebug {
		t.Errorf("Current() not updated after change")
	}
}

func TestWatcher_KeepsOldConfigOnInvalidUpdate(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, watcherValidYAML)

	w, err := config.NewWatcher(path, nil, config.WithInterval(20*time.Millisecond))
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Stop()

	time.Sleep(50 * time.Millisecond)
	writeFile(t, path, watcherInvalidYAML)

	// Give the watcher a few polling cycles to (not) pick up the bad config.
	time.Sleep(200 * time.Millisecond)

	if w.Current().Server.LogLevel != config.LogInfo {
		t.Error("watcher replaced config with invalid content")
	}
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, watcherValidYAML)

	w, err := config.NewWatcher(path, nil)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	w.Stop()
	w.Stop()
}
