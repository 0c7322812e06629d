package source

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"veritas-hq/meridian/pkg/policy/engine"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestFileSourceSingleFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	writeFile(t, path, `
rules:
  - id: R1
    action: ALLOW
    tuples:
      data_type: financial
  - id: R2
    action: DENY
`)

	records, err := NewFileSource(path, nil).LoadRules(context.Background())
	if err != nil {
		t.Fatalf("LoadRules returned error: %v", err)
	}
	if len(records) != 2 || records[0].ID != "R1" || records[1].ID != "R2" {
		t.Fatalf("records = %+v, want [R1 R2]", records)
	}
	if records[0].Action != "ALLOW" {
		t.Errorf("R1 action = %q, want ALLOW", records[0].Action)
	}
}

func TestFileSourceDirectoryLexicalOrder(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "20-extra.yaml"), "rules:\n  - id: LATER\n")
	writeFile(t, filepath.Join(dir, "10-base.yml"), "rules:\n  - id: FIRST\n")
	writeFile(t, filepath.Join(dir, "notes.txt"), "ignored")

	records, err := NewFileSource(dir, nil).LoadRules(context.Background())
	if err != nil {
		t.Fatalf("LoadRules returned error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("loaded %d records, want 2", len(records))
	}
	if records[0].ID != "FIRST" || records[1].ID != "LATER" {
		t.Errorf("order = [%s %s], want [FIRST LATER]", records[0].ID, records[1].ID)
	}
}

func TestFileSourceMalformedFileFailsLoad(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "good.yaml"), "rules:\n  - id: OK\n")
	writeFile(t, filepath.Join(dir, "bad.yaml"), "rules: [unclosed\n")

	if _, err := NewFileSource(dir, nil).LoadRules(context.Background()); err == nil {
		t.Fatal("LoadRules succeeded with a malformed file")
	}
}

func TestFileSourceMissingPath(t *testing.T) {
	src := NewFileSource(filepath.Join(t.TempDir(), "absent.yaml"), nil)
	if _, err := src.LoadRules(context.Background()); err == nil {
		t.Fatal("LoadRules succeeded on a missing path")
	}
}

func TestMemorySourceCopies(t *testing.T) {
	records := []engine.RuleRecord{{ID: "A"}}
	src := NewMemorySource(records)

	records[0].ID = "mutated"
	got, err := src.LoadRules(context.Background())
	if err != nil {
		t.Fatalf("LoadRules returned error: %v", err)
	}
	if got[0].ID != "A" {
		t.Errorf("stored record mutated through caller slice: %+v", got)
	}

	got[0].ID = "mutated-again"
	again, _ := src.LoadRules(context.Background())
	if again[0].ID != "A" {
		t.Error("returned slice aliases internal storage")
	}
}

func TestDebouncerCollapsesBurst(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)
	defer d.Stop()

	var fired atomic.Int32
	for i := 0; i < 5; i++ {
		d.Trigger(func() { fired.Add(1) })
		time.Sleep(5 * time.Millisecond)
	}

	deadline := time.Now().Add(2 * time.Second)
	for fired.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	// Allow the quiet period to elapse fully before asserting the count.
	time.Sleep(60 * time.Millisecond)
	if got := fired.Load(); got != 1 {
		t.Errorf("callback fired %d times, want 1", got)
	}
}

func TestFileWatcherTriggersReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	writeFile(t, path, "rules: []\n")

	cfg := DefaultFileWatcherConfig()
	cfg.Path = dir
	cfg.DebounceInterval = 20 * time.Millisecond

	fw, err := NewFileWatcher(cfg, nil)
	if err != nil {
		t.Fatalf("NewFileWatcher returned error: %v", err)
	}

	reloaded := make(chan struct{}, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	watchDone := make(chan error, 1)
	go func() {
		watchDone <- fw.Watch(ctx, func() error {
			select {
			case reloaded <- struct{}{}:
			default:
			}
			return nil
		})
	}()

	// Give the watcher time to register the directory.
	time.Sleep(100 * time.Millisecond)
	writeFile(t, path, "rules:\n  - id: NEW\n")

	select {
	case <-reloaded:
	case <-time.After(5 * time.Second):
		t.Fatal("reload not triggered by file change")
	}

	if err := fw.Stop(); err != nil {
		t.Errorf("Stop returned error: %v", err)
	}
	if err := <-watchDone; err != nil {
		t.Errorf("Watch returned error: %v", err)
	}
}

func TestFileWatcherIgnoresOtherExtensions(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "rules.yaml"), "rules: []\n")

	cfg := DefaultFileWatcherConfig()
	cfg.Path = dir
	cfg.DebounceInterval = 20 * time.Millisecond

	fw, err := NewFileWatcher(cfg, nil)
	if err != nil {
		t.Fatalf("NewFileWatcher returned error: %v", err)
	}

	reloaded := make(chan struct{}, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go fw.Watch(ctx, func() error {
		select {
		case reloaded <- struct{}{}:
		default:
		}
		return nil
	})

	time.Sleep(100 * time.Millisecond)
	writeFile(t, filepath.Join(dir, "notes.txt"), "not a rule file")

	select {
	case <-reloaded:
		t.Fatal("reload triggered by non-rule file")
	case <-time.After(300 * time.Millisecond):
	}

	fw.Stop()
}
