package config

import (
	"context"
	"os"
	"sync/atomic"
	"testing"
	"time"
)

func TestDebouncer_CoalescesTriggers(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)
	defer d.Stop()

	var calls, last int32
	for i := int32(1); i <= 5; i++ {
		i := i
		d.Trigger(func() {
			atomic.AddInt32(&calls, 1)
			atomic.StoreInt32(&last, i)
		})
	}

	time.Sleep(150 * time.Millisecond)

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("expected 1 call, got %d", got)
	}
	if got := atomic.LoadInt32(&last); got != 5 {
		t.Errorf("expected latest callback to win, got %d", got)
	}
}

func TestDebouncer_StopCancelsPending(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)

	var calls int32
	d.Trigger(func() { atomic.AddInt32(&calls, 1) })
	d.Stop()
	d.Trigger(func() { atomic.AddInt32(&calls, 1) })

	time.Sleep(100 * time.Millisecond)
	if got := atomic.LoadInt32(&calls); got != 0 {
		t.Errorf("expected no calls after Stop, got %d", got)
	}
}

func TestFileWatcher_ReloadsOnWrite(t *testing.T) {
	resetGlobal()
	t.Cleanup(resetGlobal)

	path := writeConfig(t, "export:\n  sheet_name: \"Before\"\n")
	if _, err := ReloadConfig(path); err != nil {
		t.Fatalf("ReloadConfig failed: %v", err)
	}

	fw, err := NewFileWatcher(path, 20*time.Millisecond, nil)
	if err != nil {
		t.Fatalf("NewFileWatcher failed: %v", err)
	}

	reloaded := make(chan *Config, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		_ = fw.Watch(ctx, func(cfg *Config) {
			select {
			case reloaded <- cfg:
			default:
			}
		})
	}()

	// Give the watcher time to register the directory.
	time.Sleep(50 * time.Millisecond)
	if err := os.WriteFile(path, []byte("export:\n  sheet_name: \"After\"\n"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case cfg := <-reloaded:
		if cfg.Export.SheetName != "After" {
			t.Errorf("expected reloaded sheet name, got %q", cfg.Export.SheetName)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for reload")
	}

	if err := fw.Stop(); err != nil {
		t.Errorf("Stop failed: %v", err)
	}
}

func TestNewFileWatcher_RequiresPath(t *testing.T) {
	if _, err := NewFileWatcher("", 0, nil); err == nil {
		t.Error("expected error for empty path")
	}
}
