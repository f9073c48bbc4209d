package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

func TestDebouncerFoldsBurst(t *testing.T) {
	in := make(chan ChangeEvent)
	d := NewDebouncer(in, 50*time.Millisecond, time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	in <- ChangeEvent{Type: ChangeTypeRemove, Paths: []string{"a.json"}, Count: 1}
	in <- ChangeEvent{Type: ChangeTypeWrite, Paths: []string{"a.json"}, Count: 1}
	in <- ChangeEvent{Type: ChangeTypeWrite, Paths: []string{"a.json"}, Count: 1}

	select {
	case ev := <-d.Output():
		if ev.Type != ChangeTypeWrite {
			t.Errorf("Expected write after remove+create, got %v", ev.Type)
		}
		if ev.Count != 3 {
			t.Errorf("Expected 3 folded events, got %d", ev.Count)
		}
		if len(ev.Paths) != 1 {
			t.Errorf("Expected deduplicated paths, got %v", ev.Paths)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Expected a debounced event, got none")
	}

	select {
	case ev := <-d.Output():
		t.Errorf("Expected one event per burst, got another: %+v", ev)
	case <-time.After(150 * time.Millisecond):
	}
}

func TestDebouncerMaxWait(t *testing.T) {
	in := make(chan ChangeEvent)
	d := NewDebouncer(in, 200*time.Millisecond, 100*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	start := time.Now()
	stop := time.After(400 * time.Millisecond)
	go func() {
		ticker := time.NewTicker(20 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				select {
				case in <- ChangeEvent{Type: ChangeTypeWrite, Paths: []string{"a.json"}}:
				case <-ctx.Done():
					return
				}
			case <-stop:
				return
			}
		}
	}()

	select {
	case <-d.Output():
		if elapsed := time.Since(start); elapsed > 350*time.Millisecond {
			t.Errorf("Expected flush near max wait, got %v", elapsed)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Expected a flush at max wait, got none")
	}
}

func TestDebouncerClosesOnInputClose(t *testing.T) {
	in := make(chan ChangeEvent, 1)
	d := NewDebouncer(in, time.Hour, time.Hour)
	d.Start(context.Background())

	in <- ChangeEvent{Type: ChangeTypeWrite, Paths: []string{"x"}}
	close(in)

	if _, ok := <-d.Output(); !ok {
		t.Fatal("Expected pending event flushed on close")
	}
	if _, ok := <-d.Output(); ok {
		t.Error("Expected output closed")
	}
}

func TestPlanReload(t *testing.T) {
	plan := PlanReload(ChangeEvent{Type: ChangeTypeWrite, Paths: []string{"p.yaml"}})
	if !plan.Reload || plan.Gone {
		t.Errorf("Expected reload for write, got %+v", plan)
	}
	plan = PlanReload(ChangeEvent{Type: ChangeTypeRemove})
	if plan.Reload || !plan.Gone {
		t.Errorf("Expected gone for remove, got %+v", plan)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		op       fsnotify.Op
		want     ChangeType
		relevant bool
	}{
		{fsnotify.Write, ChangeTypeWrite, true},
		{fsnotify.Create, ChangeTypeWrite, true},
		{fsnotify.Remove, ChangeTypeRemove, true},
		{fsnotify.Rename, ChangeTypeRemove, true},
		{fsnotify.Chmod, 0, false},
	}
	for _, tt := range tests {
		got, relevant := classify(tt.op)
		if relevant != tt.relevant || (relevant && got != tt.want) {
			t.Errorf("Expected %v/%v for %v, got %v/%v", tt.want, tt.relevant, tt.op, got, relevant)
		}
	}
}

func TestDocumentWatcher(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.json")
	if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}

	w, err := NewDocumentWatcher(path)
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}

	// Writes to other files in the directory are filtered out
	if err := os.WriteFile(filepath.Join(dir, "other.json"), []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(`{"elements":[]}`), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case ev := <-w.Events():
		if ev.Type != ChangeTypeWrite {
			t.Errorf("Expected write event, got %v", ev.Type)
		}
		if filepath.Clean(ev.Paths[0]) != w.Path() {
			t.Errorf("Expected event for %s, got %v", w.Path(), ev.Paths)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Expected an event for the document, got none")
	}

	cancel()
	for range w.Events() {
	}
	if err := w.Stop(); err != nil {
		t.Errorf("Expected repeated Stop to succeed, got %v", err)
	}
}
