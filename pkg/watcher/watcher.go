package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ritzau/pathlink/pkg/logging"
)

// ChangeType represents the type of file change detected
type ChangeType int

const (
	ChangeTypeWrite  ChangeType = iota // Written or (re)created
	ChangeTypeRemove                   // Removed or renamed away
)

func (t ChangeType) String() string {
	if t == ChangeTypeRemove {
		return "remove"
	}
	return "write"
}

// ChangeEvent represents a batch of file system changes
type ChangeEvent struct {
	Type      ChangeType
	Paths     []string
	Count     int // Raw events folded into this one
	Timestamp time.Time
}

// DocumentWatcher watches one document file. It watches the containing
// directory so that editors replacing the file by rename are noticed.
type DocumentWatcher struct {
	watcher *fsnotify.Watcher
	path    string
	events  chan ChangeEvent
	stop    sync.Once
}

// NewDocumentWatcher creates a watcher for the document at path
func NewDocumentWatcher(path string) (*DocumentWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &DocumentWatcher{
		watcher: watcher,
		path:    abs,
		events:  make(chan ChangeEvent, 100),
	}, nil
}

// Start begins watching for file changes
func (dw *DocumentWatcher) Start(ctx context.Context) error {
	dir := filepath.Dir(dw.path)
	if err := dw.watcher.Add(dir); err != nil {
		dw.watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	logging.Info("Watching document", "path", dw.path)

	go dw.processEvents(ctx)
	return nil
}

// processEvents forwards events on the document file
func (dw *DocumentWatcher) processEvents(ctx context.Context) {
	defer close(dw.events)
	defer dw.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-dw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != dw.path {
				continue
			}
			changeType, relevant := classify(event.Op)
			if !relevant {
				continue
			}
			logging.Trace("Document event", "path", event.Name, "op", event.Op.String())

			select {
			case dw.events <- ChangeEvent{Type: changeType, Paths: []string{event.Name}, Count: 1, Timestamp: time.Now()}:
			case <-ctx.Done():
				return
			}

		case err, ok := <-dw.watcher.Errors:
			if !ok {
				return
			}
			logging.Error("watcher error", "error", err)
		}
	}
}

// Path returns the absolute path of the watched document
func (dw *DocumentWatcher) Path() string {
	return dw.path
}

// Events returns the channel of change events. It is closed when the
// watcher stops.
func (dw *DocumentWatcher) Events() <-chan ChangeEvent {
	return dw.events
}

// Stop stops the file watcher. It is safe to call more than once.
func (dw *DocumentWatcher) Stop() error {
	var err error
	dw.stop.Do(func() {
		err = dw.watcher.Close()
	})
	return err
}
