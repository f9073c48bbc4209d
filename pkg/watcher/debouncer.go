package watcher

import (
	"context"
	"time"

	"github.com/ritzau/pathlink/pkg/logging"
)

// Debouncer batches rapid file system events so that one save triggers
// one reload
type Debouncer struct {
	input       <-chan ChangeEvent
	output      chan ChangeEvent
	quietPeriod time.Duration
	maxWait     time.Duration
}

// NewDebouncer creates a new event debouncer
func NewDebouncer(input <-chan ChangeEvent, quietPeriod, maxWait time.Duration) *Debouncer {
	return &Debouncer{
		input:       input,
		output:      make(chan ChangeEvent, 10),
		quietPeriod: quietPeriod,
		maxWait:     maxWait,
	}
}

// Start begins processing events with debouncing
func (d *Debouncer) Start(ctx context.Context) {
	go d.run(ctx)
}

// run folds events until the input has been quiet for quietPeriod, or
// maxWait has passed since the first event of the burst. The folded
// event carries the type of the last event: a remove followed by a
// create is a write.
func (d *Debouncer) run(ctx context.Context) {
	defer close(d.output)

	var (
		pending  *ChangeEvent
		seen     map[string]bool
		quiet    <-chan time.Time
		deadline <-chan time.Time
	)

	flush := func() {
		if pending == nil {
			return
		}
		logging.Debug("flushing accumulated events", "count", pending.Count, "type", pending.Type.String())
		pending.Timestamp = time.Now()
		select {
		case d.output <- *pending:
		case <-ctx.Done():
		}
		pending, seen, quiet, deadline = nil, nil, nil, nil
	}

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-d.input:
			if !ok {
				flush()
				return
			}
			if pending == nil {
				pending = &ChangeEvent{}
				seen = make(map[string]bool)
				deadline = time.After(d.maxWait)
			}
			pending.Type = event.Type
			pending.Count += max(event.Count, 1)
			for _, p := range event.Paths {
				if !seen[p] {
					seen[p] = true
					pending.Paths = append(pending.Paths, p)
				}
			}
			quiet = time.After(d.quietPeriod)

		case <-quiet:
			flush()

		case <-deadline:
			flush()
		}
	}
}

// Output returns the channel of debounced events
func (d *Debouncer) Output() <-chan ChangeEvent {
	return d.output
}
