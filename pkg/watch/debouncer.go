package watch

import (
	"sync"
	"time"
)

// Debouncer batches rapid-fire dirty-path notifications from fsnotify
// into a single onFlush call once the filesystem tree has been quiet
// for duration. Accumulating the path set here, rather than in
// Watcher, keeps the "what changed" bookkeeping next to the timer that
// decides when to report it, and lets Stop discard both atomically.
type Debouncer struct {
	mu       sync.Mutex
	duration time.Duration
	timer    *time.Timer
	pending  map[string]struct{}
	onFlush  func(changed []string)
}

// NewDebouncer creates a debouncer that invokes onFlush with the set
// of paths accumulated via Add, duration after the last Add call.
func NewDebouncer(duration time.Duration, onFlush func(changed []string)) *Debouncer {
	return &Debouncer{
		duration: duration,
		pending:  make(map[string]struct{}),
		onFlush:  onFlush,
	}
}

// Add records path as dirty and resets the debounce window. A path
// added more than once before the window elapses is still reported
// exactly once in the resulting batch.
func (d *Debouncer) Add(path string) {
	d.mu.Lock()
	d.pending[path] = struct{}{}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.duration, d.flush)
	d.mu.Unlock()
}

func (d *Debouncer) flush() {
	d.mu.Lock()
	if len(d.pending) == 0 {
		d.mu.Unlock()
		return
	}
	changed := make([]string, 0, len(d.pending))
	for path := range d.pending {
		changed = append(changed, path)
	}
	d.pending = make(map[string]struct{})
	d.mu.Unlock()

	if d.onFlush != nil {
		d.onFlush(changed)
	}
}

// Stop cancels any pending flush and discards paths accumulated since
// the last one. It is safe to call more than once.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.pending = make(map[string]struct{})
}
