// Package watch turns raw filesystem events into the debounced, deduped
// batches of dirty paths that drive graph.TraverseDependencies.
package watch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/nguyenquangtin/metro/pkg/logging"
)

var log = logging.Component("watch")

// Options configures watch behavior.
type Options struct {
	Root           string        // root directory to watch recursively
	Debounce       time.Duration // batching window for rapid successive writes
	IgnorePatterns []string      // directory/file name fragments to skip
	Extensions     []string      // only changes to these extensions are reported; empty means all
}

// DefaultOptions returns sensible defaults for a JavaScript project tree.
func DefaultOptions() Options {
	return Options{
		Root:     ".",
		Debounce: 300 * time.Millisecond,
		IgnorePatterns: []string{
			".git",
			".metro-cache",
			"node_modules",
			".idea",
			".vscode",
		},
		Extensions: []string{".js", ".jsx", ".mjs", ".cjs", ".ts", ".tsx", ".json"},
	}
}

// Watcher monitors a directory tree and delivers batches of changed
// absolute paths to onChange once activity has settled for the
// configured debounce window. It does not itself know about the
// dependency graph: the caller decides what a changed-paths batch
// means for TraverseDependencies.
type Watcher struct {
	fs        *fsnotify.Watcher
	debouncer *Debouncer
	opts      Options

	mu      sync.Mutex
	running bool
}

// New creates a watcher rooted at opts.Root. It fails fast if the
// directory tree cannot be fully watched.
func New(opts Options, onChange func(changed []string)) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create fsnotify watcher: %w", err)
	}

	w := &Watcher{
		fs:   fsWatcher,
		opts: opts,
	}
	w.debouncer = NewDebouncer(opts.Debounce, func(changed []string) {
		if onChange == nil || len(changed) == 0 {
			return
		}
		log.Debug().Int("count", len(changed)).Msg("dirty batch ready")
		onChange(changed)
	})

	if err := w.watchRecursive(opts.Root); err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("watch: setup watches under %s: %w", opts.Root, err)
	}

	return w, nil
}

func (w *Watcher) watchRecursive(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		if w.isIgnoredDir(path) {
			log.Debug().Str("path", path).Msg("skipping ignored directory")
			return filepath.SkipDir
		}
		if err := w.fs.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

func (w *Watcher) isIgnoredDir(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") && base != "." && base != ".." {
		return true
	}
	for _, pattern := range w.opts.IgnorePatterns {
		if base == pattern || strings.Contains(path, pattern) {
			return true
		}
	}
	return false
}

// Start begins processing fsnotify events in a background goroutine.
// It is a no-op if the watcher is already running.
func (w *Watcher) Start() {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.mu.Unlock()

	go func() {
		for {
			select {
			case event, ok := <-w.fs.Events:
				if !ok {
					return
				}
				if w.shouldProcess(event) {
					w.trackChange(event.Name)
				}
				if event.Op&fsnotify.Create == fsnotify.Create {
					if info, err := os.Stat(event.Name); err == nil && info.IsDir() && !w.isIgnoredDir(event.Name) {
						if err := w.fs.Add(event.Name); err != nil {
							log.Warn().Err(err).Str("path", event.Name).Msg("failed to add new directory")
						}
					}
				}
			case err, ok := <-w.fs.Errors:
				if !ok {
					return
				}
				log.Error().Err(err).Msg("fsnotify error")
			}
		}
	}()
}

func (w *Watcher) shouldProcess(event fsnotify.Event) bool {
	if event.Op&fsnotify.Write != fsnotify.Write && event.Op&fsnotify.Create != fsnotify.Create &&
		event.Op&fsnotify.Remove != fsnotify.Remove && event.Op&fsnotify.Rename != fsnotify.Rename {
		return false
	}
	if len(w.opts.Extensions) > 0 {
		ext := strings.ToLower(filepath.Ext(event.Name))
		matched := false
		for _, allowed := range w.opts.Extensions {
			if ext == allowed {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return !w.isIgnoredDir(filepath.Dir(event.Name))
}

func (w *Watcher) trackChange(path string) {
	w.debouncer.Add(path)
}

// Stop halts event processing and releases the underlying fsnotify
// watches. It is safe to call more than once.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return nil
	}
	w.running = false
	w.debouncer.Stop()
	return w.fs.Close()
}

// IsRunning reports whether the watcher is currently processing events.
func (w *Watcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}
