package watch

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/triagent/triagent/internal/fsutil"
)

const settleDelay = 200 * time.Millisecond

// Watcher watches the incoming directory for new issue files and processes
// them. Filesystem events trigger immediate handling; a polling sweep backs
// them up for filesystems where events are unreliable.
type Watcher struct {
	processor    *Processor
	incoming     string
	pollInterval time.Duration
	logf         func(format string, args ...any)

	mu   sync.Mutex
	seen map[string]struct{}
}

// NewWatcher creates a watcher over the processor's incoming directory.
func NewWatcher(processor *Processor, pollInterval time.Duration, logf func(format string, args ...any)) *Watcher {
	if pollInterval <= 0 {
		pollInterval = 3 * time.Second
	}
	if logf == nil {
		logf = func(string, ...any) {}
	}
	return &Watcher{
		processor:    processor,
		incoming:     processor.dirs.Incoming,
		pollInterval: pollInterval,
		logf:         logf,
		seen:         make(map[string]struct{}),
	}
}

// Run watches until ctx is canceled. Files already present at startup are
// marked as seen and not processed.
func (w *Watcher) Run(ctx context.Context) error {
	dirs := w.processor.dirs
	if err := fsutil.EnsureDirs(dirs.Incoming, dirs.Processed, dirs.Outgoing); err != nil {
		return err
	}

	w.scanExisting()
	w.logf("Watching folder: %s (poll interval %s)", w.incoming, w.pollInterval)

	events := make(chan string, 16)

	watcher, err := fsnotify.NewWatcher()
	if err == nil {
		if err := watcher.Add(w.incoming); err == nil {
			go w.forwardEvents(ctx, watcher, events)
			defer watcher.Close()
		} else {
			watcher.Close()
			w.logf("Filesystem events unavailable, using polling only: %v", err)
		}
	} else {
		w.logf("Filesystem events unavailable, using polling only: %v", err)
	}

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logf("Watcher stopped")
			return ctx.Err()
		case path := <-events:
			if w.claim(path) {
				// The create event can arrive before the writer
				// finishes; give it a moment.
				time.Sleep(settleDelay)
				w.process(ctx, path)
			}
		case <-ticker.C:
			for _, path := range w.sweep() {
				w.process(ctx, path)
			}
		}
	}
}

func (w *Watcher) forwardEvents(ctx context.Context, watcher *fsnotify.Watcher, events chan<- string) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if filepath.Ext(event.Name) != ".json" {
				continue
			}
			select {
			case events <- event.Name:
			case <-ctx.Done():
				return
			}
		case <-watcher.Errors:
			// Keep watching; the polling sweep covers missed events.
		}
	}
}

// scanExisting marks files already in incoming/ as seen so a restart does
// not reprocess them.
func (w *Watcher) scanExisting() {
	existing := w.listIncoming()

	w.mu.Lock()
	for _, path := range existing {
		w.seen[path] = struct{}{}
	}
	w.mu.Unlock()

	if len(existing) > 0 {
		w.logf("Found %d existing file(s) in incoming/ - will not process (already present at startup)", len(existing))
	}
}

// sweep returns incoming files not yet seen, marking them seen.
func (w *Watcher) sweep() []string {
	var fresh []string

	w.mu.Lock()
	for _, path := range w.listIncoming() {
		if _, ok := w.seen[path]; ok {
			continue
		}
		w.seen[path] = struct{}{}
		fresh = append(fresh, path)
	}
	w.mu.Unlock()

	return fresh
}

func (w *Watcher) listIncoming() []string {
	matches, err := filepath.Glob(filepath.Join(w.incoming, "*.json"))
	if err != nil {
		return nil
	}
	return matches
}

func (w *Watcher) process(ctx context.Context, path string) {
	w.logf("New issue file: %s", filepath.Base(path))
	if _, err := w.processor.ProcessFile(ctx, path); err != nil {
		w.logf("Processing failed: %s: %v", filepath.Base(path), err)
		return
	}
	w.logf("Successfully processed: %s", filepath.Base(path))
}

// claim marks an event-reported path as seen. A false return means the
// sweep or an earlier event already claimed it.
func (w *Watcher) claim(path string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.seen[path]; ok {
		return false
	}
	w.seen[path] = struct{}{}
	return true
}
