// Package watcher reports settled changes to individual files.
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ryhaapp/ryha-server/internal/logger"
)

// EventType represents the type of file system event.
type EventType int

const (
	// EventModified is emitted when a watched file was written or replaced.
	EventModified EventType = iota
	// EventRemoved is emitted when a watched file disappeared.
	EventRemoved
)

// String returns the string representation of the event type.
func (t EventType) String() string {
	switch t {
	case EventModified:
		return "modified"
	case EventRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// Event is a settled change to a watched file.
type Event struct {
	Type EventType
	Path string
}

// Options configures the watcher.
type Options struct {
	// SettleDelay is how long a file must stay quiet before an event is
	// emitted. Editors and atomic renames produce bursts of raw events.
	SettleDelay time.Duration
}

func (o *Options) setDefaults() {
	if o.SettleDelay <= 0 {
		o.SettleDelay = 250 * time.Millisecond
	}
}

// Watcher watches individual files by watching their parent directories.
type Watcher struct {
	logger  *slog.Logger
	opts    Options
	watcher *fsnotify.Watcher

	mu      sync.Mutex
	files   map[string]bool
	pending map[string]*time.Timer
	closed  bool

	events chan Event
	errors chan error
	done   chan struct{}
	wg     sync.WaitGroup
}

// New creates a watcher. Call Watch for each file, then Start.
func New(log *slog.Logger, opts Options) (*Watcher, error) {
	opts.setDefaults()

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &Watcher{
		logger:  logger.OrDiscard(log),
		opts:    opts,
		watcher: fw,
		files:   make(map[string]bool),
		pending: make(map[string]*time.Timer),
		events:  make(chan Event, 16),
		errors:  make(chan error, 4),
		done:    make(chan struct{}),
	}, nil
}

// Watch adds a file. The file does not need to exist yet, its directory does.
func (w *Watcher) Watch(path string) error {
	path = filepath.Clean(path)
	if err := w.watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}

	w.mu.Lock()
	w.files[path] = true
	w.mu.Unlock()

	w.logger.Debug("watching file", "path", path)
	return nil
}

// Start processes raw events until ctx is cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) {
	w.wg.Add(1)
	go w.loop(ctx)
}

// Stop releases resources and waits for the event loop to exit.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	for path, timer := range w.pending {
		timer.Stop()
		delete(w.pending, path)
	}
	w.mu.Unlock()

	close(w.done)
	err := w.watcher.Close()
	w.wg.Wait()
	return err
}

// Events returns settled file events.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Errors returns errors reported by the underlying watcher.
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

func (w *Watcher) loop(ctx context.Context) {
	defer w.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.errors <- err:
			default:
				w.logger.Warn("dropping watcher error", "error", err)
			}
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	path := filepath.Clean(event.Name)

	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.files[path] || w.closed {
		return
	}

	typ := EventModified
	if event.Has(fsnotify.Remove) {
		typ = EventRemoved
	} else if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return
	}

	// Restart the settle timer on every raw event for the file.
	if timer, ok := w.pending[path]; ok {
		timer.Stop()
	}
	w.pending[path] = time.AfterFunc(w.opts.SettleDelay, func() {
		w.emit(Event{Type: typ, Path: path})
	})
}

func (w *Watcher) emit(e Event) {
	w.mu.Lock()
	delete(w.pending, e.Path)
	closed := w.closed
	w.mu.Unlock()
	if closed {
		return
	}

	select {
	case w.events <- e:
	case <-w.done:
	}
}
