package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"wbdeps/pkg/logging"
)

// DefaultDebounce is used when New is given a zero interval.
const DefaultDebounce = 300 * time.Millisecond

// Operation is the kind of change observed for a file.
type Operation string

const (
	OperationCreate Operation = "create"
	OperationUpdate Operation = "update"
	OperationDelete Operation = "delete"
)

// Event is a debounced change to one document.
type Event struct {
	Path      string
	Operation Operation
	Timestamp time.Time
}

// documentExtensions are the files picked up in watched directories.
var documentExtensions = map[string]bool{
	".workbook": true,
	".json":     true,
	".yaml":     true,
	".yml":      true,
}

// Watcher watches a set of documents and directories for changes.
type Watcher struct {
	mu sync.Mutex

	// files are explicitly watched files, by absolute path
	files map[string]bool

	// dirs are directories whose document files are all watched
	dirs map[string]bool

	watcher  *fsnotify.Watcher
	debounce time.Duration

	// pending tracks debounced events by path
	pending map[string]*debounceEntry

	stopCh  chan struct{}
	running bool
}

type debounceEntry struct {
	event Event
	timer *time.Timer
}

// New creates a watcher for paths. A path may be a file or a directory.
func New(paths []string, debounce time.Duration) (*Watcher, error) {
	if debounce == 0 {
		debounce = DefaultDebounce
	}
	w := &Watcher{
		files:    make(map[string]bool),
		dirs:     make(map[string]bool),
		debounce: debounce,
		pending:  make(map[string]*debounceEntry),
		stopCh:   make(chan struct{}),
	}
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, err
		}
		if info, err := os.Stat(abs); err == nil && info.IsDir() {
			w.dirs[abs] = true
		} else {
			w.files[abs] = true
		}
	}
	return w, nil
}

// Start begins watching. Events are sent to events until ctx is done or
// Stop is called.
func (w *Watcher) Start(ctx context.Context, events chan<- Event) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		w.mu.Unlock()
		return err
	}
	w.watcher = fsw
	w.running = true
	w.stopCh = make(chan struct{})

	for _, dir := range w.watchDirs() {
		if err := fsw.Add(dir); err != nil {
			w.mu.Unlock()
			w.Stop()
			return err
		}
		logging.Debug("Watch", "Watching directory: %s", dir)
	}
	stopCh := w.stopCh
	w.mu.Unlock()

	go w.processEvents(ctx, fsw, stopCh, events)

	logging.Info("Watch", "Watching %d files and %d directories for changes", len(w.files), len(w.dirs))
	return nil
}

// watchDirs lists the directories to register with fsnotify. Callers hold mu.
func (w *Watcher) watchDirs() []string {
	seen := make(map[string]bool)
	var out []string
	add := func(d string) {
		if !seen[d] {
			seen[d] = true
			out = append(out, d)
		}
	}
	for d := range w.dirs {
		add(d)
	}
	for f := range w.files {
		add(filepath.Dir(f))
	}
	return out
}

func (w *Watcher) processEvents(ctx context.Context, fsw *fsnotify.Watcher, stopCh chan struct{}, events chan<- Event) {
	for {
		select {
		case <-ctx.Done():
			w.cleanupPending()
			return

		case <-stopCh:
			w.cleanupPending()
			return

		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			w.handleFsEvent(event, events)

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			logging.Error("Watch", err, "Filesystem watcher error")
		}
	}
}

func (w *Watcher) handleFsEvent(event fsnotify.Event, events chan<- Event) {
	path := filepath.Clean(event.Name)
	if !w.tracks(path) {
		return
	}

	var op Operation
	switch {
	case event.Op&fsnotify.Create == fsnotify.Create:
		op = OperationCreate
	case event.Op&fsnotify.Write == fsnotify.Write:
		op = OperationUpdate
	case event.Op&fsnotify.Remove == fsnotify.Remove:
		op = OperationDelete
	case event.Op&fsnotify.Rename == fsnotify.Rename:
		// the new name triggers its own create
		op = OperationDelete
	default:
		return
	}

	w.debounceEvent(Event{Path: path, Operation: op, Timestamp: time.Now()}, events)
}

// tracks reports whether path is a watched file or a document file in a
// watched directory.
func (w *Watcher) tracks(path string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.files[path] {
		return true
	}
	return w.dirs[filepath.Dir(path)] && isDocumentFile(path)
}

func (w *Watcher) debounceEvent(event Event, events chan<- Event) {
	w.mu.Lock()
	defer w.mu.Unlock()

	key := event.Path
	if entry, ok := w.pending[key]; ok {
		entry.timer.Stop()
		event.Operation = mergeOperations(entry.event.Operation, event.Operation)
	}

	timer := time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		entry, ok := w.pending[key]
		if ok {
			delete(w.pending, key)
		}
		w.mu.Unlock()

		if ok {
			select {
			case events <- entry.event:
				logging.Debug("Watch", "Emitted %s %s", entry.event.Operation, entry.event.Path)
			default:
				logging.Warn("Watch", "Event channel full, dropping %s %s", entry.event.Operation, entry.event.Path)
			}
		}
	})

	w.pending[key] = &debounceEntry{event: event, timer: timer}
}

// mergeOperations folds a new operation into a pending one.
func mergeOperations(old, new Operation) Operation {
	if old == OperationCreate {
		if new == OperationDelete {
			return OperationDelete
		}
		return OperationCreate
	}
	if old == OperationUpdate && new == OperationDelete {
		return OperationDelete
	}
	// a save via rename shows up as delete then create
	if old == OperationDelete && new == OperationCreate {
		return OperationUpdate
	}
	return new
}

func (w *Watcher) cleanupPending() {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, entry := range w.pending {
		entry.timer.Stop()
	}
	w.pending = make(map[string]*debounceEntry)
}

// Stop stops the watcher. It is safe to call more than once.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return nil
	}
	w.running = false
	close(w.stopCh)

	var err error
	if w.watcher != nil {
		err = w.watcher.Close()
		if err != nil {
			logging.Error("Watch", err, "Error closing filesystem watcher")
		}
		w.watcher = nil
	}
	logging.Debug("Watch", "Stopped watching")
	return err
}

func isDocumentFile(path string) bool {
	return documentExtensions[strings.ToLower(filepath.Ext(path))]
}
