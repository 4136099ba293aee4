package scenario

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/onelane/onelane/internal/errors"
)

// debounceWindow collapses editor save bursts into a single reload.
const debounceWindow = 200 * time.Millisecond

// Watcher watches one scenario file and invokes a callback after edits
// settle. It watches the file's parent directory rather than the file:
// many editors replace the file on save, which silently drops a watch
// registered on the file itself.
type Watcher struct {
	path     string
	watcher  *fsnotify.Watcher
	onChange func()

	stopOnce sync.Once
	stopCh   chan struct{}
}

// NewWatcher creates a watcher for the scenario at path. onChange runs
// on the watch goroutine after each debounced batch of edits.
func NewWatcher(path string, onChange func()) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrap(err, "resolving scenario path")
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "creating file watcher")
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		_ = fw.Close()
		return nil, errors.Wrap(err, "watching scenario directory")
	}

	return &Watcher{
		path:     abs,
		watcher:  fw,
		onChange: onChange,
		stopCh:   make(chan struct{}),
	}, nil
}

// Start begins delivering change notifications.
func (w *Watcher) Start() {
	go w.watchLoop()
}

// Stop ends the watch and releases the underlying watcher. Safe to call
// more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		_ = w.watcher.Close()
	})
}

// watchLoop processes filesystem events until stopped.
func (w *Watcher) watchLoop() {
	// Editors fire several events per save; hold off until they settle.
	debounce := time.NewTimer(0)
	<-debounce.C // drain the initial fire
	pending := false

	for {
		select {
		case <-w.stopCh:
			return

		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			pending = true
			debounce.Reset(debounceWindow)

		case <-debounce.C:
			if pending {
				pending = false
				w.onChange()
			}

		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}
