package shoal

import (
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDebounce drops repeat events for a file within this window; editors
// often write a file several times per save.
const watchDebounce = 100 * time.Millisecond

// Watcher reports changed content files under a root directory. Events
// carry slash-separated paths relative to the root, matching the paths in
// the content manifest.
type Watcher struct {
	watcher *fsnotify.Watcher
	root    string
	exts    []string
	Events  chan string
	Errors  chan error
	closeCh chan struct{}
	done    chan struct{}
	once    sync.Once
}

// NewWatcher watches root and the given subdirectories (relative to root)
// for writes to files with one of exts, e.g. ".json".
func NewWatcher(root string, dirs []string, exts ...string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if !slices.Contains(dirs, ".") {
		dirs = append([]string{"."}, dirs...)
	}
	for _, dir := range dirs {
		if err := w.Add(filepath.Join(root, filepath.FromSlash(dir))); err != nil {
			_ = w.Close()
			return nil, err
		}
	}

	lower := make([]string, len(exts))
	for i, e := range exts {
		lower[i] = strings.ToLower(e)
	}
	watcher := &Watcher{
		watcher: w,
		root:    root,
		exts:    lower,
		Events:  make(chan string, 16),
		Errors:  make(chan error, 1),
		closeCh: make(chan struct{}),
		done:    make(chan struct{}),
	}
	go watcher.run()
	return watcher, nil
}

// Close stops the watcher. The Events and Errors channels are closed once
// the background goroutine exits.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
		<-w.done
	})
	return err
}

// Poll drains pending events without blocking. Paths are de-duplicated.
func (w *Watcher) Poll() []string {
	var out []string
	for {
		select {
		case p, ok := <-w.Events:
			if !ok {
				return out
			}
			if !slices.Contains(out, p) {
				out = append(out, p)
			}
		default:
			return out
		}
	}
}

func (w *Watcher) run() {
	defer func() {
		close(w.Events)
		close(w.Errors)
		close(w.done)
	}()
	last := make(map[string]time.Time)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if !w.matches(event.Name) {
				continue
			}
			now := time.Now()
			if t, ok := last[event.Name]; ok && now.Sub(t) < watchDebounce {
				continue
			}
			last[event.Name] = now
			select {
			case w.Events <- w.rel(event.Name):
			case <-w.closeCh:
				return
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.Errors <- err:
			default:
			}
		case <-w.closeCh:
			return
		}
	}
}

func (w *Watcher) matches(name string) bool {
	if len(w.exts) == 0 {
		return true
	}
	return slices.Contains(w.exts, strings.ToLower(filepath.Ext(name)))
}

func (w *Watcher) rel(name string) string {
	r, err := filepath.Rel(w.root, name)
	if err != nil {
		return filepath.ToSlash(name)
	}
	return filepath.ToSlash(r)
}
