package proactive

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watcher wraps fsnotify over a set of root paths, debouncing bursts
// of events the way the teacher's policy/manager.Debouncer does, and
// calling onEvent once per quiet period per changed path.
type watcher struct {
	fsw      *fsnotify.Watcher
	onEvent  func(path string)
	debounce time.Duration
	timers   map[string]*time.Timer
}

const defaultDebounce = 250 * time.Millisecond

func newWatcher(roots []string, onEvent func(path string)) (*watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &watcher{fsw: fsw, onEvent: onEvent, debounce: defaultDebounce, timers: make(map[string]*time.Timer)}
	for _, root := range roots {
		if err := w.addRecursive(root); err != nil {
			fsw.Close()
			return nil, err
		}
	}
	return w, nil
}

func (w *watcher) addRecursive(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return w.fsw.Add(path)
		}
		return nil
	})
}

// run drains watcher events until ctx is cancelled or stop is closed.
func (w *watcher) run(ctx context.Context, stop <-chan struct{}) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if ev.Op&fsnotify.Chmod == fsnotify.Chmod {
				continue
			}
			w.debounceEvent(ev.Name)
		case _, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
		}
	}
}

func (w *watcher) debounceEvent(path string) {
	if t, exists := w.timers[path]; exists {
		t.Stop()
	}
	w.timers[path] = time.AfterFunc(w.debounce, func() { w.onEvent(path) })
}

func (w *watcher) stop() {
	w.fsw.Close()
}
