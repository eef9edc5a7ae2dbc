package manager

import (
	"context"
	"errors"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/gogpu/imgres"
	"github.com/gogpu/imgres/source"
)

// ErrWatching is returned by Watch when the manager is already watching.
var ErrWatching = errors.New("manager: already watching")

// watcher tracks the directories of open local resources.
type watcher struct {
	fs *fsnotify.Watcher

	mu   sync.Mutex
	dirs map[string]bool
}

func (w *watcher) add(path string) {
	dir := filepath.Dir(path)
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.dirs[dir] {
		return
	}
	if err := w.fs.Add(dir); err != nil {
		imgres.Logger().Warn("manager: watch failed", "dir", dir, "error", err)
		return
	}
	w.dirs[dir] = true
}

func (w *watcher) close() error {
	return w.fs.Close()
}

// Watch evicts local resources whose file is written, replaced or removed,
// so the next Acquire loads the new content. It blocks until ctx is done or
// the manager is closed.
func (m *Manager) Watch(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	w := &watcher{fs: fw, dirs: make(map[string]bool)}

	m.mu.Lock()
	switch {
	case m.closed:
		m.mu.Unlock()
		_ = fw.Close()
		return ErrClosed
	case m.watch != nil:
		m.mu.Unlock()
		_ = fw.Close()
		return ErrWatching
	}
	m.watch = w
	for key := range m.entries {
		if !source.IsRemote(key) && !source.IsVideo(key) {
			w.add(key)
		}
	}
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		if m.watch == w {
			m.watch = nil
		}
		m.mu.Unlock()
		_ = w.close()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			path := filepath.Clean(ev.Name)
			if m.Evict(path) {
				imgres.Logger().Info("manager: file changed", "ref", path, "op", ev.Op.String())
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			imgres.Logger().Warn("manager: watcher error", "error", err)
		}
	}
}
