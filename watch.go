package fsm

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const reloadDebounce = 100 * time.Millisecond

// Reload is a definition file that changed on disk and parsed successfully.
type Reload struct {
	Path       string
	Definition *Definition
}

// Watcher reloads definition files when they change. Invalid documents are
// reported on Errors and never reach Reloads, so a player can keep running
// its last good definition.
type Watcher struct {
	watcher *fsnotify.Watcher
	files   map[string]struct{}
	dirs    map[string]struct{}
	Reloads chan Reload
	Errors  chan error
	closeCh chan struct{}
	done    chan struct{}
	once    sync.Once
}

// NewWatcher watches the given definition files, or every definition file
// inside the given directories.
func NewWatcher(paths ...string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	files := make(map[string]struct{})
	dirs := make(map[string]struct{})
	watched := make(map[string]struct{})

	for _, path := range paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			_ = w.Close()
			return nil, err
		}

		dir := abs

		if info, err := os.Stat(abs); err == nil && !info.IsDir() {
			files[abs] = struct{}{}
			dir = filepath.Dir(abs)
		} else {
			dirs[abs] = struct{}{}
		}

		if _, ok := watched[dir]; ok {
			continue
		}

		watched[dir] = struct{}{}

		if err := w.Add(dir); err != nil {
			_ = w.Close()
			return nil, err
		}
	}

	watcher := &Watcher{
		watcher: w,
		files:   files,
		dirs:    dirs,
		Reloads: make(chan Reload, 16),
		Errors:  make(chan error, 16),
		closeCh: make(chan struct{}),
		done:    make(chan struct{}),
	}

	go watcher.run()

	return watcher, nil
}

// Close stops watching and closes Reloads and Errors.
func (w *Watcher) Close() error {
	var err error

	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
		<-w.done
	})

	return err
}

func (w *Watcher) run() {
	// Each path is loaded once its events have been quiet for reloadDebounce,
	// so a truncate followed by a write is parsed only after the write.
	type settle struct {
		path string
		gen  uint64
	}

	pending := make(map[string]*time.Timer)
	gens := make(map[string]uint64)
	settled := make(chan settle)

	defer func() {
		for _, t := range pending {
			t.Stop()
		}

		close(w.Reloads)
		close(w.Errors)
		close(w.done)
	}()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}

			if !w.wants(event.Name) {
				continue
			}

			// A timer that already fired may still be waiting to deliver;
			// the generation makes the receiver drop it.
			if t, ok := pending[event.Name]; ok {
				t.Stop()
			}

			gens[event.Name]++
			next := settle{path: event.Name, gen: gens[event.Name]}

			pending[event.Name] = time.AfterFunc(reloadDebounce, func() {
				select {
				case settled <- next:
				case <-w.closeCh:
				}
			})
		case s := <-settled:
			if s.gen != gens[s.path] {
				continue
			}

			delete(pending, s.path)
			path := s.path

			def, err := LoadDefinition(path)
			if err != nil {
				if !w.sendError(err) {
					return
				}

				continue
			}

			select {
			case w.Reloads <- Reload{Path: path, Definition: def}:
			case <-w.closeCh:
				return
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}

			if !w.sendError(err) {
				return
			}
		case <-w.closeCh:
			return
		}
	}
}

func (w *Watcher) wants(path string) bool {
	if !isDefinitionFile(path) {
		return false
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}

	if _, ok := w.dirs[filepath.Dir(abs)]; ok {
		return true
	}

	_, ok := w.files[abs]

	return ok
}

func (w *Watcher) sendError(err error) bool {
	select {
	case w.Errors <- err:
		return true
	case <-w.closeCh:
		return false
	}
}
