package toolrt

import (
	"github.com/fsnotify/fsnotify"
)

// ScriptWatcher watches a single tool program file on disk and reports
// its contents again each time it changes, so a host can keep calling
// CompileUserScript without the user having to manually reload. It is a
// thin wrapper: callers drain Changes in their own event loop and decide
// when to recompile, rather than the watcher recompiling on their behalf.
type ScriptWatcher struct {
	w    *fsnotify.Watcher
	path string

	Changes chan struct{}
	Errors  chan error
}

// WatchUserScript starts watching path for writes, creates and renames
// (the events an editor's save produces). Callers must call Close when done.
func WatchUserScript(path string) (*ScriptWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(path); err != nil {
		w.Close()
		return nil, err
	}

	sw := &ScriptWatcher{
		w:       w,
		path:    path,
		Changes: make(chan struct{}, 1),
		Errors:  make(chan error, 1),
	}
	go sw.run()
	return sw, nil
}

func (sw *ScriptWatcher) run() {
	for {
		select {
		case ev, ok := <-sw.w.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			select {
			case sw.Changes <- struct{}{}:
			default:
				// a reload is already pending; coalesce
			}
		case err, ok := <-sw.w.Errors:
			if !ok {
				return
			}
			select {
			case sw.Errors <- err:
			default:
			}
		}
	}
}

// Close stops the underlying watcher.
func (sw *ScriptWatcher) Close() error { return sw.w.Close() }
