package adapters

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

const defaultWatchDebounce = 500 * time.Millisecond

// ChangeHandler is called with the path of a watched file after its
// changes have settled.
type ChangeHandler func(ctx context.Context, path string)

// FileWatcher watches a fixed set of files by watching their parent
// directories, so editors that replace files atomically keep triggering.
type FileWatcher struct {
	Debounce time.Duration

	files    map[string]struct{}
	onChange ChangeHandler
	mu       sync.Mutex
	pending  map[string]*time.Timer
}

func NewFileWatcher(debounce time.Duration, onChange ChangeHandler, paths ...string) *FileWatcher {
	if debounce <= 0 {
		debounce = defaultWatchDebounce
	}
	files := make(map[string]struct{}, len(paths))
	for _, path := range paths {
		if path == "" {
			continue
		}
		files[filepath.Clean(path)] = struct{}{}
	}
	return &FileWatcher{
		Debounce: debounce,
		files:    files,
		onChange: onChange,
		pending:  map[string]*time.Timer{},
	}
}

// Run blocks until ctx is cancelled.
func (w *FileWatcher) Run(ctx context.Context) error {
	if len(w.files) == 0 {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("no files to watch")
	}
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create watcher").
			WithCause(err)
	}
	defer fsWatcher.Close()

	dirs := map[string]struct{}{}
	for file := range w.files {
		dirs[filepath.Dir(file)] = struct{}{}
	}
	for dir := range dirs {
		if err := fsWatcher.Add(dir); err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeNotFound).
				WithMsg("failed to watch " + dir).
				WithCause(err)
		}
		log.Ctx(ctx).Debug().Str("dir", dir).Msg("watching directory")
	}
	defer w.stopPending()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fsWatcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ctx, event)
		case err, ok := <-fsWatcher.Errors:
			if !ok {
				return nil
			}
			log.Ctx(ctx).Warn().Err(err).Msg("watcher error")
		}
	}
}

func (w *FileWatcher) handleEvent(ctx context.Context, event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return
	}
	path := filepath.Clean(event.Name)
	if _, ok := w.files[path]; !ok {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if timer, ok := w.pending[path]; ok {
		timer.Stop()
	}
	w.pending[path] = time.AfterFunc(w.Debounce, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()
		if ctx.Err() != nil || w.onChange == nil {
			return
		}
		w.onChange(ctx, path)
	})
}

func (w *FileWatcher) stopPending() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, timer := range w.pending {
		timer.Stop()
		delete(w.pending, path)
	}
}
