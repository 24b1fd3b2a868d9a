package memory

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/berrypatch/member-berries/internal/logger"
)

// FileWatcher reloads a store when its backing file is rewritten by a
// foreign process. Persistence stays last-writer-wins at whole-file
// granularity; this only keeps a long-lived reader from serving stale
// memories after an external write. Own writes are recognized and skipped.
type FileWatcher struct {
	store    *Store
	fsw      *fsnotify.Watcher
	debounce time.Duration
}

func NewFileWatcher(store *Store) (*FileWatcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// Watch the directory: editors and atomic renames replace the file
	// inode, which drops a direct file watch.
	if err := fsw.Add(filepath.Dir(store.Path())); err != nil {
		fsw.Close()
		return nil, err
	}
	return &FileWatcher{
		store:    store,
		fsw:      fsw,
		debounce: 200 * time.Millisecond,
	}, nil
}

// Run blocks until ctx is done, reloading the store after relevant events.
func (w *FileWatcher) Run(ctx context.Context) {
	log := logger.ForComponent("memwatch")

	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != filepath.Clean(w.store.Path()) {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				timer.Reset(w.debounce)
			}
		case <-timerC:
			timer = nil
			timerC = nil
			if !w.store.externallyModified() {
				continue
			}
			if err := w.store.Reload(); err != nil {
				log.Warn("reload after external write failed", "error", err)
				continue
			}
			log.Info("memory reloaded after external write")
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			log.Warn("watch error", "error", err)
		}
	}
}

func (w *FileWatcher) Close() error {
	return w.fsw.Close()
}
