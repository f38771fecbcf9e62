package knowledge

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher re-imports knowledge files when they change on disk.
type Watcher struct {
	loader  *Loader
	watcher *fsnotify.Watcher
	log     *zap.Logger
}

// NewWatcher creates a watcher over the loader's knowledge directory.
func NewWatcher(loader *Loader, log *zap.Logger) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(loader.Dir()); err != nil {
		w.Close()
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Watcher{loader: loader, watcher: w, log: log}, nil
}

// Run re-imports markdown files on create and write events until the
// context is cancelled. Import failures are logged and watching continues.
func (w *Watcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Ext(event.Name) != ".md" {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			w.log.Info("knowledge file changed, re-importing", zap.String("file", event.Name))
			if _, err := w.loader.ImportFile(ctx, event.Name); err != nil {
				w.log.Error("re-import failed", zap.String("file", event.Name), zap.Error(err))
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error", zap.Error(err))
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
