package monitoring

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// ArtifactEvent is a change to the loaded artifact on disk.
type ArtifactEvent struct {
	Path string
	Op   string
}

// ArtifactWatcher reports changes to the artifact the process loaded. The
// in-memory model is never reloaded; operators must restart to pick up a new
// file.
type ArtifactWatcher struct {
	path    string
	watcher *fsnotify.Watcher
	logger  *zap.Logger
	events  chan ArtifactEvent

	stopOnce sync.Once
	done     chan struct{}
}

// NewArtifactWatcher watches the directory holding path so replacements by
// rename are seen too.
func NewArtifactWatcher(path string, logger *zap.Logger) (*ArtifactWatcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, err
	}
	return &ArtifactWatcher{
		path:    filepath.Clean(path),
		watcher: watcher,
		logger:  logger,
		events:  make(chan ArtifactEvent, 16),
		done:    make(chan struct{}),
	}, nil
}

// Events delivers artifact changes. Events are dropped when nobody reads.
func (w *ArtifactWatcher) Events() <-chan ArtifactEvent {
	return w.events
}

// Run blocks until ctx is cancelled or Stop is called.
func (w *ArtifactWatcher) Run(ctx context.Context) {
	defer close(w.events)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			w.logger.Warn("model artifact changed on disk; restart to load it",
				zap.String("path", w.path), zap.String("op", event.Op.String()))
			select {
			case w.events <- ArtifactEvent{Path: w.path, Op: event.Op.String()}:
			default:
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("artifact watch error", zap.Error(err))
		}
	}
}

// Stop releases the underlying watcher.
func (w *ArtifactWatcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)
		err = w.watcher.Close()
	})
	return err
}
