package fs

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/halcyon-labs/lore-cli/internal/core/ports/driven"
	"github.com/halcyon-labs/lore-cli/internal/logger"
)

var _ driven.CorpusWatcher = (*Watcher)(nil)

// DefaultSettle is how long the watcher waits after the last change
// before signalling, so editor save bursts collapse into one rebuild.
const DefaultSettle = 2 * time.Second

// Watcher signals corpus directory changes, debounced.
type Watcher struct {
	dir     string
	settle  time.Duration
	watcher *fsnotify.Watcher
}

// NewWatcher creates a corpus watcher rooted at dir.
func NewWatcher(dir string, settle time.Duration) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if settle <= 0 {
		settle = DefaultSettle
	}
	return &Watcher{dir: dir, settle: settle, watcher: fw}, nil
}

// Watch delivers one signal per settled batch of relevant filesystem
// changes until ctx is cancelled.
func (w *Watcher) Watch(ctx context.Context) (<-chan struct{}, error) {
	if err := w.watcher.Add(w.dir); err != nil {
		return nil, fmt.Errorf("watching %s: %w", w.dir, err)
	}

	signals := make(chan struct{}, 1)
	go w.run(ctx, signals)
	return signals, nil
}

func (w *Watcher) run(ctx context.Context, signals chan<- struct{}) {
	defer close(signals)

	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !relevant(event) {
				continue
			}
			logger.Debug("watch: %s %s", event.Op, event.Name)
			if timer == nil {
				timer = time.NewTimer(w.settle)
				timerC = timer.C
			} else {
				timer.Reset(w.settle)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("watch: %v", err)

		case <-timerC:
			timer = nil
			timerC = nil
			select {
			case signals <- struct{}{}:
			default:
				// A pending signal already covers this batch.
			}
		}
	}
}

// relevant filters out events on files the loader would ignore.
func relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	ext := strings.ToLower(filepath.Ext(event.Name))
	return corpusExtensions[ext]
}

// Close releases the underlying watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
