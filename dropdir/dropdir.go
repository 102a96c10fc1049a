// Package dropdir ingests MP3 files dropped into a watched directory. It is
// the "drop action" upload surface: copy a file in, and it shows up in the
// playlist.
package dropdir

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"SpectraFM/logger"
	"SpectraFM/registry"

	"github.com/fsnotify/fsnotify"
)

// settleDelay gives the writer time to finish before the file is read.
const settleDelay = 500 * time.Millisecond

// Watcher watches one directory and registers dropped MP3s exactly once.
type Watcher struct {
	dir     string
	reg     *registry.Registry
	notify  func(level, msg string)
	onAdded func()

	watcher   *fsnotify.Watcher
	processed map[string]bool
}

// New creates a watcher on dir. The directory is created if missing.
func New(dir string, reg *registry.Registry, notify func(level, msg string)) (*Watcher, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating drop directory %s: %w", dir, err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watching %s: %w", dir, err)
	}

	return &Watcher{
		dir:       dir,
		reg:       reg,
		notify:    notify,
		watcher:   fsw,
		processed: make(map[string]bool),
	}, nil
}

// OnAdded registers a callback fired after each successful registration.
func (w *Watcher) OnAdded(fn func()) {
	w.onAdded = fn
}

// Run processes events until ctx is cancelled or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) {
	logger.Info("watching drop directory", logger.String("dir", w.dir))
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&fsnotify.Create != fsnotify.Create {
				continue
			}
			if w.processed[event.Name] {
				continue
			}
			w.processed[event.Name] = true
			go w.ingest(ctx, event.Name)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("drop watcher error", logger.ErrorField(err))
		case <-ctx.Done():
			return
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

func (w *Watcher) ingest(ctx context.Context, path string) {
	// Let the copy settle before reading.
	time.Sleep(settleDelay)

	name := filepath.Base(path)
	if !strings.EqualFold(filepath.Ext(name), ".mp3") {
		logger.Warn("ignoring non-MP3 drop", logger.String("file", name))
		if w.notify != nil {
			w.notify("warn", fmt.Sprintf("%s: not an MP3, ignored", name))
		}
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("reading dropped file", logger.String("file", name), logger.ErrorField(err))
		return
	}

	if _, err := w.reg.Add(ctx, name, "audio/mpeg", data); err != nil {
		logger.Warn("dropped file rejected", logger.String("file", name), logger.ErrorField(err))
		if w.notify != nil {
			w.notify("warn", fmt.Sprintf("%s: %v", name, err))
		}
		return
	}

	if w.onAdded != nil {
		w.onAdded()
	}
}
