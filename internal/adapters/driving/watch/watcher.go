// Package watch ingests files as they appear or change in watched
// directories, using filesystem notifications.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
	"github.com/custodia-labs/corpus-cli/internal/core/ports/driving"
	"github.com/custodia-labs/corpus-cli/internal/logger"
)

// debounceDelay is how long a file must stay quiet before it is
// ingested; editors emit bursts of write events.
const debounceDelay = 500 * time.Millisecond

// Watcher ingests files on filesystem change events.
type Watcher struct {
	ingest driving.IngestService

	mu      sync.Mutex
	pending map[string]*time.Timer
}

// NewWatcher creates a watcher over the given ingest service.
func NewWatcher(ingest driving.IngestService) *Watcher {
	return &Watcher{
		ingest:  ingest,
		pending: make(map[string]*time.Timer),
	}
}

// Run watches dir (and its subdirectories) until ctx is cancelled.
// Each created or modified file is ingested after a debounce window.
func (w *Watcher) Run(ctx context.Context, dir string) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fsw.Close()

	if err := addRecursive(fsw, dir); err != nil {
		return err
	}
	logger.Info("Watching %s", dir)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ctx, fsw, event)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watch error: %v", err)
		}
	}
}

func (w *Watcher) handleEvent(ctx context.Context, fsw *fsnotify.Watcher, event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}
	if isHidden(event.Name) {
		return
	}

	info, err := os.Stat(event.Name)
	if err != nil {
		return
	}
	if info.IsDir() {
		// New directories join the watch set
		if event.Has(fsnotify.Create) {
			if err := addRecursive(fsw, event.Name); err != nil {
				logger.Warn("Failed to watch %s: %v", event.Name, err)
			}
		}
		return
	}

	w.schedule(ctx, event.Name)
}

// schedule (re)arms the debounce timer for a path.
func (w *Watcher) schedule(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, ok := w.pending[path]; ok {
		timer.Reset(debounceDelay)
		return
	}
	w.pending[path] = time.AfterFunc(debounceDelay, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()
		w.ingestFile(ctx, path)
	})
}

func (w *Watcher) ingestFile(ctx context.Context, path string) {
	content, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("Failed to read %s: %v", path, err)
		return
	}
	if len(content) == 0 {
		return
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	doc, err := w.ingest.Ingest(ctx, &domain.RawInput{
		URI:          "file://" + abs,
		FilenameHint: filepath.Base(path),
		Content:      content,
	})
	if err != nil {
		logger.Warn("Ingest of %s failed: %v", path, err)
		return
	}
	logger.Info("Ingested %s -> %s (%s)", path, doc.ID, doc.Status)
}

// addRecursive watches dir and every subdirectory beneath it.
func addRecursive(fsw *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if isHidden(path) && path != dir {
			return filepath.SkipDir
		}
		if err := fsw.Add(path); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		return nil
	})
}

func isHidden(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".") && base != "." && base != ".."
}
