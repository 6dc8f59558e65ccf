package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/nguyentantai21042004/voice-note/internal/logger"
)

type implWatcher struct {
	inputDir      string
	filter        Filter
	handler       EventHandler
	logger        logger.Logger
	watcher       *fsnotify.Watcher
	maxConcurrent int
	semaphore     chan struct{}
	settleDelay   time.Duration
	backlog       func() ([]string, error)
	wg            sync.WaitGroup

	mu       sync.Mutex
	inFlight map[string]bool
}

// Start monitors the inbox until ctx is cancelled, then waits for running handlers.
func (w *implWatcher) Start(ctx context.Context) error {
	w.logger.Info(ctx, "File watcher started (max concurrent: %d). Monitoring: %s", w.maxConcurrent, w.inputDir)

	if err := w.handleBacklog(ctx); err != nil {
		w.wg.Wait()
		return err
	}

	for {
		select {
		case <-ctx.Done():
			w.logger.Info(ctx, "Waiting for ongoing processing to complete...")
			w.wg.Wait()
			w.logger.Info(ctx, "File watcher stopped")
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if !event.Has(fsnotify.Create) {
				continue
			}

			name := filepath.Base(event.Name)
			if strings.HasPrefix(name, ".") || !w.filter(name) {
				w.logger.Debug(ctx, "Ignoring unsupported file: %s", event.Name)
				continue
			}

			w.logger.Info(ctx, "New media detected: %s", event.Name)

			// Give the writer a moment to finish the file.
			if w.settleDelay > 0 {
				time.Sleep(w.settleDelay)
			}

			if err := w.dispatch(ctx, event.Name); err != nil {
				w.wg.Wait()
				return err
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error(ctx, "Watcher error: %v", err)
		}
	}
}

func (w *implWatcher) handleBacklog(ctx context.Context) error {
	if w.backlog == nil {
		return nil
	}
	paths, err := w.backlog()
	if err != nil {
		return fmt.Errorf("list backlog: %w", err)
	}
	if len(paths) > 0 {
		w.logger.Info(ctx, "Found %d waiting media files", len(paths))
	}
	for _, path := range paths {
		if err := w.dispatch(ctx, path); err != nil {
			return err
		}
	}
	return nil
}

// dispatch runs the handler for path once a concurrency slot is free. Paths
// already in flight, or gone by the time a slot frees up, are skipped.
func (w *implWatcher) dispatch(ctx context.Context, path string) error {
	if !w.claim(path) {
		return nil
	}

	select {
	case w.semaphore <- struct{}{}:
	case <-ctx.Done():
		w.unclaim(path)
		return ctx.Err()
	}

	if _, err := os.Stat(path); err != nil {
		<-w.semaphore
		w.unclaim(path)
		w.logger.Debug(ctx, "Skipping %s: %v", path, err)
		return nil
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer func() { <-w.semaphore }()
		defer w.unclaim(path)

		if err := w.handler(ctx, path); err != nil {
			w.logger.Error(ctx, "Failed to process %s: %v", path, err)
		}
	}()
	return nil
}

// Stop closes the file watcher
func (w *implWatcher) Stop() error {
	return w.watcher.Close()
}

// claim marks path as being handled. Repeated create events for the same
// path are dropped until the handler returns.
func (w *implWatcher) claim(path string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.inFlight[path] {
		return false
	}
	w.inFlight[path] = true
	return true
}

func (w *implWatcher) unclaim(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.inFlight, path)
}
