package watcher

import (
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/nguyentantai21042004/voice-note/internal/logger"
)

const defaultSettleDelay = 500 * time.Millisecond

type Option func(*implWatcher)

// WithSettleDelay sets how long to wait after a create event before the file is handled.
func WithSettleDelay(d time.Duration) Option {
	return func(w *implWatcher) {
		w.settleDelay = d
	}
}

// WithBacklog lists files already waiting in the inbox. Start handles them
// after the watch is registered, so nothing dropped in between is missed.
func WithBacklog(list func() ([]string, error)) Option {
	return func(w *implWatcher) {
		w.backlog = list
	}
}

// New creates a Watcher on inputDir. Only files accepted by filter reach handler,
// at most maxConcurrent at a time.
func New(inputDir string, filter Filter, handler EventHandler, log logger.Logger, maxConcurrent int, opts ...Option) (Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	if err := watcher.Add(inputDir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("add watch path: %w", err)
	}

	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}

	w := &implWatcher{
		inputDir:      inputDir,
		filter:        filter,
		handler:       handler,
		logger:        log,
		watcher:       watcher,
		maxConcurrent: maxConcurrent,
		semaphore:     make(chan struct{}, maxConcurrent),
		settleDelay:   defaultSettleDelay,
		inFlight:      make(map[string]bool),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}
