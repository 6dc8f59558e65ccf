package watcher

import "context"

// Watcher hands new media files in the inbox to a handler.
type Watcher interface {
	Start(ctx context.Context) error
	Stop() error
}

// EventHandler is a function that handles file events
type EventHandler func(ctx context.Context, filePath string) error

// Filter reports whether a file name should be handled.
type Filter func(name string) bool
