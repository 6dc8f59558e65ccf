package processor

import "context"

// Processor runs whole files through a pipeline session.
type Processor interface {
	// Process takes one media file from selection to exported note and
	// archives the source on success.
	Process(ctx context.Context, path string) error
	// ProcessAll processes paths with bounded concurrency and reports how many failed.
	ProcessAll(ctx context.Context, paths []string) error
	// Discover lists accepted media files directly inside dir, sorted by name.
	Discover(dir string) ([]string, error)
}
