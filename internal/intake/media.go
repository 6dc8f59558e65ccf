package intake

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Kind is the display classification of an accepted file.
type Kind string

const (
	KindAudio Kind = "audio"
	KindVideo Kind = "video"
)

// Candidate describes a file offered for intake. Open yields the raw bytes.
type Candidate struct {
	Name string
	Size int64
	Open func() (io.ReadCloser, error)
}

// MediaFile is an accepted candidate. It is immutable once accepted.
type MediaFile struct {
	name string
	size int64
	kind Kind
	open func() (io.ReadCloser, error)
}

func (m MediaFile) Name() string { return m.name }
func (m MediaFile) Size() int64  { return m.size }
func (m MediaFile) Kind() Kind   { return m.kind }

func (m MediaFile) Extension() string {
	return strings.ToLower(filepath.Ext(m.name))
}

// SizeLabel renders the size in megabytes with two decimals.
func (m MediaFile) SizeLabel() string {
	return fmt.Sprintf("%.2f MB", float64(m.size)/(1024*1024))
}

// Open returns a fresh reader over the file content.
func (m MediaFile) Open() (io.ReadCloser, error) {
	if m.open == nil {
		return nil, fmt.Errorf("media file %s has no content", m.name)
	}
	return m.open()
}

// IsZero reports whether m is the zero value (no file accepted).
func (m MediaFile) IsZero() bool {
	return m.name == ""
}

// FromPath builds a Candidate backed by a file on disk.
func FromPath(path string) (Candidate, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Candidate{}, fmt.Errorf("stat media file: %w", err)
	}
	if info.IsDir() {
		return Candidate{}, fmt.Errorf("%s is a directory", path)
	}

	return Candidate{
		Name: filepath.Base(path),
		Size: info.Size(),
		Open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	}, nil
}
