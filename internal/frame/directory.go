package frame

import (
	"io"
	"time"
)

// ImageFile describes one regular file in the upload directory.
type ImageFile struct {
	Name    string
	Size    int64
	ModTime time.Time
}

// ImageDirectory abstracts the folder holding uploaded image bytes so the
// service can be tested without touching the real filesystem.
// Filenames are bare names; implementations reject anything with a path
// separator.
type ImageDirectory interface {
	// List returns every regular file in the directory. A missing
	// directory yields an empty list.
	List() ([]ImageFile, error)

	// Stat returns the file's info, or an error wrapping ErrNotFound.
	Stat(filename string) (ImageFile, error)

	// Path returns the location handed to the renderer.
	Path(filename string) string

	// Open opens the file for reading.
	Open(filename string) (io.ReadCloser, error)

	// Save writes r to filename, replacing any existing file, and returns
	// the number of bytes written.
	Save(filename string, r io.Reader) (int64, error)

	// Remove deletes the file.
	Remove(filename string) error
}
