package fs

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"picframe/internal/frame"
)

// OSImageDirectory is the real filesystem implementation of frame.ImageDirectory.
// It operates on a single flat upload folder; subdirectories are ignored.
type OSImageDirectory struct {
	root   string
	ignore []string
}

// NewOSImageDirectory creates an image directory rooted at root. Entries
// matching an ignore pattern, or a pattern in the folder's .frameignore,
// are left out of List. The folder is created on first Save if it does not
// exist.
func NewOSImageDirectory(root string, ignore ...string) *OSImageDirectory {
	return &OSImageDirectory{root: root, ignore: ignore}
}

// Root returns the upload folder.
func (d *OSImageDirectory) Root() string {
	return d.root
}

// List returns every regular, non-ignored file directly inside the upload folder.
func (d *OSImageDirectory) List() ([]frame.ImageFile, error) {
	entries, err := os.ReadDir(d.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading directory: %w", err)
	}

	extra, err := ParseIgnoreFile(filepath.Join(d.root, IgnoreFileName))
	if err != nil {
		return nil, err
	}
	matcher := NewIgnoreMatcher(append(append([]string{}, d.ignore...), extra...))

	files := make([]frame.ImageFile, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() || matcher.Match(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				// Deleted between ReadDir and Info.
				continue
			}
			return nil, fmt.Errorf("stat %s: %w", entry.Name(), err)
		}
		files = append(files, frame.ImageFile{
			Name:    entry.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	return files, nil
}

// Stat returns info for filename, or an error wrapping frame.ErrNotFound.
func (d *OSImageDirectory) Stat(filename string) (frame.ImageFile, error) {
	p, err := d.resolve(filename)
	if err != nil {
		return frame.ImageFile{}, err
	}

	info, err := os.Stat(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return frame.ImageFile{}, fmt.Errorf("%w: %s", frame.ErrNotFound, filename)
		}
		return frame.ImageFile{}, fmt.Errorf("stat path: %w", err)
	}
	if !info.Mode().IsRegular() {
		return frame.ImageFile{}, fmt.Errorf("%w: not a regular file: %s", frame.ErrNotFound, filename)
	}
	return frame.ImageFile{Name: filename, Size: info.Size(), ModTime: info.ModTime()}, nil
}

// Path returns the absolute location of filename inside the upload folder.
func (d *OSImageDirectory) Path(filename string) string {
	p := filepath.Join(d.root, filename)
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

// Open opens filename for reading.
func (d *OSImageDirectory) Open(filename string) (io.ReadCloser, error) {
	p, err := d.resolve(filename)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", frame.ErrNotFound, filename)
		}
		return nil, err
	}
	return f, nil
}

// Save writes r to filename using atomic write (temp file + rename).
func (d *OSImageDirectory) Save(filename string, r io.Reader) (int64, error) {
	p, err := d.resolve(filename)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(d.root, 0755); err != nil {
		return 0, fmt.Errorf("failed to create upload directory: %w", err)
	}

	tmpFile, err := os.CreateTemp(d.root, ".tmp-*")
	if err != nil {
		return 0, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	written, err := io.Copy(tmpFile, r)
	if err != nil {
		tmpFile.Close()
		return 0, fmt.Errorf("failed to write data: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return 0, fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return 0, fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmpPath, p); err != nil {
		return 0, fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return written, nil
}

// Remove deletes filename.
func (d *OSImageDirectory) Remove(filename string) error {
	p, err := d.resolve(filename)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", frame.ErrNotFound, filename)
		}
		return err
	}
	return nil
}

// resolve maps a bare filename to its path, refusing anything that could
// leave the upload folder.
func (d *OSImageDirectory) resolve(filename string) (string, error) {
	if err := frame.CheckFilename(filename); err != nil {
		return "", err
	}
	if strings.HasPrefix(filename, ".tmp-") {
		return "", fmt.Errorf("%w: reserved filename: %q", frame.ErrValidation, filename)
	}
	return filepath.Join(d.root, filename), nil
}

// Compile-time check that OSImageDirectory implements frame.ImageDirectory interface
var _ frame.ImageDirectory = (*OSImageDirectory)(nil)
