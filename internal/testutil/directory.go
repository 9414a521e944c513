package testutil

import (
	"bytes"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"picframe/internal/frame"
)

// MockFile represents a file in the mock image directory.
type MockFile struct {
	Content []byte
	ModTime time.Time
}

// MockImageDirectory is an in-memory image directory for testing.
type MockImageDirectory struct {
	mu    sync.Mutex
	root  string
	files map[string]*MockFile

	// RemoveErr, when set, is returned by Remove.
	RemoveErr error
}

// NewMockImageDirectory creates an empty mock directory reported at /uploads.
func NewMockImageDirectory() *MockImageDirectory {
	return &MockImageDirectory{
		root:  "/uploads",
		files: make(map[string]*MockFile),
	}
}

// AddFile adds a file with the given modification time.
func (m *MockImageDirectory) AddFile(name string, content []byte, modTime time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[name] = &MockFile{Content: content, ModTime: modTime}
}

// Has reports whether name exists.
func (m *MockImageDirectory) Has(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.files[name]
	return ok
}

// Content returns the stored bytes of name.
func (m *MockImageDirectory) Content(name string) []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	if f, ok := m.files[name]; ok {
		return f.Content
	}
	return nil
}

func (m *MockImageDirectory) List() ([]frame.ImageFile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	files := make([]frame.ImageFile, 0, len(m.files))
	for name, f := range m.files {
		files = append(files, frame.ImageFile{Name: name, Size: int64(len(f.Content)), ModTime: f.ModTime})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

func (m *MockImageDirectory) Stat(name string) (frame.ImageFile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	f, ok := m.files[name]
	if !ok {
		return frame.ImageFile{}, fmt.Errorf("%w: %s", frame.ErrNotFound, name)
	}
	return frame.ImageFile{Name: name, Size: int64(len(f.Content)), ModTime: f.ModTime}, nil
}

func (m *MockImageDirectory) Path(name string) string {
	return path.Join(m.root, name)
}

func (m *MockImageDirectory) Open(name string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	f, ok := m.files[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", frame.ErrNotFound, name)
	}
	return io.NopCloser(bytes.NewReader(f.Content)), nil
}

func (m *MockImageDirectory) Save(name string, r io.Reader) (int64, error) {
	if strings.ContainsAny(name, `/\`) {
		return 0, fmt.Errorf("invalid filename: %q", name)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}
	m.AddFile(name, data, time.Now())
	return int64(len(data)), nil
}

func (m *MockImageDirectory) Remove(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.RemoveErr != nil {
		return m.RemoveErr
	}
	if _, ok := m.files[name]; !ok {
		return fmt.Errorf("%w: %s", frame.ErrNotFound, name)
	}
	delete(m.files, name)
	return nil
}

// Compile-time check
var _ frame.ImageDirectory = (*MockImageDirectory)(nil)
