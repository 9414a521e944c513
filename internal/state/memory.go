package state

import (
	"io/fs"
	"sync"
)

// memoryBackend keeps a document in memory. Useful for tests and for a
// frame that does not need to survive restarts.
type memoryBackend struct {
	name    string
	locking bool

	mu     sync.RWMutex
	data   []byte
	exists bool

	writer sync.Mutex
}

func newMemoryBackend(name string, locking bool) *memoryBackend {
	return &memoryBackend{name: name, locking: locking}
}

func (b *memoryBackend) Read() ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.exists {
		return nil, fs.ErrNotExist
	}
	return append([]byte(nil), b.data...), nil
}

func (b *memoryBackend) Write(data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.data = append([]byte(nil), data...)
	b.exists = true
	return nil
}

func (b *memoryBackend) Lock() (func(), error) {
	if !b.locking {
		return func() {}, nil
	}
	b.writer.Lock()
	return b.writer.Unlock, nil
}

func (b *memoryBackend) String() string { return b.name }
