package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"

	"picframe/internal/frame"
)

// DisplayStore implements frame.DisplayStore over a JSON document of the
// form {"current_image": string|null, "updated": timestamp}.
type DisplayStore struct {
	backend backend
	clock   frame.Clock
	logger  frame.Logger
}

var _ frame.DisplayStore = (*DisplayStore)(nil)

// NewFileDisplayStore creates a display store persisted at path.
func NewFileDisplayStore(path string, locking bool, clock frame.Clock, logger frame.Logger) (*DisplayStore, error) {
	b, err := newFileBackend(path, locking)
	if err != nil {
		return nil, err
	}
	return &DisplayStore{backend: b, clock: clock, logger: logger}, nil
}

// NewMemoryDisplayStore creates an in-memory display store.
func NewMemoryDisplayStore(locking bool, clock frame.Clock, logger frame.Logger) *DisplayStore {
	return &DisplayStore{backend: newMemoryBackend("display", locking), clock: clock, logger: logger}
}

// GetCurrent returns the current filename, or "" when none is recorded or
// the document is missing or corrupt.
func (s *DisplayStore) GetCurrent() (string, error) {
	data, err := s.backend.Read()
	if err == nil {
		var st frame.DisplayState
		err = decodeDocument(data, &st)
		if err == nil {
			if st.CurrentImage == nil {
				return "", nil
			}
			return *st.CurrentImage, nil
		}
	}

	if IsRecoverable(err) {
		if !isNotExist(err) {
			s.logger.Warn("display state unreadable, current image unknown", "path", s.backend.String(), "error", err)
		}
		return "", nil
	}
	return "", fmt.Errorf("reading display state from %s: %w", s.backend.String(), err)
}

// SetCurrent overwrites the display state. An empty filename writes null.
func (s *DisplayStore) SetCurrent(filename string) error {
	st := frame.DisplayState{Updated: frame.FormatTimestamp(s.clock.Now())}
	if filename != "" {
		st.CurrentImage = &filename
	}

	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encoding display state: %w", err)
	}

	unlock, err := s.backend.Lock()
	if err != nil {
		return err
	}
	defer unlock()

	if err := s.backend.Write(data); err != nil {
		return fmt.Errorf("writing display state to %s: %w", s.backend.String(), err)
	}
	return nil
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
