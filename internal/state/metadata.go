package state

import (
	"encoding/json"
	"fmt"
	"sort"

	"picframe/internal/frame"
)

// MetadataStore implements frame.MetadataStore over a JSON document.
type MetadataStore struct {
	backend backend
	clock   frame.Clock
	logger  frame.Logger
}

var _ frame.MetadataStore = (*MetadataStore)(nil)

// NewFileMetadataStore creates a metadata store persisted at path.
// locking enables the per-document writer lock.
func NewFileMetadataStore(path string, locking bool, clock frame.Clock, logger frame.Logger) (*MetadataStore, error) {
	b, err := newFileBackend(path, locking)
	if err != nil {
		return nil, err
	}
	return &MetadataStore{backend: b, clock: clock, logger: logger}, nil
}

// NewMemoryMetadataStore creates an in-memory metadata store.
func NewMemoryMetadataStore(locking bool, clock frame.Clock, logger frame.Logger) *MetadataStore {
	return &MetadataStore{backend: newMemoryBackend("metadata", locking), clock: clock, logger: logger}
}

// Load reads the persisted document. Missing or corrupt documents yield an
// empty document.
func (s *MetadataStore) Load() (*frame.MetadataDocument, error) {
	data, err := s.backend.Read()
	if err == nil {
		doc := frame.NewMetadataDocument()
		err = decodeDocument(data, doc)
		if err == nil {
			doc.Normalize()
			return doc, nil
		}
	}

	if IsRecoverable(err) {
		if !isNotExist(err) {
			s.logger.Warn("metadata document unreadable, using empty document", "path", s.backend.String(), "error", err)
		}
		return frame.NewMetadataDocument(), nil
	}
	return nil, fmt.Errorf("reading metadata from %s: %w", s.backend.String(), err)
}

// Save overwrites the persisted document.
func (s *MetadataStore) Save(doc *frame.MetadataDocument) error {
	unlock, err := s.backend.Lock()
	if err != nil {
		return err
	}
	defer unlock()
	return s.write(doc)
}

func (s *MetadataStore) write(doc *frame.MetadataDocument) error {
	doc.Normalize()
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding metadata: %w", err)
	}
	if err := s.backend.Write(data); err != nil {
		return fmt.Errorf("writing metadata to %s: %w", s.backend.String(), err)
	}
	return nil
}

// update runs one load-modify-save cycle. fn reports whether it changed doc;
// unchanged documents are not rewritten.
func (s *MetadataStore) update(fn func(doc *frame.MetadataDocument) bool) error {
	unlock, err := s.backend.Lock()
	if err != nil {
		return err
	}
	defer unlock()

	doc, err := s.Load()
	if err != nil {
		return err
	}
	if !fn(doc) {
		return nil
	}
	return s.write(doc)
}

// RecordUpload inserts or overwrites the record for filename.
func (s *MetadataStore) RecordUpload(filename, uploaderAddress string) error {
	return s.update(func(doc *frame.MetadataDocument) bool {
		doc.Images[filename] = frame.ImageRecord{
			UploaderIP: uploaderAddress,
			UploadTime: frame.FormatTimestamp(s.clock.Now()),
		}
		return true
	})
}

// RemoveUpload deletes the record for filename if present.
func (s *MetadataStore) RemoveUpload(filename string) error {
	return s.update(func(doc *frame.MetadataDocument) bool {
		if _, ok := doc.Images[filename]; !ok {
			return false
		}
		delete(doc.Images, filename)
		return true
	})
}

// SetDisplayName upserts the display name for address. Last write wins.
func (s *MetadataStore) SetDisplayName(address, name string) error {
	return s.update(func(doc *frame.MetadataDocument) bool {
		doc.Users[address] = frame.UserEntry{
			Name:    name,
			Updated: frame.FormatTimestamp(s.clock.Now()),
		}
		return true
	})
}

// ResolveDisplayName returns the stored name for address, or address itself.
func (s *MetadataStore) ResolveDisplayName(address string) (string, error) {
	doc, err := s.Load()
	if err != nil {
		return "", err
	}
	return doc.DisplayName(address), nil
}

// ListUploaders returns the distinct uploader addresses, sorted.
func (s *MetadataStore) ListUploaders() ([]string, error) {
	doc, err := s.Load()
	if err != nil {
		return nil, err
	}
	counts := doc.Uploaders()
	addresses := make([]string, 0, len(counts))
	for addr := range counts {
		addresses = append(addresses, addr)
	}
	sort.Strings(addresses)
	return addresses, nil
}
