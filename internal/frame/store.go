package frame

// MetadataStore persists upload attribution and client display names.
//
// Implementations perform each mutation as a load-modify-save of the whole
// document. Unless the implementation was built with locking enabled, two
// concurrent mutations can interleave and one of them is lost.
type MetadataStore interface {
	// Load reads the persisted document. A missing or malformed document
	// yields an empty one; only unexpected I/O failures are returned.
	Load() (*MetadataDocument, error)

	// Save overwrites the persisted document with doc.
	Save(doc *MetadataDocument) error

	// RecordUpload inserts or overwrites the record for filename, stamped
	// with the current time.
	RecordUpload(filename, uploaderAddress string) error

	// RemoveUpload deletes the record for filename. Missing records are a no-op.
	RemoveUpload(filename string) error

	// SetDisplayName upserts the name for address. The name is stored as
	// given; validation is the caller's job.
	SetDisplayName(address, name string) error

	// ResolveDisplayName returns the stored name for address, or address.
	ResolveDisplayName(address string) (string, error)

	// ListUploaders returns the distinct uploader addresses, sorted.
	ListUploaders() ([]string, error)
}

// DisplayStore persists which image is currently displayed.
// It is independent of MetadataStore; the two may disagree after a partial
// failure and readers must tolerate that.
type DisplayStore interface {
	// GetCurrent returns the current filename, or "" when absent or unknown.
	GetCurrent() (string, error)

	// SetCurrent records filename as current. An empty filename clears it.
	SetCurrent(filename string) error
}
