package state

// backend abstracts where a document's bytes live.
// Stores layer the JSON codec, corruption recovery and the
// load-modify-save cycle on top.
type backend interface {
	// Read returns the stored bytes. A document that was never written
	// yields an error matching fs.ErrNotExist.
	Read() ([]byte, error)

	// Write replaces the stored bytes. Readers never observe a partial write.
	Write(data []byte) error

	// Lock acquires the document's writer lock and returns its release
	// function. Without locking enabled it returns immediately.
	Lock() (unlock func(), err error)

	// String names the document for log messages.
	String() string
}
