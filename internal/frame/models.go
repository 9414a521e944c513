package frame

import (
	"database/sql"
	"time"
)

// ImageRecord is the upload attribution for one image, keyed by filename
// in MetadataDocument.Images. Records are never updated in place.
type ImageRecord struct {
	UploaderIP string `json:"uploader_ip"`
	UploadTime string `json:"upload_time"`
}

// UserEntry maps a client address to a display name, keyed by address in
// MetadataDocument.Users.
type UserEntry struct {
	Name    string `json:"name"`
	Updated string `json:"updated"`
}

// MetadataDocument is the persisted metadata aggregate. Every mutation is a
// full read-modify-write of the whole document.
type MetadataDocument struct {
	Images map[string]ImageRecord `json:"images"`
	Users  map[string]UserEntry   `json:"users"`
}

// NewMetadataDocument returns an empty document with both maps allocated.
func NewMetadataDocument() *MetadataDocument {
	return &MetadataDocument{
		Images: make(map[string]ImageRecord),
		Users:  make(map[string]UserEntry),
	}
}

// Normalize allocates any map left nil by decoding a partial document.
func (d *MetadataDocument) Normalize() {
	if d.Images == nil {
		d.Images = make(map[string]ImageRecord)
	}
	if d.Users == nil {
		d.Users = make(map[string]UserEntry)
	}
}

// DisplayName returns the name set for address, or address itself when no
// name was ever set.
func (d *MetadataDocument) DisplayName(address string) string {
	if entry, ok := d.Users[address]; ok && entry.Name != "" {
		return entry.Name
	}
	return address
}

// Uploaders counts image records per uploader address. Records without an
// address are counted under UnknownUploader.
func (d *MetadataDocument) Uploaders() map[string]int {
	counts := make(map[string]int)
	for _, rec := range d.Images {
		addr := rec.UploaderIP
		if addr == "" {
			addr = UnknownUploader
		}
		counts[addr]++
	}
	return counts
}

// DisplayState is the persisted record of the image currently on the panel.
// A nil CurrentImage means nothing is displayed or the value is unknown.
type DisplayState struct {
	CurrentImage *string `json:"current_image"`
	Updated      string  `json:"updated"`
}

// ImageSummary is one entry of the catalog: an on-disk image joined with its
// attribution.
type ImageSummary struct {
	Filename     string `json:"filename"`
	Size         int64  `json:"size"`
	Uploaded     string `json:"uploaded"`
	UploaderIP   string `json:"uploader_ip"`
	UploaderName string `json:"uploader_name"`

	uploadedAt time.Time
}

// UploadedAt returns the timestamp the catalog sorted this entry by.
func (s *ImageSummary) UploadedAt() time.Time {
	return s.uploadedAt
}

// UserSummary describes one uploader.
type UserSummary struct {
	Address    string `json:"ip"`
	Name       string `json:"name"`
	ImageCount int    `json:"image_count"`
}

// Display event triggers.
const (
	TriggerManual   = "manual"
	TriggerRotation = "rotation"
)

// Display event statuses.
const (
	StatusRendering = "rendering"
	StatusCommitted = "committed"
	StatusFailed    = "failed"
)

// DisplayEvent records one attempt to put an image on the panel.
type DisplayEvent struct {
	ID         string
	Filename   string
	Trigger    string
	Status     string
	Error      string
	StartedAt  time.Time
	FinishedAt sql.NullTime
}
