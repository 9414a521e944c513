package frame

import (
	"fmt"
	"sort"
)

// UnknownUploader is the attribution given to files with no metadata record
// or a record without an uploader address.
const UnknownUploader = "unknown"

// Catalog is the attribution-joined view of the images present in storage.
type Catalog struct {
	images   ImageDirectory
	metadata MetadataStore
}

// NewCatalog creates a Catalog over the given directory and metadata store.
func NewCatalog(images ImageDirectory, metadata MetadataStore) *Catalog {
	return &Catalog{images: images, metadata: metadata}
}

// Filenames returns the names of all allowed image files, in directory order.
func (c *Catalog) Filenames() ([]string, error) {
	files, err := c.images.List()
	if err != nil {
		return nil, fmt.Errorf("listing images: %w", err)
	}
	names := make([]string, 0, len(files))
	for _, f := range files {
		if IsAllowedFile(f.Name) {
			names = append(names, f.Name)
		}
	}
	return names, nil
}

// ListAll returns every allowed image, newest first.
func (c *Catalog) ListAll() ([]*ImageSummary, error) {
	return c.list(func(*ImageSummary) bool { return true })
}

// ListFiltered returns the subsequence of ListAll uploaded by address.
func (c *Catalog) ListFiltered(address string) ([]*ImageSummary, error) {
	return c.list(func(s *ImageSummary) bool { return s.UploaderIP == address })
}

func (c *Catalog) list(keep func(*ImageSummary) bool) ([]*ImageSummary, error) {
	files, err := c.images.List()
	if err != nil {
		return nil, fmt.Errorf("listing images: %w", err)
	}
	doc, err := c.metadata.Load()
	if err != nil {
		return nil, fmt.Errorf("loading metadata: %w", err)
	}

	summaries := make([]*ImageSummary, 0, len(files))
	for _, f := range files {
		if !IsAllowedFile(f.Name) {
			continue
		}

		s := &ImageSummary{
			Filename:   f.Name,
			Size:       f.Size,
			UploaderIP: UnknownUploader,
			Uploaded:   FormatTimestamp(f.ModTime),
			uploadedAt: f.ModTime,
		}
		if rec, ok := doc.Images[f.Name]; ok {
			if rec.UploaderIP != "" {
				s.UploaderIP = rec.UploaderIP
			}
			if rec.UploadTime != "" {
				s.Uploaded = rec.UploadTime
				if t, ok := ParseTimestamp(rec.UploadTime); ok {
					s.uploadedAt = t
				}
			}
		}
		s.UploaderName = doc.DisplayName(s.UploaderIP)

		if keep(s) {
			summaries = append(summaries, s)
		}
	}

	// Name order first so equal timestamps come out in a stable order.
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Filename < summaries[j].Filename
	})
	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].uploadedAt.After(summaries[j].uploadedAt)
	})

	return summaries, nil
}
