package frame

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode/utf8"
)

// MaxDisplayNameLength is the longest display name accepted, in characters.
const MaxDisplayNameLength = 50

// FrameService is the orchestration layer behind both the HTTP front end and
// the standalone rotation trigger.
type FrameService struct {
	metadata MetadataStore
	display  DisplayStore
	images   ImageDirectory
	renderer Renderer
	history  History
	catalog  *Catalog
	logger   Logger
	clock    Clock
	rng      Random
	idgen    IDGenerator
}

// NewFrameService creates a new FrameService with the provided dependencies.
// history may be nil, in which case display attempts are not recorded.
func NewFrameService(metadata MetadataStore, display DisplayStore, images ImageDirectory, renderer Renderer, history History, logger Logger, clock Clock, rng Random, idgen IDGenerator) *FrameService {
	return &FrameService{
		metadata: metadata,
		display:  display,
		images:   images,
		renderer: renderer,
		history:  history,
		catalog:  NewCatalog(images, metadata),
		logger:   logger,
		clock:    clock,
		rng:      rng,
		idgen:    idgen,
	}
}

// Catalog returns the service's image catalog.
func (s *FrameService) Catalog() *Catalog {
	return s.catalog
}

// ListImages returns the catalog, restricted to one uploader when
// filterAddress is non-empty.
func (s *FrameService) ListImages(filterAddress string) ([]*ImageSummary, error) {
	if filterAddress == "" {
		return s.catalog.ListAll()
	}
	return s.catalog.ListFiltered(filterAddress)
}

// CurrentImage returns the filename recorded as displayed, or "".
func (s *FrameService) CurrentImage() (string, error) {
	current, err := s.display.GetCurrent()
	if err != nil {
		return "", fmt.Errorf("reading display state: %w", err)
	}
	return current, nil
}

// OpenImage opens a stored image for reading. The caller closes it.
func (s *FrameService) OpenImage(filename string) (io.ReadCloser, ImageFile, error) {
	if err := CheckFilename(filename); err != nil {
		return nil, ImageFile{}, err
	}
	info, err := s.images.Stat(filename)
	if err != nil {
		return nil, ImageFile{}, err
	}
	rc, err := s.images.Open(filename)
	if err != nil {
		return nil, ImageFile{}, err
	}
	return rc, info, nil
}

// ListUsers returns every uploader with their display name and the number of
// images attributed to them, sorted by address.
func (s *FrameService) ListUsers() ([]*UserSummary, error) {
	doc, err := s.metadata.Load()
	if err != nil {
		return nil, fmt.Errorf("loading metadata: %w", err)
	}

	counts := doc.Uploaders()
	addresses := make([]string, 0, len(counts))
	for addr := range counts {
		addresses = append(addresses, addr)
	}
	sort.Strings(addresses)

	users := make([]*UserSummary, len(addresses))
	for i, addr := range addresses {
		users[i] = &UserSummary{
			Address:    addr,
			Name:       doc.DisplayName(addr),
			ImageCount: counts[addr],
		}
	}
	return users, nil
}

// SetDisplayName validates name and stores it for address.
// Returns the trimmed name that was stored.
func (s *FrameService) SetDisplayName(address, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: name is required", ErrValidation)
	}
	if utf8.RuneCountInString(name) > MaxDisplayNameLength {
		return "", fmt.Errorf("%w: name too long (max %d characters)", ErrValidation, MaxDisplayNameLength)
	}
	if address == "" {
		return "", fmt.Errorf("%w: client address is required", ErrValidation)
	}

	if err := s.metadata.SetDisplayName(address, name); err != nil {
		return "", fmt.Errorf("storing display name: %w", err)
	}

	s.logger.Info("display name set", "address", address, "name", name)
	return name, nil
}

// Upload stores the image bytes from r under a sanitized, timestamped name
// derived from originalName and attributes it to uploaderAddress.
// Returns the stored filename.
func (s *FrameService) Upload(originalName, uploaderAddress string, r io.Reader) (string, error) {
	filename, err := UploadFilename(originalName, s.clock.Now())
	if err != nil {
		return "", err
	}

	size, err := s.images.Save(filename, r)
	if err != nil {
		return "", fmt.Errorf("saving image: %w", err)
	}

	if err := s.RecordUpload(filename, uploaderAddress); err != nil {
		return "", err
	}

	s.logger.Info("image uploaded", "filename", filename, "uploader", uploaderAddress, "size", size)
	return filename, nil
}

// RecordUpload attributes an already stored file to uploaderAddress.
func (s *FrameService) RecordUpload(filename, uploaderAddress string) error {
	if err := CheckFilename(filename); err != nil {
		return err
	}
	if !IsAllowedFile(filename) {
		return fmt.Errorf("%w: file type not allowed: %q", ErrValidation, filename)
	}
	if err := s.metadata.RecordUpload(filename, uploaderAddress); err != nil {
		return fmt.Errorf("recording upload: %w", err)
	}
	return nil
}

// Delete removes an image file and its attribution. If it was the current
// image, the display state is cleared.
func (s *FrameService) Delete(filename string) error {
	if err := CheckFilename(filename); err != nil {
		return err
	}
	if _, err := s.images.Stat(filename); err != nil {
		return err
	}

	if err := s.images.Remove(filename); err != nil {
		return fmt.Errorf("removing image: %w", err)
	}
	if err := s.metadata.RemoveUpload(filename); err != nil {
		return fmt.Errorf("removing metadata: %w", err)
	}

	current, err := s.display.GetCurrent()
	if err != nil {
		return fmt.Errorf("reading display state: %w", err)
	}
	if current == filename {
		if err := s.display.SetCurrent(""); err != nil {
			return fmt.Errorf("clearing display state: %w", err)
		}
	}

	s.logger.Info("image deleted", "filename", filename)
	return nil
}

// Display renders a specific image and records it as current on success.
func (s *FrameService) Display(ctx context.Context, filename string) error {
	if err := CheckFilename(filename); err != nil {
		return err
	}
	if _, err := s.images.Stat(filename); err != nil {
		return err
	}
	return s.render(ctx, filename, TriggerManual)
}

// Rotate runs one rotation cycle: select the next image, render it, and
// commit it as current. Returns the committed filename.
//
// Failures leave the display state untouched. ErrNoImages is returned for an
// empty catalog, an error wrapping ErrNotFound when the selected file
// vanished, and one wrapping ErrRenderFailed when the renderer failed.
func (s *FrameService) Rotate(ctx context.Context) (string, error) {
	names, err := s.catalog.Filenames()
	if err != nil {
		return "", err
	}

	var current string
	if len(names) > 1 {
		current, err = s.display.GetCurrent()
		if err != nil {
			s.logger.Warn("display state unreadable, treating current image as unknown", "error", err)
			current = ""
		}
	}

	next, ok := SelectNext(names, current, s.rng)
	if !ok {
		s.logger.Warn("no images to display")
		return "", ErrNoImages
	}
	s.logger.Info("selected next image", "filename", next, "candidates", len(names))

	if _, err := s.images.Stat(next); err != nil {
		s.logger.Error("selected image missing from storage", "filename", next, "error", err)
		return "", err
	}

	if err := s.render(ctx, next, TriggerRotation); err != nil {
		return "", err
	}
	return next, nil
}

// render invokes the renderer and commits filename as current only after a
// confirmed success.
func (s *FrameService) render(ctx context.Context, filename, trigger string) error {
	eventID := s.startEvent(filename, trigger)
	s.logger.Info("displaying image", "filename", filename, "trigger", trigger)

	// Once started a render runs to completion; only the configured display
	// timeout bounds it.
	if err := s.renderer.Render(context.WithoutCancel(ctx), s.images.Path(filename)); err != nil {
		s.finishEvent(eventID, StatusFailed, err)
		s.logger.Error("failed to display image", "filename", filename, "error", err)
		if errors.Is(err, ErrRenderFailed) {
			return err
		}
		return fmt.Errorf("%w: %w", ErrRenderFailed, err)
	}

	if err := s.display.SetCurrent(filename); err != nil {
		s.finishEvent(eventID, StatusFailed, err)
		return fmt.Errorf("recording current image: %w", err)
	}

	s.finishEvent(eventID, StatusCommitted, nil)
	s.logger.Info("image displayed", "filename", filename)
	return nil
}
