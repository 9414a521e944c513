package frame

import "errors"

// Error taxonomy for frame operations. Callers classify failures with errors.Is.
var (
	// ErrNotFound means the referenced image file is absent from storage.
	ErrNotFound = errors.New("image not found")

	// ErrValidation means the request was rejected before any store was touched.
	ErrValidation = errors.New("invalid request")

	// ErrNoImages means a rotation was attempted with an empty catalog.
	// It is an expected condition, not an operator-facing failure.
	ErrNoImages = errors.New("no images available")

	// ErrRenderFailed means the renderer reported failure. The display
	// state is left unmodified.
	ErrRenderFailed = errors.New("render failed")
)
