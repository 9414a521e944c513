package frame

import "context"

// Renderer puts an image file on the physical display.
// Render blocks until the display reports an outcome; a nil error means the
// image is now shown. Implementations do not retry.
type Renderer interface {
	Render(ctx context.Context, imagePath string) error
}
