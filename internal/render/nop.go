package render

import (
	"context"
	"fmt"

	"picframe/internal/frame"
)

// NopRenderer pretends every render succeeds. Useful on machines without a
// panel attached.
type NopRenderer struct{}

func (NopRenderer) Render(context.Context, string) error { return nil }

// FailRenderer fails every render. Useful for exercising failure handling
// end to end.
type FailRenderer struct{}

func (FailRenderer) Render(_ context.Context, imagePath string) error {
	return fmt.Errorf("%w: display disabled: %s", frame.ErrRenderFailed, imagePath)
}

var (
	_ frame.Renderer = NopRenderer{}
	_ frame.Renderer = FailRenderer{}
)
