package testutil

import (
	"context"
	"errors"
	"sync"

	"picframe/internal/frame"
)

// ErrPanelOffline is the failure returned by a failing RecordingRenderer.
var ErrPanelOffline = errors.New("panel offline")

// RecordingRenderer records every path it is asked to render and fails when
// Fail is set. CtxErrs holds ctx.Err() as seen by each call.
type RecordingRenderer struct {
	mu       sync.Mutex
	Fail     bool
	Rendered []string
	CtxErrs  []error
}

// NewRecordingRenderer creates a renderer that succeeds.
func NewRecordingRenderer() *RecordingRenderer {
	return &RecordingRenderer{}
}

func (r *RecordingRenderer) Render(ctx context.Context, imagePath string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Rendered = append(r.Rendered, imagePath)
	r.CtxErrs = append(r.CtxErrs, ctx.Err())
	if r.Fail {
		return ErrPanelOffline
	}
	return nil
}

// Calls returns a copy of the rendered paths.
func (r *RecordingRenderer) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.Rendered...)
}

var _ frame.Renderer = (*RecordingRenderer)(nil)
