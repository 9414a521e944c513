package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
	"unicode/utf8"

	"picframe/internal/frame"
)

var commandContext = exec.CommandContext

// maxStderr bounds how much of the renderer's stderr is quoted in errors.
const maxStderr = 512

// CommandRenderer runs an external program to draw an image on the panel.
// The image path is appended as the last argument and exit status 0 means
// the image is now shown.
type CommandRenderer struct {
	argv    []string
	timeout time.Duration
}

// Option configures a CommandRenderer.
type Option func(*CommandRenderer)

// WithTimeout bounds each render. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(r *CommandRenderer) {
		r.timeout = d
	}
}

// NewCommandRenderer creates a renderer running argv plus the image path.
func NewCommandRenderer(argv []string, opts ...Option) (*CommandRenderer, error) {
	if len(argv) == 0 || strings.TrimSpace(argv[0]) == "" {
		return nil, errors.New("display command is required")
	}
	r := &CommandRenderer{argv: append([]string(nil), argv...)}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Render runs the display command and waits for it to exit.
func (r *CommandRenderer) Render(ctx context.Context, imagePath string) error {
	if imagePath == "" {
		return fmt.Errorf("%w: image path is required", frame.ErrRenderFailed)
	}
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	args := append(append([]string(nil), r.argv[1:]...), imagePath)
	cmd := commandContext(ctx, r.argv[0], args...) //nolint:gosec
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%w: %s: %w", frame.ErrRenderFailed, r.argv[0], ctxErr)
		}
		msg := tail(strings.TrimSpace(stderr.String()), maxStderr)
		if msg != "" {
			return fmt.Errorf("%w: %s: %w: %s", frame.ErrRenderFailed, r.argv[0], err, msg)
		}
		return fmt.Errorf("%w: %s: %w", frame.ErrRenderFailed, r.argv[0], err)
	}
	return nil
}

// tail returns at most the last n bytes of s, starting on a rune boundary.
func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	i := len(s) - n
	for i < len(s) && !utf8.RuneStart(s[i]) {
		i++
	}
	return s[i:]
}

var _ frame.Renderer = (*CommandRenderer)(nil)
