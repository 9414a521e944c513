package render

import (
	"fmt"

	"picframe/internal/config"
	"picframe/internal/frame"
)

// NewRendererFromConfig creates a Renderer based on the display config type.
func NewRendererFromConfig(cfg config.DisplayConfig) (frame.Renderer, error) {
	switch cfg.Type {
	case "command", "":
		timeout, err := cfg.TimeoutDuration()
		if err != nil {
			return nil, err
		}
		return NewCommandRenderer(cfg.Command, WithTimeout(timeout))
	case "nop":
		return NopRenderer{}, nil
	case "fail":
		return FailRenderer{}, nil
	default:
		return nil, fmt.Errorf("unknown display type: %q", cfg.Type)
	}
}
