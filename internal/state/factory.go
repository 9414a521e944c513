package state

import (
	"fmt"

	"picframe/internal/config"
	"picframe/internal/frame"
)

// NewStoresFromConfig creates the metadata and display stores based on the state config type.
func NewStoresFromConfig(cfg config.StateConfig, clock frame.Clock, logger frame.Logger) (*MetadataStore, *DisplayStore, error) {
	switch cfg.Type {
	case "file", "":
		if cfg.MetadataPath == "" || cfg.StatePath == "" {
			return nil, nil, fmt.Errorf("file state requires metadata_path and state_path to be set")
		}
		meta, err := NewFileMetadataStore(cfg.MetadataPath, cfg.Locking, clock, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("creating metadata store: %w", err)
		}
		display, err := NewFileDisplayStore(cfg.StatePath, cfg.Locking, clock, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("creating display store: %w", err)
		}
		return meta, display, nil
	case "memory":
		return NewMemoryMetadataStore(cfg.Locking, clock, logger), NewMemoryDisplayStore(cfg.Locking, clock, logger), nil
	default:
		return nil, nil, fmt.Errorf("unknown state type: %q", cfg.Type)
	}
}
