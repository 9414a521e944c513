package database

import (
	"fmt"
	"os"
	"path/filepath"

	"picframe/internal/config"
	"picframe/internal/frame"
)

// HistoryFileName is the database file created under HistoryConfig.DataDir.
const HistoryFileName = "history.db"

// NewHistoryFromConfig creates a History implementation based on the history config type.
// Type "none" (or empty) disables history and returns nil.
func NewHistoryFromConfig(cfg config.HistoryConfig) (frame.History, error) {
	switch cfg.Type {
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir required for sqlite history")
		}
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating history data dir: %w", err)
		}
		return NewSQLiteHistory(filepath.Join(cfg.DataDir, HistoryFileName))
	case "memory":
		return NewSQLiteHistory(":memory:")
	case "none", "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown history type: %s", cfg.Type)
	}
}
