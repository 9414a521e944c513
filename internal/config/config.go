package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// DefaultMaxUploadBytes caps a single upload at 16MB.
const DefaultMaxUploadBytes int64 = 16 * 1024 * 1024

// DefaultBind is the server listen address.
const DefaultBind = ":5000"

// Config represents the main configuration for picframe.
// UploadIgnore lists filename globs hidden from the catalog.
type Config struct {
	BaseDir      string        `toml:"base_dir"`
	LogDir       string        `toml:"log_dir"`
	UploadDir    string        `toml:"upload_dir"`
	UploadIgnore []string      `toml:"upload_ignore,omitempty"`
	State        StateConfig   `toml:"state"`
	Display      DisplayConfig `toml:"display"`
	History      HistoryConfig `toml:"history"`
	Server       ServerConfig  `toml:"server"`
}

// StateConfig represents configuration for the metadata and display state documents.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type StateConfig struct {
	Type         string `toml:"type"`                    // "file" (default) or "memory"
	MetadataPath string `toml:"metadata_path,omitempty"` // only used for type=file
	StatePath    string `toml:"state_path,omitempty"`    // only used for type=file
	Locking      bool   `toml:"locking"`                 // serialize writers per document
}

// DisplayConfig represents configuration for the panel renderer.
type DisplayConfig struct {
	Type    string   `toml:"type"`              // "command" (default), "nop", or "fail"
	Command []string `toml:"command,omitempty"` // argv; the image path is appended
	Timeout string   `toml:"timeout,omitempty"` // Go duration; empty means no timeout
}

// TimeoutDuration parses Timeout. An empty value yields zero (no timeout).
func (c DisplayConfig) TimeoutDuration() (time.Duration, error) {
	if strings.TrimSpace(c.Timeout) == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid display timeout %q: %w", c.Timeout, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid display timeout %q: must not be negative", c.Timeout)
	}
	return d, nil
}

// HistoryConfig represents configuration for the display history database.
type HistoryConfig struct {
	Type    string `toml:"type"`               // "sqlite", "memory", or "none"
	DataDir string `toml:"data_dir,omitempty"` // only used for type=sqlite
}

// ServerConfig represents configuration for the HTTP front end.
type ServerConfig struct {
	Bind              string `toml:"bind"`
	MaxUploadBytes    int64  `toml:"max_upload_bytes"`
	TrustForwardedFor bool   `toml:"trust_forwarded_for"`
}

// NewConfig creates a new Config rooted at baseDir with default paths.
func NewConfig(baseDir string) *Config {
	return &Config{
		BaseDir:   baseDir,
		LogDir:    filepath.Join(baseDir, "log"),
		UploadDir: filepath.Join(baseDir, "uploads"),
		State: StateConfig{
			Type:         "file",
			MetadataPath: filepath.Join(baseDir, "metadata.json"),
			StatePath:    filepath.Join(baseDir, "state.json"),
		},
		Display: DisplayConfig{
			Type:    "command",
			Command: []string{"python3", filepath.Join(baseDir, "display_image.py")},
		},
		History: HistoryConfig{
			Type:    "sqlite",
			DataDir: filepath.Join(baseDir, "db"),
		},
		Server: ServerConfig{
			Bind:              DefaultBind,
			MaxUploadBytes:    DefaultMaxUploadBytes,
			TrustForwardedFor: true,
		},
	}
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// writeToFile writes a Config to the specified file path.
func writeToFile(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init initializes a new config file at the specified path with the provided Config.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
