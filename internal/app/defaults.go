package app

import (
	"fmt"
	"os"
	"path/filepath"
)

// Environment overrides for the picframe layout.
const (
	EnvConfigPath = "PICFRAME_CONFIG_PATH"
	EnvHome       = "PICFRAME_HOME"
)

// GetDefaults returns where picframe keeps its files on this host:
//
//	config_path  picframe.toml under $XDG_CONFIG_HOME (or ~/.config)
//	base_dir     picframe/ under $XDG_DATA_HOME (or ~/.local/share)
//	log_dir      <base_dir>/log
//	upload_dir   <base_dir>/uploads, the images shown on the panel
//	metadata     <base_dir>/metadata.json, attribution and display names
//	state        <base_dir>/state.json, the image currently on the panel
//
// PICFRAME_CONFIG_PATH and PICFRAME_HOME replace config_path and base_dir
// outright. The other entries always follow base_dir, matching
// config.NewConfig.
func GetDefaults() (map[string]string, error) {
	configPath, err := xdgPath(EnvConfigPath, "XDG_CONFIG_HOME", ".config", "picframe.toml")
	if err != nil {
		return nil, err
	}
	baseDir, err := xdgPath(EnvHome, "XDG_DATA_HOME", filepath.Join(".local", "share"), "picframe")
	if err != nil {
		return nil, err
	}

	return map[string]string{
		"config_path": configPath,
		"base_dir":    baseDir,
		"log_dir":     filepath.Join(baseDir, "log"),
		"upload_dir":  filepath.Join(baseDir, "uploads"),
		"metadata":    filepath.Join(baseDir, "metadata.json"),
		"state":       filepath.Join(baseDir, "state.json"),
	}, nil
}

// xdgPath resolves name under the XDG directory named by xdgEnv, falling back
// to homeRel under the home directory. A non-empty override wins.
func xdgPath(override, xdgEnv, homeRel, name string) (string, error) {
	if path := os.Getenv(override); path != "" {
		return path, nil
	}
	if dir := os.Getenv(xdgEnv); filepath.IsAbs(dir) {
		return filepath.Join(dir, name), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving %s: cannot determine home directory: %w", name, err)
	}
	return filepath.Join(home, homeRel, name), nil
}
