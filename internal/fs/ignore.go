package fs

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// IgnoreFileName is the per-folder file listing extra patterns to hide from
// the catalog, one glob per line.
const IgnoreFileName = ".frameignore"

// defaultIgnorePatterns hide the ignore file itself, in-flight uploads and
// common OS droppings.
var defaultIgnorePatterns = []string{IgnoreFileName, ".tmp-*", "._*", ".DS_Store", "Thumbs.db"}

// IgnoreMatcher checks upload-folder entries against filepath.Match globs.
// The folder is flat, so patterns apply to the bare filename. Matching is
// case-insensitive because uploads come from phones and desktops alike.
type IgnoreMatcher struct {
	patterns []string
}

// NewIgnoreMatcher creates an IgnoreMatcher from raw pattern strings plus the
// defaults. Blank lines, lines starting with '#' and malformed globs are skipped.
func NewIgnoreMatcher(rawPatterns []string) *IgnoreMatcher {
	m := &IgnoreMatcher{}
	for _, raw := range append(append([]string{}, defaultIgnorePatterns...), rawPatterns...) {
		raw = strings.TrimSpace(raw)
		if raw == "" || strings.HasPrefix(raw, "#") {
			continue
		}
		p := strings.ToLower(raw)
		if _, err := filepath.Match(p, ""); err != nil {
			continue
		}
		m.patterns = append(m.patterns, p)
	}
	return m
}

// Match reports whether filename should be hidden.
func (m *IgnoreMatcher) Match(filename string) bool {
	name := strings.ToLower(filename)
	for _, p := range m.patterns {
		if ok, _ := filepath.Match(p, name); ok {
			return true
		}
	}
	return false
}

// ParseIgnoreFile reads an ignore file and returns the raw pattern lines.
// Returns nil and no error if the file does not exist.
func ParseIgnoreFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening ignore file: %w", err)
	}
	defer f.Close()

	var patterns []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		patterns = append(patterns, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading ignore file: %w", err)
	}
	return patterns, nil
}
