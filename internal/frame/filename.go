package frame

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// AllowedExtensions lists the lower-case image extensions the catalog accepts.
var AllowedExtensions = map[string]struct{}{
	"png":  {},
	"jpg":  {},
	"jpeg": {},
	"gif":  {},
	"bmp":  {},
}

// uploadSuffixLayout is appended to uploaded names to avoid collisions.
const uploadSuffixLayout = "20060102_150405"

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// IsAllowedFile reports whether filename carries an allowed extension.
// Only the text after the last '.' is considered; a name without '.' is
// never allowed.
func IsAllowedFile(filename string) bool {
	idx := strings.LastIndex(filename, ".")
	if idx < 0 {
		return false
	}
	_, ok := AllowedExtensions[strings.ToLower(filename[idx+1:])]
	return ok
}

// CheckFilename rejects names that could escape the upload directory.
func CheckFilename(filename string) error {
	if filename == "" {
		return fmt.Errorf("%w: empty filename", ErrValidation)
	}
	if strings.ContainsAny(filename, `/\`) || strings.ContainsRune(filename, filepath.Separator) {
		return fmt.Errorf("%w: filename contains a path separator: %q", ErrValidation, filename)
	}
	if filename == "." || filename == ".." {
		return fmt.Errorf("%w: invalid filename: %q", ErrValidation, filename)
	}
	return nil
}

// SecureFilename reduces a client-supplied name to a safe ASCII basename.
// Path separators become word breaks, whitespace runs become '_', and
// anything outside [A-Za-z0-9_.-] is dropped along with leading and trailing
// dots and underscores. The result may be empty.
func SecureFilename(name string) string {
	decomposed := norm.NFKD.String(name)
	var b strings.Builder
	for _, r := range decomposed {
		if r < 0x80 {
			b.WriteRune(r)
		}
	}
	ascii := strings.NewReplacer("/", " ", `\`, " ").Replace(b.String())
	joined := strings.Join(strings.Fields(ascii), "_")
	return strings.Trim(unsafeFilenameChars.ReplaceAllString(joined, ""), "._")
}

// UploadFilename turns a client-supplied name into the stored filename:
// sanitized, with a timestamp inserted before the extension.
func UploadFilename(original string, now time.Time) (string, error) {
	if original == "" {
		return "", fmt.Errorf("%w: no file selected", ErrValidation)
	}
	if !IsAllowedFile(original) {
		return "", fmt.Errorf("%w: file type not allowed, use PNG, JPG, GIF, or BMP", ErrValidation)
	}

	safe := SecureFilename(original)
	if !IsAllowedFile(safe) {
		return "", fmt.Errorf("%w: filename %q has no usable name", ErrValidation, original)
	}

	ext := filepath.Ext(safe)
	stem := strings.TrimSuffix(safe, ext)
	return fmt.Sprintf("%s_%s%s", stem, now.Format(uploadSuffixLayout), ext), nil
}
