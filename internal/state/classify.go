package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
)

// ErrCorrupt marks a persisted document that exists but cannot be decoded.
var ErrCorrupt = errors.New("document corrupt")

// IsRecoverable reports whether a read failure should degrade to an empty
// document: the document is missing or corrupt. Anything else, such as a
// permission error, is a genuine failure and is propagated.
func IsRecoverable(err error) bool {
	return errors.Is(err, fs.ErrNotExist) || errors.Is(err, ErrCorrupt)
}

// decodeDocument unmarshals data into v, classifying decode failures as
// ErrCorrupt.
func decodeDocument(data []byte, v any) error {
	if len(data) == 0 {
		return fmt.Errorf("%w: empty document", ErrCorrupt)
	}
	if err := json.Unmarshal(data, v); err != nil {
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) || errors.Is(err, io.ErrUnexpectedEOF) {
			return fmt.Errorf("%w: %w", ErrCorrupt, err)
		}
		return fmt.Errorf("decoding document: %w", err)
	}
	return nil
}
