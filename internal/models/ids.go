package models

import (
	"fmt"
	"strings"
)

// idSeparator joins key fields in the store and may not appear in an id.
const idSeparator = "\x00"

// ValidateID rejects empty channel or user ids and ids carrying the key
// separator. kind names the id in the error ("channel", "user").
func ValidateID(kind, id string) error {
	if id == "" {
		return fmt.Errorf("%w: %s is required", ErrInvalidInput, kind)
	}
	if strings.Contains(id, idSeparator) {
		return fmt.Errorf("%w: %s %q contains a NUL byte", ErrInvalidInput, kind, id)
	}
	return nil
}
