package models

import "errors"

// Error kinds. Concrete errors wrap one of these and are matched with errors.Is.
var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrStoreUnavailable = errors.New("store unavailable")
)
