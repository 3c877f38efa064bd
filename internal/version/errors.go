package version

import "errors"

var (
	// ErrNotFound indicates a missing source file, version or comparison operand.
	ErrNotFound = errors.New("not found")

	// ErrInvalidOptions indicates an unusable store configuration.
	ErrInvalidOptions = errors.New("invalid version store options")
)
