package retention

import "errors"

var (
	// ErrNotFound indicates the file to act on does not exist.
	ErrNotFound = errors.New("not found")

	// ErrBaseUnreachable indicates the configured base path is missing or not a
	// directory. Nothing meaningful can be scanned without it.
	ErrBaseUnreachable = errors.New("base path unreachable")

	// ErrInvalidDepartment indicates a department name that would escape the base path.
	ErrInvalidDepartment = errors.New("invalid department")

	// ErrInvalidWindow indicates a negative alert window.
	ErrInvalidWindow = errors.New("alert window must not be negative")
)
