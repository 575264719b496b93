package volume

import "errors"

var (
	// ErrNotFound reports a missing file, directory or volume entry.
	ErrNotFound = errors.New("not found")
	// ErrPermission reports a denied open, unlink or listing.
	ErrPermission = errors.New("permission denied")
	// ErrAlreadyExists reports a mkdir over an existing entry.
	ErrAlreadyExists = errors.New("already exists")
	// ErrInvalidPath reports a malformed path or one escaping its volume.
	ErrInvalidPath = errors.New("invalid path")
	// ErrUnknownVolume reports a path whose volume is not configured.
	ErrUnknownVolume = errors.New("unknown volume")
)
