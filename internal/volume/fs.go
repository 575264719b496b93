// Package volume defines the filesystem contract used by the picker and the
// transfer engine, the "<volume>:/<segments>" path convention, and a
// host-backed implementation that maps each configured volume onto a local
// directory.
package volume

import "io"

// Kind tags a directory entry.
type Kind uint8

const (
	// KindFile is any entry that is not a directory.
	KindFile Kind = iota
	// KindDir is a directory.
	KindDir
)

func (k Kind) String() string {
	if k == KindDir {
		return "dir"
	}
	return "file"
}

// DirEntry is one child returned by ReadDir.
type DirEntry struct {
	Name string
	Kind Kind
}

// OpenMode selects how Open prepares a handle.
type OpenMode uint8

const (
	// ReadOnly opens an existing file for reading.
	ReadOnly OpenMode = iota
	// WriteTruncate opens for writing, creating the file if absent and
	// truncating it otherwise.
	WriteTruncate
)

func (m OpenMode) String() string {
	if m == WriteTruncate {
		return "write"
	}
	return "read"
}

// Handle is an open file.
type Handle interface {
	io.Reader
	io.Writer
	io.Seeker
	io.Closer
}

// FS is the storage contract. Errors wrap ErrNotFound, ErrPermission,
// ErrAlreadyExists, ErrInvalidPath or ErrUnknownVolume where they apply.
type FS interface {
	Open(p Path, mode OpenMode) (Handle, error)
	ReadDir(p Path) ([]DirEntry, error)
	Remove(p Path) error
	Exists(p Path) bool
	Mkdir(p Path) error
}

// SameFiler is implemented by filesystems that can tell when two distinct
// paths reach the same underlying file.
type SameFiler interface {
	SameFile(a, b Path) bool
}
