package picker

import "github.com/jask/antani/internal/volume"

// EntryType tags a listing row.
type EntryType uint8

const (
	ParentRef EntryType = iota
	SelfRef
	Directory
	File
)

func (t EntryType) String() string {
	switch t {
	case ParentRef:
		return "parent"
	case SelfRef:
		return "self"
	case Directory:
		return "dir"
	default:
		return "file"
	}
}

const (
	parentName = ".."
	selfName   = "."
)

// Entry is one row of a Listing.
type Entry struct {
	Name string
	Type EntryType
}

// IsDir reports whether selecting the entry keeps the user in the
// directory bucket.
func (e Entry) IsDir() bool {
	return e.Type != File
}

// Limits bounds listings and navigation depth.
type Limits struct {
	// MaxDirs caps the directory bucket, reference entries included.
	MaxDirs int
	// MaxFiles caps the file bucket.
	MaxFiles int
	// MaxNameLen drops entries with longer names.
	MaxNameLen int
	// MaxDepth caps the navigation stack.
	MaxDepth int
}

// DefaultLimits returns 255 entries per bucket, 255-byte names and 100
// levels of nesting.
func DefaultLimits() Limits {
	return Limits{MaxDirs: 255, MaxFiles: 255, MaxNameLen: 255, MaxDepth: 100}
}

func (l Limits) withDefaults() Limits {
	d := DefaultLimits()
	if l.MaxDirs <= 0 {
		l.MaxDirs = d.MaxDirs
	}
	if l.MaxFiles <= 0 {
		l.MaxFiles = d.MaxFiles
	}
	if l.MaxNameLen <= 0 {
		l.MaxNameLen = d.MaxNameLen
	}
	if l.MaxDepth <= 0 {
		l.MaxDepth = d.MaxDepth
	}
	return l
}

// Listing is the ordered content of one directory: "..", then "." when
// picking directories, then directories, then files. Entries past either
// bucket's capacity are dropped without error and counted in Dropped.
type Listing struct {
	dirs     []Entry
	files    []Entry
	dirsOnly bool
	limits   Limits
	dropped  int
}

// NewListing returns a listing holding only its reference entries.
func NewListing(dirsOnly bool, limits Limits) *Listing {
	l := &Listing{dirsOnly: dirsOnly, limits: limits.withDefaults()}
	l.dirs = append(l.dirs, Entry{Name: parentName, Type: ParentRef})
	if dirsOnly {
		l.dirs = append(l.dirs, Entry{Name: selfName, Type: SelfRef})
	}
	return l
}

// BuildListing classifies entries into a new Listing.
func BuildListing(entries []volume.DirEntry, dirsOnly bool, limits Limits) *Listing {
	l := NewListing(dirsOnly, limits)
	for _, e := range entries {
		l.Add(e.Name, e.Kind)
	}
	return l
}

// Add appends a child entry and reports whether it was kept.
func (l *Listing) Add(name string, kind volume.Kind) bool {
	if name == "" || name == parentName || name == selfName {
		return false
	}
	if len(name) > l.limits.MaxNameLen {
		l.dropped++
		return false
	}
	if kind == volume.KindDir {
		// The cap counts the ".." reference (and "." when picking folders),
		// so a full bucket holds fewer than MaxDirs real directories.
		if len(l.dirs) >= l.limits.MaxDirs {
			l.dropped++
			return false
		}
		l.dirs = append(l.dirs, Entry{Name: name, Type: Directory})
		return true
	}
	if l.dirsOnly {
		return false
	}
	if len(l.files) >= l.limits.MaxFiles {
		l.dropped++
		return false
	}
	l.files = append(l.files, Entry{Name: name, Type: File})
	return true
}

// Len is the number of selectable rows.
func (l *Listing) Len() int {
	return len(l.dirs) + len(l.files)
}

// At returns row i of the combined directory+file sequence.
func (l *Listing) At(i int) Entry {
	if i < len(l.dirs) {
		return l.dirs[i]
	}
	return l.files[i-len(l.dirs)]
}

// DirCount is the size of the directory bucket, reference entries included.
func (l *Listing) DirCount() int { return len(l.dirs) }

// FileCount is the size of the file bucket.
func (l *Listing) FileCount() int { return len(l.files) }

// Dropped counts entries discarded by the capacity or name-length policy.
func (l *Listing) Dropped() int { return l.dropped }

// DirsOnly reports whether files are excluded.
func (l *Listing) DirsOnly() bool { return l.dirsOnly }
