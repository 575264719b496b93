package volume

import (
	"fmt"
	"strings"
)

// Separator joins path segments inside a volume.
const Separator = "/"

const volumeMark = ":/"

// Path addresses an entry as "<volume>:/<segments>". A trailing separator
// marks a directory chosen as a whole.
type Path string

// Root returns the root path of the named volume.
func Root(name string) Path {
	return Path(name + volumeMark)
}

// ParsePath validates s and returns it as a Path.
func ParsePath(s string) (Path, error) {
	idx := strings.Index(s, volumeMark)
	if idx <= 0 {
		return "", fmt.Errorf("%w: %q lacks a volume prefix", ErrInvalidPath, s)
	}
	for _, seg := range strings.Split(s[idx+len(volumeMark):], Separator) {
		if seg == ".." {
			return "", fmt.Errorf("%w: %q contains a parent reference", ErrInvalidPath, s)
		}
	}
	return Path(s), nil
}

// Volume returns the volume name.
func (p Path) Volume() string {
	idx := strings.Index(string(p), volumeMark)
	if idx < 0 {
		return ""
	}
	return string(p[:idx])
}

// Rel returns the segments below the volume root without leading or
// trailing separators.
func (p Path) Rel() string {
	idx := strings.Index(string(p), volumeMark)
	if idx < 0 {
		return strings.Trim(string(p), Separator)
	}
	return strings.Trim(string(p[idx+len(volumeMark):]), Separator)
}

// IsRoot reports whether p is the root of its volume.
func (p Path) IsRoot() bool {
	return p.Rel() == ""
}

// IsDir reports whether p carries a trailing separator.
func (p Path) IsDir() bool {
	return strings.HasSuffix(string(p), Separator)
}

// Clean drops a trailing separator unless p is a volume root.
func (p Path) Clean() Path {
	if p.IsRoot() {
		return Root(p.Volume())
	}
	return Path(p.Volume() + volumeMark + p.Rel())
}

// AsDir returns p with exactly one trailing separator.
func (p Path) AsDir() Path {
	c := p.Clean()
	if c.IsDir() {
		return c
	}
	return c + Separator
}

// Join appends name below p with exactly one separator between them.
func (p Path) Join(name string) Path {
	name = strings.Trim(name, Separator)
	if name == "" {
		return p.Clean()
	}
	return p.AsDir() + Path(name)
}

// Base returns the last segment, or "" for a volume root.
func (p Path) Base() string {
	rel := p.Rel()
	if i := strings.LastIndex(rel, Separator); i >= 0 {
		return rel[i+1:]
	}
	return rel
}

// Parent returns the directory containing p. The parent of a root is the
// root itself.
func (p Path) Parent() Path {
	rel := p.Rel()
	i := strings.LastIndex(rel, Separator)
	if i < 0 {
		return Root(p.Volume())
	}
	return Path(p.Volume() + volumeMark + rel[:i])
}

// Equal compares two paths after cleaning.
func (p Path) Equal(other Path) bool {
	return p.Clean() == other.Clean()
}

func (p Path) String() string {
	return string(p)
}
