package volume

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// maxSuggestDistance bounds how different a configured name may be and
// still be offered as a suggestion.
const maxSuggestDistance = 2

// Mount binds a volume name to a host directory.
type Mount struct {
	Name string
	Root string
}

// HostFS serves volume paths from host directories.
type HostFS struct {
	mounts []Mount
	roots  map[string]string
}

// NewHostFS validates mounts and returns a HostFS over them.
func NewHostFS(mounts []Mount) (*HostFS, error) {
	h := &HostFS{roots: make(map[string]string, len(mounts))}
	canon := make(map[string]string, len(mounts))
	for _, m := range mounts {
		name := strings.TrimSpace(m.Name)
		if name == "" || strings.ContainsAny(name, ":/") {
			return nil, fmt.Errorf("volume name %q: %w", m.Name, ErrInvalidPath)
		}
		if _, dup := h.roots[name]; dup {
			return nil, fmt.Errorf("volume %q configured twice", name)
		}
		root, err := filepath.Abs(m.Root)
		if err != nil {
			return nil, fmt.Errorf("volume %q root: %w", name, err)
		}
		resolved := root
		if r, err := filepath.EvalSymlinks(root); err == nil {
			resolved = r
		}
		for _, prev := range h.mounts {
			if Overlaps(resolved, canon[prev.Name]) {
				return nil, fmt.Errorf("%w: volumes %q and %q share host directory %s", ErrInvalidPath, prev.Name, name, resolved)
			}
		}
		canon[name] = resolved
		h.roots[name] = root
		h.mounts = append(h.mounts, Mount{Name: name, Root: root})
	}
	return h, nil
}

// Overlaps reports whether two cleaned absolute directories are the same
// or one contains the other.
func Overlaps(a, b string) bool {
	a, b = filepath.Clean(a), filepath.Clean(b)
	if a == b {
		return true
	}
	sep := string(filepath.Separator)
	return strings.HasPrefix(a, strings.TrimSuffix(b, sep)+sep) ||
		strings.HasPrefix(b, strings.TrimSuffix(a, sep)+sep)
}

// Volumes returns the mounted volume names in configuration order.
func (h *HostFS) Volumes() []string {
	out := make([]string, 0, len(h.mounts))
	for _, m := range h.mounts {
		out = append(out, m.Name)
	}
	return out
}

// Resolve maps p onto the host filesystem.
func (h *HostFS) Resolve(p Path) (string, error) {
	name := p.Volume()
	root, ok := h.roots[name]
	if !ok {
		if s := h.suggest(name); s != "" {
			return "", fmt.Errorf("%w %q (did you mean %q?)", ErrUnknownVolume, name, s)
		}
		return "", fmt.Errorf("%w %q", ErrUnknownVolume, name)
	}
	rel := p.Rel()
	for _, seg := range strings.Split(rel, Separator) {
		if seg == ".." {
			return "", fmt.Errorf("%w: %s", ErrInvalidPath, p)
		}
	}
	full := filepath.Join(root, filepath.FromSlash(rel))
	if full != root && !strings.HasPrefix(full, root+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s escapes volume %q", ErrInvalidPath, p, name)
	}
	return full, nil
}

func (h *HostFS) suggest(name string) string {
	best, bestDist := "", maxSuggestDistance+1
	for _, m := range h.mounts {
		d := levenshtein.ComputeDistance(strings.ToLower(name), strings.ToLower(m.Name))
		if d < bestDist {
			best, bestDist = m.Name, d
		}
	}
	return best
}

// Open opens a file in the requested mode.
func (h *HostFS) Open(p Path, mode OpenMode) (Handle, error) {
	full, err := h.Resolve(p)
	if err != nil {
		return nil, err
	}
	var f *os.File
	switch mode {
	case WriteTruncate:
		f, err = os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	default:
		f, err = os.Open(full)
		if err == nil {
			if st, statErr := f.Stat(); statErr == nil && st.IsDir() {
				_ = f.Close()
				return nil, fmt.Errorf("open %s: is a directory: %w", p, ErrInvalidPath)
			}
		}
	}
	if err != nil {
		return nil, mapErr("open "+p.String(), err)
	}
	return f, nil
}

// ReadDir lists the immediate children of p sorted by name.
func (h *HostFS) ReadDir(p Path) ([]DirEntry, error) {
	full, err := h.Resolve(p)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(full)
	if err != nil {
		return nil, mapErr("list "+p.String(), err)
	}
	out := make([]DirEntry, 0, len(entries))
	for _, e := range entries {
		kind := KindFile
		if e.IsDir() {
			kind = KindDir
		} else if e.Type()&fs.ModeSymlink != 0 {
			if st, err := os.Stat(filepath.Join(full, e.Name())); err == nil && st.IsDir() {
				kind = KindDir
			}
		}
		out = append(out, DirEntry{Name: e.Name(), Kind: kind})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Remove unlinks a file.
func (h *HostFS) Remove(p Path) error {
	full, err := h.Resolve(p)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil {
		return mapErr("unlink "+p.String(), err)
	}
	return nil
}

// Exists reports whether p names an existing entry.
func (h *HostFS) Exists(p Path) bool {
	full, err := h.Resolve(p)
	if err != nil {
		return false
	}
	_, err = os.Stat(full)
	return err == nil
}

// SameFile reports whether a and b name the same host file, including
// through hard links or symlinks.
func (h *HostFS) SameFile(a, b Path) bool {
	fa, err := h.Resolve(a)
	if err != nil {
		return false
	}
	fb, err := h.Resolve(b)
	if err != nil {
		return false
	}
	sa, err := os.Stat(fa)
	if err != nil {
		return false
	}
	sb, err := os.Stat(fb)
	if err != nil {
		return false
	}
	return os.SameFile(sa, sb)
}

// Mkdir creates a single directory.
func (h *HostFS) Mkdir(p Path) error {
	full, err := h.Resolve(p)
	if err != nil {
		return err
	}
	if err := os.Mkdir(full, 0o755); err != nil {
		return mapErr("mkdir "+p.String(), err)
	}
	return nil
}

func mapErr(op string, err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%s: %w: %v", op, ErrNotFound, err)
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("%s: %w: %v", op, ErrPermission, err)
	case errors.Is(err, fs.ErrExist):
		return fmt.Errorf("%s: %w: %v", op, ErrAlreadyExists, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
