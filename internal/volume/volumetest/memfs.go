// Package volumetest provides an in-memory volume.FS with fault injection
// and handle accounting for tests.
package volumetest

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/jask/antani/internal/volume"
)

// ErrInjected is returned by injected write failures.
var ErrInjected = errors.New("injected failure")

// MemFS is a volume.FS kept entirely in memory.
type MemFS struct {
	mu    sync.Mutex
	files map[volume.Path][]byte
	dirs  map[volume.Path]bool

	failOpen    map[volume.Path]error
	failRemove  map[volume.Path]error
	failReadDir map[volume.Path]error
	failMkdir   map[volume.Path]error

	shortWrites    int
	failWriteAfter int64
	written        int64

	ops  int
	open int
}

// New returns an empty MemFS with a root directory for each volume.
func New(volumes ...string) *MemFS {
	m := &MemFS{
		files:          make(map[volume.Path][]byte),
		dirs:           make(map[volume.Path]bool),
		failOpen:       make(map[volume.Path]error),
		failRemove:     make(map[volume.Path]error),
		failReadDir:    make(map[volume.Path]error),
		failMkdir:      make(map[volume.Path]error),
		failWriteAfter: -1,
	}
	for _, v := range volumes {
		m.dirs[volume.Root(v)] = true
	}
	return m
}

// MkdirAll creates p and any missing parents.
func (m *MemFS) MkdirAll(p volume.Path) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mkdirAllLocked(p.Clean())
}

func (m *MemFS) mkdirAllLocked(p volume.Path) {
	for !m.dirs[p] {
		m.dirs[p] = true
		if p.IsRoot() {
			return
		}
		p = p.Parent()
	}
}

// WriteFile stores data at p, creating parent directories.
func (m *MemFS) WriteFile(p volume.Path, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p = p.Clean()
	m.mkdirAllLocked(p.Parent())
	m.files[p] = append([]byte(nil), data...)
}

// ReadFile returns a copy of the file at p.
func (m *MemFS) ReadFile(p volume.Path) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.files[p.Clean()]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), data...), true
}

// FailOpen makes Open of p return err.
func (m *MemFS) FailOpen(p volume.Path, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failOpen[p.Clean()] = err
}

// FailRemove makes Remove of p return err.
func (m *MemFS) FailRemove(p volume.Path, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failRemove[p.Clean()] = err
}

// FailReadDir makes ReadDir of p return err.
func (m *MemFS) FailReadDir(p volume.Path, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failReadDir[p.Clean()] = err
}

// FailMkdir makes Mkdir of p return err.
func (m *MemFS) FailMkdir(p volume.Path, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failMkdir[p.Clean()] = err
}

// ShortWrites caps every Write at n bytes, returning a short count with a
// nil error. Zero disables the cap.
func (m *MemFS) ShortWrites(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shortWrites = n
}

// FailWriteAfter makes writes fail with ErrInjected once n bytes have been
// written across all handles. A negative n disables the failure.
func (m *MemFS) FailWriteAfter(n int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failWriteAfter = n
	m.written = 0
}

// Ops counts FS calls made so far.
func (m *MemFS) Ops() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ops
}

// OpenHandles counts handles that have not been closed.
func (m *MemFS) OpenHandles() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.open
}

func (m *MemFS) Open(p volume.Path, mode volume.OpenMode) (volume.Handle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ops++
	p = p.Clean()
	if err := m.failOpen[p]; err != nil {
		return nil, fmt.Errorf("open %s: %w", p, err)
	}
	if m.dirs[p] {
		return nil, fmt.Errorf("open %s: is a directory: %w", p, volume.ErrInvalidPath)
	}
	switch mode {
	case volume.WriteTruncate:
		if !m.dirs[p.Parent()] {
			return nil, fmt.Errorf("open %s: %w", p, volume.ErrNotFound)
		}
		m.files[p] = nil
	default:
		if _, ok := m.files[p]; !ok {
			return nil, fmt.Errorf("open %s: %w", p, volume.ErrNotFound)
		}
	}
	m.open++
	return &handle{fs: m, path: p, mode: mode}, nil
}

func (m *MemFS) ReadDir(p volume.Path) ([]volume.DirEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ops++
	p = p.Clean()
	if err := m.failReadDir[p]; err != nil {
		return nil, fmt.Errorf("list %s: %w", p, err)
	}
	if !m.dirs[p] {
		return nil, fmt.Errorf("list %s: %w", p, volume.ErrNotFound)
	}
	var out []volume.DirEntry
	for d := range m.dirs {
		if !d.IsRoot() && d.Parent() == p {
			out = append(out, volume.DirEntry{Name: d.Base(), Kind: volume.KindDir})
		}
	}
	for f := range m.files {
		if f.Parent() == p {
			out = append(out, volume.DirEntry{Name: f.Base(), Kind: volume.KindFile})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MemFS) Remove(p volume.Path) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ops++
	p = p.Clean()
	if err := m.failRemove[p]; err != nil {
		return fmt.Errorf("unlink %s: %w", p, err)
	}
	if m.dirs[p] {
		return fmt.Errorf("unlink %s: is a directory: %w", p, volume.ErrPermission)
	}
	if _, ok := m.files[p]; !ok {
		return fmt.Errorf("unlink %s: %w", p, volume.ErrNotFound)
	}
	delete(m.files, p)
	return nil
}

func (m *MemFS) Exists(p volume.Path) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ops++
	p = p.Clean()
	_, isFile := m.files[p]
	return isFile || m.dirs[p]
}

func (m *MemFS) Mkdir(p volume.Path) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ops++
	p = p.Clean()
	if err := m.failMkdir[p]; err != nil {
		return fmt.Errorf("mkdir %s: %w", p, err)
	}
	if _, isFile := m.files[p]; isFile || m.dirs[p] {
		return fmt.Errorf("mkdir %s: %w", p, volume.ErrAlreadyExists)
	}
	if !m.dirs[p.Parent()] {
		return fmt.Errorf("mkdir %s: %w", p, volume.ErrNotFound)
	}
	m.dirs[p] = true
	return nil
}

type handle struct {
	fs     *MemFS
	path   volume.Path
	mode   volume.OpenMode
	off    int64
	closed bool
}

func (h *handle) Read(b []byte) (int, error) {
	h.fs.mu.Lock()
	defer h.fs.mu.Unlock()
	if h.closed {
		return 0, errors.New("read on closed handle")
	}
	data := h.fs.files[h.path]
	if h.off >= int64(len(data)) {
		return 0, io.EOF
	}
	n := copy(b, data[h.off:])
	h.off += int64(n)
	return n, nil
}

func (h *handle) Write(b []byte) (int, error) {
	h.fs.mu.Lock()
	defer h.fs.mu.Unlock()
	if h.closed {
		return 0, errors.New("write on closed handle")
	}
	if h.mode != volume.WriteTruncate {
		return 0, fmt.Errorf("write %s: %w", h.path, volume.ErrPermission)
	}
	if h.fs.failWriteAfter >= 0 && h.fs.written >= h.fs.failWriteAfter {
		return 0, ErrInjected
	}
	n := len(b)
	if h.fs.shortWrites > 0 && n > h.fs.shortWrites {
		n = h.fs.shortWrites
	}
	if h.fs.failWriteAfter >= 0 && h.fs.written+int64(n) > h.fs.failWriteAfter {
		n = int(h.fs.failWriteAfter - h.fs.written)
	}
	data := h.fs.files[h.path]
	end := h.off + int64(n)
	if end > int64(len(data)) {
		grown := make([]byte, end)
		copy(grown, data)
		data = grown
	}
	copy(data[h.off:end], b[:n])
	h.fs.files[h.path] = data
	h.off = end
	h.fs.written += int64(n)
	return n, nil
}

func (h *handle) Seek(offset int64, whence int) (int64, error) {
	h.fs.mu.Lock()
	defer h.fs.mu.Unlock()
	var base int64
	switch whence {
	case io.SeekStart:
	case io.SeekCurrent:
		base = h.off
	case io.SeekEnd:
		base = int64(len(h.fs.files[h.path]))
	default:
		return 0, errors.New("invalid whence")
	}
	if base+offset < 0 {
		return 0, errors.New("negative position")
	}
	h.off = base + offset
	return h.off, nil
}

func (h *handle) Close() error {
	h.fs.mu.Lock()
	defer h.fs.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true
	h.fs.open--
	return nil
}
