// Package copier streams bytes between two open handles in fixed-size
// chunks and verifies that exactly the declared length arrived.
package copier

import (
	"errors"
	"fmt"
	"io"
	"syscall"

	"github.com/sirupsen/logrus"
)

// DefaultChunkSize is the transfer unit used when none is configured.
const DefaultChunkSize = 512

// maxStalledWrites bounds consecutive writes that make no progress.
const maxStalledWrites = 8

// ErrShortTransfer reports that fewer bytes were copied than declared.
var ErrShortTransfer = errors.New("short transfer")

// Result reports how many bytes moved against the declared source length.
type Result struct {
	Copied   int64
	Declared int64
}

// Complete reports whether every declared byte was transferred.
func (r Result) Complete() bool {
	return r.Copied == r.Declared
}

// Copier performs chunked copies.
type Copier struct {
	chunk    int
	log      *logrus.Entry
	progress func(done, total int64)
}

// Option configures a Copier.
type Option func(*Copier)

// WithChunkSize sets the chunk size. Non-positive values keep the default.
func WithChunkSize(n int) Option {
	return func(c *Copier) {
		if n > 0 {
			c.chunk = n
		}
	}
}

// WithLogger sets the logger used for per-copy diagnostics.
func WithLogger(l *logrus.Entry) Option {
	return func(c *Copier) {
		if l != nil {
			c.log = l
		}
	}
}

// WithProgress registers a callback invoked after every completed chunk.
func WithProgress(fn func(done, total int64)) Option {
	return func(c *Copier) { c.progress = fn }
}

// New returns a Copier.
func New(opts ...Option) *Copier {
	c := &Copier{
		chunk: DefaultChunkSize,
		log:   logrus.NewEntry(logrus.StandardLogger()),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.WithField("component", "copier")
	return c
}

// ChunkSize returns the configured chunk size.
func (c *Copier) ChunkSize() int {
	return c.chunk
}

// Copy transfers src to dst. The source length is taken up front by
// seeking to its end; the copy succeeds only when exactly that many bytes
// were written. A short write is retried for its remainder; any other I/O
// error stops the copy.
func (c *Copier) Copy(src io.ReadSeeker, dst io.Writer) (Result, error) {
	var res Result

	end, err := src.Seek(0, io.SeekEnd)
	if err != nil {
		return res, fmt.Errorf("measure source: %w", err)
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return res, fmt.Errorf("rewind source: %w", err)
	}
	res.Declared = end

	buf := make([]byte, c.chunk)
	var ioErr error
	for res.Copied < res.Declared {
		want := int64(len(buf))
		if remaining := res.Declared - res.Copied; remaining < want {
			want = remaining
		}
		n, rerr := src.Read(buf[:want])
		if n > 0 {
			written, werr := writeFull(dst, buf[:n])
			res.Copied += int64(written)
			if werr != nil {
				ioErr = fmt.Errorf("write: %w", werr)
				break
			}
			if c.progress != nil {
				c.progress(res.Copied, res.Declared)
			}
		}
		if rerr != nil {
			if !errors.Is(rerr, io.EOF) {
				ioErr = fmt.Errorf("read: %w", rerr)
			}
			break
		}
		if n == 0 {
			ioErr = io.ErrNoProgress
			break
		}
	}

	c.log.WithFields(logrus.Fields{
		"copied":   res.Copied,
		"declared": res.Declared,
		"chunk":    c.chunk,
	}).Debug("copy finished")

	if !res.Complete() {
		if ioErr != nil {
			return res, fmt.Errorf("%w (%d/%d bytes): %w", ErrShortTransfer, res.Copied, res.Declared, ioErr)
		}
		return res, fmt.Errorf("%w (%d/%d bytes)", ErrShortTransfer, res.Copied, res.Declared)
	}
	return res, nil
}

// writeFull writes b completely, retrying short and interrupted writes.
func writeFull(dst io.Writer, b []byte) (int, error) {
	total, stalled := 0, 0
	for total < len(b) {
		n, err := dst.Write(b[total:])
		if n < 0 || n > len(b)-total {
			return total, fmt.Errorf("invalid write count %d", n)
		}
		total += n
		if err != nil && !retryable(err) {
			return total, err
		}
		if n == 0 {
			stalled++
			if stalled > maxStalledWrites {
				if err == nil {
					err = io.ErrShortWrite
				}
				return total, err
			}
			continue
		}
		stalled = 0
	}
	return total, nil
}

func retryable(err error) bool {
	return errors.Is(err, io.ErrShortWrite) || errors.Is(err, syscall.EINTR)
}
