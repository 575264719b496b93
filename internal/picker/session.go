package picker

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/jask/antani/internal/volume"
)

// DefaultVisibleRows is the scroll window height when none is configured.
const DefaultVisibleRows = 20

var (
	// ErrNotFound reports a directory that could not be listed.
	ErrNotFound = errors.New("directory not found")
	// ErrClosed reports input delivered to a finished or unopened session.
	ErrClosed = errors.New("picker session closed")
)

// Event is one button press.
type Event uint8

const (
	Confirm Event = iota
	MoveNext
	MovePrev
	JumpNext
	JumpPrev
)

func (e Event) String() string {
	switch e {
	case Confirm:
		return "confirm"
	case MoveNext:
		return "next"
	case MovePrev:
		return "prev"
	case JumpNext:
		return "jump-next"
	case JumpPrev:
		return "jump-prev"
	default:
		return fmt.Sprintf("event(%d)", uint8(e))
	}
}

// OutcomeKind says whether a session is still running or how it ended.
type OutcomeKind uint8

const (
	Pending OutcomeKind = iota
	Selected
	Aborted
)

func (k OutcomeKind) String() string {
	switch k {
	case Selected:
		return "selected"
	case Aborted:
		return "aborted"
	default:
		return "pending"
	}
}

// Outcome is the result of handling one event.
type Outcome struct {
	Kind OutcomeKind
	Path volume.Path
}

// Done reports whether the session has ended.
func (o Outcome) Done() bool { return o.Kind != Pending }

// Lister is the part of volume.FS the picker needs.
type Lister interface {
	ReadDir(p volume.Path) ([]volume.DirEntry, error)
}

// Session is one picker navigation loop.
type Session struct {
	fs     Lister
	rows   int
	limits Limits
	log    *logrus.Entry

	cur    *State
	stack  *Stack
	closed bool
}

// Option configures a Session.
type Option func(*Session)

// WithVisibleRows sets the scroll window height.
func WithVisibleRows(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.rows = n
		}
	}
}

// WithLimits sets the listing and depth limits.
func WithLimits(l Limits) Option {
	return func(s *Session) { s.limits = l.withDefaults() }
}

// WithLogger sets the session logger.
func WithLogger(l *logrus.Entry) Option {
	return func(s *Session) {
		if l != nil {
			s.log = l
		}
	}
}

// New returns an unopened Session.
func New(fs Lister, opts ...Option) *Session {
	s := &Session{
		fs:     fs,
		rows:   DefaultVisibleRows,
		limits: DefaultLimits(),
		log:    logrus.NewEntry(logrus.StandardLogger()),
		closed: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.WithField("component", "picker")
	s.stack = NewStack(s.limits.MaxDepth)
	return s
}

// Open starts browsing at root. When dirsOnly is set only directories are
// listed and "." selects the directory being shown.
func (s *Session) Open(root volume.Path, dirsOnly bool) error {
	st, err := s.load(root.Clean(), dirsOnly)
	if err != nil {
		return err
	}
	s.stack.Reset()
	s.cur = st
	s.closed = false
	return nil
}

func (s *Session) load(path volume.Path, dirsOnly bool) (*State, error) {
	entries, err := s.fs.ReadDir(path)
	if err != nil {
		s.log.WithFields(logrus.Fields{"path": path, "error": err}).Warn("cannot open directory")
		return nil, fmt.Errorf("%w: %s: %w", ErrNotFound, path, err)
	}
	listing := BuildListing(entries, dirsOnly, s.limits)
	if n := listing.Dropped(); n > 0 {
		s.log.WithFields(logrus.Fields{"path": path, "dropped": n}).Info("listing truncated")
	}
	return newState(path, listing, s.rows), nil
}

// Current returns the state being shown, or nil when closed.
func (s *Session) Current() *State {
	if s.closed {
		return nil
	}
	return s.cur
}

// Depth is the number of parent states on the navigation stack.
func (s *Session) Depth() int { return s.stack.Depth() }

// MaxDepth is the navigation stack's cap.
func (s *Session) MaxDepth() int { return s.stack.Cap() }

// Closed reports whether the session has ended.
func (s *Session) Closed() bool { return s.closed }

// Handle applies one event.
func (s *Session) Handle(ev Event) (Outcome, error) {
	if s.closed {
		return Outcome{}, ErrClosed
	}
	switch ev {
	case MoveNext:
		s.cur.MoveNext()
	case MovePrev:
		s.cur.MovePrev()
	case JumpNext:
		s.cur.JumpNext()
	case JumpPrev:
		s.cur.JumpPrev()
	case Confirm:
		return s.confirm()
	default:
		return Outcome{}, fmt.Errorf("unknown picker event %v", ev)
	}
	return Outcome{Kind: Pending}, nil
}

func (s *Session) confirm() (Outcome, error) {
	entry := s.cur.Current()
	switch entry.Type {
	case SelfRef:
		return s.finish(Outcome{Kind: Selected, Path: s.cur.Path.AsDir()}), nil
	case ParentRef:
		parent, ok := s.stack.Pop()
		if !ok {
			return s.finish(Outcome{Kind: Aborted}), nil
		}
		parent.Dirty = true
		s.cur = parent
		return Outcome{Kind: Pending}, nil
	case Directory:
		return s.descend(entry.Name)
	default:
		return s.finish(Outcome{Kind: Selected, Path: s.cur.Path.Join(entry.Name)}), nil
	}
}

func (s *Session) descend(name string) (Outcome, error) {
	if err := s.stack.Push(s.cur); err != nil {
		s.log.WithFields(logrus.Fields{"path": s.cur.Path, "depth": s.stack.Depth()}).Error("navigation stack exhausted")
		return s.finish(Outcome{Kind: Aborted}), err
	}
	child, err := s.load(s.cur.Path.Join(name), s.cur.DirsOnly())
	if err != nil {
		s.stack.Pop()
		s.cur.Dirty = true
		return Outcome{Kind: Pending}, err
	}
	s.cur = child
	return Outcome{Kind: Pending}, nil
}

func (s *Session) finish(o Outcome) Outcome {
	s.closed = true
	s.stack.Reset()
	s.log.WithFields(logrus.Fields{"outcome": o.Kind, "path": o.Path}).Debug("picker session ended")
	return o
}
