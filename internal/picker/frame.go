package picker

import "context"

// Frame is what a Display draws: the header and visible rows, with Cursor
// indexing the selected row within Lines.
type Frame struct {
	Title  string
	Lines  []string
	Cursor int
}

// HeaderLines is the number of lines above the first entry row.
const HeaderLines = 2

// Input delivers button presses, blocking until one is available.
type Input interface {
	Next(ctx context.Context) (Event, error)
}

// Display renders frames. Redraw repaints everything; Cursor only moves
// the selection marker.
type Display interface {
	Redraw(f Frame)
	Cursor(row int)
}

// Notifier is an optional Display capability for user-visible messages,
// such as a directory that could not be opened.
type Notifier interface {
	Notify(msg string)
}

// Frame renders the visible window of the current state.
func (s *Session) Frame() Frame {
	if s.cur == nil {
		return Frame{}
	}
	st := s.cur
	title := "Select a file..."
	if st.DirsOnly() {
		title = "Select a directory..."
	}
	f := Frame{Title: title, Lines: []string{title, ""}}
	end := min(st.Scroll+st.rows, st.Listing.Len())
	for i := st.Scroll; i < end; i++ {
		e := st.Listing.At(i)
		if e.IsDir() {
			f.Lines = append(f.Lines, "  "+e.Name+"/ ")
		} else {
			f.Lines = append(f.Lines, "  "+e.Name+" ")
		}
	}
	f.Cursor = HeaderLines + st.Selected - st.Scroll
	return f
}

// Run drives the session from in until it ends. The display is fully
// redrawn only when the state is dirty; otherwise only the cursor moves.
func (s *Session) Run(ctx context.Context, in Input, out Display) (Outcome, error) {
	if s.closed {
		return Outcome{}, ErrClosed
	}
	s.Present(out)
	for {
		ev, err := in.Next(ctx)
		if err != nil {
			return Outcome{}, err
		}
		o, err := s.Handle(ev)
		if o.Done() {
			return o, err
		}
		if err != nil {
			s.log.WithField("error", err).Warn("picker step failed")
			if n, ok := out.(Notifier); ok {
				n.Notify(err.Error())
			}
		}
		s.Present(out)
	}
}

// Present pushes the current state to out: a full Redraw when the state
// is dirty, then the cursor position.
func (s *Session) Present(out Display) {
	if s.cur == nil {
		return
	}
	f := s.Frame()
	if s.cur.Dirty {
		out.Redraw(f)
		s.cur.Dirty = false
	}
	out.Cursor(f.Cursor)
}
