package picker

import "github.com/jask/antani/internal/volume"

// jumpStep is how far JumpNext and JumpPrev move.
const jumpStep = 5

// State is one picker session's view of a directory.
type State struct {
	Path     volume.Path
	Listing  *Listing
	Selected int
	Scroll   int
	Dirty    bool

	rows int
}

func newState(path volume.Path, listing *Listing, rows int) *State {
	if rows < 1 {
		rows = 1
	}
	return &State{Path: path, Listing: listing, rows: rows, Dirty: true}
}

// VisibleRows is the height of the scroll window.
func (s *State) VisibleRows() int { return s.rows }

// DirsOnly reports whether the state picks directories.
func (s *State) DirsOnly() bool { return s.Listing.DirsOnly() }

// Current returns the selected entry.
func (s *State) Current() Entry { return s.Listing.At(s.Selected) }

// MoveNext advances the cursor, wrapping to the first row past the end.
func (s *State) MoveNext() {
	if s.Selected+1 < s.Listing.Len() {
		s.Selected++
	} else {
		s.Selected = 0
		if s.Scroll != 0 {
			s.Scroll = 0
			s.Dirty = true
		}
	}
	s.follow()
}

// MovePrev moves the cursor back one row; it stops at the first row.
func (s *State) MovePrev() {
	if s.Selected > 0 {
		s.Selected--
	}
	s.follow()
}

// JumpNext moves forward by up to five rows without wrapping.
func (s *State) JumpNext() {
	s.Selected += min(jumpStep, s.Listing.Len()-1-s.Selected)
	s.follow()
}

// JumpPrev moves back by up to five rows without wrapping.
func (s *State) JumpPrev() {
	s.Selected -= min(jumpStep, s.Selected)
	s.follow()
}

// follow keeps the cursor inside the scroll window.
func (s *State) follow() {
	switch {
	case s.Selected < s.Scroll:
		s.Scroll = s.Selected
		s.Dirty = true
	case s.Selected > s.Scroll+s.rows-1:
		s.Scroll = s.Selected - s.rows + 1
		s.Dirty = true
	}
}
