package tui

import "github.com/jask/antani/internal/picker"

// frameDisplay is the picker's Display: it keeps the last frame pushed by
// the session so View can render it.
type frameDisplay struct {
	frame   picker.Frame
	cursor  int
	redraws int
	notice  string
}

func (d *frameDisplay) Redraw(f picker.Frame) {
	d.frame = f
	d.redraws++
}

func (d *frameDisplay) Cursor(row int) {
	d.cursor = row
}

func (d *frameDisplay) Notify(msg string) {
	d.notice = msg
}

func (d *frameDisplay) reset() {
	*d = frameDisplay{}
}
