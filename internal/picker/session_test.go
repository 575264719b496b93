package picker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jask/antani/internal/volume"
	"github.com/jask/antani/internal/volume/volumetest"
)

func newTree(t *testing.T) *volumetest.MemFS {
	t.Helper()
	fs := volumetest.New("sdmc")
	fs.MkdirAll("sdmc:/games/saves")
	fs.WriteFile("sdmc:/games/saves/slot1.sav", []byte("1"))
	fs.WriteFile("sdmc:/games/readme.txt", []byte("r"))
	fs.WriteFile("sdmc:/otp.bin", []byte("otp"))
	return fs
}

func press(t *testing.T, s *Session, evs ...Event) Outcome {
	t.Helper()
	var o Outcome
	for _, ev := range evs {
		var err error
		o, err = s.Handle(ev)
		require.NoError(t, err)
	}
	return o
}

func TestOpenMissingDirectory(t *testing.T) {
	t.Parallel()

	s := New(newTree(t))
	err := s.Open("sdmc:/nope", false)
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, err, volume.ErrNotFound)
	require.True(t, s.Closed())

	_, err = s.Handle(Confirm)
	require.ErrorIs(t, err, ErrClosed)
}

func TestSelectFileThroughSubdirectories(t *testing.T) {
	t.Parallel()

	s := New(newTree(t))
	require.NoError(t, s.Open(volume.Root("sdmc"), false))
	// root: .., games/, otp.bin
	o := press(t, s, MoveNext, Confirm)
	require.Equal(t, Pending, o.Kind)
	require.Equal(t, volume.Path("sdmc:/games"), s.Current().Path)
	require.Equal(t, 1, s.Depth())

	// games: .., saves/, readme.txt
	o = press(t, s, MoveNext, MoveNext, Confirm)
	require.Equal(t, Outcome{Kind: Selected, Path: "sdmc:/games/readme.txt"}, o)
	require.True(t, s.Closed())
	require.Zero(t, s.Depth())
}

func TestSelectDirectoryWithSelfRef(t *testing.T) {
	t.Parallel()

	s := New(newTree(t))
	require.NoError(t, s.Open(volume.Root("sdmc"), true))
	// root: .., ., games/
	o := press(t, s, MoveNext, MoveNext, Confirm, MoveNext, Confirm)
	require.Equal(t, Outcome{Kind: Selected, Path: "sdmc:/games/"}, o)

	require.NoError(t, s.Open(volume.Root("sdmc"), true))
	o = press(t, s, MoveNext, Confirm)
	require.Equal(t, Outcome{Kind: Selected, Path: "sdmc:/"}, o)
}

func TestParentRefResumesParentState(t *testing.T) {
	t.Parallel()

	fs := volumetest.New("sdmc")
	for i := 0; i < 10; i++ {
		fs.MkdirAll(volume.Path(fmt.Sprintf("sdmc:/d%d", i)))
	}
	s := New(fs, WithVisibleRows(4))
	require.NoError(t, s.Open(volume.Root("sdmc"), false))

	press(t, s, JumpNext, MoveNext) // row 6 = d5
	parent := s.Current()
	require.Equal(t, 6, parent.Selected)
	require.Equal(t, 3, parent.Scroll)

	press(t, s, Confirm)
	require.Equal(t, volume.Path("sdmc:/d5"), s.Current().Path)

	o := press(t, s, Confirm) // ".." of the child
	require.Equal(t, Pending, o.Kind)
	require.Same(t, parent, s.Current())
	require.Equal(t, 6, s.Current().Selected)
	require.Equal(t, 3, s.Current().Scroll)
	require.True(t, s.Current().Dirty)
	require.Zero(t, s.Depth())
}

func TestAbortAtRootOnlyOnce(t *testing.T) {
	t.Parallel()

	s := New(newTree(t))
	require.NoError(t, s.Open(volume.Root("sdmc"), false))

	for i := 0; i < 5; i++ {
		o := press(t, s, MovePrev)
		require.Equal(t, Pending, o.Kind)
		require.Zero(t, s.Current().Selected)
	}
	o := press(t, s, Confirm)
	require.Equal(t, Outcome{Kind: Aborted}, o)

	for i := 0; i < 3; i++ {
		o, err := s.Handle(MovePrev)
		require.ErrorIs(t, err, ErrClosed)
		require.Equal(t, Pending, o.Kind)
		_, err = s.Handle(Confirm)
		require.ErrorIs(t, err, ErrClosed)
	}
	require.Zero(t, s.Depth())
}

func TestBackingOutOfChildReturnsToParentNotAbort(t *testing.T) {
	t.Parallel()

	s := New(newTree(t))
	require.NoError(t, s.Open(volume.Root("sdmc"), false))
	press(t, s, MoveNext, Confirm) // games
	press(t, s, MoveNext, Confirm) // games/saves
	require.Equal(t, 2, s.Depth())

	require.Equal(t, Pending, press(t, s, Confirm).Kind) // back to games
	require.Equal(t, Pending, press(t, s, MovePrev, Confirm).Kind)
	require.Equal(t, volume.Root("sdmc"), s.Current().Path)
	require.Equal(t, Aborted, press(t, s, MovePrev, Confirm).Kind)
}

func TestDescendIntoUnreadableDirectoryStaysInParent(t *testing.T) {
	t.Parallel()

	fs := newTree(t)
	fs.FailReadDir("sdmc:/games", volume.ErrPermission)
	s := New(fs)
	require.NoError(t, s.Open(volume.Root("sdmc"), false))
	press(t, s, MoveNext)

	o, err := s.Handle(Confirm)
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, err, volume.ErrPermission)
	require.Equal(t, Pending, o.Kind)
	require.False(t, s.Closed())
	require.Equal(t, volume.Root("sdmc"), s.Current().Path)
	require.Zero(t, s.Depth())
}

func TestDepthCapIsReported(t *testing.T) {
	t.Parallel()

	fs := volumetest.New("sdmc")
	p := volume.Root("sdmc")
	for i := 0; i < 5; i++ {
		p = p.Join("n")
	}
	fs.MkdirAll(p)

	s := New(fs, WithLimits(Limits{MaxDepth: 3}))
	require.Equal(t, 3, s.MaxDepth())
	require.NoError(t, s.Open(volume.Root("sdmc"), false))
	for i := 0; i < 3; i++ {
		press(t, s, MoveNext, Confirm)
	}
	require.Equal(t, 3, s.Depth())

	press(t, s, MoveNext)
	o, err := s.Handle(Confirm)
	require.ErrorIs(t, err, ErrDepthExceeded)
	require.Equal(t, Aborted, o.Kind)
	require.True(t, s.Closed())
}

func TestNavigationInvariantsHoldForRandomEvents(t *testing.T) {
	t.Parallel()

	fs := volumetest.New("sdmc")
	for i := 0; i < 37; i++ {
		fs.WriteFile(volume.Path(fmt.Sprintf("sdmc:/f%02d", i)), nil)
	}
	for _, rows := range []int{1, 3, 7, 20, 60} {
		s := New(fs, WithVisibleRows(rows))
		require.NoError(t, s.Open(volume.Root("sdmc"), false))
		rng := rand.New(rand.NewSource(int64(rows)))
		moves := []Event{MoveNext, MovePrev, JumpNext, JumpPrev}
		for i := 0; i < 2000; i++ {
			press(t, s, moves[rng.Intn(len(moves))])
			st := s.Current()
			total := st.Listing.Len()
			require.GreaterOrEqual(t, st.Selected, 0)
			require.Less(t, st.Selected, total)
			require.LessOrEqual(t, st.Scroll, st.Selected)
			require.LessOrEqual(t, st.Selected, st.Scroll+rows-1)
		}
	}
}

func TestMoveNextWrapsAndResetsScroll(t *testing.T) {
	t.Parallel()

	fs := volumetest.New("sdmc")
	for i := 0; i < 6; i++ {
		fs.WriteFile(volume.Path(fmt.Sprintf("sdmc:/f%d", i)), nil)
	}
	s := New(fs, WithVisibleRows(3))
	require.NoError(t, s.Open(volume.Root("sdmc"), false))
	st := s.Current()
	st.Dirty = false

	press(t, s, MoveNext, MoveNext)
	require.False(t, st.Dirty, "moving inside the window needs no redraw")
	press(t, s, MoveNext)
	require.True(t, st.Dirty)
	require.Equal(t, 1, st.Scroll)

	press(t, s, JumpNext)
	require.Equal(t, 6, st.Selected)
	require.Equal(t, 4, st.Scroll)

	st.Dirty = false
	press(t, s, MoveNext)
	require.Zero(t, st.Selected)
	require.Zero(t, st.Scroll)
	require.True(t, st.Dirty)

	press(t, s, JumpPrev)
	require.Zero(t, st.Selected)
}

type scriptedInput struct {
	events []Event
}

func (in *scriptedInput) Next(context.Context) (Event, error) {
	if len(in.events) == 0 {
		return 0, io.EOF
	}
	ev := in.events[0]
	in.events = in.events[1:]
	return ev, nil
}

type recordingDisplay struct {
	redraws []Frame
	cursors []int
	notes   []string
}

func (d *recordingDisplay) Redraw(f Frame)    { d.redraws = append(d.redraws, f) }
func (d *recordingDisplay) Cursor(row int)    { d.cursors = append(d.cursors, row) }
func (d *recordingDisplay) Notify(msg string) { d.notes = append(d.notes, msg) }

func TestRunRedrawsOnlyWhenDirty(t *testing.T) {
	t.Parallel()

	s := New(newTree(t))
	require.NoError(t, s.Open(volume.Root("sdmc"), false))
	in := &scriptedInput{events: []Event{MoveNext, MoveNext, MovePrev, Confirm, MoveNext, MoveNext, Confirm}}
	out := &recordingDisplay{}

	o, err := s.Run(context.Background(), in, out)
	require.NoError(t, err)
	require.Equal(t, Outcome{Kind: Selected, Path: "sdmc:/games/readme.txt"}, o)

	require.Len(t, out.redraws, 2, "initial frame and the games directory")
	require.Equal(t, []string{"Select a file...", "", "  ../ ", "  games/ ", "  otp.bin "}, out.redraws[0].Lines)
	require.Equal(t, []int{2, 3, 4, 3, 2, 3, 4}, out.cursors)
}

func TestRunReportsDescendFailureAndContinues(t *testing.T) {
	t.Parallel()

	fs := newTree(t)
	fs.FailReadDir("sdmc:/games", volume.ErrPermission)
	s := New(fs)
	require.NoError(t, s.Open(volume.Root("sdmc"), false))
	in := &scriptedInput{events: []Event{MoveNext, Confirm, MoveNext, Confirm}}
	out := &recordingDisplay{}

	o, err := s.Run(context.Background(), in, out)
	require.NoError(t, err)
	require.Equal(t, volume.Path("sdmc:/otp.bin"), o.Path)
	require.Len(t, out.notes, 1)
}

func TestRunPropagatesInputErrors(t *testing.T) {
	t.Parallel()

	s := New(newTree(t))
	require.NoError(t, s.Open(volume.Root("sdmc"), false))
	_, err := s.Run(context.Background(), &scriptedInput{}, &recordingDisplay{})
	require.True(t, errors.Is(err, io.EOF))
}
