package transfer

import (
	"github.com/google/uuid"

	"github.com/jask/antani/internal/volume"
)

// Role names a slot.
type Role uint8

const (
	Source Role = iota
	Destination
)

func (r Role) String() string {
	if r == Destination {
		return "destination"
	}
	return "source"
}

// Slot binds a role to a path and, for single-file modes, an open handle.
type Slot struct {
	Role   Role
	Path   volume.Path
	Handle volume.Handle
}

// Bound reports whether a path is bound.
func (s *Slot) Bound() bool {
	return s.Path != ""
}

// closeHandle closes the handle, keeping the path.
func (s *Slot) closeHandle() error {
	if s.Handle == nil {
		return nil
	}
	err := s.Handle.Close()
	s.Handle = nil
	return err
}

// release closes the handle and clears the path.
func (s *Slot) release() error {
	err := s.closeHandle()
	s.Path = ""
	return err
}

// PromptKind distinguishes the questions asked while confirming.
type PromptKind uint8

const (
	ConfirmAction PromptKind = iota
	ConfirmOverwrite
)

func (k PromptKind) String() string {
	if k == ConfirmOverwrite {
		return "overwrite"
	}
	return "action"
}

// Prompt is a yes/no question the user must answer.
type Prompt struct {
	Kind PromptKind
	Text string
}

// Session is the state of one transfer, threaded through the engine by
// reference.
type Session struct {
	ID          uuid.UUID
	Mode        Mode
	State       State
	Source      Slot
	Destination Slot

	target  volume.Path
	prompts []Prompt
}

func newSession(mode Mode) *Session {
	return &Session{
		ID:          uuid.New(),
		Mode:        mode,
		State:       AwaitingSource,
		Source:      Slot{Role: Source},
		Destination: Slot{Role: Destination},
	}
}

// Snapshot is a read-only copy of a session's observable state.
type Snapshot struct {
	ID              uuid.UUID
	Mode            Mode
	State           State
	Source          volume.Path
	Destination     volume.Path
	Target          volume.Path
	SourceOpen      bool
	DestinationOpen bool
}

func (s *Session) snapshot() Snapshot {
	return Snapshot{
		ID:              s.ID,
		Mode:            s.Mode,
		State:           s.State,
		Source:          s.Source.Path,
		Destination:     s.Destination.Path,
		Target:          s.target,
		SourceOpen:      s.Source.Handle != nil,
		DestinationOpen: s.Destination.Handle != nil,
	}
}
