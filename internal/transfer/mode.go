package transfer

import "fmt"

// Mode selects the operation a session performs.
type Mode uint8

const (
	Copy Mode = iota
	Move
	Delete
	CopyDir
	MoveDir
	DeleteDir
)

func (m Mode) String() string {
	switch m {
	case Copy:
		return "copy"
	case Move:
		return "move"
	case Delete:
		return "delete"
	case CopyDir:
		return "copy-dir"
	case MoveDir:
		return "move-dir"
	case DeleteDir:
		return "delete-dir"
	default:
		return fmt.Sprintf("mode(%d)", uint8(m))
	}
}

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m <= DeleteDir
}

// NeedsDestination reports whether a destination slot must be bound.
func (m Mode) NeedsDestination() bool {
	return m != Delete && m != DeleteDir
}

// IsBatch reports whether the mode applies to every file directly inside
// a directory.
func (m Mode) IsBatch() bool {
	return m == CopyDir || m == MoveDir || m == DeleteDir
}

// RemovesSource reports whether the source is unlinked.
func (m Mode) RemovesSource() bool {
	return m == Move || m == Delete || m == MoveDir || m == DeleteDir
}

// State is a session's position in the workflow.
type State uint8

const (
	Idle State = iota
	AwaitingSource
	AwaitingDestination
	Confirming
	Executing
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitingSource:
		return "awaiting-source"
	case AwaitingDestination:
		return "awaiting-destination"
	case Confirming:
		return "confirming"
	case Executing:
		return "executing"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

// SourceDirsOnly reports whether the source picker lists directories only.
func (m Mode) SourceDirsOnly() bool {
	return m.IsBatch()
}
