package transfer

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/jask/antani/internal/copier"
	"github.com/jask/antani/internal/volume"
)

var (
	// ErrOpen reports a slot that could not be bound.
	ErrOpen = errors.New("cannot open")
	// ErrUnlink reports a failed delete.
	ErrUnlink = errors.New("cannot delete")
	// ErrSamePath reports a destination equal to the source.
	ErrSamePath = errors.New("source and destination are the same")
	// ErrBusy reports a Start while another transfer is active.
	ErrBusy = errors.New("a transfer is already active")
	// ErrState reports an operation that is invalid in the current state.
	ErrState = errors.New("invalid transfer state")

	// ErrNotFound is the filesystem's missing-entry error.
	ErrNotFound = volume.ErrNotFound
	// ErrAlreadyExists is the filesystem's existing-entry error.
	ErrAlreadyExists = volume.ErrAlreadyExists
	// ErrShortTransfer is the copier's incomplete-copy error.
	ErrShortTransfer = copier.ErrShortTransfer
)

// Step names the part of an operation that failed.
type Step uint8

const (
	StepNone Step = iota
	StepOpen
	StepMkdir
	StepCopy
	StepDelete
)

func (s Step) String() string {
	switch s {
	case StepOpen:
		return "open"
	case StepMkdir:
		return "mkdir"
	case StepCopy:
		return "copy"
	case StepDelete:
		return "delete"
	default:
		return "none"
	}
}

// StepError ties a failure to its step and path. Kind is one of the
// package's sentinel errors, nil when Err already carries it.
type StepError struct {
	Step Step
	Path volume.Path
	Kind error
	Err  error
}

func (e *StepError) Error() string {
	if e.Kind == nil {
		return fmt.Sprintf("%s %s: %v", e.Step, e.Path, e.Err)
	}
	return fmt.Sprintf("%s %s: %v: %v", e.Step, e.Path, e.Kind, e.Err)
}

func (e *StepError) Unwrap() []error {
	if e.Kind == nil {
		return []error{e.Err}
	}
	return []error{e.Kind, e.Err}
}

// Outcome is how a transfer, or one entry of a batch, ended.
type Outcome uint8

const (
	Succeeded Outcome = iota
	Failed
	Declined
	Cancelled
	Skipped
)

func (o Outcome) String() string {
	switch o {
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	case Declined:
		return "declined"
	case Cancelled:
		return "cancelled"
	default:
		return "skipped"
	}
}

// EntryReport is the result for one child of a directory batch.
type EntryReport struct {
	Name    string
	Outcome Outcome
	Step    Step
	Err     error
}

// Report is the terminal result of a session.
type Report struct {
	ID          uuid.UUID
	Mode        Mode
	Source      volume.Path
	Destination volume.Path
	Outcome     Outcome
	// Step is the failing step when Outcome is Failed.
	Step Step
	// Copied is set once the destination holds the full source content.
	Copied bool
	Bytes  copier.Result
	Err    error
	// Entries holds per-child results for directory batches.
	Entries []EntryReport
}

// Success reports whether every step succeeded.
func (r Report) Success() bool {
	return r.Outcome == Succeeded
}

// Count returns how many batch entries ended with o.
func (r Report) Count(o Outcome) int {
	n := 0
	for _, e := range r.Entries {
		if e.Outcome == o {
			n++
		}
	}
	return n
}

// Summary is a one-line, user-facing description of the result.
func (r Report) Summary() string {
	switch r.Outcome {
	case Declined:
		return "Nothing was changed."
	case Cancelled:
		return "Aborted."
	}
	if r.Mode.IsBatch() && len(r.Entries) > 0 {
		done, skipped, failed := r.Count(Succeeded), r.Count(Skipped), r.Count(Failed)
		if failed == 0 {
			return fmt.Sprintf("Success! %d done, %d skipped.", done, skipped)
		}
		return fmt.Sprintf("%d of %d entries failed (%d done, %d skipped).", failed, len(r.Entries), done, skipped)
	}
	if r.Success() {
		return "Success!"
	}
	switch r.Step {
	case StepOpen:
		return fmt.Sprintf("Open failed: %v", r.Err)
	case StepMkdir:
		return fmt.Sprintf("Cannot create %s: %v", r.Destination, r.Err)
	case StepCopy:
		return fmt.Sprintf("Copy failed: %v", r.Err)
	case StepDelete:
		if r.Copied {
			return fmt.Sprintf("Copied to %s, but deleting %s failed: %v", r.Destination, r.Source, r.Err)
		}
		return fmt.Sprintf("Delete failed: %v", r.Err)
	default:
		return fmt.Sprintf("Failed: %v", r.Err)
	}
}

func (r Report) String() string {
	return fmt.Sprintf("%s %s: %s", r.Mode, r.Outcome, r.Summary())
}
