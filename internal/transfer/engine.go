package transfer

import (
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/jask/antani/internal/copier"
	"github.com/jask/antani/internal/volume"
)

// Engine drives one transfer session at a time.
type Engine struct {
	fs  volume.FS
	cp  *copier.Copier
	log *logrus.Entry

	mu   sync.Mutex
	sess *Session
	last *Report
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(l *logrus.Entry) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// New returns an idle Engine. A nil copier gets the default chunk size.
func New(fs volume.FS, cp *copier.Copier, opts ...Option) *Engine {
	e := &Engine{
		fs:  fs,
		cp:  cp,
		log: logrus.NewEntry(logrus.StandardLogger()),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.log = e.log.WithField("component", "transfer")
	if e.cp == nil {
		e.cp = copier.New(copier.WithLogger(e.log))
	}
	return e
}

// State returns the current workflow state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.sess == nil {
		return Idle
	}
	return e.sess.State
}

// Snapshot returns the active session's observable state. ok is false
// when idle.
func (e *Engine) Snapshot() (Snapshot, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.sess == nil {
		return Snapshot{State: Idle}, false
	}
	return e.sess.snapshot(), true
}

// LastReport returns the report of the most recently finished session.
func (e *Engine) LastReport() (Report, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.last == nil {
		return Report{}, false
	}
	return *e.last, true
}

// Start begins a session in mode. Both slots start empty.
func (e *Engine) Start(mode Mode) error {
	if !mode.Valid() {
		return fmt.Errorf("%w: unknown mode %v", ErrState, mode)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.sess != nil {
		return fmt.Errorf("%w: %s is %s", ErrBusy, e.sess.Mode, e.sess.State)
	}
	e.sess = newSession(mode)
	e.logger().Info("transfer started")
	return nil
}

// PickerDirsOnly reports which picker flavour the current state needs:
// destinations and batch sources pick directories, single-file sources
// pick files.
func (e *Engine) PickerDirsOnly() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.sess == nil {
		return false
	}
	if e.sess.State == AwaitingDestination {
		return true
	}
	return e.sess.Mode.SourceDirsOnly()
}

// Choose binds the path returned by a picker to the slot the session is
// waiting for.
func (e *Engine) Choose(p volume.Path) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.sess == nil {
		return fmt.Errorf("%w: no active transfer", ErrState)
	}
	switch e.sess.State {
	case AwaitingSource:
		return e.chooseSource(p)
	case AwaitingDestination:
		return e.chooseDestination(p)
	default:
		return fmt.Errorf("%w: cannot choose a path while %s", ErrState, e.sess.State)
	}
}

func (e *Engine) chooseSource(p volume.Path) error {
	s := e.sess
	if s.Mode.IsBatch() {
		if _, err := e.fs.ReadDir(p); err != nil {
			e.logger().WithFields(logrus.Fields{"path": p, "error": err}).Warn("cannot open source directory")
			return fmt.Errorf("%w %s: %w", ErrOpen, p, err)
		}
		s.Source.Path = p.AsDir()
	} else {
		if p.IsDir() {
			return fmt.Errorf("%w %s: %w", ErrOpen, p, volume.ErrInvalidPath)
		}
		h, err := e.fs.Open(p, volume.ReadOnly)
		if err != nil {
			e.logger().WithFields(logrus.Fields{"path": p, "error": err}).Warn("cannot open source")
			return fmt.Errorf("%w %s: %w", ErrOpen, p, err)
		}
		s.Source.Path = p
		s.Source.Handle = h
	}
	e.logger().WithField("source", s.Source.Path).Debug("source bound")

	if !s.Mode.NeedsDestination() {
		s.prompts = []Prompt{e.actionPrompt()}
		s.State = Confirming
		return nil
	}
	s.State = AwaitingDestination
	return nil
}

func (e *Engine) chooseDestination(dir volume.Path) error {
	s := e.sess
	target := dir.Join(s.Source.Path.Base())
	if target.Equal(s.Source.Path) {
		return fmt.Errorf("%w: %s", ErrSamePath, target)
	}
	if sf, ok := e.fs.(volume.SameFiler); ok && sf.SameFile(s.Source.Path, target) {
		e.logger().WithFields(logrus.Fields{"source": s.Source.Path, "target": target}).Warn("destination is the source file")
		return fmt.Errorf("%w: %s and %s", ErrSamePath, s.Source.Path, target)
	}
	s.target = target
	s.prompts = []Prompt{e.actionPrompt()}
	if e.fs.Exists(target) {
		s.prompts = append(s.prompts, e.overwritePrompt())
	}
	s.State = Confirming
	return nil
}

func (e *Engine) actionPrompt() Prompt {
	s := e.sess
	var text string
	switch s.Mode {
	case Delete:
		text = fmt.Sprintf("Are you sure you want to delete file %s?", s.Source.Path)
	case DeleteDir:
		text = fmt.Sprintf("Are you sure you want to delete every file in %s?", s.Source.Path)
	case Copy, Move:
		text = fmt.Sprintf("Are you sure you want to %s file %s to %s?", s.Mode, s.Source.Path, s.target)
	default:
		verb := "copy"
		if s.Mode == MoveDir {
			verb = "move"
		}
		text = fmt.Sprintf("Are you sure you want to %s the files in %s to %s?", verb, s.Source.Path, s.target)
	}
	return Prompt{Kind: ConfirmAction, Text: text}
}

func (e *Engine) overwritePrompt() Prompt {
	text := fmt.Sprintf("The file %s already exists, do you want to replace it?", e.sess.target)
	if e.sess.Mode.IsBatch() {
		text = fmt.Sprintf("The folder %s already exists, do you want to write into it?", e.sess.target)
	}
	return Prompt{Kind: ConfirmOverwrite, Text: text}
}

// Prompt returns the question waiting for an answer.
func (e *Engine) Prompt() (Prompt, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.sess == nil || e.sess.State != Confirming || len(e.sess.prompts) == 0 {
		return Prompt{}, false
	}
	return e.sess.prompts[0], true
}

// Answer resolves the pending prompt. Declining ends the session with
// nothing changed. Accepting the last prompt binds the destination and
// moves to Executing.
func (e *Engine) Answer(yes bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.sess == nil || e.sess.State != Confirming {
		return fmt.Errorf("%w: no prompt pending", ErrState)
	}
	s := e.sess
	if !yes {
		e.finish(Report{Outcome: Declined})
		return nil
	}
	s.prompts = s.prompts[1:]
	if len(s.prompts) > 0 {
		return nil
	}
	if s.Mode.NeedsDestination() {
		if err := e.bindDestination(); err != nil {
			s.target = ""
			s.State = AwaitingDestination
			return err
		}
	}
	s.State = Executing
	return nil
}

func (e *Engine) bindDestination() error {
	s := e.sess
	if s.Mode.IsBatch() {
		if err := e.fs.Mkdir(s.target); err != nil && !errors.Is(err, volume.ErrAlreadyExists) {
			e.logger().WithFields(logrus.Fields{"path": s.target, "error": err}).Warn("cannot create destination")
			return fmt.Errorf("%w %s: %w", ErrOpen, s.target, err)
		}
		s.Destination.Path = s.target.AsDir()
		return nil
	}
	h, err := e.fs.Open(s.target, volume.WriteTruncate)
	if err != nil {
		e.logger().WithFields(logrus.Fields{"path": s.target, "error": err}).Warn("cannot open destination")
		return fmt.Errorf("%w %s: %w", ErrOpen, s.target, err)
	}
	s.Destination.Path = s.target
	s.Destination.Handle = h
	return nil
}

// Cancel abandons the session before execution. It is a no-op when idle.
func (e *Engine) Cancel() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.sess == nil {
		return nil
	}
	if e.sess.State == Executing {
		return fmt.Errorf("%w: cannot cancel while executing", ErrState)
	}
	e.finish(Report{Outcome: Cancelled})
	return nil
}

// Execute performs the confirmed action and returns the engine to Idle.
// The only error is ErrState; operation failures are in the report.
func (e *Engine) Execute() (Report, error) {
	e.mu.Lock()
	s := e.sess
	if s == nil || s.State != Executing {
		e.mu.Unlock()
		return Report{}, fmt.Errorf("%w: nothing to execute", ErrState)
	}
	e.mu.Unlock()

	var r Report
	switch s.Mode {
	case Delete:
		r = e.deleteFile(s)
	case Copy:
		r = e.copyFile(s)
	case Move:
		r = e.copyFile(s)
		if r.Success() {
			d := e.deleteFile(s)
			d.Copied, d.Bytes = true, r.Bytes
			r = d
		}
	case CopyDir, MoveDir, DeleteDir:
		r = e.runBatch(s)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.finish(r), nil
}

func (e *Engine) copyFile(s *Session) Report {
	res, err := e.cp.Copy(s.Source.Handle, s.Destination.Handle)
	r := Report{Bytes: res}
	if cerr := e.closeSlot(&s.Destination); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		return failed(r, StepCopy, s.Destination.Path, ErrShortTransfer, err)
	}
	r.Outcome = Succeeded
	r.Copied = true
	return r
}

func (e *Engine) deleteFile(s *Session) Report {
	_ = e.closeSlot(&s.Source)
	if err := e.fs.Remove(s.Source.Path); err != nil {
		return failed(Report{}, StepDelete, s.Source.Path, ErrUnlink, err)
	}
	return Report{Outcome: Succeeded}
}

// closeSlot closes a slot handle while Execute runs unlocked. Snapshot
// reads the handles concurrently.
func (e *Engine) closeSlot(sl *Slot) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return sl.closeHandle()
}

func failed(r Report, step Step, p volume.Path, kind, err error) Report {
	r.Outcome = Failed
	r.Step = step
	if errors.Is(err, kind) {
		kind = nil
	}
	r.Err = &StepError{Step: step, Path: p, Kind: kind, Err: err}
	return r
}

// finish fills the session fields of r, releases both slots and returns
// to Idle. Callers hold e.mu.
func (e *Engine) finish(r Report) Report {
	s := e.sess
	r.ID = s.ID
	r.Mode = s.Mode
	r.Source = s.Source.Path
	r.Destination = s.Destination.Path
	if r.Destination == "" {
		r.Destination = s.target
	}
	if err := s.Source.release(); err != nil {
		e.logger().WithError(err).Warn("closing source failed")
	}
	if err := s.Destination.release(); err != nil {
		e.logger().WithError(err).Warn("closing destination failed")
	}

	entry := e.logger().WithFields(logrus.Fields{
		"outcome":     r.Outcome,
		"source":      r.Source,
		"destination": r.Destination,
	})
	if r.Err != nil {
		entry.WithFields(logrus.Fields{"step": r.Step, "error": r.Err}).Error("transfer failed")
	} else {
		entry.Info("transfer finished")
	}

	e.sess = nil
	e.last = &r
	return r
}

func (e *Engine) logger() *logrus.Entry {
	if e.sess == nil {
		return e.log
	}
	return e.log.WithFields(logrus.Fields{"transfer_id": e.sess.ID, "mode": e.sess.Mode})
}
