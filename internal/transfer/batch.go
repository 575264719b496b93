package transfer

import (
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/jask/antani/internal/volume"
)

// runBatch applies the session mode to every file directly inside the
// source directory. Subdirectories are skipped. A failing entry is logged
// and recorded and the batch moves on; earlier entries are not undone.
func (e *Engine) runBatch(s *Session) Report {
	log := e.log.WithFields(logrus.Fields{"transfer_id": s.ID, "mode": s.Mode})

	entries, err := e.fs.ReadDir(s.Source.Path)
	if err != nil {
		return failed(Report{}, StepOpen, s.Source.Path, ErrOpen, err)
	}

	r := Report{Outcome: Succeeded, Entries: make([]EntryReport, 0, len(entries))}
	var errs []error
	for _, de := range entries {
		er := EntryReport{Name: de.Name, Outcome: Succeeded}
		if de.Kind == volume.KindDir {
			er.Outcome = Skipped
			r.Entries = append(r.Entries, er)
			continue
		}

		src := s.Source.Path.Join(de.Name)
		var step Step
		var err error
		switch s.Mode {
		case DeleteDir:
			step, err = e.removeEntry(src)
		default:
			step, err = e.copyEntry(src, s.Destination.Path.Join(de.Name))
			if err == nil && s.Mode == MoveDir {
				step, err = e.removeEntry(src)
			}
		}
		if err != nil {
			er.Outcome, er.Step, er.Err = Failed, step, err
			errs = append(errs, err)
			log.WithFields(logrus.Fields{"entry": src, "step": step, "error": err}).Warn("batch entry failed")
			if r.Outcome == Succeeded {
				r.Outcome, r.Step = Failed, step
			}
		}
		r.Entries = append(r.Entries, er)
	}
	r.Err = errors.Join(errs...)
	return r
}

func (e *Engine) copyEntry(src, dst volume.Path) (Step, error) {
	in, err := e.fs.Open(src, volume.ReadOnly)
	if err != nil {
		return StepOpen, &StepError{Step: StepOpen, Path: src, Kind: ErrOpen, Err: err}
	}
	defer in.Close()

	out, err := e.fs.Open(dst, volume.WriteTruncate)
	if err != nil {
		return StepOpen, &StepError{Step: StepOpen, Path: dst, Kind: ErrOpen, Err: err}
	}
	_, err = e.cp.Copy(in, out)
	if cerr := out.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		var kind error = ErrShortTransfer
		if errors.Is(err, ErrShortTransfer) {
			kind = nil
		}
		return StepCopy, &StepError{Step: StepCopy, Path: dst, Kind: kind, Err: err}
	}
	return StepCopy, nil
}

func (e *Engine) removeEntry(p volume.Path) (Step, error) {
	if err := e.fs.Remove(p); err != nil {
		return StepDelete, &StepError{Step: StepDelete, Path: p, Kind: ErrUnlink, Err: err}
	}
	return StepDelete, nil
}
