package supervise

import (
	"github.com/ladrtools/proverd/internal/run"
)

// Pause suspends a running process group. It fails with ErrUnsupported on
// platforms without SIGSTOP semantics and with InvalidStateError unless
// the run is currently running.
func (s *Supervisor) Pause(id uint64) error {
	if !suspendSupported {
		return run.ErrUnsupported
	}
	mu := s.actionLock(id)
	mu.Lock()
	defer mu.Unlock()

	rec, err := s.reg.Get(id)
	if err != nil {
		return err
	}
	if rec.State != run.StateRunning {
		return &run.InvalidStateError{Action: "pause", State: rec.State}
	}
	// State change first, signal second: the monitor must never observe a
	// stopped process still marked running.
	if err := s.transition(id, rec.Program, run.StateSuspended, "pause", nil); err != nil {
		return err
	}
	if err := suspendGroup(rec.PID); err != nil {
		return err
	}
	s.log.Info("run paused", "id", id, "pid", rec.PID)
	return nil
}

// Resume continues a suspended process group.
func (s *Supervisor) Resume(id uint64) error {
	if !suspendSupported {
		return run.ErrUnsupported
	}
	mu := s.actionLock(id)
	mu.Lock()
	defer mu.Unlock()

	rec, err := s.reg.Get(id)
	if err != nil {
		return err
	}
	if rec.State != run.StateSuspended {
		return &run.InvalidStateError{Action: "resume", State: rec.State}
	}
	if err := s.transition(id, rec.Program, run.StateRunning, "resume", nil); err != nil {
		return err
	}
	if err := resumeGroup(rec.PID); err != nil {
		return err
	}
	s.log.Info("run resumed", "id", id, "pid", rec.PID)
	return nil
}

// Kill requests termination of a live run. The monitor goroutine observes
// the state change and escalates from SIGTERM to SIGKILL. Killing a run
// that is already killed is a no-op; killing a finished run fails with
// InvalidStateError.
func (s *Supervisor) Kill(id uint64) error {
	mu := s.actionLock(id)
	mu.Lock()
	defer mu.Unlock()

	rec, err := s.reg.Get(id)
	if err != nil {
		return err
	}
	if rec.State == run.StateKilled {
		return nil
	}
	if err := s.transition(id, rec.Program, run.StateKilled, "kill", nil); err != nil {
		return err
	}
	// Nudge the group right away rather than waiting for the next poll.
	terminateGroup(rec.PID)
	s.log.Info("run kill requested", "id", id, "pid", rec.PID)
	return nil
}
