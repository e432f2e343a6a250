package supervise

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os/exec"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ladrtools/proverd/internal/history"
	"github.com/ladrtools/proverd/internal/metrics"
	"github.com/ladrtools/proverd/internal/program"
	"github.com/ladrtools/proverd/internal/run"
	"github.com/ladrtools/proverd/internal/stats"
)

const (
	// DefaultPollInterval is how often live runs are checked for kill
	// requests and resource samples.
	DefaultPollInterval = 500 * time.Millisecond
	// DefaultKillGrace is how long a terminated process group gets to
	// exit before it is killed outright.
	DefaultKillGrace = 5 * time.Second
)

// Supervisor launches reasoning programs, tracks their lifecycle in a
// registry and drives one monitor goroutine per live run.
type Supervisor struct {
	reg    *run.Registry
	binDir string
	poll   time.Duration
	grace  time.Duration
	log    *slog.Logger
	sinks  []history.Sink

	wg      sync.WaitGroup
	closing atomic.Bool

	mu      sync.Mutex
	actions map[uint64]*sync.Mutex
}

var errShuttingDown = errors.New("supervisor shutting down")

// Option configures a Supervisor.
type Option func(*Supervisor)

// WithPollInterval overrides the monitor poll interval.
func WithPollInterval(d time.Duration) Option {
	return func(s *Supervisor) {
		if d > 0 {
			s.poll = d
		}
	}
}

// WithKillGrace overrides how long a killed run may linger after SIGTERM.
func WithKillGrace(d time.Duration) Option {
	return func(s *Supervisor) {
		if d > 0 {
			s.grace = d
		}
	}
}

// WithLogger sets the logger used by monitor goroutines.
func WithLogger(l *slog.Logger) Option {
	return func(s *Supervisor) {
		if l != nil {
			s.log = l
		}
	}
}

// WithHistorySinks attaches sinks that receive one event per finished run.
func WithHistorySinks(sinks ...history.Sink) Option {
	return func(s *Supervisor) { s.sinks = append(s.sinks, sinks...) }
}

// New creates a Supervisor that resolves program binaries under binDir.
func New(binDir string, opts ...Option) *Supervisor {
	s := &Supervisor{
		reg:     run.NewRegistry(),
		binDir:  binDir,
		poll:    DefaultPollInterval,
		grace:   DefaultKillGrace,
		log:     slog.Default(),
		actions: make(map[uint64]*sync.Mutex),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Create registers a new run and starts it in the background. The returned
// id is valid immediately; the run moves from ready to running (or error)
// asynchronously.
func (s *Supervisor) Create(prog program.Type, input string, options map[string]any) (uint64, error) {
	if !prog.Valid() {
		return 0, program.ErrNotFound
	}
	id := s.reg.Create(prog, input, options)
	s.wg.Add(1)
	go s.launch(id)
	return id, nil
}

// Status returns a snapshot of one run.
func (s *Supervisor) Status(id uint64) (run.Record, error) { return s.reg.Get(id) }

// List returns snapshots of all runs in creation order.
func (s *Supervisor) List() []run.Record { return s.reg.Snapshot() }

// Wait blocks until the run reaches a terminal state or ctx is done.
func (s *Supervisor) Wait(ctx context.Context, id uint64) (run.Record, error) {
	t := time.NewTicker(s.poll)
	defer t.Stop()
	for {
		rec, err := s.reg.Get(id)
		if err != nil {
			return run.Record{}, err
		}
		if rec.State.Terminal() {
			return rec, nil
		}
		select {
		case <-ctx.Done():
			return rec, ctx.Err()
		case <-t.C:
		}
	}
}

// Shutdown kills all live runs and waits for their monitors to finish or
// ctx to expire. Runs still waiting to launch fail instead of spawning.
func (s *Supervisor) Shutdown(ctx context.Context) error {
	s.closing.Store(true)
	for _, rec := range s.reg.Snapshot() {
		if !rec.State.Terminal() {
			_ = s.Kill(rec.ID)
		}
	}
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// launch resolves the binary, spawns the process and hands off to monitor.
func (s *Supervisor) launch(id uint64) {
	defer s.wg.Done()

	snap, err := s.reg.Get(id)
	if err != nil {
		return
	}
	if s.closing.Load() {
		s.failLaunch(id, snap, errShuttingDown)
		return
	}
	path, err := program.Resolve(s.binDir, snap.Program)
	if err != nil {
		s.failLaunch(id, snap, err)
		return
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.Command(path, program.Args(snap.Program, snap.Options)...)
	cmd.Stdin = strings.NewReader(snap.Input)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	configureSysProcAttr(cmd)

	if err := cmd.Start(); err != nil {
		s.failLaunch(id, snap, err)
		return
	}
	pid := cmd.Process.Pid
	if err := s.transition(id, snap.Program, run.StateRunning, "start", func(r *run.Record) {
		r.PID = pid
	}); err != nil {
		// The record was mutated out from under a ready run; reap the
		// process so it does not leak.
		killGroup(pid)
		_ = cmd.Wait()
		s.log.Error("run start race", "id", id, "err", err)
		return
	}
	metrics.IncStarted(string(snap.Program))
	s.log.Info("run started", "id", id, "program", snap.Program, "pid", pid)

	// A shutdown that snapshotted the registry before this run went
	// running never saw it, so catch up here.
	if s.closing.Load() {
		_ = s.Kill(id)
	}

	s.monitor(id, snap.Program, cmd, &stdout, &stderr)
}

func (s *Supervisor) failLaunch(id uint64, snap run.Record, cause error) {
	_ = s.transition(id, snap.Program, run.StateError, "start", func(r *run.Record) {
		r.Errout = cause.Error()
	})
	metrics.IncLaunchFailure(string(snap.Program))
	s.log.Error("run launch failed", "id", id, "program", snap.Program, "err", cause)
}

// monitor polls a live run until its process exits. A kill request is
// observed through the record state: the poll loop escalates from SIGTERM
// to SIGKILL after the grace period.
func (s *Supervisor) monitor(id uint64, prog program.Type, cmd *exec.Cmd, stdout, stderr *bytes.Buffer) {
	pid := cmd.Process.Pid
	waitCh := make(chan error, 1)
	go func() { waitCh <- cmd.Wait() }()

	tick := time.NewTicker(s.poll)
	defer tick.Stop()

	for {
		select {
		case waitErr := <-waitCh:
			s.finalize(id, prog, cmd, stdout, stderr, waitErr)
			return
		case <-tick.C:
		}

		rec, err := s.reg.Get(id)
		if err != nil {
			terminateGroup(pid)
			<-waitCh
			return
		}
		if rec.State == run.StateKilled {
			terminateGroup(pid)
			select {
			case waitErr := <-waitCh:
				s.finalize(id, prog, cmd, stdout, stderr, waitErr)
			case <-time.After(s.grace):
				killGroup(pid)
				s.finalize(id, prog, cmd, stdout, stderr, <-waitCh)
			}
			return
		}
		if u, err := sampleUsage(pid); err == nil {
			_ = s.reg.Mutate(id, func(r *run.Record) error {
				if !r.State.Terminal() {
					r.Usage = u
				}
				return nil
			})
			metrics.SetUsage(string(prog), id, u.CPUPercent, u.MemoryRSS, u.NumThreads)
		}
	}
}

// finalize records the outcome of an exited process exactly once.
func (s *Supervisor) finalize(id uint64, prog program.Type, cmd *exec.Cmd, stdout, stderr *bytes.Buffer, waitErr error) {
	code := exitCode(cmd, waitErr)
	out := strings.ToValidUTF8(stdout.String(), "�")
	errout := strings.ToValidUTF8(stderr.String(), "�")
	st := stats.Extract(prog, out)

	var final run.State
	var started time.Time
	_ = s.reg.Mutate(id, func(r *run.Record) error {
		if run.CanTransition(r.State, run.StateDone) {
			metrics.RecordStateTransition(string(prog), r.State.String(), run.StateDone.String())
			r.State = run.StateDone
		}
		r.ExitCode = &code
		r.Output = out
		r.Errout = errout
		r.Stats = st
		r.Usage = nil
		final = r.State
		started = r.StartedAt
		return nil
	})

	metrics.DeleteUsage(string(prog), id)
	metrics.IncFinished(string(prog), final.String())
	metrics.ObserveDuration(string(prog), time.Since(started).Seconds())
	s.log.Info("run finished", "id", id, "program", prog,
		"state", final, "exit_code", code, "label", program.ExitLabel(prog, code))

	s.emitHistory(id, prog, final, cmd.Process.Pid, code, started, st)
}

func (s *Supervisor) emitHistory(id uint64, prog program.Type, final run.State, pid, code int, started time.Time, st *stats.Stats) {
	if len(s.sinks) == 0 {
		return
	}
	ev := history.Event{
		RunID:      id,
		Program:    string(prog),
		State:      final.String(),
		PID:        pid,
		ExitCode:   code,
		ExitLabel:  program.ExitLabel(prog, code),
		StartedAt:  started,
		FinishedAt: time.Now(),
	}
	if st != nil {
		if b, err := json.Marshal(st); err == nil {
			ev.StatsJSON = string(b)
		}
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for _, sink := range s.sinks {
		if err := sink.Send(ctx, ev); err != nil {
			s.log.Warn("history send failed", "id", id, "err", err)
		}
	}
}

// transition moves a run to a new state under the transition table and
// records the move in metrics.
func (s *Supervisor) transition(id uint64, prog program.Type, to run.State, action string, mod func(*run.Record)) error {
	var from run.State
	err := s.reg.Mutate(id, func(r *run.Record) error {
		if !run.CanTransition(r.State, to) {
			return &run.InvalidStateError{Action: action, State: r.State}
		}
		from = r.State
		r.State = to
		if mod != nil {
			mod(r)
		}
		return nil
	})
	if err == nil && from != to {
		metrics.RecordStateTransition(string(prog), from.String(), to.String())
	}
	return err
}

// actionLock returns the per-run mutex used to serialize pause, resume
// and kill against each other.
func (s *Supervisor) actionLock(id uint64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.actions[id]
	if !ok {
		m = &sync.Mutex{}
		s.actions[id] = m
	}
	return m
}
