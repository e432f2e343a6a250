package supervise

import (
	"context"
	"sync"
	"testing"

	"github.com/ladrtools/proverd/internal/history"
	"github.com/ladrtools/proverd/internal/program"
)

type recordingSink struct {
	mu     sync.Mutex
	events []history.Event
}

func (r *recordingSink) Send(_ context.Context, ev history.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *recordingSink) Close() error { return nil }

func TestHistoryEventEmitted(t *testing.T) {
	requireUnix(t)
	dir := t.TempDir()
	writeScript(t, dir, "mace4", `cat >/dev/null
echo "Domain_size=4. Models=2. User_CPU=0.10."`)

	sink := &recordingSink{}
	s := newTestSupervisor(t, dir, WithHistorySinks(sink))
	id, _ := s.Create(program.Mace4, "x.", nil)
	if _, err := s.Wait(context.Background(), id); err != nil {
		t.Fatalf("wait: %v", err)
	}

	sink.mu.Lock()
	defer sink.mu.Unlock()
	if len(sink.events) != 1 {
		t.Fatalf("events = %d, want 1", len(sink.events))
	}
	ev := sink.events[0]
	if ev.RunID != id || ev.Program != "mace4" || ev.State != "done" {
		t.Fatalf("unexpected event: %+v", ev)
	}
	if ev.ExitLabel != "Model Found" {
		t.Fatalf("exit label = %q", ev.ExitLabel)
	}
	if ev.StatsJSON == "" {
		t.Fatalf("expected stats json")
	}
	if !ev.FinishedAt.After(ev.StartedAt) {
		t.Fatalf("finished %v not after started %v", ev.FinishedAt, ev.StartedAt)
	}
}
