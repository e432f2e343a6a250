package history

import (
	"context"
	"time"
)

// Event describes one finished run for the audit trail. It is emitted
// exactly once, when a record reaches a terminal state.
type Event struct {
	RunID      uint64    `json:"run_id"`
	Program    string    `json:"program"`
	State      string    `json:"state"`
	PID        int       `json:"pid"`
	ExitCode   int       `json:"exit_code"`
	ExitLabel  string    `json:"exit_label"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	StatsJSON  string    `json:"stats_json,omitempty"`
}

// Sink is a destination for run events (audit/statistics systems).
// Implementations must be safe for concurrent use.
type Sink interface {
	Send(ctx context.Context, e Event) error
	Close() error
}
