package run

import (
	"time"

	"github.com/ladrtools/proverd/internal/program"
	"github.com/ladrtools/proverd/internal/stats"
)

// ResourceUsage is a point-in-time snapshot of a running process's resource
// consumption, refreshed by the monitor on each poll. A process that has
// vanished yields the zero snapshot.
type ResourceUsage struct {
	CPUPercent    float64   `json:"cpu_percent"`
	MemoryPercent float32   `json:"memory_percent"`
	MemoryRSS     uint64    `json:"memory_rss"`
	MemoryVMS     uint64    `json:"memory_vms"`
	NumThreads    int32     `json:"num_threads"`
	Status        string    `json:"status,omitempty"`
	SampledAt     time.Time `json:"sampled_at"`
}

// Record is the tracked state of one external-tool invocation. All access
// goes through the Registry; nothing outside this package mutates a Record
// except via Registry.Mutate.
type Record struct {
	ID        uint64         `json:"id"`
	Program   program.Type   `json:"program"`
	Input     string         `json:"input"`
	Options   map[string]any `json:"options,omitempty"`
	State     State          `json:"state"`
	PID       int            `json:"pid"`
	StartedAt time.Time      `json:"start_time"`

	// Populated exactly once, at the transition into a terminal state.
	ExitCode *int         `json:"exit_code,omitempty"`
	Output   string       `json:"output,omitempty"`
	Errout   string       `json:"error,omitempty"`
	Stats    *stats.Stats `json:"stats,omitempty"`

	Usage *ResourceUsage `json:"resource_usage,omitempty"`
}

// clone returns a deep copy so callers never observe later mutations.
func (r *Record) clone() Record {
	out := *r
	if r.Options != nil {
		out.Options = make(map[string]any, len(r.Options))
		for k, v := range r.Options {
			out.Options[k] = v
		}
	}
	if r.ExitCode != nil {
		code := *r.ExitCode
		out.ExitCode = &code
	}
	if r.Stats != nil {
		st := *r.Stats
		out.Stats = &st
	}
	if r.Usage != nil {
		usage := *r.Usage
		out.Usage = &usage
	}
	return out
}

// ExitLabel returns the display label for the record's exit code, or the
// empty string while the run has not produced one.
func (r *Record) ExitLabel() string {
	if r.ExitCode == nil {
		return ""
	}
	return program.ExitLabel(r.Program, *r.ExitCode)
}
