package client

import "time"

// StartRequest describes a program invocation to submit.
type StartRequest struct {
	Program string         `json:"program"`
	Input   string         `json:"input"`
	Options map[string]any `json:"options,omitempty"`
}

// StartResponse carries the id of a newly tracked run.
type StartResponse struct {
	ProcessID uint64 `json:"process_id"`
}

// ResourceUsage mirrors the daemon's live resource snapshot.
type ResourceUsage struct {
	CPUPercent    float64   `json:"cpu_percent"`
	MemoryPercent float32   `json:"memory_percent"`
	MemoryRSS     uint64    `json:"memory_rss"`
	MemoryVMS     uint64    `json:"memory_vms"`
	NumThreads    int32     `json:"num_threads"`
	Status        string    `json:"status,omitempty"`
	SampledAt     time.Time `json:"sampled_at"`
}

// Stats mirrors the daemon's extracted search statistics.
type Stats struct {
	Given         int     `json:"given,omitempty"`
	Generated     int     `json:"generated,omitempty"`
	Kept          int     `json:"kept,omitempty"`
	Proofs        int     `json:"proofs,omitempty"`
	DomainSize    int     `json:"domain_size,omitempty"`
	Models        int     `json:"models,omitempty"`
	InputModels   int     `json:"input_models,omitempty"`
	KeptModels    int     `json:"kept_models,omitempty"`
	RemovedModels int     `json:"removed_models,omitempty"`
	CPUTime       float64 `json:"cpu_time,omitempty"`
}

// ProcessStatus is the daemon's full view of one run.
type ProcessStatus struct {
	ID        uint64         `json:"id"`
	Program   string         `json:"program"`
	Input     string         `json:"input"`
	Options   map[string]any `json:"options,omitempty"`
	State     string         `json:"state"`
	PID       int            `json:"pid"`
	StartedAt time.Time      `json:"start_time"`
	ExitCode  *int           `json:"exit_code,omitempty"`
	Output    string         `json:"output,omitempty"`
	Error     string         `json:"error,omitempty"`
	Stats     *Stats         `json:"stats,omitempty"`
	Usage     *ResourceUsage `json:"resource_usage,omitempty"`
}

// ActionResponse is returned by pause, resume, and kill.
type ActionResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// ErrorResponse represents an API error response.
type ErrorResponse struct {
	Error string `json:"error"`
}
