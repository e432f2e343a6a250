package stats

import (
	"regexp"
	"strconv"

	"github.com/ladrtools/proverd/internal/program"
)

// Stats holds program-specific metrics parsed from a finished run's captured
// standard output. Fields are sparse: only the group belonging to the run's
// program is ever populated, and a run whose output lacks the summary line
// yields the zero value.
type Stats struct {
	// prover9
	Given     int `json:"given,omitempty"`
	Generated int `json:"generated,omitempty"`
	Kept      int `json:"kept,omitempty"`
	Proofs    int `json:"proofs,omitempty"`
	// mace4
	DomainSize int `json:"domain_size,omitempty"`
	Models     int `json:"models,omitempty"`
	// isofilter / isofilter2
	InputModels   int `json:"input_models,omitempty"`
	KeptModels    int `json:"kept_models,omitempty"`
	RemovedModels int `json:"removed_models,omitempty"`
	// prover9 and mace4
	CPUTime float64 `json:"cpu_time,omitempty"`
}

// Summary line patterns, fixed per tool.
var (
	proverRe = regexp.MustCompile(`Given=(\d+)\. Generated=(\d+)\. Kept=(\d+)\. proofs=(\d+)\.User_CPU=(\d*\.\d*),`)
	mace4Re  = regexp.MustCompile(`Domain_size=(\d+)\. Models=(\d+)\. User_CPU=(\d*\.\d*)\.`)
	filterRe = regexp.MustCompile(`input=(\d+), kept=(\d+)`)
)

// Extract parses program-specific metrics from output. It returns nil for
// the formatter programs, which carry no summary line, and a possibly-empty
// Stats for the rest. It never fails: absent or malformed summary lines
// simply leave fields at zero.
func Extract(t program.Type, output string) *Stats {
	switch t {
	case program.Prover9:
		return extractProver9(output)
	case program.Mace4:
		return extractMace4(output)
	case program.Isofilter, program.Isofilter2:
		return extractIsofilter(output)
	}
	return nil
}

func extractProver9(output string) *Stats {
	s := &Stats{}
	m := proverRe.FindStringSubmatch(output)
	if m == nil {
		return s
	}
	s.Given = atoi(m[1])
	s.Generated = atoi(m[2])
	s.Kept = atoi(m[3])
	s.Proofs = atoi(m[4])
	s.CPUTime = atof(m[5])
	return s
}

func extractMace4(output string) *Stats {
	s := &Stats{}
	m := mace4Re.FindStringSubmatch(output)
	if m == nil {
		return s
	}
	s.DomainSize = atoi(m[1])
	s.Models = atoi(m[2])
	s.CPUTime = atof(m[3])
	return s
}

func extractIsofilter(output string) *Stats {
	s := &Stats{}
	m := filterRe.FindStringSubmatch(output)
	if m == nil {
		return s
	}
	s.InputModels = atoi(m[1])
	s.KeptModels = atoi(m[2])
	// A negative difference means the tool reported keeping more models than
	// it read; keep it as-is so callers can flag the inconsistency.
	s.RemovedModels = s.InputModels - s.KeptModels
	return s
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func atof(s string) float64 {
	f, _ := strconv.ParseFloat(s, 64)
	return f
}
