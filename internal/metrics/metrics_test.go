package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegisterAndCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	if err := Register(reg); err != nil {
		t.Fatalf("register: %v", err)
	}
	// second call is a no-op
	if err := Register(reg); err != nil {
		t.Fatalf("re-register: %v", err)
	}

	IncStarted("prover9")
	IncStarted("prover9")
	IncFinished("prover9", "done")
	IncLaunchFailure("mace4")
	RecordStateTransition("prover9", "ready", "running")

	if got := testutil.ToFloat64(runsStarted.WithLabelValues("prover9")); got != 2 {
		t.Fatalf("started = %v, want 2", got)
	}
	if got := testutil.ToFloat64(runsFinished.WithLabelValues("prover9", "done")); got != 1 {
		t.Fatalf("finished = %v, want 1", got)
	}
	if got := testutil.ToFloat64(launchFailures.WithLabelValues("mace4")); got != 1 {
		t.Fatalf("failures = %v, want 1", got)
	}
}

func TestUsageGaugesLifecycle(t *testing.T) {
	reg := prometheus.NewRegistry()
	if err := Register(reg); err != nil {
		t.Fatalf("register: %v", err)
	}

	SetUsage("mace4", 42, 12.5, 1<<20, 3)
	if got := testutil.ToFloat64(runCPUPercent.WithLabelValues("mace4", "42")); got != 12.5 {
		t.Fatalf("cpu = %v, want 12.5", got)
	}
	DeleteUsage("mace4", 42)
	if n := testutil.CollectAndCount(runCPUPercent); n != 0 {
		t.Fatalf("cpu gauge still has %d series after delete", n)
	}
}
