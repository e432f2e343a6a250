package run

import (
	"encoding/json"
	"testing"
)

func TestTransitionTable(t *testing.T) {
	legal := []struct{ from, to State }{
		{StateReady, StateRunning},
		{StateReady, StateError},
		{StateRunning, StateSuspended},
		{StateSuspended, StateRunning},
		{StateRunning, StateDone},
		{StateSuspended, StateDone},
		{StateRunning, StateKilled},
		{StateSuspended, StateKilled},
		{StateKilled, StateKilled}, // idempotent kill
	}
	for _, tr := range legal {
		if !CanTransition(tr.from, tr.to) {
			t.Errorf("CanTransition(%s, %s) = false, want true", tr.from, tr.to)
		}
	}

	illegal := []struct{ from, to State }{
		{StateReady, StateSuspended},
		{StateReady, StateDone},
		{StateReady, StateKilled},
		{StateRunning, StateReady},
		{StateRunning, StateError},
		{StateSuspended, StateError},
		{StateDone, StateRunning},
		{StateDone, StateDone},
		{StateError, StateRunning},
		{StateKilled, StateDone},
		{StateKilled, StateRunning},
	}
	for _, tr := range illegal {
		if CanTransition(tr.from, tr.to) {
			t.Errorf("CanTransition(%s, %s) = true, want false", tr.from, tr.to)
		}
	}
}

func TestTerminalStates(t *testing.T) {
	for _, s := range []State{StateDone, StateError, StateKilled} {
		if !s.Terminal() {
			t.Errorf("%s.Terminal() = false", s)
		}
	}
	for _, s := range []State{StateReady, StateRunning, StateSuspended} {
		if s.Terminal() {
			t.Errorf("%s.Terminal() = true", s)
		}
	}
}

func TestStateJSONRoundTrip(t *testing.T) {
	for _, s := range []State{StateReady, StateRunning, StateSuspended, StateDone, StateError, StateKilled} {
		b, err := json.Marshal(s)
		if err != nil {
			t.Fatalf("marshal %s: %v", s, err)
		}
		var got State
		if err := json.Unmarshal(b, &got); err != nil {
			t.Fatalf("unmarshal %s: %v", b, err)
		}
		if got != s {
			t.Fatalf("round trip %s -> %s", s, got)
		}
	}
	var s State
	if err := json.Unmarshal([]byte(`"zombie"`), &s); err == nil {
		t.Fatal("unmarshal accepted unknown state")
	}
}
