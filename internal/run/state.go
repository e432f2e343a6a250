package run

import (
	"fmt"
	"strings"
)

// State is the lifecycle state of one tracked invocation.
//
//	Ready -> Running <-> Suspended -> {Done | Killed}
//	Ready -> Error                     (launch failure)
//
// Done, Error and Killed are terminal. The only accepted self-loop is
// Killed -> Killed, which makes a repeated kill request idempotent.
type State uint8

const (
	StateReady State = iota
	StateRunning
	StateSuspended
	StateDone
	StateError
	StateKilled
)

var stateNames = [...]string{
	StateReady:     "ready",
	StateRunning:   "running",
	StateSuspended: "suspended",
	StateDone:      "done",
	StateError:     "error",
	StateKilled:    "killed",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// MarshalJSON serializes the state as its lowercase name.
func (s State) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// UnmarshalJSON accepts the lowercase state names produced by MarshalJSON.
func (s *State) UnmarshalJSON(b []byte) error {
	name := strings.Trim(string(b), `"`)
	for i, n := range stateNames {
		if n == name {
			*s = State(i)
			return nil
		}
	}
	return fmt.Errorf("unknown state %q", name)
}

// Terminal reports whether s admits no further transitions.
func (s State) Terminal() bool {
	return s == StateDone || s == StateError || s == StateKilled
}

// transitions is the single validated transition table. Every record
// mutation that changes State must be accepted here.
var transitions = map[State][]State{
	StateReady:     {StateRunning, StateError},
	StateRunning:   {StateSuspended, StateDone, StateKilled},
	StateSuspended: {StateRunning, StateDone, StateKilled},
	StateKilled:    {StateKilled},
}

// CanTransition reports whether from -> to is a legal lifecycle transition.
func CanTransition(from, to State) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
