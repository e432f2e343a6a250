package run

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned for operations against an id the registry has
// never issued.
var ErrNotFound = errors.New("process not found")

// ErrUnsupported is returned for pause/resume on platforms without
// cooperative process suspension.
var ErrUnsupported = errors.New("not supported on this platform")

// InvalidStateError reports an action that is illegal for the record's
// current state. The record is left unchanged.
type InvalidStateError struct {
	Action string
	State  State
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("cannot %s process in state %s", e.Action, e.State)
}

// IsInvalidState reports whether err is an InvalidStateError.
func IsInvalidState(err error) bool {
	var ise *InvalidStateError
	return errors.As(err, &ise)
}
